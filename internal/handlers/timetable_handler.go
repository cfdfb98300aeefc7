package handlers

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/academic-scheduler/internal/apperrors"
	"github.com/harentsoaR/academic-scheduler/internal/models"
	"github.com/harentsoaR/academic-scheduler/internal/schedule"
)

type SlotRequest struct {
	Subject    string `json:"subject" binding:"required,objectid"`
	Instructor string `json:"instructor" binding:"required,objectid"`
	Venue      string `json:"venue" binding:"required,objectid"`
	Day        string `json:"day" binding:"required,weekday"`
	StartTime  string `json:"startTime" binding:"required,clock"`
	EndTime    string `json:"endTime" binding:"required,clock"`
}

type UpdateSlotRequest struct {
	Subject    *string `json:"subject" binding:"omitempty,objectid"`
	Instructor *string `json:"instructor" binding:"omitempty,objectid"`
	Venue      *string `json:"venue" binding:"omitempty,objectid"`
	Day        *string `json:"day" binding:"omitempty,weekday"`
	StartTime  *string `json:"startTime" binding:"omitempty,clock"`
	EndTime    *string `json:"endTime" binding:"omitempty,clock"`
}

type CreateTimetableRequest struct {
	Title       string        `json:"title" binding:"required,notblank"`
	Description string        `json:"description"`
	Group       string        `json:"group" binding:"required,objectid"`
	Published   bool          `json:"published"`
	Slots       []SlotRequest `json:"slots" binding:"omitempty,dive"`
}

// UpdateTimetableRequest patches a timetable. A present slots array replaces
// every slot.
type UpdateTimetableRequest struct {
	Title       *string       `json:"title" binding:"omitnil,notblank"`
	Description *string       `json:"description"`
	Group       *string       `json:"group" binding:"omitempty,objectid"`
	Published   *bool         `json:"published"`
	Slots       []SlotRequest `json:"slots" binding:"omitempty,dive"`
}

type PublishRequest struct {
	Published *bool `json:"published" binding:"required"`
}

func (h *Handler) ListTimetables(c *gin.Context) {
	var filter models.TimetableFilter
	if hex := c.Query("group"); hex != "" {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			respondError(c, apperrors.New(apperrors.ErrInvalidID, "invalid group"))
			return
		}
		filter.Group = id
	}
	if raw := c.Query("published"); raw != "" {
		published, err := cast.ToBoolE(raw)
		if err != nil {
			respondError(c, apperrors.Validation("published must be true or false"))
			return
		}
		filter.Published = &published
	}

	timetables, err := h.Timetables.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, timetables)
}

func (h *Handler) GetTimetable(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	tt, err := h.Timetables.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, tt)
}

func (h *Handler) CreateTimetable(c *gin.Context) {
	var req CreateTimetableRequest
	if !bindJSON(c, &req) {
		return
	}
	slots := buildSlots(req.Slots)
	if err := schedule.CheckSlots(slots); err != nil {
		respondError(c, err)
		return
	}

	tt := &models.Timetable{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Group:       mustObjectID(req.Group),
		Published:   req.Published,
		Slots:       slots,
	}
	if err := h.Timetables.Create(c.Request.Context(), tt); err != nil {
		respondError(c, err)
		return
	}
	h.announce(false, tt)
	respond(c, http.StatusCreated, tt)
}

func (h *Handler) UpdateTimetable(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateTimetableRequest
	if !bindJSON(c, &req) {
		return
	}

	tt, err := h.Timetables.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	wasPublished := tt.Published
	if req.Title != nil {
		tt.Title = strings.TrimSpace(*req.Title)
	}
	assign(&tt.Description, req.Description)
	assign(&tt.Published, req.Published)
	if req.Group != nil {
		tt.Group = mustObjectID(*req.Group)
	}
	if req.Slots != nil {
		slots := buildSlots(req.Slots)
		if err := schedule.CheckSlots(slots); err != nil {
			respondError(c, err)
			return
		}
		tt.Slots = slots
	}

	if err := h.Timetables.Save(c.Request.Context(), tt); err != nil {
		respondError(c, err)
		return
	}
	h.announce(wasPublished, tt)
	respond(c, http.StatusOK, tt)
}

func (h *Handler) DeleteTimetable(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Timetables.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Timetable deleted successfully")
}

func (h *Handler) AddSlot(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req SlotRequest
	if !bindJSON(c, &req) {
		return
	}

	tt, err := h.Timetables.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	slots := append(slices.Clone(tt.Slots), buildSlots([]SlotRequest{req})...)
	if err := schedule.CheckSlots(slots); err != nil {
		respondError(c, err)
		return
	}
	tt.Slots = slots

	if err := h.Timetables.Save(c.Request.Context(), tt); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, tt)
}

func (h *Handler) UpdateSlot(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	slotID, ok := parseID(c, "slotId")
	if !ok {
		return
	}
	var req UpdateSlotRequest
	if !bindJSON(c, &req) {
		return
	}

	tt, err := h.Timetables.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	idx := slices.IndexFunc(tt.Slots, func(s models.Slot) bool { return s.ID == slotID })
	if idx < 0 {
		respondError(c, apperrors.NotFound("slot not found"))
		return
	}

	slots := slices.Clone(tt.Slots)
	slot := &slots[idx]
	if req.Subject != nil {
		slot.Subject = mustObjectID(*req.Subject)
	}
	if req.Instructor != nil {
		slot.Instructor = mustObjectID(*req.Instructor)
	}
	if req.Venue != nil {
		slot.Venue = mustObjectID(*req.Venue)
	}
	assign(&slot.Day, req.Day)
	assign(&slot.StartTime, req.StartTime)
	assign(&slot.EndTime, req.EndTime)
	if err := schedule.CheckSlots(slots); err != nil {
		respondError(c, err)
		return
	}
	tt.Slots = slots

	if err := h.Timetables.Save(c.Request.Context(), tt); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, tt)
}

func (h *Handler) DeleteSlot(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	slotID, ok := parseID(c, "slotId")
	if !ok {
		return
	}

	tt, err := h.Timetables.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	_, idx, found := lo.FindIndexOf(tt.Slots, func(s models.Slot) bool { return s.ID == slotID })
	if !found {
		respondError(c, apperrors.NotFound("slot not found"))
		return
	}
	tt.Slots = slices.Delete(tt.Slots, idx, idx+1)

	if err := h.Timetables.Save(c.Request.Context(), tt); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, tt)
}

// PublishTimetable sets the published flag. Only the transition to published
// is announced.
func (h *Handler) PublishTimetable(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req PublishRequest
	if !bindJSON(c, &req) {
		return
	}

	tt, err := h.Timetables.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	wasPublished := tt.Published
	tt.Published = *req.Published

	if err := h.Timetables.Save(c.Request.Context(), tt); err != nil {
		respondError(c, err)
		return
	}
	h.announce(wasPublished, tt)
	respond(c, http.StatusOK, tt)
}

func (h *Handler) announce(wasPublished bool, tt *models.Timetable) {
	if wasPublished || !tt.Published || h.NotificationSvc == nil {
		return
	}
	h.NotificationSvc.TimetablePublished(tt)
}

func buildSlots(reqs []SlotRequest) []models.Slot {
	return lo.Map(reqs, func(r SlotRequest, _ int) models.Slot {
		return models.Slot{
			ID:         primitive.NewObjectID(),
			Subject:    mustObjectID(r.Subject),
			Instructor: mustObjectID(r.Instructor),
			Venue:      mustObjectID(r.Venue),
			Day:        r.Day,
			StartTime:  r.StartTime,
			EndTime:    r.EndTime,
		}
	})
}
