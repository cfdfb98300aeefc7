package handlers

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/academic-scheduler/internal/apperrors"
	"github.com/harentsoaR/academic-scheduler/internal/models"
	"github.com/harentsoaR/academic-scheduler/internal/schedule"
)

type BookingRequest struct {
	Date      string `json:"date" binding:"required,isodate"`
	StartTime string `json:"startTime" binding:"required,clock"`
	EndTime   string `json:"endTime" binding:"required,clock"`
}

type CreateVenueRequest struct {
	Faculty         string           `json:"faculty" binding:"required,notblank"`
	Department      string           `json:"department" binding:"required,notblank"`
	Building        string           `json:"building" binding:"required,notblank"`
	HallName        string           `json:"hallName" binding:"required,notblank"`
	Type            string           `json:"type" binding:"required,oneof=lecture tutorial lab"`
	Capacity        int              `json:"capacity" binding:"required,gt=0"`
	BookedTimeSlots []BookingRequest `json:"bookedTimeSlots" binding:"omitempty,dive"`
}

// UpdateVenueRequest changes only the fields present in the body. A present
// bookedTimeSlots array replaces the whole list.
type UpdateVenueRequest struct {
	Faculty         *string          `json:"faculty" binding:"omitnil,notblank"`
	Department      *string          `json:"department" binding:"omitnil,notblank"`
	Building        *string          `json:"building" binding:"omitnil,notblank"`
	HallName        *string          `json:"hallName" binding:"omitnil,notblank"`
	Type            *string          `json:"type" binding:"omitempty,oneof=lecture tutorial lab"`
	Capacity        *int             `json:"capacity" binding:"omitempty,gt=0"`
	BookedTimeSlots []BookingRequest `json:"bookedTimeSlots" binding:"omitempty,dive"`
}

func (h *Handler) ListVenues(c *gin.Context) {
	filter := models.VenueFilter{
		Faculty:    c.Query("faculty"),
		Department: c.Query("department"),
		Building:   c.Query("building"),
		Type:       c.Query("type"),
	}
	venues, err := h.Venues.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, venues)
}

func (h *Handler) GetVenue(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	venue, err := h.Venues.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, venue)
}

func (h *Handler) CreateVenue(c *gin.Context) {
	var req CreateVenueRequest
	if !bindJSON(c, &req) {
		return
	}
	bookings, err := buildBookings(req.BookedTimeSlots)
	if err != nil {
		respondError(c, err)
		return
	}

	venue := &models.Venue{
		Faculty:         req.Faculty,
		Department:      req.Department,
		Building:        req.Building,
		HallName:        req.HallName,
		Type:            req.Type,
		Capacity:        req.Capacity,
		BookedTimeSlots: bookings,
	}
	if err := h.Venues.Create(c.Request.Context(), venue); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, venue)
}

func (h *Handler) UpdateVenue(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateVenueRequest
	if !bindJSON(c, &req) {
		return
	}

	venue, err := h.Venues.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	assign(&venue.Faculty, req.Faculty)
	assign(&venue.Department, req.Department)
	assign(&venue.Building, req.Building)
	assign(&venue.HallName, req.HallName)
	assign(&venue.Type, req.Type)
	assign(&venue.Capacity, req.Capacity)
	if req.BookedTimeSlots != nil {
		if venue.BookedTimeSlots, err = buildBookings(req.BookedTimeSlots); err != nil {
			respondError(c, err)
			return
		}
	}

	if err := h.Venues.Save(c.Request.Context(), venue); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, venue)
}

func (h *Handler) DeleteVenue(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Venues.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Venue deleted successfully")
}

// AddBooking reserves the venue for a date and time range.
func (h *Handler) AddBooking(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req BookingRequest
	if !bindJSON(c, &req) {
		return
	}

	venue, err := h.Venues.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	booking := models.BookedSlot{ID: primitive.NewObjectID(), Date: req.Date, StartTime: req.StartTime, EndTime: req.EndTime}
	if err := schedule.CheckBooking(venue.BookedTimeSlots, booking); err != nil {
		respondError(c, err)
		return
	}
	venue.BookedTimeSlots = append(venue.BookedTimeSlots, booking)

	if err := h.Venues.Save(c.Request.Context(), venue); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, venue)
}

func (h *Handler) RemoveBooking(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	bookingID, ok := parseID(c, "bookingId")
	if !ok {
		return
	}

	venue, err := h.Venues.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	_, idx, found := lo.FindIndexOf(venue.BookedTimeSlots, func(b models.BookedSlot) bool { return b.ID == bookingID })
	if !found {
		respondError(c, apperrors.NotFound("booking not found"))
		return
	}
	venue.BookedTimeSlots = slices.Delete(venue.BookedTimeSlots, idx, idx+1)

	if err := h.Venues.Save(c.Request.Context(), venue); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, venue)
}

// buildBookings assigns ids and checks the list for overlaps, one booking at
// a time against those accepted before it.
func buildBookings(reqs []BookingRequest) ([]models.BookedSlot, error) {
	out := make([]models.BookedSlot, 0, len(reqs))
	for _, r := range reqs {
		b := models.BookedSlot{ID: primitive.NewObjectID(), Date: r.Date, StartTime: r.StartTime, EndTime: r.EndTime}
		if err := schedule.CheckBooking(out, b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// assign copies *src into dst when the field was present in the request.
func assign[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
