package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/academic-scheduler/internal/apperrors"
	"github.com/harentsoaR/academic-scheduler/internal/models"
)

type CreateSubjectRequest struct {
	Name        string `json:"name" binding:"required,notblank"`
	Code        string `json:"code" binding:"required,notblank"`
	Description string `json:"description"`
	Lecturer    string `json:"lecturer" binding:"omitempty,objectid"`
	Credits     int    `json:"credits" binding:"min=0"`
	Department  string `json:"department" binding:"required,notblank"`
	Status      string `json:"status" binding:"omitempty,oneof=active inactive"`
}

// UpdateSubjectRequest patches a subject. An empty lecturer string unassigns
// the lecturer.
type UpdateSubjectRequest struct {
	Name        *string `json:"name" binding:"omitnil,notblank"`
	Code        *string `json:"code" binding:"omitnil,notblank"`
	Description *string `json:"description"`
	Lecturer    *string `json:"lecturer"`
	Credits     *int    `json:"credits" binding:"omitempty,min=0"`
	Department  *string `json:"department" binding:"omitnil,notblank"`
	Status      *string `json:"status" binding:"omitempty,oneof=active inactive"`
}

func (h *Handler) ListSubjects(c *gin.Context) {
	filter := models.SubjectFilter{
		Department: c.Query("department"),
		Status:     c.Query("status"),
	}
	if hex := c.Query("lecturer"); hex != "" {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			respondError(c, apperrors.New(apperrors.ErrInvalidID, "invalid lecturer"))
			return
		}
		filter.Lecturer = id
	}

	subjects, err := h.Subjects.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, subjects)
}

func (h *Handler) GetSubject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	subject, err := h.Subjects.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, subject)
}

func (h *Handler) CreateSubject(c *gin.Context) {
	var req CreateSubjectRequest
	if !bindJSON(c, &req) {
		return
	}

	subject := &models.Subject{
		Name:        strings.TrimSpace(req.Name),
		Code:        strings.TrimSpace(req.Code),
		Description: req.Description,
		Credits:     req.Credits,
		Department:  req.Department,
		Status:      req.Status,
	}
	if subject.Status == "" {
		subject.Status = models.SubjectActive
	}
	if req.Lecturer != "" {
		id := mustObjectID(req.Lecturer)
		subject.Lecturer = &id
	}

	if err := h.Subjects.Create(c.Request.Context(), subject); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, subject)
}

func (h *Handler) UpdateSubject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateSubjectRequest
	if !bindJSON(c, &req) {
		return
	}

	subject, err := h.Subjects.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if req.Name != nil {
		subject.Name = strings.TrimSpace(*req.Name)
	}
	if req.Code != nil {
		subject.Code = strings.TrimSpace(*req.Code)
	}
	assign(&subject.Description, req.Description)
	assign(&subject.Credits, req.Credits)
	assign(&subject.Department, req.Department)
	assign(&subject.Status, req.Status)
	if req.Lecturer != nil {
		switch lecturer, err := primitive.ObjectIDFromHex(*req.Lecturer); {
		case *req.Lecturer == "":
			subject.Lecturer = nil
		case err != nil:
			respondError(c, apperrors.Validation("lecturer failed on objectid"))
			return
		default:
			subject.Lecturer = &lecturer
		}
	}

	if err := h.Subjects.Save(c.Request.Context(), subject); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, subject)
}

func (h *Handler) DeleteSubject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Subjects.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Subject deleted successfully")
}
