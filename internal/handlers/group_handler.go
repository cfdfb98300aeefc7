package handlers

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/academic-scheduler/internal/apperrors"
	"github.com/harentsoaR/academic-scheduler/internal/models"
)

type CreateGroupRequest struct {
	Name       string   `json:"name" binding:"required,notblank"`
	Faculty    string   `json:"faculty" binding:"required,notblank"`
	Department string   `json:"department" binding:"required,notblank"`
	Year       int      `json:"year" binding:"required,min=1,max=6"`
	Semester   int      `json:"semester" binding:"required,min=1,max=3"`
	Type       string   `json:"type" binding:"required,notblank"`
	Students   []string `json:"students" binding:"omitempty,dive,objectid"`
}

type UpdateGroupRequest struct {
	Name       *string  `json:"name" binding:"omitnil,notblank"`
	Faculty    *string  `json:"faculty" binding:"omitnil,notblank"`
	Department *string  `json:"department" binding:"omitnil,notblank"`
	Year       *int     `json:"year" binding:"omitempty,min=1,max=6"`
	Semester   *int     `json:"semester" binding:"omitempty,min=1,max=3"`
	Type       *string  `json:"type" binding:"omitnil,notblank"`
	Students   []string `json:"students" binding:"omitempty,dive,objectid"`
}

type AddStudentRequest struct {
	StudentID string `json:"studentId" binding:"required,objectid"`
}

func (h *Handler) ListGroups(c *gin.Context) {
	year, err := queryCount(c, "year")
	if err != nil {
		respondError(c, err)
		return
	}
	semester, err := queryCount(c, "semester")
	if err != nil {
		respondError(c, err)
		return
	}

	groups, err := h.Groups.List(c.Request.Context(), models.GroupFilter{
		Faculty:    c.Query("faculty"),
		Department: c.Query("department"),
		Year:       year,
		Semester:   semester,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, groups)
}

func (h *Handler) GetGroup(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	group, err := h.Groups.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, group)
}

// CreateGroup rejects a name that is already taken with 409.
func (h *Handler) CreateGroup(c *gin.Context) {
	var req CreateGroupRequest
	if !bindJSON(c, &req) {
		return
	}
	students, err := h.checkStudents(c.Request.Context(), req.Students)
	if err != nil {
		respondError(c, err)
		return
	}

	group := &models.Group{
		Name:       strings.TrimSpace(req.Name),
		Faculty:    req.Faculty,
		Department: req.Department,
		Year:       req.Year,
		Semester:   req.Semester,
		Type:       req.Type,
		Students:   students,
	}
	if err := h.Groups.Create(c.Request.Context(), group); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, group)
}

func (h *Handler) UpdateGroup(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateGroupRequest
	if !bindJSON(c, &req) {
		return
	}

	group, err := h.Groups.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if req.Name != nil {
		group.Name = strings.TrimSpace(*req.Name)
	}
	assign(&group.Faculty, req.Faculty)
	assign(&group.Department, req.Department)
	assign(&group.Year, req.Year)
	assign(&group.Semester, req.Semester)
	assign(&group.Type, req.Type)
	if req.Students != nil {
		if group.Students, err = h.checkStudents(c.Request.Context(), req.Students); err != nil {
			respondError(c, err)
			return
		}
	}

	if err := h.Groups.Save(c.Request.Context(), group); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, group)
}

func (h *Handler) DeleteGroup(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Groups.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Group deleted successfully")
}

// AddStudent puts an existing student into the group. Adding a member twice
// leaves the group unchanged.
func (h *Handler) AddStudent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req AddStudentRequest
	if !bindJSON(c, &req) {
		return
	}
	studentID := mustObjectID(req.StudentID)

	group, err := h.Groups.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	student, err := h.Users.Get(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	if student.Role != models.RoleStudent {
		respondError(c, apperrors.Validation("only students can join a group"))
		return
	}
	if lo.Contains(group.Students, studentID) {
		respond(c, http.StatusOK, group)
		return
	}

	group.Students = append(group.Students, studentID)
	if err := h.Groups.Save(c.Request.Context(), group); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, group)
}

func (h *Handler) RemoveStudent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	studentID, ok := parseID(c, "studentId")
	if !ok {
		return
	}

	group, err := h.Groups.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	idx := slices.Index(group.Students, studentID)
	if idx < 0 {
		respondError(c, apperrors.NotFound("student is not a member of this group"))
		return
	}
	group.Students = slices.Delete(group.Students, idx, idx+1)

	if err := h.Groups.Save(c.Request.Context(), group); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, group)
}

// checkStudents dedupes the ids and requires each to be an existing student.
func (h *Handler) checkStudents(ctx context.Context, hexes []string) ([]primitive.ObjectID, error) {
	ids := objectIDs(hexes)
	if len(ids) == 0 {
		return []primitive.ObjectID{}, nil
	}
	found, err := h.Users.List(ctx, models.UserFilter{Role: models.RoleStudent, IDs: ids})
	if err != nil {
		return nil, err
	}
	if len(found) != len(ids) {
		return nil, apperrors.Validation("every member must be an existing student")
	}
	return ids, nil
}

// queryCount reads a non-negative decimal query value. Missing means 0.
func queryCount(c *gin.Context, key string) (int, error) {
	raw := strings.TrimLeft(c.Query(key), "0")
	if raw == "" {
		return 0, nil
	}
	n, err := cast.ToIntE(raw)
	if err != nil || n < 0 {
		return 0, apperrors.Validation(key + " must be a non-negative number")
	}
	return n, nil
}
