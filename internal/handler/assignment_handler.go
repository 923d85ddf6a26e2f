package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/pkg/response"
)

type assignmentService interface {
	List(ctx context.Context, filter dto.AssignmentFilter) ([]models.Assignment, error)
	Get(ctx context.Context, id string) (*models.Assignment, error)
	Submissions(ctx context.Context, id string) ([]models.Submission, error)
	StudentSubmissions(ctx context.Context, studentID string) ([]models.Submission, error)
	Create(ctx context.Context, req dto.AssignmentRequest) (*models.Assignment, error)
	Update(ctx context.Context, id string, req dto.AssignmentRequest) (*models.Assignment, error)
	Delete(ctx context.Context, id string) error
	Submit(ctx context.Context, id string, req dto.SubmissionRequest) (*models.Submission, error)
	Grade(ctx context.Context, submissionID string, req dto.GradeRequest) (*models.Submission, error)
}

// AssignmentHandler exposes assignments and their submissions.
type AssignmentHandler struct {
	assignments assignmentService
}

// NewAssignmentHandler constructs AssignmentHandler.
func NewAssignmentHandler(assignments assignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// List godoc
// @Summary List assignments
// @Tags Assignments
// @Produce json
// @Param classId query string false "Class"
// @Param subjectId query string false "Subject"
// @Param teacherId query string false "Teacher"
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	filter := dto.AssignmentFilter{ClassID: c.Query("classId"), SubjectID: c.Query("subjectId"), TeacherID: c.Query("teacherId")}
	items, err := h.assignments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil, meta(c))
}

// Get godoc
// @Summary Get assignment
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	item, err := h.assignments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Submissions godoc
// @Summary Submissions for an assignment
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/submissions [get]
func (h *AssignmentHandler) Submissions(c *gin.Context) {
	items, err := h.assignments.Submissions(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// MySubmissions godoc
// @Summary Submissions of the signed-in student
// @Tags Assignments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /assignments/submissions/mine [get]
func (h *AssignmentHandler) MySubmissions(c *gin.Context) {
	studentID := ""
	if user := currentUser(c); user != nil {
		studentID = user.ID
	}
	items, err := h.assignments.StudentSubmissions(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Create assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body dto.AssignmentRequest true "Assignment"
// @Success 201 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req dto.AssignmentRequest
	if !bindJSON(c, &req, "invalid assignment payload") {
		return
	}
	item, err := h.assignments.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Replace assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body dto.AssignmentRequest true "Assignment"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [put]
func (h *AssignmentHandler) Update(c *gin.Context) {
	var req dto.AssignmentRequest
	if !bindJSON(c, &req, "invalid assignment payload") {
		return
	}
	item, err := h.assignments.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete assignment
// @Tags Assignments
// @Param id path string true "Assignment ID"
// @Success 204 {object} response.Envelope
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	if err := h.assignments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Submit godoc
// @Summary Submit work
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body dto.SubmissionRequest true "Submission"
// @Success 201 {object} response.Envelope
// @Router /assignments/{id}/submit [post]
func (h *AssignmentHandler) Submit(c *gin.Context) {
	var req dto.SubmissionRequest
	if !bindJSON(c, &req, "invalid submission payload") {
		return
	}
	sub, err := h.assignments.Submit(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sub)
}

// Grade godoc
// @Summary Grade submission
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param payload body dto.GradeRequest true "Grade"
// @Success 200 {object} response.Envelope
// @Router /assignments/submissions/{id}/grade [post]
func (h *AssignmentHandler) Grade(c *gin.Context) {
	var req dto.GradeRequest
	if !bindJSON(c, &req, "invalid grade payload") {
		return
	}
	sub, err := h.assignments.Grade(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}
