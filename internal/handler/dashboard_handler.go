package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/internal/service"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
	"github.com/noah-isme/sma-adp-console/pkg/response"
)

type dashboardService interface {
	Admin(ctx context.Context) (*service.AdminDashboard, error)
	Teacher(ctx context.Context, user *models.User) (*service.TeacherDashboard, error)
	Student(ctx context.Context, user *models.User) (*service.StudentDashboard, error)
	Parent(ctx context.Context, user *models.User) (*service.ParentDashboard, error)
}

// DashboardHandler serves the per-role dashboards.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(svc dashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Mine godoc
// @Summary Dashboard for the signed-in role
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Mine(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	switch user.Role {
	case models.RoleAdmin:
		h.Admin(c)
	case models.RoleTeacher:
		h.Teacher(c)
	case models.RoleStudent:
		h.Student(c)
	case models.RoleParent:
		h.Parent(c)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "no dashboard for role "+string(user.Role)))
	}
}

// Admin godoc
// @Summary Administrator dashboard
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/admin [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	dash, err := h.service.Admin(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dash, nil, meta(c))
}

// Teacher godoc
// @Summary Teacher dashboard
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/teacher [get]
func (h *DashboardHandler) Teacher(c *gin.Context) {
	dash, err := h.service.Teacher(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dash, nil, meta(c))
}

// Student godoc
// @Summary Student dashboard
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/student [get]
func (h *DashboardHandler) Student(c *gin.Context) {
	dash, err := h.service.Student(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dash, nil, meta(c))
}

// Parent godoc
// @Summary Parent dashboard
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/parent [get]
func (h *DashboardHandler) Parent(c *gin.Context) {
	dash, err := h.service.Parent(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dash, nil, meta(c))
}
