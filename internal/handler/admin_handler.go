package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/internal/service"
	"github.com/noah-isme/sma-adp-console/pkg/response"
)

type roleService interface {
	List(ctx context.Context) ([]models.Role, error)
	Get(ctx context.Context, id string) (*models.Role, error)
	Permissions(ctx context.Context) ([]models.PermissionGroup, error)
	Create(ctx context.Context, req dto.RoleRequest) (*models.Role, error)
	Update(ctx context.Context, id string, req dto.RoleRequest) (*models.Role, error)
	ReplacePermissions(ctx context.Context, id string, keys []string) (*models.Role, error)
	Delete(ctx context.Context, id string) error
}

type settingsService interface {
	Get(ctx context.Context) (*models.SystemSettings, error)
	Update(ctx context.Context, patch dto.SettingsPatch) (*models.SystemSettings, error)
	Backups(ctx context.Context) ([]models.Backup, error)
	CreateBackup(ctx context.Context) (*models.Backup, error)
	DownloadBackup(ctx context.Context, id string) (*service.DownloadedBackup, error)
	Restore(ctx context.Context, archive dto.Attachment) error
}

// AdminHandler exposes roles and institution settings.
type AdminHandler struct {
	roles    roleService
	settings settingsService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(roles roleService, settings settingsService) *AdminHandler {
	return &AdminHandler{roles: roles, settings: settings}
}

// Roles godoc
// @Summary List roles
// @Tags Roles
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /roles [get]
func (h *AdminHandler) Roles(c *gin.Context) {
	roles, err := h.roles.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roles, nil)
}

// Role godoc
// @Summary Get role
// @Tags Roles
// @Produce json
// @Param id path string true "Role ID"
// @Success 200 {object} response.Envelope
// @Router /roles/{id} [get]
func (h *AdminHandler) Role(c *gin.Context) {
	role, err := h.roles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, role, nil)
}

// Permissions godoc
// @Summary Permission catalog
// @Tags Roles
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /roles/permissions [get]
func (h *AdminHandler) Permissions(c *gin.Context) {
	groups, err := h.roles.Permissions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}

// CreateRole godoc
// @Summary Create role
// @Tags Roles
// @Accept json
// @Produce json
// @Param payload body dto.RoleRequest true "Role"
// @Success 201 {object} response.Envelope
// @Router /roles [post]
func (h *AdminHandler) CreateRole(c *gin.Context) {
	var req dto.RoleRequest
	if !bindJSON(c, &req, "invalid role payload") {
		return
	}
	role, err := h.roles.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, role)
}

// UpdateRole godoc
// @Summary Replace role
// @Tags Roles
// @Accept json
// @Produce json
// @Param id path string true "Role ID"
// @Param payload body dto.RoleRequest true "Role"
// @Success 200 {object} response.Envelope
// @Router /roles/{id} [put]
func (h *AdminHandler) UpdateRole(c *gin.Context) {
	var req dto.RoleRequest
	if !bindJSON(c, &req, "invalid role payload") {
		return
	}
	role, err := h.roles.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, role, nil)
}

// ReplacePermissions godoc
// @Summary Replace role permissions
// @Tags Roles
// @Accept json
// @Produce json
// @Param id path string true "Role ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /roles/{id}/permissions [put]
func (h *AdminHandler) ReplacePermissions(c *gin.Context) {
	var payload struct {
		Permissions []string `json:"permissions"`
	}
	if !bindJSON(c, &payload, "invalid permissions payload") {
		return
	}
	role, err := h.roles.ReplacePermissions(c.Request.Context(), c.Param("id"), payload.Permissions)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, role, nil)
}

// DeleteRole godoc
// @Summary Delete role
// @Tags Roles
// @Param id path string true "Role ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /roles/{id} [delete]
func (h *AdminHandler) DeleteRole(c *gin.Context) {
	if err := h.roles.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Settings godoc
// @Summary Institution settings
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings [get]
func (h *AdminHandler) Settings(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// UpdateSettings godoc
// @Summary Patch institution settings
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body dto.SettingsPatch true "Sections to replace"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /settings [patch]
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var patch dto.SettingsPatch
	if !bindJSON(c, &patch, "invalid settings payload") {
		return
	}
	settings, err := h.settings.Update(c.Request.Context(), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// Backups godoc
// @Summary List backups
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings/backups [get]
func (h *AdminHandler) Backups(c *gin.Context) {
	backups, err := h.settings.Backups(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, backups, nil)
}

// CreateBackup godoc
// @Summary Create backup
// @Tags Settings
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /settings/backups [post]
func (h *AdminHandler) CreateBackup(c *gin.Context) {
	backup, err := h.settings.CreateBackup(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, backup)
}

// DownloadBackup godoc
// @Summary Download backup to the gateway's backups directory
// @Tags Settings
// @Produce json
// @Param id path string true "Backup ID"
// @Success 200 {object} response.Envelope
// @Router /settings/backups/{id}/download [post]
func (h *AdminHandler) DownloadBackup(c *gin.Context) {
	backup, err := h.settings.DownloadBackup(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, backup, nil)
}

// Restore godoc
// @Summary Restore from archive
// @Tags Settings
// @Accept multipart/form-data
// @Param file formData file true "Backup archive"
// @Success 204 {object} response.Envelope
// @Router /settings/restore [post]
func (h *AdminHandler) Restore(c *gin.Context) {
	attachment, file, ok := formFile(c, "file")
	if !ok {
		return
	}
	defer file.Close() //nolint:errcheck

	if err := h.settings.Restore(c.Request.Context(), attachment); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
