package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/internal/service"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
	"github.com/noah-isme/sma-adp-console/pkg/response"
)

type userService interface {
	List(ctx context.Context, filter dto.UserFilter) (models.Page[models.User], error)
	Get(ctx context.Context, id string) (*models.User, error)
	Stats(ctx context.Context) (*models.UserStats, error)
	Update(ctx context.Context, id string, req dto.UpdateUserRequest) (*models.User, error)
	Activate(ctx context.Context, id string) (*models.User, error)
	Deactivate(ctx context.Context, id string) (*models.User, error)
	Import(ctx context.Context, sheet dto.Attachment) (*models.ImportResult, error)
}

type userFormSubmitter interface {
	Submit(ctx context.Context, state *service.FormState, notifier service.Notifier) (*service.CreatedAccount, error)
}

type userSearcher interface {
	Search(ctx context.Context, term string) (models.Page[models.User], error)
	Type(ctx context.Context, term string)
	Latest() (service.SearchResult, bool)
}

// UserHandler handles the users module, including the create-user form flow.
type UserHandler struct {
	service userService
	forms   userFormSubmitter
	search  userSearcher
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc userService, forms userFormSubmitter, search userSearcher) *UserHandler {
	return &UserHandler{service: svc, forms: forms, search: search}
}

// List godoc
// @Summary List users
// @Description List users with pagination and filtering
// @Tags Users
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param role query string false "Role filter"
// @Param isActive query bool false "Active filter"
// @Param search query string false "Search term"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	filter := dto.UserFilter{
		Role:      models.UserRole(c.Query("role")),
		Search:    c.Query("search"),
		IsActive:  boolQuery(c, "isActive"),
		PageQuery: pageQuery(c),
	}

	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	paged(c, page)
}

// Search godoc
// @Summary Search users
// @Description Immediate users search on a trimmed term
// @Tags Users
// @Produce json
// @Param q query string true "Search term"
// @Success 200 {object} response.Envelope
// @Router /users/search [get]
func (h *UserHandler) Search(c *gin.Context) {
	page, err := h.search.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	paged(c, page)
}

// Keystroke godoc
// @Summary Type into the users search
// @Description Restart the debounced search with the current term; read the settled result from /users/search/latest
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body dto.SearchKeystroke true "Current term"
// @Success 202 {object} response.Envelope
// @Router /users/search/keystroke [post]
func (h *UserHandler) Keystroke(c *gin.Context) {
	var req dto.SearchKeystroke
	if !bindJSON(c, &req, "invalid keystroke payload") {
		return
	}
	h.search.Type(c.Request.Context(), req.Term)
	response.JSON(c, http.StatusAccepted, req, nil)
}

// Latest godoc
// @Summary Settled users search
// @Description Result of the last debounced search that settled
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/search/latest [get]
func (h *UserHandler) Latest(c *gin.Context) {
	res, ok := h.search.Latest()
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "no search has settled"))
		return
	}
	if res.Error != nil {
		response.Error(c, res.Error, map[string]interface{}{"term": res.Term})
		return
	}
	pagination := res.Page.Pagination
	response.JSON(c, http.StatusOK, res.Page.Items, &pagination, map[string]interface{}{"term": res.Term})
}

// Stats godoc
// @Summary User statistics
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /users/stats [get]
func (h *UserHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Get godoc
// @Summary Get user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Create godoc
// @Summary Create user
// @Description Submit the create-user form. The role field selects the form variant.
// @Description On failure the form is returned unchanged alongside the error toast.
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body dto.StudentForm true "Form payload with role"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable payload"))
		return
	}
	form, err := dto.DecodeUserForm(raw)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid user form"))
		return
	}

	state := service.NewFormState(form)
	toasts := &service.ToastRecorder{}
	account, err := h.forms.Submit(c.Request.Context(), state, toasts)
	if err != nil {
		response.Error(c, err, map[string]interface{}{"toasts": toasts.Toasts(), "form": state.Current()})
		return
	}
	response.JSON(c, http.StatusCreated, account, nil, map[string]interface{}{"toasts": toasts.Toasts(), "form": state.Current()})
}

// Update godoc
// @Summary Update user
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param payload body dto.UpdateUserRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UpdateUserRequest
	if !bindJSON(c, &req, "invalid payload") {
		return
	}
	user, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Activate godoc
// @Summary Activate user
// @Tags Users
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /users/{id}/activate [post]
func (h *UserHandler) Activate(c *gin.Context) {
	user, err := h.service.Activate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Deactivate godoc
// @Summary Deactivate user
// @Tags Users
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /users/{id}/deactivate [post]
func (h *UserHandler) Deactivate(c *gin.Context) {
	user, err := h.service.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Import godoc
// @Summary Bulk import users
// @Tags Users
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Spreadsheet"
// @Success 200 {object} response.Envelope
// @Router /users/import [post]
func (h *UserHandler) Import(c *gin.Context) {
	attachment, file, ok := formFile(c, "file")
	if !ok {
		return
	}
	defer file.Close() //nolint:errcheck

	res, err := h.service.Import(c.Request.Context(), attachment)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
