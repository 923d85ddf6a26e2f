package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
	"github.com/noah-isme/sma-adp-console/pkg/response"
)

type noticeService interface {
	List(ctx context.Context, filter dto.NoticeFilter) (models.Page[models.Notice], error)
	VisibleTo(ctx context.Context, role models.UserRole, pageSize int) ([]models.Notice, error)
	Get(ctx context.Context, id string) (*models.Notice, error)
	Create(ctx context.Context, req dto.NoticeRequest) (*models.Notice, error)
	Update(ctx context.Context, id string, req dto.NoticeRequest) (*models.Notice, error)
	Delete(ctx context.Context, id string) error
}

type messageService interface {
	Inbox(ctx context.Context, page dto.PageQuery) ([]models.Message, error)
	Sent(ctx context.Context, page dto.PageQuery) ([]models.Message, error)
	Get(ctx context.Context, id string) (*models.Message, error)
	UnreadCount(ctx context.Context) (int, error)
	Send(ctx context.Context, req dto.MessageRequest) (*models.Message, error)
	Reply(ctx context.Context, id string, req dto.ReplyRequest) (*models.Message, error)
	MarkRead(ctx context.Context, id string) (*models.Message, error)
	Delete(ctx context.Context, id string) error
}

// CommunicationHandler exposes notices and direct messages.
type CommunicationHandler struct {
	notices  noticeService
	messages messageService
	pageSize int
}

// NewCommunicationHandler constructs CommunicationHandler. pageSize bounds
// the notices fetched for the visible feed.
func NewCommunicationHandler(notices noticeService, messages messageService, pageSize int) *CommunicationHandler {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &CommunicationHandler{notices: notices, messages: messages, pageSize: pageSize}
}

// Notices godoc
// @Summary List notices
// @Tags Communication
// @Produce json
// @Param audience query string false "Target audience"
// @Param active query bool false "Active flag"
// @Success 200 {object} response.Envelope
// @Router /notices [get]
func (h *CommunicationHandler) Notices(c *gin.Context) {
	filter := dto.NoticeFilter{
		Audience:  models.NoticeAudience(c.Query("audience")),
		Active:    boolQuery(c, "active"),
		PageQuery: pageQuery(c),
	}
	page, err := h.notices.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	paged(c, page)
}

// VisibleNotices godoc
// @Summary Notices visible to the signed-in role now
// @Tags Communication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notices/visible [get]
func (h *CommunicationHandler) VisibleNotices(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	notices, err := h.notices.VisibleTo(c.Request.Context(), user.Role, h.pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notices, nil)
}

// Notice godoc
// @Summary Get notice
// @Tags Communication
// @Produce json
// @Param id path string true "Notice ID"
// @Success 200 {object} response.Envelope
// @Router /notices/{id} [get]
func (h *CommunicationHandler) Notice(c *gin.Context) {
	notice, err := h.notices.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notice, nil)
}

// CreateNotice godoc
// @Summary Publish notice
// @Tags Communication
// @Accept json
// @Produce json
// @Param payload body dto.NoticeRequest true "Notice"
// @Success 201 {object} response.Envelope
// @Router /notices [post]
func (h *CommunicationHandler) CreateNotice(c *gin.Context) {
	var req dto.NoticeRequest
	if !bindJSON(c, &req, "invalid notice payload") {
		return
	}
	notice, err := h.notices.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, notice)
}

// UpdateNotice godoc
// @Summary Replace notice
// @Tags Communication
// @Accept json
// @Produce json
// @Param id path string true "Notice ID"
// @Param payload body dto.NoticeRequest true "Notice"
// @Success 200 {object} response.Envelope
// @Router /notices/{id} [put]
func (h *CommunicationHandler) UpdateNotice(c *gin.Context) {
	var req dto.NoticeRequest
	if !bindJSON(c, &req, "invalid notice payload") {
		return
	}
	notice, err := h.notices.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notice, nil)
}

// DeleteNotice godoc
// @Summary Delete notice
// @Tags Communication
// @Param id path string true "Notice ID"
// @Success 204 {object} response.Envelope
// @Router /notices/{id} [delete]
func (h *CommunicationHandler) DeleteNotice(c *gin.Context) {
	if err := h.notices.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Inbox godoc
// @Summary Received messages
// @Tags Communication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /messages/inbox [get]
func (h *CommunicationHandler) Inbox(c *gin.Context) {
	messages, err := h.messages.Inbox(c.Request.Context(), pageQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages, nil)
}

// Sent godoc
// @Summary Sent messages
// @Tags Communication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /messages/sent [get]
func (h *CommunicationHandler) Sent(c *gin.Context) {
	messages, err := h.messages.Sent(c.Request.Context(), pageQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages, nil)
}

// Unread godoc
// @Summary Unread message count
// @Tags Communication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /messages/unread-count [get]
func (h *CommunicationHandler) Unread(c *gin.Context) {
	count, err := h.messages.UnreadCount(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"count": count}, nil)
}

// Message godoc
// @Summary Get message
// @Tags Communication
// @Produce json
// @Param id path string true "Message ID"
// @Success 200 {object} response.Envelope
// @Router /messages/{id} [get]
func (h *CommunicationHandler) Message(c *gin.Context) {
	message, err := h.messages.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, message, nil)
}

// Send godoc
// @Summary Send message
// @Tags Communication
// @Accept json
// @Produce json
// @Param payload body dto.MessageRequest true "Message"
// @Success 201 {object} response.Envelope
// @Router /messages [post]
func (h *CommunicationHandler) Send(c *gin.Context) {
	var req dto.MessageRequest
	if !bindJSON(c, &req, "invalid message payload") {
		return
	}
	message, err := h.messages.Send(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, message)
}

// Reply godoc
// @Summary Reply to message
// @Tags Communication
// @Accept json
// @Produce json
// @Param id path string true "Message ID"
// @Param payload body dto.ReplyRequest true "Reply"
// @Success 201 {object} response.Envelope
// @Router /messages/{id}/reply [post]
func (h *CommunicationHandler) Reply(c *gin.Context) {
	var req dto.ReplyRequest
	if !bindJSON(c, &req, "invalid reply payload") {
		return
	}
	message, err := h.messages.Reply(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, message)
}

// MarkRead godoc
// @Summary Mark message read
// @Tags Communication
// @Param id path string true "Message ID"
// @Success 200 {object} response.Envelope
// @Router /messages/{id}/read [post]
func (h *CommunicationHandler) MarkRead(c *gin.Context) {
	message, err := h.messages.MarkRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, message, nil)
}

// DeleteMessage godoc
// @Summary Delete message
// @Tags Communication
// @Param id path string true "Message ID"
// @Success 204 {object} response.Envelope
// @Router /messages/{id} [delete]
func (h *CommunicationHandler) DeleteMessage(c *gin.Context) {
	if err := h.messages.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
