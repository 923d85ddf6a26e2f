package repository

import (
	"context"
	"net/http"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/pkg/transport"
)

const (
	messagesBase  = "/api/messages"
	messagesRoute = messagesBase + "/:id"
)

// MessageRepository calls the direct messaging endpoints.
type MessageRepository struct {
	client *transport.Client
}

// NewMessageRepository constructs the repository.
func NewMessageRepository(client *transport.Client) *MessageRepository {
	return &MessageRepository{client: client}
}

// Shape reports how message responses are wrapped.
func (r *MessageRepository) Shape() transport.Shape { return transport.Enveloped }

// Inbox lists received messages.
func (r *MessageRepository) Inbox(ctx context.Context, page dto.PageQuery) ([]models.Message, error) {
	return transport.Fetch[[]models.Message](ctx, r.client, r.Shape(), get(messagesBase+"/inbox", "", page.Values()))
}

// Sent lists sent messages.
func (r *MessageRepository) Sent(ctx context.Context, page dto.PageQuery) ([]models.Message, error) {
	return transport.Fetch[[]models.Message](ctx, r.client, r.Shape(), get(messagesBase+"/sent", "", page.Values()))
}

// FindByID returns one message.
func (r *MessageRepository) FindByID(ctx context.Context, id string) (*models.Message, error) {
	return transport.Fetch[*models.Message](ctx, r.client, r.Shape(), get(resourcePath(messagesBase, id), messagesRoute, nil))
}

// UnreadCount returns the number of unread messages.
func (r *MessageRepository) UnreadCount(ctx context.Context) (int, error) {
	out, err := transport.Fetch[models.UnreadCount](ctx, r.client, r.Shape(), get(messagesBase+"/unread-count", "", nil))
	return out.Count, err
}

// Send delivers a new message.
func (r *MessageRepository) Send(ctx context.Context, req dto.MessageRequest) (*models.Message, error) {
	return transport.Fetch[*models.Message](ctx, r.client, r.Shape(), withBody(http.MethodPost, messagesBase, "", req))
}

// Reply answers a message in its thread.
func (r *MessageRepository) Reply(ctx context.Context, id string, req dto.ReplyRequest) (*models.Message, error) {
	return transport.Fetch[*models.Message](ctx, r.client, r.Shape(), withBody(http.MethodPost, resourcePath(messagesBase, id, "reply"), messagesRoute+"/reply", req))
}

// MarkRead flags a message as read.
func (r *MessageRepository) MarkRead(ctx context.Context, id string) (*models.Message, error) {
	return transport.Fetch[*models.Message](ctx, r.client, r.Shape(), transport.Request{
		Method: http.MethodPut,
		Path:   resourcePath(messagesBase, id, "read"),
		Route:  messagesRoute + "/read",
	})
}

// Delete removes a message.
func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	return send(ctx, r.client, r.Shape(), transport.Request{Method: http.MethodDelete, Path: resourcePath(messagesBase, id), Route: messagesRoute})
}
