package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

type messageRepository interface {
	Inbox(ctx context.Context, page dto.PageQuery) ([]models.Message, error)
	Sent(ctx context.Context, page dto.PageQuery) ([]models.Message, error)
	FindByID(ctx context.Context, id string) (*models.Message, error)
	UnreadCount(ctx context.Context) (int, error)
	Send(ctx context.Context, req dto.MessageRequest) (*models.Message, error)
	Reply(ctx context.Context, id string, req dto.ReplyRequest) (*models.Message, error)
	MarkRead(ctx context.Context, id string) (*models.Message, error)
	Delete(ctx context.Context, id string) error
}

// MessageService manages direct messages.
type MessageService struct {
	repo      messageRepository
	ops       *Operations
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMessageService constructs a MessageService.
func NewMessageService(repo messageRepository, ops *Operations, validate *validator.Validate, logger *zap.Logger) *MessageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &MessageService{repo: repo, ops: ops, validator: validate, logger: logger}
}

// Inbox lists received messages.
func (s *MessageService) Inbox(ctx context.Context, page dto.PageQuery) ([]models.Message, error) {
	return Run(ctx, s.ops, Query[dto.PageQuery, []models.Message]{Name: "messages.inbox", Fetch: s.repo.Inbox}, page)
}

// Sent lists sent messages.
func (s *MessageService) Sent(ctx context.Context, page dto.PageQuery) ([]models.Message, error) {
	return Run(ctx, s.ops, Query[dto.PageQuery, []models.Message]{Name: "messages.sent", Fetch: s.repo.Sent}, page)
}

// Get returns one message.
func (s *MessageService) Get(ctx context.Context, id string) (*models.Message, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "message id is required")
	}
	return Run(ctx, s.ops, Query[string, *models.Message]{Name: "messages.get", Fetch: s.repo.FindByID, Record: identity}, id)
}

// UnreadCount returns the number of unread messages.
func (s *MessageService) UnreadCount(ctx context.Context) (int, error) {
	return Run(ctx, s.ops, Query[struct{}, int]{
		Name:  "messages.unreadCount",
		Fetch: func(ctx context.Context, _ struct{}) (int, error) { return s.repo.UnreadCount(ctx) },
	}, struct{}{})
}

// Send starts a conversation.
func (s *MessageService) Send(ctx context.Context, req dto.MessageRequest) (*models.Message, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid message payload")
	}
	return Exec(ctx, s.ops, Mutation[dto.MessageRequest, *models.Message]{Name: "messages.send", Exec: s.repo.Send}, req)
}

// Reply answers a message in its thread.
func (s *MessageService) Reply(ctx context.Context, id string, req dto.ReplyRequest) (*models.Message, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "message id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid reply payload")
	}
	return Exec(ctx, s.ops, Mutation[Update[dto.ReplyRequest], *models.Message]{
		Name: "messages.reply",
		Exec: func(ctx context.Context, u Update[dto.ReplyRequest]) (*models.Message, error) {
			return s.repo.Reply(ctx, u.ID, u.Body)
		},
		Record: updateID[dto.ReplyRequest, *models.Message],
	}, Update[dto.ReplyRequest]{ID: id, Body: req})
}

// MarkRead flags a message as read.
func (s *MessageService) MarkRead(ctx context.Context, id string) (*models.Message, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "message id is required")
	}
	return Exec(ctx, s.ops, Mutation[string, *models.Message]{Name: "messages.markRead", Exec: s.repo.MarkRead, Record: idOf[*models.Message]}, id)
}

// Delete removes a message.
func (s *MessageService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return appErrors.Clone(appErrors.ErrValidation, "message id is required")
	}
	_, err := Exec(ctx, s.ops, Mutation[string, struct{}]{Name: "messages.delete", Exec: deleteWith(s.repo.Delete), Record: idOf[struct{}]}, id)
	return err
}
