package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/pkg/cache"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

type noticeRepository interface {
	List(ctx context.Context, filter dto.NoticeFilter) (models.Page[models.Notice], error)
	FindByID(ctx context.Context, id string) (*models.Notice, error)
	Create(ctx context.Context, req dto.NoticeRequest) (*models.Notice, error)
	Update(ctx context.Context, id string, req dto.NoticeRequest) (*models.Notice, error)
	Delete(ctx context.Context, id string) error
}

// NoticeService manages broadcast notices.
type NoticeService struct {
	repo      noticeRepository
	ops       *Operations
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewNoticeService constructs a NoticeService.
func NewNoticeService(repo noticeRepository, ops *Operations, validate *validator.Validate, logger *zap.Logger) *NoticeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &NoticeService{repo: repo, ops: ops, validator: validate, logger: logger, now: time.Now}
}

func (s *NoticeService) listQuery() Query[dto.NoticeFilter, models.Page[models.Notice]] {
	return Query[dto.NoticeFilter, models.Page[models.Notice]]{Name: "notices.list", Fetch: s.repo.List}
}

// List returns a page of notices.
func (s *NoticeService) List(ctx context.Context, filter dto.NoticeFilter) (models.Page[models.Notice], error) {
	return Run(ctx, s.ops, s.listQuery(), filter)
}

// WatchList lists notices and reports every later refetch.
func (s *NoticeService) WatchList(ctx context.Context, filter dto.NoticeFilter, fn func(models.Page[models.Notice], error)) (cache.Subscription, models.Page[models.Notice], error) {
	return Watch(ctx, s.ops, s.listQuery(), filter, fn)
}

// VisibleTo returns the active notices addressed to role.
func (s *NoticeService) VisibleTo(ctx context.Context, role models.UserRole, pageSize int) ([]models.Notice, error) {
	active := true
	page, err := s.List(ctx, dto.NoticeFilter{Active: &active, PageQuery: dto.PageQuery{Limit: pageSize}})
	if err != nil {
		return nil, err
	}
	now := s.now()
	visible := make([]models.Notice, 0, len(page.Items))
	for _, n := range page.Items {
		if n.Visible(now) && (role == models.RoleAdmin || n.Addresses(role)) {
			visible = append(visible, n)
		}
	}
	return visible, nil
}

// Get returns one notice.
func (s *NoticeService) Get(ctx context.Context, id string) (*models.Notice, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "notice id is required")
	}
	return Run(ctx, s.ops, Query[string, *models.Notice]{Name: "notices.get", Fetch: s.repo.FindByID, Record: identity}, id)
}

// Create publishes a notice.
func (s *NoticeService) Create(ctx context.Context, req dto.NoticeRequest) (*models.Notice, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid notice payload")
	}
	return Exec(ctx, s.ops, Mutation[dto.NoticeRequest, *models.Notice]{
		Name: "notices.create",
		Exec: s.repo.Create,
		Record: func(_ dto.NoticeRequest, n *models.Notice) string {
			if n == nil {
				return ""
			}
			return n.ID
		},
	}, req)
}

// Update replaces a notice.
func (s *NoticeService) Update(ctx context.Context, id string, req dto.NoticeRequest) (*models.Notice, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "notice id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid notice payload")
	}
	return Exec(ctx, s.ops, Mutation[Update[dto.NoticeRequest], *models.Notice]{
		Name: "notices.update",
		Exec: func(ctx context.Context, u Update[dto.NoticeRequest]) (*models.Notice, error) {
			return s.repo.Update(ctx, u.ID, u.Body)
		},
		Record: updateID[dto.NoticeRequest, *models.Notice],
	}, Update[dto.NoticeRequest]{ID: id, Body: req})
}

// Delete removes a notice.
func (s *NoticeService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return appErrors.Clone(appErrors.ErrValidation, "notice id is required")
	}
	_, err := Exec(ctx, s.ops, Mutation[string, struct{}]{Name: "notices.delete", Exec: deleteWith(s.repo.Delete), Record: idOf[struct{}]}, id)
	return err
}
