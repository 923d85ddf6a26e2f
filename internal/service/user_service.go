package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/pkg/cache"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter dto.UserFilter) (models.Page[models.User], error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Stats(ctx context.Context) (*models.UserStats, error)
	Create(ctx context.Context, req dto.CreateUserRequest) (*models.User, error)
	Update(ctx context.Context, id string, req dto.UpdateUserRequest) (*models.User, error)
	Activate(ctx context.Context, id string) (*models.User, error)
	Deactivate(ctx context.Context, id string) (*models.User, error)
	Import(ctx context.Context, sheet dto.Attachment) (*models.ImportResult, error)
}

// UserService manages accounts of every role.
type UserService struct {
	repo      userRepository
	ops       *Operations
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(repo userRepository, ops *Operations, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, ops: ops, validator: validate, logger: logger}
}

func (s *UserService) listQuery() Query[dto.UserFilter, models.Page[models.User]] {
	return Query[dto.UserFilter, models.Page[models.User]]{Name: "users.list", Fetch: s.repo.List}
}

// List returns a page of users.
func (s *UserService) List(ctx context.Context, filter dto.UserFilter) (models.Page[models.User], error) {
	filter.Search = strings.TrimSpace(filter.Search)
	return Run(ctx, s.ops, s.listQuery(), filter)
}

// WatchList lists users and reports every later refetch of the same page.
func (s *UserService) WatchList(ctx context.Context, filter dto.UserFilter, fn func(models.Page[models.User], error)) (cache.Subscription, models.Page[models.User], error) {
	filter.Search = strings.TrimSpace(filter.Search)
	return Watch(ctx, s.ops, s.listQuery(), filter, fn)
}

// Get returns a single user.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}
	return Run(ctx, s.ops, Query[string, *models.User]{Name: "users.get", Fetch: s.repo.FindByID, Record: identity}, id)
}

// Stats returns per-role account counts.
func (s *UserService) Stats(ctx context.Context) (*models.UserStats, error) {
	return Run(ctx, s.ops, Query[struct{}, *models.UserStats]{
		Name:  "users.stats",
		Fetch: func(ctx context.Context, _ struct{}) (*models.UserStats, error) { return s.repo.Stats(ctx) },
	}, struct{}{})
}

// Create registers an account.
func (s *UserService) Create(ctx context.Context, req dto.CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid user payload")
	}
	return Exec(ctx, s.ops, Mutation[dto.CreateUserRequest, *models.User]{
		Name:   "users.create",
		Exec:   s.repo.Create,
		Record: func(_ dto.CreateUserRequest, u *models.User) string { return userID(u) },
	}, req)
}

// Update changes account details.
func (s *UserService) Update(ctx context.Context, id string, req dto.UpdateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid user payload")
	}
	return Exec(ctx, s.ops, Mutation[Update[dto.UpdateUserRequest], *models.User]{
		Name: "users.update",
		Exec: func(ctx context.Context, u Update[dto.UpdateUserRequest]) (*models.User, error) {
			return s.repo.Update(ctx, u.ID, u.Body)
		},
		Record: updateID[dto.UpdateUserRequest, *models.User],
	}, Update[dto.UpdateUserRequest]{ID: id, Body: req})
}

// Activate enables an account.
func (s *UserService) Activate(ctx context.Context, id string) (*models.User, error) {
	return s.toggle(ctx, "users.activate", s.repo.Activate, id)
}

// Deactivate disables an account.
func (s *UserService) Deactivate(ctx context.Context, id string) (*models.User, error) {
	return s.toggle(ctx, "users.deactivate", s.repo.Deactivate, id)
}

func (s *UserService) toggle(ctx context.Context, op string, fn func(context.Context, string) (*models.User, error), id string) (*models.User, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}
	user, err := Exec(ctx, s.ops, Mutation[string, *models.User]{Name: op, Exec: fn, Record: idOf[*models.User]}, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user status changed", zap.String("op", op), zap.String("user_id", id))
	return user, nil
}

// Import bulk-creates accounts from a spreadsheet.
func (s *UserService) Import(ctx context.Context, sheet dto.Attachment) (*models.ImportResult, error) {
	if sheet.Content == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "import file is required")
	}
	res, err := Exec(ctx, s.ops, Mutation[dto.Attachment, *models.ImportResult]{Name: "users.import", Exec: s.repo.Import}, sheet)
	if err != nil {
		return nil, err
	}
	s.logger.Info("users imported", zap.Int("created", res.Created), zap.Int("skipped", res.Skipped))
	return res, nil
}

func identity(id string) string { return id }

func idOf[R any](id string, _ R) string { return id }

func updateID[T any, R any](u Update[T], _ R) string { return u.ID }
