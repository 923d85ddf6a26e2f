package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context, filter dto.TeacherFilter) (models.Page[models.Teacher], error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	Create(ctx context.Context, req dto.CreateTeacherRequest) (*models.Teacher, error)
	Update(ctx context.Context, id string, req dto.UpdateTeacherRequest) (*models.Teacher, error)
}

// TeacherService manages teacher profiles.
type TeacherService struct {
	repo      teacherRepository
	ops       *Operations
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(repo teacherRepository, ops *Operations, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TeacherService{repo: repo, ops: ops, validator: validate, logger: logger}
}

// List returns a page of teachers.
func (s *TeacherService) List(ctx context.Context, filter dto.TeacherFilter) (models.Page[models.Teacher], error) {
	return Run(ctx, s.ops, Query[dto.TeacherFilter, models.Page[models.Teacher]]{Name: "teachers.list", Fetch: s.repo.List}, filter)
}

// Get returns one teacher.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacher id is required")
	}
	return Run(ctx, s.ops, Query[string, *models.Teacher]{Name: "teachers.get", Fetch: s.repo.FindByID, Record: identity}, id)
}

// Create registers a teacher account and profile.
func (s *TeacherService) Create(ctx context.Context, req dto.CreateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid teacher payload")
	}
	return Exec(ctx, s.ops, Mutation[dto.CreateTeacherRequest, *models.Teacher]{
		Name: "teachers.create",
		Exec: s.repo.Create,
		Record: func(_ dto.CreateTeacherRequest, t *models.Teacher) string {
			if t == nil {
				return ""
			}
			return t.ID
		},
	}, req)
}

// Update changes a teacher profile.
func (s *TeacherService) Update(ctx context.Context, id string, req dto.UpdateTeacherRequest) (*models.Teacher, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacher id is required")
	}
	return Exec(ctx, s.ops, Mutation[Update[dto.UpdateTeacherRequest], *models.Teacher]{
		Name: "teachers.update",
		Exec: func(ctx context.Context, u Update[dto.UpdateTeacherRequest]) (*models.Teacher, error) {
			return s.repo.Update(ctx, u.ID, u.Body)
		},
		Record: updateID[dto.UpdateTeacherRequest, *models.Teacher],
	}, Update[dto.UpdateTeacherRequest]{ID: id, Body: req})
}
