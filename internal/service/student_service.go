package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter dto.StudentFilter) (models.Page[models.Student], error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ListByParent(ctx context.Context, parentID string) ([]models.Student, error)
	Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error)
	Update(ctx context.Context, id string, req dto.UpdateStudentRequest) (*models.Student, error)
}

// StudentService manages student profiles.
type StudentService struct {
	repo      studentRepository
	ops       *Operations
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, ops *Operations, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{repo: repo, ops: ops, validator: validate, logger: logger}
}

// List returns a page of students.
func (s *StudentService) List(ctx context.Context, filter dto.StudentFilter) (models.Page[models.Student], error) {
	return Run(ctx, s.ops, Query[dto.StudentFilter, models.Page[models.Student]]{Name: "students.list", Fetch: s.repo.List}, filter)
}

// Get returns one student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	return Run(ctx, s.ops, Query[string, *models.Student]{Name: "students.get", Fetch: s.repo.FindByID, Record: identity}, id)
}

// ByParent lists the children linked to a parent account.
func (s *StudentService) ByParent(ctx context.Context, parentID string) ([]models.Student, error) {
	if parentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "parent id is required")
	}
	return Run(ctx, s.ops, Query[string, []models.Student]{Name: "students.byParent", Fetch: s.repo.ListByParent}, parentID)
}

// Create registers a student account and profile.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid student payload")
	}
	return Exec(ctx, s.ops, Mutation[dto.CreateStudentRequest, *models.Student]{
		Name: "students.create",
		Exec: s.repo.Create,
		Record: func(_ dto.CreateStudentRequest, st *models.Student) string {
			if st == nil {
				return ""
			}
			return st.ID
		},
	}, req)
}

// Update changes a student profile.
func (s *StudentService) Update(ctx context.Context, id string, req dto.UpdateStudentRequest) (*models.Student, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	return Exec(ctx, s.ops, Mutation[Update[dto.UpdateStudentRequest], *models.Student]{
		Name: "students.update",
		Exec: func(ctx context.Context, u Update[dto.UpdateStudentRequest]) (*models.Student, error) {
			return s.repo.Update(ctx, u.ID, u.Body)
		},
		Record: updateID[dto.UpdateStudentRequest, *models.Student],
	}, Update[dto.UpdateStudentRequest]{ID: id, Body: req})
}
