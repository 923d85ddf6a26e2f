package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

type assignmentRepository interface {
	List(ctx context.Context, filter dto.AssignmentFilter) ([]models.Assignment, error)
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	Submissions(ctx context.Context, id string) ([]models.Submission, error)
	StudentSubmissions(ctx context.Context, studentID string) ([]models.Submission, error)
	Create(ctx context.Context, req dto.AssignmentRequest) (*models.Assignment, error)
	Update(ctx context.Context, id string, req dto.AssignmentRequest) (*models.Assignment, error)
	Delete(ctx context.Context, id string) error
	Submit(ctx context.Context, id string, req dto.SubmissionRequest) (*models.Submission, error)
	Grade(ctx context.Context, submissionID string, req dto.GradeRequest) (*models.Submission, error)
}

// AssignmentService manages homework and grading.
type AssignmentService struct {
	repo      assignmentRepository
	ops       *Operations
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(repo assignmentRepository, ops *Operations, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AssignmentService{repo: repo, ops: ops, validator: validate, logger: logger}
}

// List returns assignments matching filter.
func (s *AssignmentService) List(ctx context.Context, filter dto.AssignmentFilter) ([]models.Assignment, error) {
	return Run(ctx, s.ops, Query[dto.AssignmentFilter, []models.Assignment]{Name: "assignments.list", Fetch: s.repo.List}, filter)
}

// Get returns one assignment.
func (s *AssignmentService) Get(ctx context.Context, id string) (*models.Assignment, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "assignment id is required")
	}
	return Run(ctx, s.ops, Query[string, *models.Assignment]{Name: "assignments.get", Fetch: s.repo.FindByID, Record: identity}, id)
}

// Submissions lists the submissions for an assignment.
func (s *AssignmentService) Submissions(ctx context.Context, id string) ([]models.Submission, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "assignment id is required")
	}
	return Run(ctx, s.ops, Query[string, []models.Submission]{Name: "assignments.submissions", Fetch: s.repo.Submissions, Record: identity}, id)
}

// StudentSubmissions lists one student's submissions.
func (s *AssignmentService) StudentSubmissions(ctx context.Context, studentID string) ([]models.Submission, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	return Run(ctx, s.ops, Query[string, []models.Submission]{Name: "assignments.studentSubmissions", Fetch: s.repo.StudentSubmissions}, studentID)
}

// Create sets an assignment.
func (s *AssignmentService) Create(ctx context.Context, req dto.AssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid assignment payload")
	}
	return Exec(ctx, s.ops, Mutation[dto.AssignmentRequest, *models.Assignment]{
		Name: "assignments.create",
		Exec: s.repo.Create,
		Record: func(_ dto.AssignmentRequest, a *models.Assignment) string {
			if a == nil {
				return ""
			}
			return a.ID
		},
	}, req)
}

// Update replaces an assignment.
func (s *AssignmentService) Update(ctx context.Context, id string, req dto.AssignmentRequest) (*models.Assignment, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "assignment id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid assignment payload")
	}
	return Exec(ctx, s.ops, Mutation[Update[dto.AssignmentRequest], *models.Assignment]{
		Name: "assignments.update",
		Exec: func(ctx context.Context, u Update[dto.AssignmentRequest]) (*models.Assignment, error) {
			return s.repo.Update(ctx, u.ID, u.Body)
		},
		Record: updateID[dto.AssignmentRequest, *models.Assignment],
	}, Update[dto.AssignmentRequest]{ID: id, Body: req})
}

// Delete removes an assignment.
func (s *AssignmentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return appErrors.Clone(appErrors.ErrValidation, "assignment id is required")
	}
	_, err := Exec(ctx, s.ops, Mutation[string, struct{}]{Name: "assignments.delete", Exec: deleteWith(s.repo.Delete), Record: idOf[struct{}]}, id)
	return err
}

// Submit hands in work for an assignment.
func (s *AssignmentService) Submit(ctx context.Context, id string, req dto.SubmissionRequest) (*models.Submission, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "assignment id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid submission payload")
	}
	return Exec(ctx, s.ops, Mutation[Update[dto.SubmissionRequest], *models.Submission]{
		Name: "assignments.submit",
		Exec: func(ctx context.Context, u Update[dto.SubmissionRequest]) (*models.Submission, error) {
			return s.repo.Submit(ctx, u.ID, u.Body)
		},
	}, Update[dto.SubmissionRequest]{ID: id, Body: req})
}

// Grade records a grade for a submission.
func (s *AssignmentService) Grade(ctx context.Context, submissionID string, req dto.GradeRequest) (*models.Submission, error) {
	if submissionID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "submission id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid grade payload")
	}
	sub, err := Exec(ctx, s.ops, Mutation[Update[dto.GradeRequest], *models.Submission]{
		Name: "assignments.grade",
		Exec: func(ctx context.Context, u Update[dto.GradeRequest]) (*models.Submission, error) {
			return s.repo.Grade(ctx, u.ID, u.Body)
		},
	}, Update[dto.GradeRequest]{ID: submissionID, Body: req})
	if err != nil {
		return nil, err
	}
	s.logger.Info("submission graded", zap.String("submission_id", submissionID), zap.Float64("grade", req.Grade))
	return sub, nil
}
