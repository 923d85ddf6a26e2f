package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/pkg/cache"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

type feeRepository interface {
	List(ctx context.Context, filter dto.FeeFilter) (models.Page[models.Fee], error)
	FindByID(ctx context.Context, id string) (*models.Fee, error)
	Payments(ctx context.Context, id string) ([]models.Payment, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Fee, error)
	Summary(ctx context.Context, filter dto.FeeFilter) (*models.FeeSummary, error)
	Create(ctx context.Context, req dto.CreateFeeRequest) (*models.Fee, error)
	Update(ctx context.Context, id string, req dto.UpdateFeeRequest) (*models.Fee, error)
	Delete(ctx context.Context, id string) error
	Pay(ctx context.Context, id string, req dto.PaymentRequest) (*models.PaymentResult, error)
}

// FeeService manages fees and their payments.
type FeeService struct {
	repo      feeRepository
	ops       *Operations
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFeeService constructs a FeeService.
func NewFeeService(repo feeRepository, ops *Operations, validate *validator.Validate, logger *zap.Logger) *FeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &FeeService{repo: repo, ops: ops, validator: validate, logger: logger}
}

func (s *FeeService) listQuery() Query[dto.FeeFilter, models.Page[models.Fee]] {
	return Query[dto.FeeFilter, models.Page[models.Fee]]{Name: "fees.list", Fetch: s.repo.List}
}

// List returns a page of fees.
func (s *FeeService) List(ctx context.Context, filter dto.FeeFilter) (models.Page[models.Fee], error) {
	return Run(ctx, s.ops, s.listQuery(), filter)
}

// WatchList lists fees and reports every later refetch, such as the one a
// fee creation triggers.
func (s *FeeService) WatchList(ctx context.Context, filter dto.FeeFilter, fn func(models.Page[models.Fee], error)) (cache.Subscription, models.Page[models.Fee], error) {
	return Watch(ctx, s.ops, s.listQuery(), filter, fn)
}

// Get returns one fee.
func (s *FeeService) Get(ctx context.Context, id string) (*models.Fee, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fee id is required")
	}
	return Run(ctx, s.ops, Query[string, *models.Fee]{Name: "fees.get", Fetch: s.repo.FindByID, Record: identity}, id)
}

// Payments lists the payments recorded against a fee.
func (s *FeeService) Payments(ctx context.Context, id string) ([]models.Payment, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fee id is required")
	}
	return Run(ctx, s.ops, Query[string, []models.Payment]{Name: "fees.payments", Fetch: s.repo.Payments, Record: identity}, id)
}

// ByStudent lists the fees raised against a student.
func (s *FeeService) ByStudent(ctx context.Context, studentID string) ([]models.Fee, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	return Run(ctx, s.ops, Query[string, []models.Fee]{Name: "fees.byStudent", Fetch: s.repo.ListByStudent}, studentID)
}

// Summary aggregates the fees matching filter.
func (s *FeeService) Summary(ctx context.Context, filter dto.FeeFilter) (*models.FeeSummary, error) {
	return Run(ctx, s.ops, Query[dto.FeeFilter, *models.FeeSummary]{Name: "fees.summary", Fetch: s.repo.Summary}, filter)
}

// Create raises a fee.
func (s *FeeService) Create(ctx context.Context, req dto.CreateFeeRequest) (*models.Fee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid fee payload")
	}
	fee, err := Exec(ctx, s.ops, Mutation[dto.CreateFeeRequest, *models.Fee]{Name: "fees.create", Exec: s.repo.Create, Record: feeID[dto.CreateFeeRequest]}, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("fee created", zap.String("fee_id", fee.ID), zap.String("student_id", req.StudentID), zap.Float64("amount", req.Amount))
	return fee, nil
}

// Update changes a fee.
func (s *FeeService) Update(ctx context.Context, id string, req dto.UpdateFeeRequest) (*models.Fee, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fee id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid fee payload")
	}
	return Exec(ctx, s.ops, Mutation[Update[dto.UpdateFeeRequest], *models.Fee]{
		Name: "fees.update",
		Exec: func(ctx context.Context, u Update[dto.UpdateFeeRequest]) (*models.Fee, error) {
			return s.repo.Update(ctx, u.ID, u.Body)
		},
		Record: updateID[dto.UpdateFeeRequest, *models.Fee],
	}, Update[dto.UpdateFeeRequest]{ID: id, Body: req})
}

// Delete removes a fee.
func (s *FeeService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return appErrors.Clone(appErrors.ErrValidation, "fee id is required")
	}
	_, err := Exec(ctx, s.ops, Mutation[string, struct{}]{Name: "fees.delete", Exec: deleteWith(s.repo.Delete), Record: idOf[struct{}]}, id)
	return err
}

// Pay records a payment against a fee.
func (s *FeeService) Pay(ctx context.Context, id string, req dto.PaymentRequest) (*models.PaymentResult, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fee id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid payment payload")
	}
	res, err := Exec(ctx, s.ops, Mutation[Update[dto.PaymentRequest], *models.PaymentResult]{
		Name: "fees.pay",
		Exec: func(ctx context.Context, u Update[dto.PaymentRequest]) (*models.PaymentResult, error) {
			return s.repo.Pay(ctx, u.ID, u.Body)
		},
		Record: updateID[dto.PaymentRequest, *models.PaymentResult],
	}, Update[dto.PaymentRequest]{ID: id, Body: req})
	if err != nil {
		return nil, err
	}
	s.logger.Info("payment recorded", zap.String("fee_id", id), zap.Float64("amount", req.Amount), zap.Float64("progress", res.Fee.Progress()))
	return res, nil
}

func feeID[P any](_ P, f *models.Fee) string {
	if f == nil {
		return ""
	}
	return f.ID
}

func deleteWith(fn func(context.Context, string) error) func(context.Context, string) (struct{}, error) {
	return func(ctx context.Context, id string) (struct{}, error) {
		return struct{}{}, fn(ctx, id)
	}
}
