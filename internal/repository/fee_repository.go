package repository

import (
	"context"
	"net/http"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/pkg/transport"
)

const (
	feesBase  = "/api/fees"
	feesRoute = feesBase + "/:id"
)

// FeeRepository calls the fee and payment endpoints.
type FeeRepository struct {
	client *transport.Client
}

// NewFeeRepository constructs the repository.
func NewFeeRepository(client *transport.Client) *FeeRepository {
	return &FeeRepository{client: client}
}

// Shape reports how fee responses are wrapped.
func (r *FeeRepository) Shape() transport.Shape { return transport.Enveloped }

// List returns fees matching filter.
func (r *FeeRepository) List(ctx context.Context, filter dto.FeeFilter) (models.Page[models.Fee], error) {
	return transport.Fetch[models.Page[models.Fee]](ctx, r.client, r.Shape(), get(feesBase, "", filter.Values()))
}

// FindByID returns one fee.
func (r *FeeRepository) FindByID(ctx context.Context, id string) (*models.Fee, error) {
	return transport.Fetch[*models.Fee](ctx, r.client, r.Shape(), get(resourcePath(feesBase, id), feesRoute, nil))
}

// Payments lists the payments recorded against a fee.
func (r *FeeRepository) Payments(ctx context.Context, id string) ([]models.Payment, error) {
	return transport.Fetch[[]models.Payment](ctx, r.client, r.Shape(), get(resourcePath(feesBase, id, "payments"), feesRoute+"/payments", nil))
}

// ListByStudent returns every fee raised against a student.
func (r *FeeRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Fee, error) {
	return transport.Fetch[[]models.Fee](ctx, r.client, r.Shape(), get(resourcePath(feesBase+"/student", studentID), feesBase+"/student/:studentId", nil))
}

// Summary aggregates fees, optionally narrowed by filter.
func (r *FeeRepository) Summary(ctx context.Context, filter dto.FeeFilter) (*models.FeeSummary, error) {
	return transport.Fetch[*models.FeeSummary](ctx, r.client, r.Shape(), get(feesBase+"/summary", "", filter.Values()))
}

// Create raises a fee.
func (r *FeeRepository) Create(ctx context.Context, req dto.CreateFeeRequest) (*models.Fee, error) {
	return transport.Fetch[*models.Fee](ctx, r.client, r.Shape(), withBody(http.MethodPost, feesBase, "", req))
}

// Update changes a fee.
func (r *FeeRepository) Update(ctx context.Context, id string, req dto.UpdateFeeRequest) (*models.Fee, error) {
	return transport.Fetch[*models.Fee](ctx, r.client, r.Shape(), withBody(http.MethodPut, resourcePath(feesBase, id), feesRoute, req))
}

// Delete removes a fee.
func (r *FeeRepository) Delete(ctx context.Context, id string) error {
	return send(ctx, r.client, r.Shape(), transport.Request{Method: http.MethodDelete, Path: resourcePath(feesBase, id), Route: feesRoute})
}

// Pay records a payment and returns the updated fee.
func (r *FeeRepository) Pay(ctx context.Context, id string, req dto.PaymentRequest) (*models.PaymentResult, error) {
	return transport.Fetch[*models.PaymentResult](ctx, r.client, r.Shape(), withBody(http.MethodPost, resourcePath(feesBase, id, "payments"), feesRoute+"/payments", req))
}
