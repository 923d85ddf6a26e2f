package repository

import (
	"context"
	"net/http"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/pkg/transport"
)

const (
	noticesBase  = "/api/notices"
	noticesRoute = noticesBase + "/:id"
)

// NoticeRepository calls the notice board endpoints.
type NoticeRepository struct {
	client *transport.Client
}

// NewNoticeRepository constructs the repository.
func NewNoticeRepository(client *transport.Client) *NoticeRepository {
	return &NoticeRepository{client: client}
}

// Shape reports how notice responses are wrapped.
func (r *NoticeRepository) Shape() transport.Shape { return transport.Enveloped }

// List returns notices matching filter.
func (r *NoticeRepository) List(ctx context.Context, filter dto.NoticeFilter) (models.Page[models.Notice], error) {
	return transport.Fetch[models.Page[models.Notice]](ctx, r.client, r.Shape(), get(noticesBase, "", filter.Values()))
}

// FindByID returns one notice.
func (r *NoticeRepository) FindByID(ctx context.Context, id string) (*models.Notice, error) {
	return transport.Fetch[*models.Notice](ctx, r.client, r.Shape(), get(resourcePath(noticesBase, id), noticesRoute, nil))
}

// Create publishes a notice.
func (r *NoticeRepository) Create(ctx context.Context, req dto.NoticeRequest) (*models.Notice, error) {
	return transport.Fetch[*models.Notice](ctx, r.client, r.Shape(), withBody(http.MethodPost, noticesBase, "", req))
}

// Update replaces a notice.
func (r *NoticeRepository) Update(ctx context.Context, id string, req dto.NoticeRequest) (*models.Notice, error) {
	return transport.Fetch[*models.Notice](ctx, r.client, r.Shape(), withBody(http.MethodPut, resourcePath(noticesBase, id), noticesRoute, req))
}

// Delete removes a notice.
func (r *NoticeRepository) Delete(ctx context.Context, id string) error {
	return send(ctx, r.client, r.Shape(), transport.Request{Method: http.MethodDelete, Path: resourcePath(noticesBase, id), Route: noticesRoute})
}
