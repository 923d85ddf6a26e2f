package repository

import (
	"context"
	"net/http"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/pkg/transport"
)

const (
	usersBase  = "/api/users"
	usersRoute = usersBase + "/:id"
)

// UserRepository calls the user management endpoints. Accounts are never
// deleted; deactivation is terminal.
type UserRepository struct {
	client *transport.Client
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(client *transport.Client) *UserRepository {
	return &UserRepository{client: client}
}

// Shape reports how user responses are wrapped.
func (r *UserRepository) Shape() transport.Shape { return transport.Enveloped }

// List returns users matching filter.
func (r *UserRepository) List(ctx context.Context, filter dto.UserFilter) (models.Page[models.User], error) {
	return transport.Fetch[models.Page[models.User]](ctx, r.client, r.Shape(), get(usersBase, "", filter.Values()))
}

// FindByID returns one user.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return transport.Fetch[*models.User](ctx, r.client, r.Shape(), get(resourcePath(usersBase, id), usersRoute, nil))
}

// Stats returns account counts.
func (r *UserRepository) Stats(ctx context.Context) (*models.UserStats, error) {
	return transport.Fetch[*models.UserStats](ctx, r.client, r.Shape(), get(usersBase+"/stats", "", nil))
}

// Create adds an account.
func (r *UserRepository) Create(ctx context.Context, req dto.CreateUserRequest) (*models.User, error) {
	return transport.Fetch[*models.User](ctx, r.client, r.Shape(), withBody(http.MethodPost, usersBase, "", req))
}

// Update changes an account.
func (r *UserRepository) Update(ctx context.Context, id string, req dto.UpdateUserRequest) (*models.User, error) {
	return transport.Fetch[*models.User](ctx, r.client, r.Shape(), withBody(http.MethodPut, resourcePath(usersBase, id), usersRoute, req))
}

// Activate re-enables an account.
func (r *UserRepository) Activate(ctx context.Context, id string) (*models.User, error) {
	return transport.Fetch[*models.User](ctx, r.client, r.Shape(), transport.Request{
		Method: http.MethodPut,
		Path:   resourcePath(usersBase, id, "activate"),
		Route:  usersRoute + "/activate",
	})
}

// Deactivate disables an account.
func (r *UserRepository) Deactivate(ctx context.Context, id string) (*models.User, error) {
	return transport.Fetch[*models.User](ctx, r.client, r.Shape(), transport.Request{
		Method: http.MethodPut,
		Path:   resourcePath(usersBase, id, "deactivate"),
		Route:  usersRoute + "/deactivate",
	})
}

// Import uploads a spreadsheet of accounts.
func (r *UserRepository) Import(ctx context.Context, sheet dto.Attachment) (*models.ImportResult, error) {
	return transport.Fetch[*models.ImportResult](ctx, r.client, r.Shape(), upload(usersBase+"/import", "", "file", sheet, nil))
}
