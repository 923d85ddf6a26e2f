package repository

import (
	"context"
	"net/http"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/pkg/transport"
)

const (
	rolesBase  = "/api/roles"
	rolesRoute = rolesBase + "/:id"
)

// RoleRepository calls the role and permission catalog endpoints.
type RoleRepository struct {
	client *transport.Client
}

// NewRoleRepository constructs the repository.
func NewRoleRepository(client *transport.Client) *RoleRepository {
	return &RoleRepository{client: client}
}

// Shape reports how role responses are wrapped.
func (r *RoleRepository) Shape() transport.Shape { return transport.Enveloped }

// List returns every role.
func (r *RoleRepository) List(ctx context.Context) ([]models.Role, error) {
	return transport.Fetch[[]models.Role](ctx, r.client, r.Shape(), get(rolesBase, "", nil))
}

// FindByID returns one role.
func (r *RoleRepository) FindByID(ctx context.Context, id string) (*models.Role, error) {
	return transport.Fetch[*models.Role](ctx, r.client, r.Shape(), get(resourcePath(rolesBase, id), rolesRoute, nil))
}

// Permissions returns the permission catalog grouped by module.
func (r *RoleRepository) Permissions(ctx context.Context) ([]models.PermissionGroup, error) {
	return transport.Fetch[[]models.PermissionGroup](ctx, r.client, r.Shape(), get(rolesBase+"/permissions", "", nil))
}

// Create adds a role.
func (r *RoleRepository) Create(ctx context.Context, req dto.RoleRequest) (*models.Role, error) {
	return transport.Fetch[*models.Role](ctx, r.client, r.Shape(), withBody(http.MethodPost, rolesBase, "", req))
}

// Update replaces a role including its whole permission set.
func (r *RoleRepository) Update(ctx context.Context, id string, req dto.RoleRequest) (*models.Role, error) {
	return transport.Fetch[*models.Role](ctx, r.client, r.Shape(), withBody(http.MethodPut, resourcePath(rolesBase, id), rolesRoute, req))
}

// Delete removes a role.
func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	return send(ctx, r.client, r.Shape(), transport.Request{Method: http.MethodDelete, Path: resourcePath(rolesBase, id), Route: rolesRoute})
}
