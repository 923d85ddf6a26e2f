package service

import (
	"context"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

type roleRepository interface {
	List(ctx context.Context) ([]models.Role, error)
	FindByID(ctx context.Context, id string) (*models.Role, error)
	Permissions(ctx context.Context) ([]models.PermissionGroup, error)
	Create(ctx context.Context, req dto.RoleRequest) (*models.Role, error)
	Update(ctx context.Context, id string, req dto.RoleRequest) (*models.Role, error)
	Delete(ctx context.Context, id string) error
}

// RoleService manages roles and their permission sets.
type RoleService struct {
	repo      roleRepository
	ops       *Operations
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoleService constructs a RoleService.
func NewRoleService(repo roleRepository, ops *Operations, validate *validator.Validate, logger *zap.Logger) *RoleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RoleService{repo: repo, ops: ops, validator: validate, logger: logger}
}

// List returns every role.
func (s *RoleService) List(ctx context.Context) ([]models.Role, error) {
	return Run(ctx, s.ops, Query[struct{}, []models.Role]{
		Name:  "roles.list",
		Fetch: func(ctx context.Context, _ struct{}) ([]models.Role, error) { return s.repo.List(ctx) },
	}, struct{}{})
}

// Get returns one role.
func (s *RoleService) Get(ctx context.Context, id string) (*models.Role, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "role id is required")
	}
	return Run(ctx, s.ops, Query[string, *models.Role]{Name: "roles.get", Fetch: s.repo.FindByID, Record: identity}, id)
}

// Permissions returns the permission catalog grouped by module.
func (s *RoleService) Permissions(ctx context.Context) ([]models.PermissionGroup, error) {
	return Run(ctx, s.ops, Query[struct{}, []models.PermissionGroup]{
		Name:  "roles.permissions",
		Fetch: func(ctx context.Context, _ struct{}) ([]models.PermissionGroup, error) { return s.repo.Permissions(ctx) },
	}, struct{}{})
}

// Create adds a role.
func (s *RoleService) Create(ctx context.Context, req dto.RoleRequest) (*models.Role, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid role payload")
	}
	return Exec(ctx, s.ops, Mutation[dto.RoleRequest, *models.Role]{
		Name: "roles.create",
		Exec: s.repo.Create,
		Record: func(_ dto.RoleRequest, r *models.Role) string {
			if r == nil {
				return ""
			}
			return r.ID
		},
	}, req)
}

// Update replaces a role.
func (s *RoleService) Update(ctx context.Context, id string, req dto.RoleRequest) (*models.Role, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "role id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid role payload")
	}
	return Exec(ctx, s.ops, Mutation[Update[dto.RoleRequest], *models.Role]{
		Name: "roles.update",
		Exec: func(ctx context.Context, u Update[dto.RoleRequest]) (*models.Role, error) {
			return s.repo.Update(ctx, u.ID, u.Body)
		},
		Record: updateID[dto.RoleRequest, *models.Role],
	}, Update[dto.RoleRequest]{ID: id, Body: req})
}

// ReplacePermissions swaps a role's permission set wholesale. Keys missing
// from the catalog are rejected.
func (s *RoleService) ReplacePermissions(ctx context.Context, id string, keys []string) (*models.Role, error) {
	role, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	catalog, err := s.Permissions(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{})
	for _, group := range catalog {
		for _, p := range group.Permissions {
			known[p.Key] = struct{}{}
		}
	}
	seen := make(map[string]struct{}, len(keys))
	cleaned := make([]string, 0, len(keys))
	for _, key := range keys {
		if _, ok := known[key]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown permission "+key)
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, key)
	}
	sort.Strings(cleaned)
	return s.Update(ctx, id, dto.RoleRequest{Name: role.Name, Description: role.Description, Permissions: cleaned})
}

// Delete removes a role. System roles cannot be deleted.
func (s *RoleService) Delete(ctx context.Context, id string) error {
	role, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return appErrors.Clone(appErrors.ErrForbidden, "system roles cannot be deleted")
	}
	_, err = Exec(ctx, s.ops, Mutation[string, struct{}]{Name: "roles.delete", Exec: deleteWith(s.repo.Delete), Record: idOf[struct{}]}, id)
	return err
}
