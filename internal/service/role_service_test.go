package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

type mockRoleRepo struct {
	roles   map[string]models.Role
	updates []dto.RoleRequest
	deleted []string
}

func (m *mockRoleRepo) List(context.Context) ([]models.Role, error) {
	out := make([]models.Role, 0, len(m.roles))
	for _, r := range m.roles {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRoleRepo) FindByID(_ context.Context, id string) (*models.Role, error) {
	r, ok := m.roles[id]
	if !ok {
		return nil, appErrors.FromStatus(http.StatusNotFound, "Role not found")
	}
	return &r, nil
}

func (m *mockRoleRepo) Permissions(context.Context) ([]models.PermissionGroup, error) {
	return []models.PermissionGroup{
		{Module: "users", Permissions: []models.Permission{{Key: "users.read"}, {Key: "users.write"}}},
		{Module: "fees", Permissions: []models.Permission{{Key: "fees.read"}}},
	}, nil
}

func (m *mockRoleRepo) Create(_ context.Context, req dto.RoleRequest) (*models.Role, error) {
	return &models.Role{ID: "new", Name: req.Name, Permissions: req.Permissions}, nil
}

func (m *mockRoleRepo) Update(_ context.Context, id string, req dto.RoleRequest) (*models.Role, error) {
	m.updates = append(m.updates, req)
	r := m.roles[id]
	r.Name, r.Description, r.Permissions = req.Name, req.Description, req.Permissions
	m.roles[id] = r
	return &r, nil
}

func (m *mockRoleRepo) Delete(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.roles, id)
	return nil
}

func newRoleFixture() (*RoleService, *mockRoleRepo) {
	repo := &mockRoleRepo{roles: map[string]models.Role{
		"r1":    {ID: "r1", Name: "Bursar", Description: "Fees office", Permissions: []string{"fees.read"}},
		"admin": {ID: "admin", Name: "Admin", IsSystem: true},
	}}
	return NewRoleService(repo, newTestOps(), nil, nil), repo
}

func TestReplacePermissionsDedupsAndSorts(t *testing.T) {
	svc, repo := newRoleFixture()

	role, err := svc.ReplacePermissions(context.Background(), "r1", []string{"users.write", "fees.read", "users.write"})
	require.NoError(t, err)
	assert.Equal(t, []string{"fees.read", "users.write"}, role.Permissions)
	require.Len(t, repo.updates, 1)
	assert.Equal(t, "Bursar", repo.updates[0].Name)
	assert.Equal(t, "Fees office", repo.updates[0].Description)

	refreshed, err := svc.Get(context.Background(), "r1")
	require.NoError(t, err)
	assert.True(t, refreshed.Grants("users.write"))
}

func TestReplacePermissionsRejectsUnknownKey(t *testing.T) {
	svc, repo := newRoleFixture()

	_, err := svc.ReplacePermissions(context.Background(), "r1", []string{"fees.read", "rockets.launch"})
	require.Error(t, err)
	assert.True(t, appErrors.HasStatus(err, http.StatusBadRequest))
	assert.Contains(t, appErrors.Message(err), "rockets.launch")
	assert.Empty(t, repo.updates)
}

func TestDeleteRefusesSystemRoles(t *testing.T) {
	svc, repo := newRoleFixture()

	err := svc.Delete(context.Background(), "admin")
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
	assert.Empty(t, repo.deleted)

	require.NoError(t, svc.Delete(context.Background(), "r1"))
	assert.Equal(t, []string{"r1"}, repo.deleted)

	_, err = svc.Get(context.Background(), "r1")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestRoleRequestValidation(t *testing.T) {
	svc, _ := newRoleFixture()
	_, err := svc.Create(context.Background(), dto.RoleRequest{})
	assert.True(t, appErrors.HasStatus(err, http.StatusBadRequest))

	_, err = svc.Get(context.Background(), "")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
