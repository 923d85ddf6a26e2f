package repository

import (
	"context"
	"net/http"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/pkg/transport"
)

const (
	teachersBase  = "/api/teachers"
	teachersRoute = teachersBase + "/:id"
)

// TeacherRepository calls the teacher profile endpoints.
type TeacherRepository struct {
	client *transport.Client
}

// NewTeacherRepository constructs the repository.
func NewTeacherRepository(client *transport.Client) *TeacherRepository {
	return &TeacherRepository{client: client}
}

func (r *TeacherRepository) Shape() transport.Shape { return transport.Enveloped }

// List returns teachers matching filter.
func (r *TeacherRepository) List(ctx context.Context, filter dto.TeacherFilter) (models.Page[models.Teacher], error) {
	return transport.Fetch[models.Page[models.Teacher]](ctx, r.client, r.Shape(), get(teachersBase, "", filter.Values()))
}

// FindByID returns one teacher.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	return transport.Fetch[*models.Teacher](ctx, r.client, r.Shape(), get(resourcePath(teachersBase, id), teachersRoute, nil))
}

// Create adds a teacher account and profile.
func (r *TeacherRepository) Create(ctx context.Context, req dto.CreateTeacherRequest) (*models.Teacher, error) {
	return transport.Fetch[*models.Teacher](ctx, r.client, r.Shape(), withBody(http.MethodPost, teachersBase, "", req))
}

// Update changes a teacher profile.
func (r *TeacherRepository) Update(ctx context.Context, id string, req dto.UpdateTeacherRequest) (*models.Teacher, error) {
	return transport.Fetch[*models.Teacher](ctx, r.client, r.Shape(), withBody(http.MethodPut, resourcePath(teachersBase, id), teachersRoute, req))
}
