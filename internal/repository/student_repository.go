package repository

import (
	"context"
	"net/http"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/pkg/transport"
)

const (
	studentsBase  = "/api/students"
	studentsRoute = studentsBase + "/:id"
)

// StudentRepository calls the student profile endpoints.
type StudentRepository struct {
	client *transport.Client
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(client *transport.Client) *StudentRepository {
	return &StudentRepository{client: client}
}

// Shape reports how student responses are wrapped.
func (r *StudentRepository) Shape() transport.Shape { return transport.Enveloped }

// List returns students matching filter.
func (r *StudentRepository) List(ctx context.Context, filter dto.StudentFilter) (models.Page[models.Student], error) {
	return transport.Fetch[models.Page[models.Student]](ctx, r.client, r.Shape(), get(studentsBase, "", filter.Values()))
}

// FindByID returns one student.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	return transport.Fetch[*models.Student](ctx, r.client, r.Shape(), get(resourcePath(studentsBase, id), studentsRoute, nil))
}

// ListByParent returns the children linked to a parent account.
func (r *StudentRepository) ListByParent(ctx context.Context, parentID string) ([]models.Student, error) {
	return transport.Fetch[[]models.Student](ctx, r.client, r.Shape(), get(resourcePath(studentsBase+"/parent", parentID), studentsBase+"/parent/:parentId", nil))
}

// Create adds a student account and profile.
func (r *StudentRepository) Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error) {
	return transport.Fetch[*models.Student](ctx, r.client, r.Shape(), withBody(http.MethodPost, studentsBase, "", req))
}

// Update changes a student profile.
func (r *StudentRepository) Update(ctx context.Context, id string, req dto.UpdateStudentRequest) (*models.Student, error) {
	return transport.Fetch[*models.Student](ctx, r.client, r.Shape(), withBody(http.MethodPut, resourcePath(studentsBase, id), studentsRoute, req))
}
