package repository

import (
	"context"
	"net/http"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/pkg/transport"
)

const (
	assignmentsBase  = "/api/assignments"
	assignmentsRoute = assignmentsBase + "/:id"
)

// AssignmentRepository calls the assignment and submission endpoints. These
// endpoints return payloads without the success envelope.
type AssignmentRepository struct {
	client *transport.Client
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(client *transport.Client) *AssignmentRepository {
	return &AssignmentRepository{client: client}
}

// Shape reports how assignment responses are wrapped.
func (r *AssignmentRepository) Shape() transport.Shape { return transport.Bare }

// List returns assignments matching filter.
func (r *AssignmentRepository) List(ctx context.Context, filter dto.AssignmentFilter) ([]models.Assignment, error) {
	return transport.Fetch[[]models.Assignment](ctx, r.client, r.Shape(), get(assignmentsBase, "", filter.Values()))
}

// FindByID returns one assignment.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	return transport.Fetch[*models.Assignment](ctx, r.client, r.Shape(), get(resourcePath(assignmentsBase, id), assignmentsRoute, nil))
}

// Submissions lists the submissions for an assignment.
func (r *AssignmentRepository) Submissions(ctx context.Context, id string) ([]models.Submission, error) {
	return transport.Fetch[[]models.Submission](ctx, r.client, r.Shape(), get(resourcePath(assignmentsBase, id, "submissions"), assignmentsRoute+"/submissions", nil))
}

// StudentSubmissions lists everything a student submitted.
func (r *AssignmentRepository) StudentSubmissions(ctx context.Context, studentID string) ([]models.Submission, error) {
	path := resourcePath(assignmentsBase+"/student", studentID, "submissions")
	return transport.Fetch[[]models.Submission](ctx, r.client, r.Shape(), get(path, assignmentsBase+"/student/:studentId/submissions", nil))
}

// Create sets an assignment.
func (r *AssignmentRepository) Create(ctx context.Context, req dto.AssignmentRequest) (*models.Assignment, error) {
	return transport.Fetch[*models.Assignment](ctx, r.client, r.Shape(), withBody(http.MethodPost, assignmentsBase, "", req))
}

// Update replaces an assignment.
func (r *AssignmentRepository) Update(ctx context.Context, id string, req dto.AssignmentRequest) (*models.Assignment, error) {
	return transport.Fetch[*models.Assignment](ctx, r.client, r.Shape(), withBody(http.MethodPut, resourcePath(assignmentsBase, id), assignmentsRoute, req))
}

// Delete removes an assignment.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	return send(ctx, r.client, r.Shape(), transport.Request{Method: http.MethodDelete, Path: resourcePath(assignmentsBase, id), Route: assignmentsRoute})
}

// Submit hands in work for an assignment.
func (r *AssignmentRepository) Submit(ctx context.Context, id string, req dto.SubmissionRequest) (*models.Submission, error) {
	return transport.Fetch[*models.Submission](ctx, r.client, r.Shape(), withBody(http.MethodPost, resourcePath(assignmentsBase, id, "submissions"), assignmentsRoute+"/submissions", req))
}

// Grade records a grade and feedback on a submission.
func (r *AssignmentRepository) Grade(ctx context.Context, submissionID string, req dto.GradeRequest) (*models.Submission, error) {
	path := resourcePath(assignmentsBase+"/submissions", submissionID, "grade")
	return transport.Fetch[*models.Submission](ctx, r.client, r.Shape(), withBody(http.MethodPut, path, assignmentsBase+"/submissions/:id/grade", req))
}
