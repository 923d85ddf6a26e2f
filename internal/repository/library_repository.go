package repository

import (
	"context"
	"net/http"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/pkg/transport"
)

const (
	booksBase    = "/api/library/books"
	booksRoute   = booksBase + "/:id"
	borrowsBase  = "/api/library/borrows"
	borrowsRoute = borrowsBase + "/:id"
)

// LibraryRepository calls the catalog and loan endpoints. These endpoints
// return payloads without the success envelope.
type LibraryRepository struct {
	client *transport.Client
}

// NewLibraryRepository constructs the repository.
func NewLibraryRepository(client *transport.Client) *LibraryRepository {
	return &LibraryRepository{client: client}
}

// Shape reports how library responses are wrapped.
func (r *LibraryRepository) Shape() transport.Shape { return transport.Bare }

// Books lists the catalog.
func (r *LibraryRepository) Books(ctx context.Context, filter dto.BookFilter) ([]models.Book, error) {
	return transport.Fetch[[]models.Book](ctx, r.client, r.Shape(), get(booksBase, "", filter.Values()))
}

// Book returns one title.
func (r *LibraryRepository) Book(ctx context.Context, id string) (*models.Book, error) {
	return transport.Fetch[*models.Book](ctx, r.client, r.Shape(), get(resourcePath(booksBase, id), booksRoute, nil))
}

// CreateBook adds a title.
func (r *LibraryRepository) CreateBook(ctx context.Context, req dto.BookRequest) (*models.Book, error) {
	return transport.Fetch[*models.Book](ctx, r.client, r.Shape(), withBody(http.MethodPost, booksBase, "", req))
}

// UpdateBook replaces a title.
func (r *LibraryRepository) UpdateBook(ctx context.Context, id string, req dto.BookRequest) (*models.Book, error) {
	return transport.Fetch[*models.Book](ctx, r.client, r.Shape(), withBody(http.MethodPut, resourcePath(booksBase, id), booksRoute, req))
}

// DeleteBook removes a title.
func (r *LibraryRepository) DeleteBook(ctx context.Context, id string) error {
	return send(ctx, r.client, r.Shape(), transport.Request{Method: http.MethodDelete, Path: resourcePath(booksBase, id), Route: booksRoute})
}

// Borrows lists loans.
func (r *LibraryRepository) Borrows(ctx context.Context, filter dto.BorrowFilter) ([]models.BorrowRecord, error) {
	return transport.Fetch[[]models.BorrowRecord](ctx, r.client, r.Shape(), get(borrowsBase, "", filter.Values()))
}

// Overdue lists loans past their due date.
func (r *LibraryRepository) Overdue(ctx context.Context) ([]models.BorrowRecord, error) {
	return transport.Fetch[[]models.BorrowRecord](ctx, r.client, r.Shape(), get(borrowsBase+"/overdue", "", nil))
}

// Borrow lends a copy.
func (r *LibraryRepository) Borrow(ctx context.Context, req dto.BorrowRequest) (*models.BorrowRecord, error) {
	return transport.Fetch[*models.BorrowRecord](ctx, r.client, r.Shape(), withBody(http.MethodPost, borrowsBase, "", req))
}

// Return closes a loan. The optional attachment is sent as multipart.
func (r *LibraryRepository) Return(ctx context.Context, id string, req dto.ReturnRequest) (*models.BorrowRecord, error) {
	fields := map[string]string{}
	if req.Condition != "" {
		fields["condition"] = req.Condition
	}
	if req.Notes != "" {
		fields["notes"] = req.Notes
	}
	return transport.Fetch[*models.BorrowRecord](ctx, r.client, r.Shape(),
		upload(resourcePath(borrowsBase, id, "return"), borrowsRoute+"/return", "attachment", attachment(req.Attachment), fields))
}

// Renew extends a loan. The optional attachment is sent as multipart.
func (r *LibraryRepository) Renew(ctx context.Context, id string, req dto.RenewRequest) (*models.BorrowRecord, error) {
	fields := map[string]string{"newDueDate": req.NewDueDate}
	if req.Notes != "" {
		fields["notes"] = req.Notes
	}
	return transport.Fetch[*models.BorrowRecord](ctx, r.client, r.Shape(),
		upload(resourcePath(borrowsBase, id, "renew"), borrowsRoute+"/renew", "attachment", attachment(req.Attachment), fields))
}

func attachment(a *dto.Attachment) dto.Attachment {
	if a == nil {
		return dto.Attachment{}
	}
	return *a
}
