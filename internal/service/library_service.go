package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

type libraryRepository interface {
	Books(ctx context.Context, filter dto.BookFilter) ([]models.Book, error)
	Book(ctx context.Context, id string) (*models.Book, error)
	CreateBook(ctx context.Context, req dto.BookRequest) (*models.Book, error)
	UpdateBook(ctx context.Context, id string, req dto.BookRequest) (*models.Book, error)
	DeleteBook(ctx context.Context, id string) error
	Borrows(ctx context.Context, filter dto.BorrowFilter) ([]models.BorrowRecord, error)
	Overdue(ctx context.Context) ([]models.BorrowRecord, error)
	Borrow(ctx context.Context, req dto.BorrowRequest) (*models.BorrowRecord, error)
	Return(ctx context.Context, id string, req dto.ReturnRequest) (*models.BorrowRecord, error)
	Renew(ctx context.Context, id string, req dto.RenewRequest) (*models.BorrowRecord, error)
}

// LibraryService manages the catalog and loans.
type LibraryService struct {
	repo      libraryRepository
	ops       *Operations
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLibraryService constructs a LibraryService.
func NewLibraryService(repo libraryRepository, ops *Operations, validate *validator.Validate, logger *zap.Logger) *LibraryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &LibraryService{repo: repo, ops: ops, validator: validate, logger: logger}
}

// Books lists the catalog.
func (s *LibraryService) Books(ctx context.Context, filter dto.BookFilter) ([]models.Book, error) {
	return Run(ctx, s.ops, Query[dto.BookFilter, []models.Book]{Name: "library.books", Fetch: s.repo.Books}, filter)
}

// Book returns one title.
func (s *LibraryService) Book(ctx context.Context, id string) (*models.Book, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "book id is required")
	}
	return Run(ctx, s.ops, Query[string, *models.Book]{Name: "library.book", Fetch: s.repo.Book, Record: identity}, id)
}

// CreateBook adds a title.
func (s *LibraryService) CreateBook(ctx context.Context, req dto.BookRequest) (*models.Book, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid book payload")
	}
	return Exec(ctx, s.ops, Mutation[dto.BookRequest, *models.Book]{
		Name: "library.createBook",
		Exec: s.repo.CreateBook,
		Record: func(_ dto.BookRequest, b *models.Book) string {
			if b == nil {
				return ""
			}
			return b.ID
		},
	}, req)
}

// UpdateBook replaces a title.
func (s *LibraryService) UpdateBook(ctx context.Context, id string, req dto.BookRequest) (*models.Book, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "book id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid book payload")
	}
	return Exec(ctx, s.ops, Mutation[Update[dto.BookRequest], *models.Book]{
		Name: "library.updateBook",
		Exec: func(ctx context.Context, u Update[dto.BookRequest]) (*models.Book, error) {
			return s.repo.UpdateBook(ctx, u.ID, u.Body)
		},
		Record: updateID[dto.BookRequest, *models.Book],
	}, Update[dto.BookRequest]{ID: id, Body: req})
}

// DeleteBook removes a title.
func (s *LibraryService) DeleteBook(ctx context.Context, id string) error {
	if id == "" {
		return appErrors.Clone(appErrors.ErrValidation, "book id is required")
	}
	_, err := Exec(ctx, s.ops, Mutation[string, struct{}]{Name: "library.deleteBook", Exec: deleteWith(s.repo.DeleteBook), Record: idOf[struct{}]}, id)
	return err
}

// Borrows lists loans.
func (s *LibraryService) Borrows(ctx context.Context, filter dto.BorrowFilter) ([]models.BorrowRecord, error) {
	return Run(ctx, s.ops, Query[dto.BorrowFilter, []models.BorrowRecord]{Name: "library.borrows", Fetch: s.repo.Borrows}, filter)
}

// Overdue lists loans past their due date.
func (s *LibraryService) Overdue(ctx context.Context) ([]models.BorrowRecord, error) {
	return Run(ctx, s.ops, Query[struct{}, []models.BorrowRecord]{
		Name:  "library.overdue",
		Fetch: func(ctx context.Context, _ struct{}) ([]models.BorrowRecord, error) { return s.repo.Overdue(ctx) },
	}, struct{}{})
}

// Borrow lends a copy.
func (s *LibraryService) Borrow(ctx context.Context, req dto.BorrowRequest) (*models.BorrowRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid borrow payload")
	}
	rec, err := Exec(ctx, s.ops, Mutation[dto.BorrowRequest, *models.BorrowRecord]{Name: "library.borrow", Exec: s.repo.Borrow}, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("book borrowed", zap.String("book_id", req.BookID), zap.String("borrower_id", req.BorrowerID))
	return rec, nil
}

// Return closes a loan, optionally with an attachment.
func (s *LibraryService) Return(ctx context.Context, id string, req dto.ReturnRequest) (*models.BorrowRecord, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "borrow id is required")
	}
	return Exec(ctx, s.ops, Mutation[Update[dto.ReturnRequest], *models.BorrowRecord]{
		Name: "library.return",
		Exec: func(ctx context.Context, u Update[dto.ReturnRequest]) (*models.BorrowRecord, error) {
			return s.repo.Return(ctx, u.ID, u.Body)
		},
	}, Update[dto.ReturnRequest]{ID: id, Body: req})
}

// Renew extends a loan, optionally with an attachment.
func (s *LibraryService) Renew(ctx context.Context, id string, req dto.RenewRequest) (*models.BorrowRecord, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "borrow id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid renew payload")
	}
	return Exec(ctx, s.ops, Mutation[Update[dto.RenewRequest], *models.BorrowRecord]{
		Name: "library.renew",
		Exec: func(ctx context.Context, u Update[dto.RenewRequest]) (*models.BorrowRecord, error) {
			return s.repo.Renew(ctx, u.ID, u.Body)
		},
	}, Update[dto.RenewRequest]{ID: id, Body: req})
}
