package handler

import (
	"context"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/pkg/response"
)

type libraryService interface {
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

// LibraryHandler exposes the library module.
type LibraryHandler struct {
	library libraryService
}

// NewLibraryHandler constructs LibraryHandler.
func NewLibraryHandler(library libraryService) *LibraryHandler {
	return &LibraryHandler{library: library}
}

// Books godoc
// @Summary List books
// @Tags Library
// @Produce json
// @Param search query string false "Title, author or ISBN"
// @Param category query string false "Category"
// @Param available query bool false "Only books with free copies"
// @Success 200 {object} response.Envelope
// @Router /library/books [get]
func (h *LibraryHandler) Books(c *gin.Context) {
	filter := dto.BookFilter{Search: c.Query("search"), Category: c.Query("category"), Available: boolQuery(c, "available")}
	books, err := h.library.Books(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, books, nil, meta(c))
}

// Book godoc
// @Summary Get book
// @Tags Library
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} response.Envelope
// @Router /library/books/{id} [get]
func (h *LibraryHandler) Book(c *gin.Context) {
	book, err := h.library.Book(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, book, nil)
}

// CreateBook godoc
// @Summary Add book
// @Tags Library
// @Accept json
// @Produce json
// @Param payload body dto.BookRequest true "Book"
// @Success 201 {object} response.Envelope
// @Router /library/books [post]
func (h *LibraryHandler) CreateBook(c *gin.Context) {
	var req dto.BookRequest
	if !bindJSON(c, &req, "invalid book payload") {
		return
	}
	book, err := h.library.CreateBook(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, book)
}

// UpdateBook godoc
// @Summary Replace book
// @Tags Library
// @Accept json
// @Produce json
// @Param id path string true "Book ID"
// @Param payload body dto.BookRequest true "Book"
// @Success 200 {object} response.Envelope
// @Router /library/books/{id} [put]
func (h *LibraryHandler) UpdateBook(c *gin.Context) {
	var req dto.BookRequest
	if !bindJSON(c, &req, "invalid book payload") {
		return
	}
	book, err := h.library.UpdateBook(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, book, nil)
}

// DeleteBook godoc
// @Summary Remove book
// @Tags Library
// @Param id path string true "Book ID"
// @Success 204 {object} response.Envelope
// @Router /library/books/{id} [delete]
func (h *LibraryHandler) DeleteBook(c *gin.Context) {
	if err := h.library.DeleteBook(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Borrows godoc
// @Summary List loans
// @Tags Library
// @Produce json
// @Param status query string false "borrowed, returned or overdue"
// @Param borrowerId query string false "Borrower"
// @Success 200 {object} response.Envelope
// @Router /library/borrows [get]
func (h *LibraryHandler) Borrows(c *gin.Context) {
	filter := dto.BorrowFilter{Status: models.BorrowStatus(c.Query("status")), BorrowerID: c.Query("borrowerId")}
	records, err := h.library.Borrows(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil, meta(c))
}

// Overdue godoc
// @Summary Overdue loans
// @Tags Library
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /library/borrows/overdue [get]
func (h *LibraryHandler) Overdue(c *gin.Context) {
	records, err := h.library.Overdue(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Borrow godoc
// @Summary Lend a copy
// @Tags Library
// @Accept json
// @Produce json
// @Param payload body dto.BorrowRequest true "Loan"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /library/borrows [post]
func (h *LibraryHandler) Borrow(c *gin.Context) {
	var req dto.BorrowRequest
	if !bindJSON(c, &req, "invalid borrow payload") {
		return
	}
	record, err := h.library.Borrow(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Return godoc
// @Summary Return a loan
// @Description Accepts JSON, or multipart with an optional attachment part
// @Tags Library
// @Accept json,mpfd
// @Produce json
// @Param id path string true "Loan ID"
// @Success 200 {object} response.Envelope
// @Router /library/borrows/{id}/return [post]
func (h *LibraryHandler) Return(c *gin.Context) {
	var req dto.ReturnRequest
	if isMultipart(c) {
		req.Condition = c.PostForm("condition")
		req.Notes = c.PostForm("notes")
		attachment, file := optionalFile(c, "attachment")
		if file != nil {
			defer file.Close() //nolint:errcheck
		}
		req.Attachment = attachment
	} else if !bindJSON(c, &req, "invalid return payload") {
		return
	}

	record, err := h.library.Return(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Renew godoc
// @Summary Renew a loan
// @Description Accepts JSON, or multipart with an optional attachment part
// @Tags Library
// @Accept json,mpfd
// @Produce json
// @Param id path string true "Loan ID"
// @Success 200 {object} response.Envelope
// @Router /library/borrows/{id}/renew [post]
func (h *LibraryHandler) Renew(c *gin.Context) {
	var req dto.RenewRequest
	if isMultipart(c) {
		req.NewDueDate = c.PostForm("newDueDate")
		req.Notes = c.PostForm("notes")
		attachment, file := optionalFile(c, "attachment")
		if file != nil {
			defer file.Close() //nolint:errcheck
		}
		req.Attachment = attachment
	} else if !bindJSON(c, &req, "invalid renew payload") {
		return
	}

	record, err := h.library.Renew(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}

func optionalFile(c *gin.Context, field string) (*dto.Attachment, multipart.File) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	file, err := header.Open()
	if err != nil {
		return nil, nil
	}
	return &dto.Attachment{Filename: header.Filename, Content: file}, file
}
