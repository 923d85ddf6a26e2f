package dto

import (
	"io"
	"net/url"

	"github.com/noah-isme/sma-adp-console/internal/models"
)

// BookFilter narrows the catalog.
type BookFilter struct {
	Search    string `json:"search,omitempty"`
	Category  string `json:"category,omitempty"`
	Available *bool  `json:"available,omitempty"`
}

// Values encodes the filter as query parameters.
func (f BookFilter) Values() url.Values {
	v := url.Values{}
	setString(v, "search", f.Search)
	setString(v, "category", f.Category)
	setBool(v, "available", f.Available)
	return v
}

// BorrowFilter narrows the loans list.
type BorrowFilter struct {
	Status     models.BorrowStatus `json:"status,omitempty"`
	BorrowerID string              `json:"borrowerId,omitempty"`
}

// Values encodes the filter as query parameters.
func (f BorrowFilter) Values() url.Values {
	v := url.Values{}
	setString(v, "status", string(f.Status))
	setString(v, "borrowerId", f.BorrowerID)
	return v
}

// BookRequest creates or replaces a book.
type BookRequest struct {
	Title       string `json:"title" validate:"required"`
	Author      string `json:"author" validate:"required"`
	ISBN        string `json:"isbn,omitempty"`
	Category    string `json:"category,omitempty"`
	Publisher   string `json:"publisher,omitempty"`
	TotalCopies int    `json:"totalCopies" validate:"gte=1"`
}

// BorrowRequest lends a copy to a borrower.
type BorrowRequest struct {
	BookID     string `json:"bookId" validate:"required"`
	BorrowerID string `json:"borrowerId" validate:"required"`
	DueDate    string `json:"dueDate" validate:"required"`
}

// Attachment is an optional file sent with return/renew requests.
type Attachment struct {
	Filename string
	Content  io.Reader
}

// ReturnRequest closes a loan.
type ReturnRequest struct {
	Condition  string      `json:"condition,omitempty"`
	Notes      string      `json:"notes,omitempty"`
	Attachment *Attachment `json:"-"`
}

// RenewRequest extends a loan.
type RenewRequest struct {
	NewDueDate string      `json:"newDueDate" validate:"required"`
	Notes      string      `json:"notes,omitempty"`
	Attachment *Attachment `json:"-"`
}
