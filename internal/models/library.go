package models

import "time"

// BorrowStatus is the lifecycle state of a loan.
type BorrowStatus string

const (
	BorrowStatusBorrowed BorrowStatus = "borrowed"
	BorrowStatusReturned BorrowStatus = "returned"
	BorrowStatusOverdue  BorrowStatus = "overdue"
	BorrowStatusRenewed  BorrowStatus = "renewed"
)

// Book is a library title with copy counts.
type Book struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn,omitempty"`
	Category        string    `json:"category,omitempty"`
	Publisher       string    `json:"publisher,omitempty"`
	TotalCopies     int       `json:"totalCopies"`
	AvailableCopies int       `json:"availableCopies"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Available reports whether a copy can be borrowed.
func (b Book) Available() bool {
	return b.AvailableCopies > 0
}

// BookRef is the compact book reference embedded in loans.
type BookRef struct {
	ID     string `json:"id"`
	Title  string `json:"title,omitempty"`
	Author string `json:"author,omitempty"`
}

// BorrowRecord is a library loan.
type BorrowRecord struct {
	ID         string       `json:"id"`
	Book       BookRef      `json:"book"`
	Borrower   UserRef      `json:"borrower"`
	BorrowDate time.Time    `json:"borrowDate"`
	DueDate    time.Time    `json:"dueDate"`
	ReturnDate *time.Time   `json:"returnDate,omitempty"`
	Status     BorrowStatus `json:"status"`
	Fine       float64      `json:"fine,omitempty"`
	RenewCount int          `json:"renewCount,omitempty"`
	Notes      string       `json:"notes,omitempty"`
}

// Open reports whether the book is still out.
func (r BorrowRecord) Open() bool {
	return r.Status != BorrowStatusReturned
}
