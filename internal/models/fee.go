package models

import (
	"math"
	"time"
)

// FeeType classifies fees.
type FeeType string

const (
	FeeTypeTuition   FeeType = "tuition"
	FeeTypeTransport FeeType = "transport"
	FeeTypeLibrary   FeeType = "library"
	FeeTypeExam      FeeType = "exam"
	FeeTypeOther     FeeType = "other"
)

// FeeStatus is the payment state of a fee.
type FeeStatus string

const (
	FeeStatusPending FeeStatus = "pending"
	FeeStatusPaid    FeeStatus = "paid"
	FeeStatusOverdue FeeStatus = "overdue"
	FeeStatusPartial FeeStatus = "partial"
)

// Fee is a charge raised against a student.
type Fee struct {
	ID          string    `json:"id"`
	Student     UserRef   `json:"student"`
	Class       *ClassRef `json:"class,omitempty"`
	FeeType     FeeType   `json:"feeType"`
	Amount      float64   `json:"amount"`
	PaidAmount  float64   `json:"paidAmount"`
	DueDate     time.Time `json:"dueDate"`
	Status      FeeStatus `json:"status"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Outstanding returns the unpaid remainder, never negative.
func (f Fee) Outstanding() float64 {
	return math.Max(f.Amount-f.PaidAmount, 0)
}

// Progress returns the paid share as a percentage clamped to 0..100.
func (f Fee) Progress() float64 {
	if f.Amount <= 0 {
		if f.Status == FeeStatusPaid {
			return 100
		}
		return 0
	}
	pct := f.PaidAmount / f.Amount * 100
	return math.Round(math.Min(math.Max(pct, 0), 100)*100) / 100
}

// Settled reports whether nothing remains to pay.
func (f Fee) Settled() bool {
	return f.Status == FeeStatusPaid || (f.Amount > 0 && f.PaidAmount >= f.Amount)
}

// Payment records money received against a fee.
type Payment struct {
	ID        string    `json:"id"`
	FeeID     string    `json:"fee"`
	Amount    float64   `json:"amount"`
	Method    string    `json:"method"`
	Reference string    `json:"reference,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	PaidAt    time.Time `json:"paidAt"`
}

// PaymentResult is returned after recording a payment.
type PaymentResult struct {
	Fee     Fee     `json:"fee"`
	Payment Payment `json:"payment"`
}

// FeeSummary aggregates fees for dashboards.
type FeeSummary struct {
	TotalAmount     float64           `json:"totalAmount"`
	CollectedAmount float64           `json:"collectedAmount"`
	PendingAmount   float64           `json:"pendingAmount"`
	OverdueCount    int               `json:"overdueCount"`
	ByStatus        map[FeeStatus]int `json:"byStatus,omitempty"`
}
