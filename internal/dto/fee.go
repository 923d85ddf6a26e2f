package dto

import (
	"net/url"

	"github.com/noah-isme/sma-adp-console/internal/models"
)

// FeeFilter narrows the fee list.
type FeeFilter struct {
	ClassID   string           `json:"classId,omitempty"`
	StudentID string           `json:"studentId,omitempty"`
	Status    models.FeeStatus `json:"status,omitempty"`
	FeeType   models.FeeType   `json:"feeType,omitempty"`
	PageQuery
}

// Values encodes the filter as query parameters.
func (f FeeFilter) Values() url.Values {
	v := url.Values{}
	setString(v, "classId", f.ClassID)
	setString(v, "studentId", f.StudentID)
	setString(v, "status", string(f.Status))
	setString(v, "feeType", string(f.FeeType))
	f.PageQuery.apply(v)
	return v
}

// CreateFeeRequest raises a fee.
type CreateFeeRequest struct {
	StudentID   string         `json:"studentId" validate:"required"`
	ClassID     string         `json:"classId,omitempty"`
	FeeType     models.FeeType `json:"feeType" validate:"required,oneof=tuition transport library exam other"`
	Amount      float64        `json:"amount" validate:"gt=0"`
	DueDate     string         `json:"dueDate" validate:"required"`
	Description string         `json:"description,omitempty"`
}

// UpdateFeeRequest changes a fee.
type UpdateFeeRequest struct {
	Amount      *float64         `json:"amount,omitempty" validate:"omitempty,gt=0"`
	DueDate     string           `json:"dueDate,omitempty"`
	Status      models.FeeStatus `json:"status,omitempty" validate:"omitempty,oneof=pending paid overdue partial"`
	Description string           `json:"description,omitempty"`
}

// PaymentRequest records a payment against a fee.
type PaymentRequest struct {
	Amount    float64 `json:"amount" validate:"gt=0"`
	Method    string  `json:"method" validate:"required"`
	Reference string  `json:"reference,omitempty"`
	Notes     string  `json:"notes,omitempty"`
}
