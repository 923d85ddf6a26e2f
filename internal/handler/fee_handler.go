package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/pkg/response"
)

type feeService interface {
	List(ctx context.Context, filter dto.FeeFilter) (models.Page[models.Fee], error)
	Get(ctx context.Context, id string) (*models.Fee, error)
	Payments(ctx context.Context, id string) ([]models.Payment, error)
	ByStudent(ctx context.Context, studentID string) ([]models.Fee, error)
	Summary(ctx context.Context, filter dto.FeeFilter) (*models.FeeSummary, error)
	Create(ctx context.Context, req dto.CreateFeeRequest) (*models.Fee, error)
	Update(ctx context.Context, id string, req dto.UpdateFeeRequest) (*models.Fee, error)
	Delete(ctx context.Context, id string) error
	Pay(ctx context.Context, id string, req dto.PaymentRequest) (*models.PaymentResult, error)
}

// FeeHandler exposes the fees module.
type FeeHandler struct {
	fees feeService
}

// NewFeeHandler constructs FeeHandler.
func NewFeeHandler(fees feeService) *FeeHandler {
	return &FeeHandler{fees: fees}
}

func feeFilter(c *gin.Context) dto.FeeFilter {
	return dto.FeeFilter{
		ClassID:   c.Query("classId"),
		StudentID: c.Query("studentId"),
		Status:    models.FeeStatus(c.Query("status")),
		FeeType:   models.FeeType(c.Query("feeType")),
		PageQuery: pageQuery(c),
	}
}

// List godoc
// @Summary List fees
// @Tags Fees
// @Produce json
// @Param classId query string false "Class filter"
// @Param studentId query string false "Student filter"
// @Param status query string false "pending, paid, overdue or partial"
// @Param feeType query string false "Fee type"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /fees [get]
func (h *FeeHandler) List(c *gin.Context) {
	page, err := h.fees.List(c.Request.Context(), feeFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	paged(c, page)
}

// Summary godoc
// @Summary Fee collection summary
// @Tags Fees
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /fees/summary [get]
func (h *FeeHandler) Summary(c *gin.Context) {
	summary, err := h.fees.Summary(c.Request.Context(), feeFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// ByStudent godoc
// @Summary Fees of one student
// @Tags Fees
// @Produce json
// @Param studentId path string true "Student user ID"
// @Success 200 {object} response.Envelope
// @Router /fees/student/{studentId} [get]
func (h *FeeHandler) ByStudent(c *gin.Context) {
	fees, err := h.fees.ByStudent(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fees, nil)
}

// Get godoc
// @Summary Get fee
// @Tags Fees
// @Produce json
// @Param id path string true "Fee ID"
// @Success 200 {object} response.Envelope
// @Router /fees/{id} [get]
func (h *FeeHandler) Get(c *gin.Context) {
	fee, err := h.fees.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fee, nil)
}

// Payments godoc
// @Summary Payments made against a fee
// @Tags Fees
// @Produce json
// @Param id path string true "Fee ID"
// @Success 200 {object} response.Envelope
// @Router /fees/{id}/payments [get]
func (h *FeeHandler) Payments(c *gin.Context) {
	payments, err := h.fees.Payments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, nil)
}

// Create godoc
// @Summary Raise fee
// @Tags Fees
// @Accept json
// @Produce json
// @Param payload body dto.CreateFeeRequest true "Fee payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /fees [post]
func (h *FeeHandler) Create(c *gin.Context) {
	var req dto.CreateFeeRequest
	if !bindJSON(c, &req, "invalid fee payload") {
		return
	}
	fee, err := h.fees.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, fee)
}

// Update godoc
// @Summary Update fee
// @Tags Fees
// @Accept json
// @Produce json
// @Param id path string true "Fee ID"
// @Param payload body dto.UpdateFeeRequest true "Fee fields"
// @Success 200 {object} response.Envelope
// @Router /fees/{id} [put]
func (h *FeeHandler) Update(c *gin.Context) {
	var req dto.UpdateFeeRequest
	if !bindJSON(c, &req, "invalid fee payload") {
		return
	}
	fee, err := h.fees.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fee, nil)
}

// Delete godoc
// @Summary Delete fee
// @Tags Fees
// @Param id path string true "Fee ID"
// @Success 204 {object} response.Envelope
// @Router /fees/{id} [delete]
func (h *FeeHandler) Delete(c *gin.Context) {
	if err := h.fees.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Pay godoc
// @Summary Record payment
// @Tags Fees
// @Accept json
// @Produce json
// @Param id path string true "Fee ID"
// @Param payload body dto.PaymentRequest true "Payment"
// @Success 200 {object} response.Envelope
// @Router /fees/{id}/pay [post]
func (h *FeeHandler) Pay(c *gin.Context) {
	var req dto.PaymentRequest
	if !bindJSON(c, &req, "invalid payment payload") {
		return
	}
	res, err := h.fees.Pay(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
