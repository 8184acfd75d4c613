package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dairylink/dairylink-api/internal/middleware"
	"github.com/dairylink/dairylink-api/internal/repository"
	"github.com/dairylink/dairylink-api/internal/services"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// GeneratePaymentRequest identifies the farmer and pay period to reconcile
type GeneratePaymentRequest struct {
	FarmerID uint   `json:"farmer_id" binding:"required"`
	Period   string `json:"period" binding:"required"`
}

// @Summary List Payments
// @Description Get a paginated list of farmer payments
// @Tags Payments
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param period query string false "Filter by period (YYYY-MM)"
// @Param status query string false "Filter by status"
// @Param farmer_id query int false "Filter by farmer"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /payments [get]
func (h *PaymentHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.Filters["period"] = c.Query("period")
	query.Filters["status"] = c.Query("status")
	query.Filters["farmer_id"] = c.Query("farmer_id")

	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}

	payments, total, err := h.paymentService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	var responses []interface{}
	for _, p := range payments {
		responses = append(responses, p.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"payments": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Payment
// @Description Get a farmer payment by ID
// @Tags Payments
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} models.PaymentResponse
// @Security BearerAuth
// @Router /payments/{payment_id} [get]
func (h *PaymentHandler) Show(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("payment_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
		return
	}

	payment, err := h.paymentService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment.ToResponse())
}

// @Summary Generate Payment
// @Description Build or rebuild the farmer's payment for a pay period
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body GeneratePaymentRequest true "Farmer and period"
// @Success 200 {object} models.PaymentResponse
// @Security BearerAuth
// @Router /payments/generate [post]
func (h *PaymentHandler) Generate(c *gin.Context) {
	var req GeneratePaymentRequest
	if err := BindNestedOrFlat(c, "payment", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	payment, err := h.paymentService.Generate(c.Request.Context(), req.FarmerID, req.Period,
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment.ToResponse())
}

// @Summary Mark Payment Paid
// @Description Finalize a pending payment: collections settle, credit lines close
// @Tags Payments
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} models.PaymentResponse
// @Security BearerAuth
// @Router /payments/{payment_id}/mark_paid [post]
func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("payment_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
		return
	}

	payment, err := h.paymentService.MarkPaid(c.Request.Context(), uint(id),
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment.ToResponse())
}

// @Summary Rollback Payment
// @Description Reverse a finalized payment back to pending
// @Tags Payments
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} models.PaymentResponse
// @Security BearerAuth
// @Router /payments/{payment_id}/rollback [post]
func (h *PaymentHandler) Rollback(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("payment_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
		return
	}

	payment, err := h.paymentService.Rollback(c.Request.Context(), uint(id),
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment.ToResponse())
}
