package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dairylink/dairylink-api/internal/middleware"
	"github.com/dairylink/dairylink-api/internal/repository"
	"github.com/dairylink/dairylink-api/internal/services"
	"github.com/gin-gonic/gin"
)

type CollectorHandler struct {
	collectorService *services.CollectorService
}

func NewCollectorHandler(collectorService *services.CollectorService) *CollectorHandler {
	return &CollectorHandler{collectorService: collectorService}
}

// ComputeCollectorPaymentRequest identifies the collector and settlement window
type ComputeCollectorPaymentRequest struct {
	CollectorID uint   `json:"collector_id" binding:"required"`
	PeriodStart string `json:"period_start" binding:"required"`
	PeriodEnd   string `json:"period_end" binding:"required"`
}

// @Summary List Collector Payments
// @Description Get a paginated list of collector payments
// @Tags CollectorPayments
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param collector_id query int false "Filter by collector"
// @Param status query string false "Filter by status"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /collector_payments [get]
func (h *CollectorHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Filters["collector_id"] = c.Query("collector_id")
	query.Filters["status"] = c.Query("status")

	payments, total, err := h.collectorService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"collector_payments": payments,
		"pagination": gin.H{
			"page":     query.Page,
			"per_page": query.PerPage,
			"total":    total,
		},
	})
}

// @Summary Get Collector Payment
// @Description Get a collector payment by ID
// @Tags CollectorPayments
// @Produce json
// @Param collector_payment_id path int true "Collector Payment ID"
// @Success 200 {object} models.CollectorPayment
// @Security BearerAuth
// @Router /collector_payments/{collector_payment_id} [get]
func (h *CollectorHandler) Show(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("collector_payment_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid collector payment ID"})
		return
	}

	payment, err := h.collectorService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// @Summary Compute Collector Payment
// @Description Aggregate a collector's earnings and penalties for a settlement window
// @Tags CollectorPayments
// @Accept json
// @Produce json
// @Param request body ComputeCollectorPaymentRequest true "Window"
// @Success 200 {object} models.CollectorPayment
// @Security BearerAuth
// @Router /collector_payments/compute [post]
func (h *CollectorHandler) Compute(c *gin.Context) {
	var req ComputeCollectorPaymentRequest
	if err := BindNestedOrFlat(c, "collector_payment", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	start, err := time.Parse("2006-01-02", req.PeriodStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period_start must be formatted YYYY-MM-DD"})
		return
	}
	end, err := time.Parse("2006-01-02", req.PeriodEnd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period_end must be formatted YYYY-MM-DD"})
		return
	}

	payment, err := h.collectorService.ComputePayment(c.Request.Context(), req.CollectorID, start, end,
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// @Summary Mark Collector Payment Paid
// @Description Settle a collector payment and close its pending penalties
// @Tags CollectorPayments
// @Produce json
// @Param collector_payment_id path int true "Collector Payment ID"
// @Success 200 {object} models.CollectorPayment
// @Security BearerAuth
// @Router /collector_payments/{collector_payment_id}/mark_paid [post]
func (h *CollectorHandler) MarkPaid(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("collector_payment_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid collector payment ID"})
		return
	}

	payment, err := h.collectorService.MarkPaid(c.Request.Context(), uint(id),
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}
