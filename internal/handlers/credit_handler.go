package handlers

import (
	"net/http"
	"strconv"

	"github.com/dairylink/dairylink-api/internal/middleware"
	"github.com/dairylink/dairylink-api/internal/services"
	"github.com/gin-gonic/gin"
)

type CreditHandler struct {
	creditService *services.CreditService
}

func NewCreditHandler(creditService *services.CreditService) *CreditHandler {
	return &CreditHandler{creditService: creditService}
}

// CreditRequestPayload opens a credit request for a farmer
type CreditRequestPayload struct {
	FarmerID uint    `json:"farmer_id" binding:"required"`
	Amount   float64 `json:"amount" binding:"required"`
	Reason   string  `json:"reason"`
}

// ApproveCreditRequest carries the granted amount
type ApproveCreditRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

// @Summary List Farmer Credit
// @Description Get a farmer's credit transactions and available balance
// @Tags Credit
// @Produce json
// @Param farmer_id path int true "Farmer ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /farmers/{farmer_id}/credit [get]
func (h *CreditHandler) Index(c *gin.Context) {
	farmerID, err := strconv.ParseUint(c.Param("farmer_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid farmer ID"})
		return
	}

	transactions, err := h.creditService.FindByFarmer(c.Request.Context(), uint(farmerID))
	if err != nil {
		respondError(c, err)
		return
	}

	available, err := h.creditService.AvailableCredit(c.Request.Context(), uint(farmerID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions":     transactions,
		"available_credit": available,
	})
}

// @Summary Request Credit
// @Description Open a pending credit request for a farmer
// @Tags Credit
// @Accept json
// @Produce json
// @Param request body CreditRequestPayload true "Request"
// @Success 201 {object} models.CreditTransaction
// @Security BearerAuth
// @Router /credit [post]
func (h *CreditHandler) Create(c *gin.Context) {
	var req CreditRequestPayload
	if err := BindNestedOrFlat(c, "credit", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	txn, err := h.creditService.Request(c.Request.Context(), req.FarmerID, req.Amount, req.Reason,
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, txn)
}

// @Summary Approve Credit
// @Description Approve a pending credit request, possibly for a different amount
// @Tags Credit
// @Accept json
// @Produce json
// @Param credit_id path int true "Credit Transaction ID"
// @Param request body ApproveCreditRequest true "Amount"
// @Success 200 {object} models.CreditTransaction
// @Security BearerAuth
// @Router /credit/{credit_id}/approve [post]
func (h *CreditHandler) Approve(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("credit_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credit ID"})
		return
	}

	var req ApproveCreditRequest
	if err := BindNestedOrFlat(c, "credit", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	txn, err := h.creditService.Approve(c.Request.Context(), uint(id), req.Amount,
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, txn)
}

// @Summary Reject Credit
// @Description Reject a pending credit request
// @Tags Credit
// @Produce json
// @Param credit_id path int true "Credit Transaction ID"
// @Success 200 {object} models.CreditTransaction
// @Security BearerAuth
// @Router /credit/{credit_id}/reject [post]
func (h *CreditHandler) Reject(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("credit_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credit ID"})
		return
	}

	txn, err := h.creditService.Reject(c.Request.Context(), uint(id),
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, txn)
}
