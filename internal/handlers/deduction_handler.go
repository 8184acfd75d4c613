package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dairylink/dairylink-api/internal/middleware"
	"github.com/dairylink/dairylink-api/internal/services"
	"github.com/gin-gonic/gin"
)

type DeductionHandler struct {
	deductionService *services.DeductionService
}

func NewDeductionHandler(deductionService *services.DeductionService) *DeductionHandler {
	return &DeductionHandler{deductionService: deductionService}
}

// CreateDeductionRequest registers a deduction against a farmer
type CreateDeductionRequest struct {
	FarmerID    uint    `json:"farmer_id" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	Frequency   string  `json:"frequency" binding:"required"`
	NextDueDate string  `json:"next_due_date" binding:"required"`
}

// @Summary List Farmer Deductions
// @Description Get a farmer's deductions
// @Tags Deductions
// @Produce json
// @Param farmer_id path int true "Farmer ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /farmers/{farmer_id}/deductions [get]
func (h *DeductionHandler) Index(c *gin.Context) {
	farmerID, err := strconv.ParseUint(c.Param("farmer_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid farmer ID"})
		return
	}

	deductions, err := h.deductionService.FindByFarmer(c.Request.Context(), uint(farmerID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deductions": deductions})
}

// @Summary Create Deduction
// @Description Register a recurring or one-time deduction for a farmer
// @Tags Deductions
// @Accept json
// @Produce json
// @Param request body CreateDeductionRequest true "Deduction"
// @Success 201 {object} models.Deduction
// @Security BearerAuth
// @Router /deductions [post]
func (h *DeductionHandler) Create(c *gin.Context) {
	var req CreateDeductionRequest
	if err := BindNestedOrFlat(c, "deduction", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	due, err := time.Parse("2006-01-02", req.NextDueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "next_due_date must be formatted YYYY-MM-DD"})
		return
	}

	deduction, err := h.deductionService.Create(c.Request.Context(), req.FarmerID,
		req.Description, req.Amount, req.Frequency, due,
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, deduction)
}

// @Summary Deactivate Deduction
// @Description Stop a deduction from being applied again
// @Tags Deductions
// @Produce json
// @Param deduction_id path int true "Deduction ID"
// @Success 200 {object} models.Deduction
// @Security BearerAuth
// @Router /deductions/{deduction_id}/deactivate [post]
func (h *DeductionHandler) Deactivate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("deduction_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deduction ID"})
		return
	}

	deduction, err := h.deductionService.Deactivate(c.Request.Context(), uint(id),
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, deduction)
}

// @Summary Run Deduction Scheduler
// @Description Apply every deduction due as of now (or the given date)
// @Tags Deductions
// @Produce json
// @Param as_of query string false "Apply as of this date (YYYY-MM-DD)"
// @Success 200 {object} services.DeductionRunResult
// @Security BearerAuth
// @Router /deductions/run [post]
func (h *DeductionHandler) Run(c *gin.Context) {
	asOf := time.Now().UTC()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "as_of must be formatted YYYY-MM-DD"})
			return
		}
		asOf = parsed
	}

	result, err := h.deductionService.ApplyDueDeductions(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
