package handlers

import (
	"net/http"
	"time"

	"github.com/dairylink/dairylink-api/internal/middleware"
	"github.com/dairylink/dairylink-api/internal/services"
	"github.com/gin-gonic/gin"
)

type ApprovalHandler struct {
	approvalService *services.ApprovalService
}

func NewApprovalHandler(approvalService *services.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

// BatchApproveRequest is the payload for one batch approval
type BatchApproveRequest struct {
	CollectorID    uint    `json:"collector_id" binding:"required"`
	CollectionDate string  `json:"collection_date" binding:"required"`
	ReceivedLiters float64 `json:"received_liters" binding:"required"`
}

// @Summary Batch Approve Collections
// @Description Reconcile a collector's daily collections against the liters the plant received
// @Tags Approvals
// @Accept json
// @Produce json
// @Param request body BatchApproveRequest true "Batch"
// @Success 200 {object} services.BatchApprovalResult
// @Security BearerAuth
// @Router /approvals/batch [post]
func (h *ApprovalHandler) BatchApprove(c *gin.Context) {
	var req BatchApproveRequest
	if err := BindNestedOrFlat(c, "batch", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	date, err := time.Parse("2006-01-02", req.CollectionDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "collection_date must be formatted YYYY-MM-DD"})
		return
	}

	result, err := h.approvalService.BatchApprove(c.Request.Context(),
		middleware.GetUserID(c), req.CollectorID, date, req.ReceivedLiters,
		c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
