package handlers

import (
	"net/http"
	"strconv"

	"github.com/dairylink/dairylink-api/internal/services"
	"github.com/gin-gonic/gin"
)

type ExportHandler struct {
	exportService *services.ExportService
}

func NewExportHandler(exportService *services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// @Summary Settlement Workbook
// @Description Download the monthly settlement workbook (farmer and collector payments) as XLSX
// @Tags Exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param period query string true "Settlement period (YYYY-MM)"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /exports/settlements [get]
func (h *ExportHandler) Settlements(c *gin.Context) {
	period := c.Query("period")
	if period == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period is required"})
		return
	}

	data, filename, err := h.exportService.SettlementWorkbook(c.Request.Context(), period)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// @Summary Farmer Statement
// @Description Download a farmer's monthly statement as PDF
// @Tags Exports
// @Produce application/pdf
// @Param farmer_id path int true "Farmer ID"
// @Param period query string true "Settlement period (YYYY-MM)"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /exports/farmers/{farmer_id}/statement [get]
func (h *ExportHandler) FarmerStatement(c *gin.Context) {
	farmerID, err := strconv.ParseUint(c.Param("farmer_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid farmer ID"})
		return
	}

	period := c.Query("period")
	if period == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period is required"})
		return
	}

	data, filename, err := h.exportService.FarmerStatement(c.Request.Context(), uint(farmerID), period)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", data)
}
