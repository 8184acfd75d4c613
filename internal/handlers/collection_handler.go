package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dairylink/dairylink-api/internal/middleware"
	"github.com/dairylink/dairylink-api/internal/repository"
	"github.com/dairylink/dairylink-api/internal/services"
	"github.com/gin-gonic/gin"
)

type CollectionHandler struct {
	collectionService *services.CollectionService
	approvalService   *services.ApprovalService
}

func NewCollectionHandler(collectionService *services.CollectionService, approvalService *services.ApprovalService) *CollectionHandler {
	return &CollectionHandler{
		collectionService: collectionService,
		approvalService:   approvalService,
	}
}

// CreateCollectionRequest is the payload for recording a delivery
type CreateCollectionRequest struct {
	FarmerID       uint    `json:"farmer_id" binding:"required"`
	CollectorID    uint    `json:"collector_id" binding:"required"`
	Liters         float64 `json:"liters" binding:"required"`
	RatePerLiter   float64 `json:"rate_per_liter" binding:"required"`
	CollectionDate string  `json:"collection_date" binding:"required"`
}

// @Summary List Collections
// @Description Get a paginated list of milk collections
// @Tags Collections
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status"
// @Param farmer_id query int false "Filter by farmer"
// @Param collector_id query int false "Filter by collector"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /collections [get]
func (h *CollectionHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Filters["status"] = c.Query("status")
	query.Filters["farmer_id"] = c.Query("farmer_id")
	query.Filters["collector_id"] = c.Query("collector_id")
	query.Filters["start_date"] = c.Query("start_date")
	query.Filters["end_date"] = c.Query("end_date")

	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}

	collections, total, err := h.collectionService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	var responses []interface{}
	for _, col := range collections {
		responses = append(responses, col.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"collections": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Collection
// @Description Get a collection by ID, with its approval record when reconciled
// @Tags Collections
// @Produce json
// @Param collection_id path int true "Collection ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /collections/{collection_id} [get]
func (h *CollectionHandler) Show(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("collection_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid collection ID"})
		return
	}

	collection, err := h.collectionService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	response := gin.H{"collection": collection.ToResponse()}

	// Include the reconciliation record once the batch has been approved
	approvals, err := h.approvalService.FindByCollectionIDs(c.Request.Context(), []uint{collection.ID})
	if err == nil && len(approvals) > 0 {
		response["approval"] = approvals[0]
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Record Collection
// @Description Record a milk delivery from a farmer
// @Tags Collections
// @Accept json
// @Produce json
// @Param request body CreateCollectionRequest true "Collection"
// @Success 201 {object} models.CollectionResponse
// @Security BearerAuth
// @Router /collections [post]
func (h *CollectionHandler) Create(c *gin.Context) {
	var req CreateCollectionRequest
	if err := BindNestedOrFlat(c, "collection", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	date, err := time.Parse("2006-01-02", req.CollectionDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "collection_date must be formatted YYYY-MM-DD"})
		return
	}

	collection, err := h.collectionService.Create(c.Request.Context(), services.CreateCollectionInput{
		FarmerID:       req.FarmerID,
		CollectorID:    req.CollectorID,
		Liters:         req.Liters,
		RatePerLiter:   req.RatePerLiter,
		CollectionDate: date,
	}, middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, collection.ToResponse())
}

// @Summary Verify Collection
// @Description Move a collected delivery to verified
// @Tags Collections
// @Produce json
// @Param collection_id path int true "Collection ID"
// @Success 200 {object} models.CollectionResponse
// @Security BearerAuth
// @Router /collections/{collection_id}/verify [post]
func (h *CollectionHandler) Verify(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("collection_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid collection ID"})
		return
	}

	collection, err := h.collectionService.Verify(c.Request.Context(), uint(id),
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, collection.ToResponse())
}
