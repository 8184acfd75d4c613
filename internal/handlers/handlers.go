package handlers

import (
	"errors"
	"net/http"

	"github.com/dairylink/dairylink-api/internal/services"
	"github.com/gin-gonic/gin"
)

// Handlers holds all handler instances
type Handlers struct {
	Health     *HealthHandler
	Collection *CollectionHandler
	Approval   *ApprovalHandler
	Credit     *CreditHandler
	Deduction  *DeductionHandler
	Payment    *PaymentHandler
	Collector  *CollectorHandler
	Export     *ExportHandler
	Audit      *AuditHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(),
		Collection: NewCollectionHandler(svcs.Collection, svcs.Approval),
		Approval:   NewApprovalHandler(svcs.Approval),
		Credit:     NewCreditHandler(svcs.Credit),
		Deduction:  NewDeductionHandler(svcs.Deduction),
		Payment:    NewPaymentHandler(svcs.Payment),
		Collector:  NewCollectorHandler(svcs.Collector),
		Export:     NewExportHandler(svcs.Export),
		Audit:      NewAuditHandler(svcs.Audit),
	}
}

// respondError maps service errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var vErr *services.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": vErr.Message, "field": vErr.Field})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNoCollections),
		errors.Is(err, services.ErrInvalidBatch),
		errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrInsufficientCredit):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConcurrentModification):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "retryable": true})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
