package services

import (
	"github.com/dairylink/dairylink-api/internal/config"
	"github.com/dairylink/dairylink-api/internal/repository"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Collection *CollectionService
	Approval   *ApprovalService
	Credit     *CreditService
	Deduction  *DeductionService
	Payment    *PaymentService
	Collector  *CollectorService
	Export     *ExportService
	Audit      *AuditService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, txm repository.TxManager, cfg *config.Config, db *gorm.DB) *Services {
	auditSvc := NewAuditService(db)

	return &Services{
		Collection: NewCollectionService(repos.Collection, repos.User, auditSvc),
		Approval:   NewApprovalService(txm, repos.Approval, cfg, auditSvc),
		Credit:     NewCreditService(txm, repos.Credit, repos.User, auditSvc),
		Deduction:  NewDeductionService(txm, repos.Deduction, repos.User, auditSvc),
		Payment:    NewPaymentService(txm, repos.Payment, repos.User, cfg, auditSvc),
		Collector:  NewCollectorService(txm, repos.CollectorPayment, repos.User, auditSvc),
		Export:     NewExportService(repos),
		Audit:      auditSvc,
	}
}
