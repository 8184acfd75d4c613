package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicateKey is returned when an insert violates a unique index. The
// service layer maps it onto its concurrency error so callers retry.
var ErrDuplicateKey = errors.New("duplicate key")

// translateError converts driver-level errors into repository sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateKey
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateKey
	}
	return err
}

// Repositories holds all repository instances
type Repositories struct {
	User             UserRepository
	Collection       CollectionRepository
	Approval         ApprovalRepository
	Credit           CreditRepository
	Deduction        DeductionRepository
	Payment          PaymentRepository
	CollectorPayment CollectorPaymentRepository
}

// NewRepositories creates all repository instances bound to the given handle,
// which may be the root connection or an open transaction.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:             NewUserRepository(db),
		Collection:       NewCollectionRepository(db),
		Approval:         NewApprovalRepository(db),
		Credit:           NewCreditRepository(db),
		Deduction:        NewDeductionRepository(db),
		Payment:          NewPaymentRepository(db),
		CollectorPayment: NewCollectorPaymentRepository(db),
	}
}

// TxManager owns the transaction boundary for the reconciliation engine's
// atomic multi-row operations: the callback runs against repositories bound
// to one transaction, and either every write commits or none do.
type TxManager interface {
	Do(ctx context.Context, fn func(repos *Repositories) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

// NewTxManager creates the gorm-backed transaction manager.
func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) Do(ctx context.Context, fn func(repos *Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
