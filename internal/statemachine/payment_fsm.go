package statemachine

import (
	"context"
	"fmt"

	"github.com/dairylink/dairylink-api/internal/models"
	"github.com/looplab/fsm"
)

// PaymentFSM wraps a farmer payment with its state machine
type PaymentFSM struct {
	payment *models.Payment
	fsm     *fsm.FSM
}

// NewPaymentFSM creates a new payment state machine
func NewPaymentFSM(payment *models.Payment) *PaymentFSM {
	pfsm := &PaymentFSM{
		payment: payment,
	}

	pfsm.fsm = fsm.NewFSM(
		payment.Status,
		fsm.Events{
			// pending → paid
			{Name: "mark_paid", Src: []string{models.PaymentStatusPending}, Dst: models.PaymentStatusPaid},

			// paid → pending (rollback)
			{Name: "rollback", Src: []string{models.PaymentStatusPaid}, Dst: models.PaymentStatusPending},
		},
		fsm.Callbacks{},
	)

	return pfsm
}

// MarkPaid transitions the payment to paid state
func (p *PaymentFSM) MarkPaid(ctx context.Context) error {
	if !p.payment.MayMarkPaid() {
		return fmt.Errorf("payment cannot be marked paid in current state: %s", p.payment.Status)
	}

	if err := p.fsm.Event(ctx, "mark_paid"); err != nil {
		return fmt.Errorf("failed to mark payment paid: %w", err)
	}

	p.payment.Status = p.fsm.Current()
	return nil
}

// Rollback transitions the payment from paid back to pending
func (p *PaymentFSM) Rollback(ctx context.Context) error {
	if !p.payment.MayRollback() {
		return fmt.Errorf("payment cannot be rolled back in current state: %s", p.payment.Status)
	}

	if err := p.fsm.Event(ctx, "rollback"); err != nil {
		return fmt.Errorf("failed to roll back payment: %w", err)
	}

	p.payment.Status = p.fsm.Current()
	return nil
}

// Current returns the current state
func (p *PaymentFSM) Current() string {
	return p.fsm.Current()
}

// Can checks if a transition is possible
func (p *PaymentFSM) Can(event string) bool {
	return p.fsm.Can(event)
}
