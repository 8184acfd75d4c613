package statemachine

import (
	"context"
	"fmt"

	"github.com/dairylink/dairylink-api/internal/models"
	"github.com/looplab/fsm"
)

// CollectionFSM wraps a collection with its state machine
type CollectionFSM struct {
	collection *models.Collection
	fsm        *fsm.FSM
}

// NewCollectionFSM creates a new collection state machine
func NewCollectionFSM(collection *models.Collection) *CollectionFSM {
	cfsm := &CollectionFSM{
		collection: collection,
	}

	cfsm.fsm = fsm.NewFSM(
		collection.Status,
		fsm.Events{
			// recorded → collected (batch approval)
			{Name: "collect", Src: []string{models.CollectionStatusRecorded}, Dst: models.CollectionStatusCollected},

			// collected → verified
			{Name: "verify", Src: []string{models.CollectionStatusCollected}, Dst: models.CollectionStatusVerified},

			// collected/verified → paid (payment settlement)
			{Name: "settle", Src: []string{models.CollectionStatusCollected, models.CollectionStatusVerified}, Dst: models.CollectionStatusPaid},
		},
		fsm.Callbacks{},
	)

	return cfsm
}

// Collect transitions the collection to collected state
func (c *CollectionFSM) Collect(ctx context.Context) error {
	if !c.collection.MayApprove() {
		return fmt.Errorf("collection cannot be approved in current state: %s", c.collection.Status)
	}

	if err := c.fsm.Event(ctx, "collect"); err != nil {
		return fmt.Errorf("failed to collect: %w", err)
	}

	c.collection.Status = c.fsm.Current()
	return nil
}

// Verify transitions the collection to verified state
func (c *CollectionFSM) Verify(ctx context.Context) error {
	if err := c.fsm.Event(ctx, "verify"); err != nil {
		return fmt.Errorf("failed to verify collection: %w", err)
	}

	c.collection.Status = c.fsm.Current()
	return nil
}

// Settle transitions the collection to paid state
func (c *CollectionFSM) Settle(ctx context.Context) error {
	if !c.collection.MaySettle() {
		return fmt.Errorf("collection cannot be settled in current state: %s", c.collection.Status)
	}

	if err := c.fsm.Event(ctx, "settle"); err != nil {
		return fmt.Errorf("failed to settle collection: %w", err)
	}

	c.collection.Status = c.fsm.Current()
	return nil
}

// Current returns the current state
func (c *CollectionFSM) Current() string {
	return c.fsm.Current()
}

// Can checks if a transition is possible
func (c *CollectionFSM) Can(event string) bool {
	return c.fsm.Can(event)
}
