package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/vietcart/fulfillment/pkg/carrier"
)

// ErrInvalidTransition indicates a status change the transition table does
// not allow. Surfaced, never silently ignored: it is how duplicate clicks
// and races become visible to the caller.
var ErrInvalidTransition = errors.New("invalid status transition")

// transitions is the canonical transition table.
//
//	pending → confirmed → shipping → {delivered, returning → returned, lost}
//
// cancelled is reachable from pending, confirmed and shipping (the last only
// after a successful carrier cancellation, which WaybillService enforces).
// delivered, returned, cancelled and lost are terminal.
var transitions = map[carrier.Status][]carrier.Status{
	carrier.StatusPending:   {carrier.StatusConfirmed, carrier.StatusCancelled},
	carrier.StatusConfirmed: {carrier.StatusShipping, carrier.StatusCancelled},
	carrier.StatusShipping: {
		carrier.StatusDelivered,
		carrier.StatusReturning,
		carrier.StatusLost,
		carrier.StatusCancelled,
	},
	carrier.StatusReturning: {carrier.StatusReturned},
}

// CanTransition reports whether from → to is allowed.
func CanTransition(from, to carrier.Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status has no outbound transitions.
func IsTerminal(s carrier.Status) bool {
	return len(transitions[s]) == 0
}

// Apply advances the order to the target status, recording the transition
// with a timestamp. Fails with ErrInvalidTransition when the table does not
// allow the move. source names the trigger, e.g. "confirm" or
// "webhook:viettelpost".
func Apply(o *Order, to carrier.Status, source string) error {
	if !CanTransition(o.Status, to) {
		return fmt.Errorf("%w: %s → %s (order %s)", ErrInvalidTransition, o.Status, to, o.ID)
	}
	now := time.Now()
	o.Transitions = append(o.Transitions, Transition{
		From:   o.Status,
		To:     to,
		Source: source,
		At:     now,
	})
	o.Status = to
	o.UpdatedAt = now
	return nil
}

// ApplyWebhook consumes a normalized carrier event. Returns true when the
// order changed. Unrecognized statuses and same-status repeats are ignored
// without error; anything the table rejects surfaces ErrInvalidTransition.
func ApplyWebhook(o *Order, ev *carrier.WebhookEvent, provider string) (bool, error) {
	if ev.Status == carrier.StatusUnrecognized {
		return false, nil
	}
	if ev.Status == o.Status {
		// Carriers re-send scans; a repeat is not a conflict.
		return false, nil
	}
	// A confirmed-level scan on an already-moving order carries no new state.
	if ev.Status == carrier.StatusConfirmed {
		return false, nil
	}
	if err := Apply(o, ev.Status, "webhook:"+provider); err != nil {
		return false, err
	}
	return true, nil
}
