package order

import (
	"context"
	"errors"

	"github.com/vietcart/fulfillment/pkg/carrier"
)

// Repository port errors.
var (
	// ErrNotFound indicates the order or waybill does not exist.
	ErrNotFound = errors.New("order not found")

	// ErrConflict indicates an optimistic concurrency failure: the stored
	// version moved since the caller loaded the order.
	ErrConflict = errors.New("order version conflict")
)

// Repository is the narrow persistence port for orders and waybills. Save
// enforces optimistic concurrency on Order.Version: it fails with
// ErrConflict unless the stored version equals the loaded one, then
// increments it. This is what makes per-order mutual exclusion enforceable
// across processes.
type Repository interface {
	Load(ctx context.Context, id string) (*Order, error)
	Save(ctx context.Context, o *Order) error
	FindByTrackingCode(ctx context.Context, trackingCode string) (*Order, error)

	SaveWaybill(ctx context.Context, w *Waybill) error
	UpdateWaybillStatus(ctx context.Context, trackingCode string, status carrier.Status) error
}
