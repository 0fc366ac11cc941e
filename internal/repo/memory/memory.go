// Package memory provides an in-memory order repository, used by tests and
// the dev profile.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/vietcart/fulfillment/internal/order"
	"github.com/vietcart/fulfillment/pkg/carrier"
)

// Repository is a mutex-guarded map store implementing order.Repository with
// the same optimistic-concurrency contract as the document store.
type Repository struct {
	mu       sync.RWMutex
	orders   map[string]*order.Order
	waybills map[string]*order.Waybill
}

// New creates an empty repository.
func New() *Repository {
	return &Repository{
		orders:   make(map[string]*order.Order),
		waybills: make(map[string]*order.Waybill),
	}
}

// Put seeds an order, bypassing the version check. Test helper.
func (r *Repository) Put(o *order.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o.Clone()
}

// Load returns a copy of the stored order.
func (r *Repository) Load(ctx context.Context, id string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", order.ErrNotFound, id)
	}
	return o.Clone(), nil
}

// Save stores the order if its version still matches, then increments it.
func (r *Repository) Save(ctx context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[o.ID]
	if ok && stored.Version != o.Version {
		return fmt.Errorf("%w: %s (have %d, want %d)", order.ErrConflict, o.ID, stored.Version, o.Version)
	}
	saved := o.Clone()
	saved.Version++
	r.orders[o.ID] = saved
	o.Version = saved.Version
	return nil
}

// FindByTrackingCode returns the order carrying the tracking code.
func (r *Repository) FindByTrackingCode(ctx context.Context, trackingCode string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if o.Shipping.TrackingCode == trackingCode {
			return o.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: tracking code %s", order.ErrNotFound, trackingCode)
}

// SaveWaybill stores a waybill keyed by tracking code.
func (r *Repository) SaveWaybill(ctx context.Context, w *order.Waybill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *w
	r.waybills[w.TrackingCode] = &copied
	return nil
}

// UpdateWaybillStatus mutates a stored waybill's status.
func (r *Repository) UpdateWaybillStatus(ctx context.Context, trackingCode string, status carrier.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.waybills[trackingCode]
	if !ok {
		return fmt.Errorf("%w: waybill %s", order.ErrNotFound, trackingCode)
	}
	w.Status = status
	return nil
}

// Waybill returns a stored waybill. Test helper.
func (r *Repository) Waybill(trackingCode string) (*order.Waybill, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.waybills[trackingCode]
	if !ok {
		return nil, false
	}
	copied := *w
	return &copied, true
}

var _ order.Repository = (*Repository)(nil)
