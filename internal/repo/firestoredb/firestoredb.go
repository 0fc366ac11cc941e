// Package firestoredb implements the order repository on Cloud Firestore.
package firestoredb

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/vietcart/fulfillment/internal/order"
	"github.com/vietcart/fulfillment/pkg/carrier"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ordersCollection   = "orders"
	waybillsCollection = "waybills"
)

// Repository is a Firestore-backed order.Repository. Optimistic concurrency
// is enforced inside a Firestore transaction on Order.Version.
type Repository struct {
	client *firestore.Client
}

// New wraps an existing Firestore client.
func New(client *firestore.Client) *Repository {
	return &Repository{client: client}
}

// Load fetches an order document.
func (r *Repository) Load(ctx context.Context, id string) (*order.Order, error) {
	snap, err := r.client.Collection(ordersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: %s", order.ErrNotFound, id)
		}
		return nil, fmt.Errorf("loading order %s: %w", id, err)
	}
	var o order.Order
	if err := snap.DataTo(&o); err != nil {
		return nil, fmt.Errorf("decoding order %s: %w", id, err)
	}
	return &o, nil
}

// Save writes the order inside a transaction that re-reads the stored
// version; a mismatch fails with order.ErrConflict.
func (r *Repository) Save(ctx context.Context, o *order.Order) error {
	doc := r.client.Collection(ordersCollection).Doc(o.ID)
	newVersion := o.Version + 1

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(doc)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}
		if snap != nil && snap.Exists() {
			var stored order.Order
			if err := snap.DataTo(&stored); err != nil {
				return err
			}
			if stored.Version != o.Version {
				return fmt.Errorf("%w: %s (have %d, want %d)", order.ErrConflict, o.ID, stored.Version, o.Version)
			}
		}
		saved := o.Clone()
		saved.Version = newVersion
		return tx.Set(doc, saved)
	})
	if err != nil {
		if errors.Is(err, order.ErrConflict) {
			return err
		}
		return fmt.Errorf("saving order %s: %w", o.ID, err)
	}
	o.Version = newVersion
	return nil
}

// FindByTrackingCode queries orders on the shipping tracking code.
func (r *Repository) FindByTrackingCode(ctx context.Context, trackingCode string) (*order.Order, error) {
	iter := r.client.Collection(ordersCollection).
		Where("shipping.tracking_code", "==", trackingCode).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("%w: tracking code %s", order.ErrNotFound, trackingCode)
	}
	if err != nil {
		return nil, fmt.Errorf("querying tracking code %s: %w", trackingCode, err)
	}
	var o order.Order
	if err := snap.DataTo(&o); err != nil {
		return nil, fmt.Errorf("decoding order: %w", err)
	}
	return &o, nil
}

// SaveWaybill stores a waybill document keyed by tracking code.
func (r *Repository) SaveWaybill(ctx context.Context, w *order.Waybill) error {
	_, err := r.client.Collection(waybillsCollection).Doc(w.TrackingCode).Set(ctx, w)
	if err != nil {
		return fmt.Errorf("saving waybill %s: %w", w.TrackingCode, err)
	}
	return nil
}

// UpdateWaybillStatus mutates only the status field of a waybill document.
func (r *Repository) UpdateWaybillStatus(ctx context.Context, trackingCode string, s carrier.Status) error {
	_, err := r.client.Collection(waybillsCollection).Doc(trackingCode).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(s)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%w: waybill %s", order.ErrNotFound, trackingCode)
		}
		return fmt.Errorf("updating waybill %s: %w", trackingCode, err)
	}
	return nil
}

var _ order.Repository = (*Repository)(nil)
