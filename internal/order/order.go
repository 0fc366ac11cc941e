// Package order holds the canonical order model, its status machine and the
// persistence port.
package order

import (
	"time"

	"github.com/vietcart/fulfillment/pkg/carrier"
)

// Item is one order line.
type Item struct {
	SKU         string `json:"sku" firestore:"sku"`
	Name        string `json:"name" firestore:"name"`
	Qty         int    `json:"qty" firestore:"qty"`
	UnitPrice   int64  `json:"unit_price" firestore:"unit_price"`
	WeightGrams int    `json:"weight_grams" firestore:"weight_grams"`
}

// Customer is the receiver of an order.
type Customer struct {
	Name         string `json:"name" firestore:"name"`
	Phone        string `json:"phone" firestore:"phone"`
	Address      string `json:"address" firestore:"address"`
	ProvinceCode string `json:"province_code" firestore:"province_code"`
	DistrictCode string `json:"district_code" firestore:"district_code"`
	WardCode     string `json:"ward_code" firestore:"ward_code"`
}

// Totals are the order's money fields, in VND.
type Totals struct {
	Subtotal    int64 `json:"subtotal" firestore:"subtotal"`
	ShippingFee int64 `json:"shipping_fee" firestore:"shipping_fee"`
	Discount    int64 `json:"discount" firestore:"discount"`
	Total       int64 `json:"total" firestore:"total"`
}

// Shipping holds the order's carrier-facing fields.
type Shipping struct {
	Provider     string `json:"provider" firestore:"provider"`
	ServiceCode  string `json:"service_code" firestore:"service_code"`
	TrackingCode string `json:"tracking_code" firestore:"tracking_code"`
	ETA          string `json:"eta" firestore:"eta"`
	LastError    string `json:"last_error" firestore:"last_error"`
}

// Transition is one recorded status change, kept for audit.
type Transition struct {
	From   carrier.Status `json:"from" firestore:"from"`
	To     carrier.Status `json:"to" firestore:"to"`
	Source string         `json:"source" firestore:"source"` // "confirm", "cancel", "webhook:<provider>"
	At     time.Time      `json:"at" firestore:"at"`
}

// Order is the single normalized order shape. Alias field names used by
// legacy clients are mapped away at the repository boundary; the core never
// branches on them.
type Order struct {
	ID          string         `json:"id" firestore:"id"`
	Status      carrier.Status `json:"status" firestore:"status"`
	Items       []Item         `json:"items" firestore:"items"`
	Customer    Customer       `json:"customer" firestore:"customer"`
	Totals      Totals         `json:"totals" firestore:"totals"`
	Shipping    Shipping       `json:"shipping" firestore:"shipping"`
	Transitions []Transition   `json:"transitions" firestore:"transitions"`
	Version     int64          `json:"version" firestore:"version"`
	CreatedAt   time.Time      `json:"created_at" firestore:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" firestore:"updated_at"`
}

// WeightGrams sums the item weights.
func (o *Order) WeightGrams() int {
	var total int
	for _, it := range o.Items {
		total += it.WeightGrams * it.Qty
	}
	return total
}

// RecomputeTotal re-derives Totals.Total from its parts, clamped at zero.
func (o *Order) RecomputeTotal() {
	total := o.Totals.Subtotal + o.Totals.ShippingFee - o.Totals.Discount
	if total < 0 {
		total = 0
	}
	o.Totals.Total = total
}

// Clone returns a deep copy, so repository callers can mutate freely.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = append([]Item(nil), o.Items...)
	c.Transitions = append([]Transition(nil), o.Transitions...)
	return &c
}

// Waybill is the persisted carrier-side shipment record. Created once per
// successful carrier call; only Status changes afterwards, driven by
// webhooks.
type Waybill struct {
	TrackingCode string         `json:"tracking_code" firestore:"tracking_code"`
	Provider     string         `json:"provider" firestore:"provider"`
	ServiceCode  string         `json:"service_code" firestore:"service_code"`
	OrderID      string         `json:"order_id" firestore:"order_id"`
	Fee          int64          `json:"fee" firestore:"fee"`
	Status       carrier.Status `json:"status" firestore:"status"`
	RawPayload   []byte         `json:"raw_payload_snapshot" firestore:"raw_payload_snapshot"`
	CreatedAt    time.Time      `json:"created_at" firestore:"created_at"`
}
