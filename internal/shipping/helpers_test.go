package shipping_test

import (
	"github.com/vietcart/fulfillment/internal/address"
	"github.com/vietcart/fulfillment/internal/order"
	"github.com/vietcart/fulfillment/internal/repo/memory"
	"github.com/vietcart/fulfillment/internal/shipping"
	"github.com/vietcart/fulfillment/internal/telemetry"
	"github.com/vietcart/fulfillment/pkg/carrier"
	"github.com/vietcart/fulfillment/pkg/carrier/mock"
)

func testSender() shipping.SenderSettings {
	return shipping.SenderSettings{
		Name:         "VietCart Shop",
		Phone:        "0900000000",
		Street:       "12 Phúc Xá",
		ProvinceCode: "01",
		DistrictCode: "001",
		WardCode:     "00001",
	}
}

func pendingOrder(id string) *order.Order {
	return &order.Order{
		ID:     id,
		Status: carrier.StatusPending,
		Items: []order.Item{
			{SKU: "TSHIRT", Name: "Áo thun", Qty: 2, UnitPrice: 120000, WeightGrams: 300},
		},
		Customer: order.Customer{
			Name:         "Nguyễn Văn A",
			Phone:        "0911111111",
			Address:      "45 Lê Lợi",
			ProvinceCode: "79",
			DistrictCode: "760",
			WardCode:     "26734",
		},
		Totals: order.Totals{Subtotal: 240000, Total: 240000},
	}
}

type fixture struct {
	repo     *memory.Repository
	registry *carrier.Registry
	carrier  *mock.Client
	quotes   *shipping.Orchestrator
	waybills *shipping.WaybillService
	bulk     *shipping.BulkRunner
}

// newFixture wires a service stack around a single mock carrier with a
// fee-table entry, backed by the in-memory store.
func newFixture(carrierName string) *fixture {
	logger := telemetry.NopLogger()
	metrics := telemetry.NewTestMetrics()

	c := mock.New(carrierName)
	registry := carrier.NewRegistry()
	registry.Register(c)

	fees := carrier.NewFeeTable()
	fees.Set(carrierName, 5000, []carrier.Bracket{
		{CeilingGrams: 1000, Price: 18000},
		{CeilingGrams: 2000, Price: 23000},
	})

	resolver := address.Default()
	repo := memory.New()

	quotes := shipping.NewOrchestrator(registry, fees, resolver, logger, metrics, 0)
	waybills := shipping.NewWaybillService(repo, registry, quotes, resolver, testSender(), logger, metrics)
	bulk := shipping.NewBulkRunner(waybills, repo, registry, logger, 4)

	return &fixture{
		repo:     repo,
		registry: registry,
		carrier:  c,
		quotes:   quotes,
		waybills: waybills,
		bulk:     bulk,
	}
}
