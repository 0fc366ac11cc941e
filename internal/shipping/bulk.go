package shipping

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"github.com/vietcart/fulfillment/internal/order"
	"github.com/vietcart/fulfillment/pkg/carrier"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultBulkWorkers bounds in-flight items per bulk run; carriers rate
// limit aggressively.
const DefaultBulkWorkers = 6

// ItemResult is the outcome for one order in a bulk run.
type ItemResult struct {
	OrderID string `json:"order_id"`
	OK      bool   `json:"ok"`
	Skipped bool   `json:"skipped,omitempty"`
	Warning string `json:"warning,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ProviderLabel is one print document covering a provider's waybills.
type ProviderLabel struct {
	Provider string `json:"provider"`
	URL      string `json:"url"`
}

// PrintResult is the outcome of a bulk print run.
type PrintResult struct {
	Items  []ItemResult    `json:"items"`
	Labels []ProviderLabel `json:"labels"`
}

// BulkRunner drives confirm/print/cancel across a set of orders with a
// fixed-size worker pool. One failing order never aborts the batch; every
// item gets its own result.
type BulkRunner struct {
	waybills *WaybillService
	repo     order.Repository
	registry *carrier.Registry
	logger   *otelzap.Logger
	workers  int
}

// NewBulkRunner creates a bulk runner. workers <= 0 means
// DefaultBulkWorkers.
func NewBulkRunner(waybills *WaybillService, repo order.Repository, registry *carrier.Registry, logger *otelzap.Logger, workers int) *BulkRunner {
	if workers <= 0 {
		workers = DefaultBulkWorkers
	}
	return &BulkRunner{
		waybills: waybills,
		repo:     repo,
		registry: registry,
		logger:   logger,
		workers:  workers,
	}
}

// RunConfirm creates waybills for every order in the set.
func (r *BulkRunner) RunConfirm(ctx context.Context, orderIDs []string) []ItemResult {
	return r.run(ctx, orderIDs, func(ctx context.Context, id string) ItemResult {
		if _, err := r.waybills.Create(ctx, id); err != nil {
			return ItemResult{OrderID: id, Error: err.Error()}
		}
		return ItemResult{OrderID: id, OK: true}
	})
}

// RunCancel cancels every order in the set. Orders without a tracking code
// are reported as skipped, not failed.
func (r *BulkRunner) RunCancel(ctx context.Context, orderIDs []string) []ItemResult {
	return r.run(ctx, orderIDs, func(ctx context.Context, id string) ItemResult {
		res, err := r.waybills.Cancel(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNoTrackingCode) {
				return ItemResult{OrderID: id, Skipped: true, Error: err.Error()}
			}
			return ItemResult{OrderID: id, Error: err.Error()}
		}
		return ItemResult{OrderID: id, OK: true, Warning: res.Warning}
	})
}

// RunPrint collects tracking codes across the set and issues one print
// request per provider. Orders without a tracking code are skipped, not
// failed; a provider whose print call fails flips all its items to failed.
func (r *BulkRunner) RunPrint(ctx context.Context, orderIDs []string) *PrintResult {
	var mu sync.Mutex
	trackingByOrder := make(map[string]string, len(orderIDs))
	providerByOrder := make(map[string]string, len(orderIDs))

	items := r.run(ctx, orderIDs, func(ctx context.Context, id string) ItemResult {
		o, err := r.repo.Load(ctx, id)
		if err != nil {
			return ItemResult{OrderID: id, Error: err.Error()}
		}
		if o.Shipping.TrackingCode == "" {
			return ItemResult{OrderID: id, Skipped: true, Error: "no tracking code"}
		}
		mu.Lock()
		trackingByOrder[id] = o.Shipping.TrackingCode
		providerByOrder[id] = o.Shipping.Provider
		mu.Unlock()
		return ItemResult{OrderID: id, OK: true}
	})

	codesByProvider := make(map[string][]string)
	for _, id := range orderIDs {
		if tracking, ok := trackingByOrder[id]; ok {
			provider := providerByOrder[id]
			codesByProvider[provider] = append(codesByProvider[provider], tracking)
		}
	}

	providers := make([]string, 0, len(codesByProvider))
	for provider := range codesByProvider {
		providers = append(providers, provider)
	}
	sort.Strings(providers)

	result := &PrintResult{Items: items}
	for _, provider := range providers {
		url, err := r.printProvider(ctx, provider, codesByProvider[provider])
		if err != nil {
			r.logger.Warn("bulk print failed for provider",
				zap.String("carrier", provider),
				zap.Error(err),
			)
			for i := range result.Items {
				item := &result.Items[i]
				if item.OK && providerByOrder[item.OrderID] == provider {
					item.OK = false
					item.Error = err.Error()
				}
			}
			continue
		}
		result.Labels = append(result.Labels, ProviderLabel{Provider: provider, URL: url})
	}
	return result
}

func (r *BulkRunner) printProvider(ctx context.Context, provider string, trackingCodes []string) (string, error) {
	c, err := r.registry.Get(provider)
	if err != nil {
		return "", err
	}
	printer, ok := c.(carrier.LabelPrinter)
	if !ok {
		return "", carrier.ErrPrintNotSupported
	}
	return printer.PrintLabels(ctx, trackingCodes)
}

// run executes op per order with bounded concurrency, preserving input
// order in the result slice.
func (r *BulkRunner) run(ctx context.Context, orderIDs []string, op func(ctx context.Context, id string) ItemResult) []ItemResult {
	results := make([]ItemResult, len(orderIDs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, id := range orderIDs {
		i, id := i, id
		g.Go(func() error {
			results[i] = op(ctx, id)
			return nil
		})
	}
	g.Wait()
	return results
}
