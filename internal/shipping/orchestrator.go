package shipping

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"github.com/vietcart/fulfillment/internal/address"
	"github.com/vietcart/fulfillment/internal/telemetry"
	"github.com/vietcart/fulfillment/pkg/carrier"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// fallbackETA is shown when a quote comes from the static table instead of a
// live carrier response.
const fallbackETA = "3-5 ngày"

// DefaultQuoteDeadline bounds the whole quote fan-out, shared across
// carriers.
const DefaultQuoteDeadline = 4 * time.Second

// Orchestrator fans a quote request out to every enabled carrier
// concurrently and degrades to fee-table fallbacks per carrier, so the
// caller always sees one quote per enabled provider.
type Orchestrator struct {
	registry *carrier.Registry
	fees     *carrier.FeeTable
	resolver *address.Resolver
	logger   *otelzap.Logger
	metrics  *telemetry.Metrics
	deadline time.Duration
}

// NewOrchestrator creates a quote orchestrator. deadline bounds the shared
// fan-out; zero means DefaultQuoteDeadline.
func NewOrchestrator(registry *carrier.Registry, fees *carrier.FeeTable, resolver *address.Resolver, logger *otelzap.Logger, metrics *telemetry.Metrics, deadline time.Duration) *Orchestrator {
	if deadline <= 0 {
		deadline = DefaultQuoteDeadline
	}
	return &Orchestrator{
		registry: registry,
		fees:     fees,
		resolver: resolver,
		logger:   logger,
		metrics:  metrics,
		deadline: deadline,
	}
}

// GetQuotes validates both endpoints, then quotes every registered carrier
// under one shared deadline. Adapter failure or timeout yields a fallback
// quote from the fee table for that same provider rather than dropping it.
// Results are sorted by fee ascending, ties broken by provider name.
//
// Address errors fail fast: no carrier is contacted on an incomplete or
// unknown location.
func (o *Orchestrator) GetQuotes(ctx context.Context, origin, destination carrier.Address, weightGrams int, codAmount int64) ([]carrier.Quote, error) {
	if _, err := o.resolver.Resolve(origin.ProvinceCode, origin.DistrictCode, origin.WardCode); err != nil {
		return nil, err
	}
	if _, err := o.resolver.Resolve(destination.ProvinceCode, destination.DistrictCode, destination.WardCode); err != nil {
		return nil, err
	}

	carriers := o.registry.All()
	quotes := make([]carrier.Quote, 0, len(carriers))
	mu := &sync.Mutex{}

	ctx, cancel := context.WithTimeout(ctx, o.deadline)
	defer cancel()

	req := &carrier.QuoteRequest{
		Origin:      origin,
		Destination: destination,
		WeightGrams: weightGrams,
		CODAmount:   codAmount,
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, c := range carriers {
		c := c
		g.Go(func() error {
			start := time.Now()
			quote, err := c.Quote(ctx, req)
			if err != nil {
				o.metrics.RecordRequest("quote", c.Name(), "fallback", time.Since(start).Seconds())
				o.logger.Warn("live quote failed, using fallback",
					zap.String("carrier", c.Name()),
					zap.Error(err),
				)
				quote = o.fallbackQuote(c.Name(), weightGrams)
				if quote == nil {
					return nil
				}
			} else {
				o.metrics.RecordRequest("quote", c.Name(), "live", time.Since(start).Seconds())
			}
			mu.Lock()
			quotes = append(quotes, *quote)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	sort.Slice(quotes, func(i, j int) bool {
		if quotes[i].Fee != quotes[j].Fee {
			return quotes[i].Fee < quotes[j].Fee
		}
		return quotes[i].Provider < quotes[j].Provider
	})
	return quotes, nil
}

// CheapestLive returns the lowest-fee live quote, or ErrNoLiveQuote when
// every carrier fell back.
func (o *Orchestrator) CheapestLive(ctx context.Context, origin, destination carrier.Address, weightGrams int, codAmount int64) (*carrier.Quote, error) {
	quotes, err := o.GetQuotes(ctx, origin, destination, weightGrams, codAmount)
	if err != nil {
		return nil, err
	}
	for _, q := range quotes {
		if q.Source == carrier.SourceLive {
			return &q, nil
		}
	}
	return nil, ErrNoLiveQuote
}

func (o *Orchestrator) fallbackQuote(provider string, weightGrams int) *carrier.Quote {
	fee, err := o.fees.Lookup(provider, weightGrams)
	if err != nil {
		// A registered carrier without a fee table is a configuration
		// mistake; surface it in logs rather than invent a price.
		o.logger.Error("no fallback table for carrier", zap.String("carrier", provider), zap.Error(err))
		return nil
	}
	return &carrier.Quote{
		Provider:    provider,
		ServiceCode: "STD",
		ServiceName: provider + " (bảng giá)",
		Fee:         fee,
		ETA:         fallbackETA,
		Source:      carrier.SourceFallback,
	}
}
