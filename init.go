package main

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"github.com/vietcart/fulfillment/internal/address"
	"github.com/vietcart/fulfillment/internal/config"
	"github.com/vietcart/fulfillment/internal/order"
	"github.com/vietcart/fulfillment/internal/repo/firestoredb"
	"github.com/vietcart/fulfillment/internal/repo/memory"
	"github.com/vietcart/fulfillment/internal/shipping"
	"github.com/vietcart/fulfillment/internal/telemetry"
	"github.com/vietcart/fulfillment/pkg/carrier"
	"github.com/vietcart/fulfillment/pkg/carrier/jtexpress"
	"github.com/vietcart/fulfillment/pkg/carrier/spx"
	"github.com/vietcart/fulfillment/pkg/carrier/viettelpost"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return func(context.Context) error { return nil }, nil
	}

	_, shutdown, err := telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
	return shutdown, err
}

func initMetrics() *telemetry.Metrics {
	return telemetry.NewMetrics()
}

func initFeeTable() *carrier.FeeTable {
	return carrier.DefaultFeeTable()
}

func initCarrierRegistry(cfg *config.Config, logger *otelzap.Logger) *carrier.Registry {
	registry := carrier.NewRegistry()

	var tracer trace.Tracer

	if cfg.ViettelPostEnabled {
		vtp := viettelpost.New(viettelpost.Config{
			Token:   cfg.ViettelPostToken,
			BaseURL: cfg.ViettelPostBaseURL,
			UseMock: cfg.ViettelPostUseMock,
		}, logger, tracer)
		registry.Register(vtp)
	}

	if cfg.SPXEnabled {
		sp := spx.New(spx.Config{
			AppID:   cfg.SPXAppID,
			Secret:  cfg.SPXSecret,
			BaseURL: cfg.SPXBaseURL,
			UseMock: cfg.SPXUseMock,
		}, logger, tracer)
		registry.Register(sp)
	}

	if cfg.JTEnabled {
		jt := jtexpress.New(jtexpress.Config{
			CustomerCode: cfg.JTCustomerCode,
			Key:          cfg.JTKey,
			BaseURL:      cfg.JTBaseURL,
			UseMock:      cfg.JTUseMock,
		}, logger, tracer)
		registry.Register(jt)
	}

	return registry
}

func initResolver(cfg *config.Config) (*address.Resolver, error) {
	if cfg.AddressDataPath != "" {
		return address.LoadFile(cfg.AddressDataPath)
	}
	return address.Default(), nil
}

// initRepository picks the order store: Firestore when a project is
// configured, in-memory otherwise.
func initRepository(ctx context.Context, cfg *config.Config, logger *otelzap.Logger) (order.Repository, func(), error) {
	if cfg.FirestoreProject == "" {
		logger.Warn("no Firestore project configured, using in-memory store")
		return memory.New(), func() {}, nil
	}

	client, err := firestore.NewClient(ctx, cfg.FirestoreProject)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("connected to Firestore", zap.String("project", cfg.FirestoreProject))
	return firestoredb.New(client), func() { client.Close() }, nil
}

func senderSettings(cfg *config.Config) shipping.SenderSettings {
	return shipping.SenderSettings{
		Name:         cfg.SenderName,
		Phone:        cfg.SenderPhone,
		Street:       cfg.SenderStreet,
		ProvinceCode: cfg.SenderProvince,
		DistrictCode: cfg.SenderDistrict,
		WardCode:     cfg.SenderWard,
	}
}
