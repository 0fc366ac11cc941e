package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Quoting and bulk operations
	QuoteDeadline time.Duration `envconfig:"QUOTE_DEADLINE" default:"4s"`
	BulkWorkers   int           `envconfig:"BULK_WORKERS" default:"6"`

	// Address reference data; empty means the bundled dataset
	AddressDataPath string `envconfig:"ADDRESS_DATA_PATH"`

	// Persistence. Empty project means the in-memory store (dev profile).
	FirestoreProject string `envconfig:"FIRESTORE_PROJECT"`

	// Process-wide sender (shop) settings
	SenderName     string `envconfig:"SENDER_NAME"`
	SenderPhone    string `envconfig:"SENDER_PHONE"`
	SenderStreet   string `envconfig:"SENDER_STREET"`
	SenderProvince string `envconfig:"SENDER_PROVINCE"`
	SenderDistrict string `envconfig:"SENDER_DISTRICT"`
	SenderWard     string `envconfig:"SENDER_WARD"`

	// Viettel Post
	ViettelPostToken   string `envconfig:"VIETTELPOST_TOKEN"`
	ViettelPostBaseURL string `envconfig:"VIETTELPOST_BASE_URL" default:"https://partner.viettelpost.vn/v2"`
	ViettelPostEnabled bool   `envconfig:"VIETTELPOST_ENABLED" default:"true"`
	ViettelPostUseMock bool   `envconfig:"VIETTELPOST_USE_MOCK" default:"false"`

	// SPX
	SPXAppID   string `envconfig:"SPX_APP_ID"`
	SPXSecret  string `envconfig:"SPX_SECRET"`
	SPXBaseURL string `envconfig:"SPX_BASE_URL" default:"https://open.spx.vn"`
	SPXEnabled bool   `envconfig:"SPX_ENABLED" default:"true"`
	SPXUseMock bool   `envconfig:"SPX_USE_MOCK" default:"false"`

	// J&T Express
	JTCustomerCode string `envconfig:"JT_CUSTOMER_CODE"`
	JTKey          string `envconfig:"JT_KEY"`
	JTBaseURL      string `envconfig:"JT_BASE_URL" default:"https://api.jtexpress.vn"`
	JTEnabled      bool   `envconfig:"JT_ENABLED" default:"true"`
	JTUseMock      bool   `envconfig:"JT_USE_MOCK" default:"false"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"vietcart-fulfillment"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from the environment, after loading a local .env
// file when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("viettelpost.enabled", c.ViettelPostEnabled),
		attribute.Bool("spx.enabled", c.SPXEnabled),
		attribute.Bool("jtexpress.enabled", c.JTEnabled),
	}
}
