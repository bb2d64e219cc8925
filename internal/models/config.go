package models

import "time"

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Storage  StorageConfig
	Seed     SeedConfig
	HTTP     HTTPConfig
	Kafka    KafkaConfig
	Formance FormanceConfig
	Prime    PrimeConfig
	Geocoder GeocoderConfig
	Sweeper  SweeperConfig
}

// Storage backends
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// DatabaseConfig holds SQLite connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// StorageConfig selects the snapshot backend
type StorageConfig struct {
	Backend     string
	PostgresURL string
}

// SeedConfig points at an optional YAML file replacing the built-in mock data
type SeedConfig struct {
	File string
}

// HTTPConfig holds API server settings
type HTTPConfig struct {
	Addr            string
	ExposeMetrics   bool
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// KafkaConfig holds change-event publisher settings. No brokers disables publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FormanceConfig holds Formance Stack credentials. An empty StackURL selects the simulated ledger.
type FormanceConfig struct {
	StackURL     string
	ClientID     string
	ClientSecret string
	LedgerName   string
}

// PrimeConfig holds Coinbase Prime credentials used for crypto checkouts
type PrimeConfig struct {
	AccessKey  string
	Passphrase string
	SigningKey string
}

// Enabled reports whether all Prime credentials are present
func (c PrimeConfig) Enabled() bool {
	return c.AccessKey != "" && c.Passphrase != "" && c.SigningKey != ""
}

// GeocoderConfig holds the Nominatim endpoint. An empty URL selects the simulated geocoder.
type GeocoderConfig struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
}

// SweeperConfig holds the overdue-invoice sweep settings
type SweeperConfig struct {
	Interval time.Duration
}
