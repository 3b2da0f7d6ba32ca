package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxcart/rxcart/internal/types"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Backend    BackendConfig    `validate:"required"`
	Search     SearchConfig     `validate:"required"`
	Pricing    PricingConfig    `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

// BackendConfig points at the ledger service that owns the catalog and the
// persisted order items. All calls carry the configured timeout.
type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `validate:"required"`
}

// SearchConfig tunes the catalog search debounce discipline
type SearchConfig struct {
	MinQueryLength   int           `mapstructure:"min_query_length" validate:"gte=1"`
	DebounceInterval time.Duration `mapstructure:"debounce_interval" validate:"required"`
}

// PricingConfig carries the point-of-sale tax rate as a decimal fraction,
// e.g. "0.10" for 10%.
type PricingConfig struct {
	TaxRate string `mapstructure:"tax_rate" validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/rxcart")

	// Set up environment variables support
	v.SetEnvPrefix("RXCART")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", types.ModeAPI)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("backend.timeout", 30*time.Second)
	v.SetDefault("search.min_query_length", 2)
	v.SetDefault("search.debounce_interval", 300*time.Millisecond)
	v.SetDefault("pricing.tax_rate", "0.10")
	v.SetDefault("logging.level", types.LogLevelInfo)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, err := c.Pricing.GetTaxRate(); err != nil {
		return err
	}
	return nil
}

// GetTaxRate parses the configured rate into a decimal
func (c PricingConfig) GetTaxRate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(c.TaxRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid pricing tax_rate %q: %w", c.TaxRate, err)
	}
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("pricing tax_rate must be non negative, got %s", rate)
	}
	return rate, nil
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or tests without a config file
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Backend: BackendConfig{
			BaseURL: "http://localhost:9090",
			Timeout: 30 * time.Second,
		},
		Search: SearchConfig{
			MinQueryLength:   2,
			DebounceInterval: 300 * time.Millisecond,
		},
		Pricing: PricingConfig{TaxRate: "0.10"},
		Logging: LoggingConfig{Level: types.LogLevelDebug},
	}
}
