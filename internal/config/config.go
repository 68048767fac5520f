// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/rovshanmuradov/margin-calculator/internal/format"
	"github.com/rovshanmuradov/margin-calculator/internal/position"
)

// Config holds the calculator defaults loaded from a config file and the
// environment. Rates are in percent here, as a user types them.
type Config struct {
	Amount         float64   `mapstructure:"amount"`
	LTV            float64   `mapstructure:"ltv"`
	Leverage       float64   `mapstructure:"leverage"`
	CollateralRate float64   `mapstructure:"collateral_rate"`
	BorrowRate     float64   `mapstructure:"borrow_rate"`
	Leverages      []float64 `mapstructure:"leverages"`
	DebugLogging   bool      `mapstructure:"debug_logging"`
	ExportDir      string    `mapstructure:"export_dir"`
	ExportFormats  []string  `mapstructure:"export_formats"`
	LogFile        string    `mapstructure:"log_file"`
}

const (
	DefaultAmount         = 100.0
	DefaultLTV            = 0.8
	DefaultCollateralRate = 13.76
	DefaultBorrowRate     = 10.97
	DefaultExportDir      = "exports"
	DefaultLogFile        = "logs/margincalc.log"

	EnvPrefix = "MARGIN_CALC"
)

// SupportedExportFormats lists the values accepted in export_formats.
var SupportedExportFormats = []string{"csv", "json"}

// LoadConfig reads defaults, then the file at path (if any), then
// MARGIN_CALC_* environment variables, and validates the result.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	defaults := map[string]interface{}{
		"amount":          DefaultAmount,
		"ltv":             DefaultLTV,
		"leverage":        0.0,
		"collateral_rate": DefaultCollateralRate,
		"borrow_rate":     DefaultBorrowRate,
		"leverages":       []float64{1, 2, 3, 4, 5},
		"debug_logging":   false,
		"export_dir":      DefaultExportDir,
		"export_formats":  []string{"csv"},
		"log_file":        DefaultLogFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config error: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}

	if err := loadEnvironmentLists(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadEnvironmentLists handles list values, which AutomaticEnv only
// delivers as a raw string. A single entry is a one element list.
func loadEnvironmentLists(cfg *Config) error {
	if raw, ok := os.LookupEnv(EnvPrefix + "_LEVERAGES"); ok && strings.TrimSpace(raw) != "" {
		levs, err := format.ParseLeverageList(raw)
		if err != nil {
			return fmt.Errorf("invalid %s_LEVERAGES: %w", EnvPrefix, err)
		}
		cfg.Leverages = levs
	}

	if raw, ok := os.LookupEnv(EnvPrefix + "_EXPORT_FORMATS"); ok && strings.TrimSpace(raw) != "" {
		var formats []string
		for _, f := range strings.Split(raw, ",") {
			clean := strings.TrimSpace(f)
			if clean != "" {
				formats = append(formats, clean)
			}
		}
		cfg.ExportFormats = formats
	}
	return nil
}

func (c *Config) validate() error {
	if c.Amount <= 0 {
		return errors.New("amount must be greater than 0")
	}

	maxLev, err := position.MaxLeverageFor(c.LTV)
	if err != nil {
		return fmt.Errorf("ltv: %w", err)
	}

	if c.Leverage != 0 && (c.Leverage < 1 || c.Leverage-maxLev > position.LeverageTolerance) {
		return fmt.Errorf("leverage must be between 1 and %s", format.Leverage(maxLev))
	}

	if c.CollateralRate < 0 || c.CollateralRate > 100 {
		return errors.New("collateral_rate must be between 0 and 100 percent")
	}
	if c.BorrowRate < 0 || c.BorrowRate > 100 {
		return errors.New("borrow_rate must be between 0 and 100 percent")
	}

	for _, lev := range c.Leverages {
		if lev < 1 {
			return fmt.Errorf("invalid leverages entry %g: must be at least 1", lev)
		}
	}

	for i, f := range c.ExportFormats {
		c.ExportFormats[i] = strings.ToLower(strings.TrimSpace(f))
		if !isSupportedFormat(c.ExportFormats[i]) {
			return fmt.Errorf("unsupported export format %q", f)
		}
	}

	if c.ExportDir == "" {
		c.ExportDir = DefaultExportDir
	}
	if c.LogFile == "" {
		c.LogFile = DefaultLogFile
	}
	return nil
}

func isSupportedFormat(f string) bool {
	for _, s := range SupportedExportFormats {
		if s == f {
			return true
		}
	}
	return false
}

// Params converts the configured inputs to position parameters.
// A zero leverage resolves to position.DefaultLeverage.
func (c *Config) Params() (position.Params, error) {
	leverage := c.Leverage
	if leverage == 0 {
		def, err := position.DefaultLeverage(c.LTV)
		if err != nil {
			return position.Params{}, err
		}
		leverage = def
	}

	return position.Params{
		Amount:         c.Amount,
		LTV:            c.LTV,
		Leverage:       leverage,
		CollateralRate: format.PercentToFraction(c.CollateralRate),
		BorrowRate:     format.PercentToFraction(c.BorrowRate),
	}, nil
}
