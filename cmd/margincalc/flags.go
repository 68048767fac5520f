package main

import (
	"flag"
	"fmt"

	"github.com/rovshanmuradov/margin-calculator/internal/config"
	"github.com/rovshanmuradov/margin-calculator/internal/export"
	"github.com/rovshanmuradov/margin-calculator/internal/format"
	"github.com/rovshanmuradov/margin-calculator/internal/position"
)

// options holds the raw command line values. Numeric flags are strings so
// they go through the same parsers as the form inputs; empty means unset.
type options struct {
	configPath     string
	amount         string
	ltv            string
	leverage       string
	collateralRate string
	borrowRate     string
	leverages      string
	export         string
	tui            bool
}

func parseFlags(fs *flag.FlagSet, args []string) (*options, error) {
	o := &options{}
	fs.StringVar(&o.configPath, "config", "", "Path to config file (JSON or YAML)")
	fs.StringVar(&o.amount, "amount", "", "Initial deposit, e.g. 100 or $1,000")
	fs.StringVar(&o.ltv, "ltv", "", "Loan-to-value ratio in (0, 1), e.g. 0.8")
	fs.StringVar(&o.leverage, "leverage", "", "Leverage multiplier, defaults to min(5, max leverage)")
	fs.StringVar(&o.collateralRate, "collateral-rate", "", "Annual collateral rate in percent, e.g. 13.76")
	fs.StringVar(&o.borrowRate, "borrow-rate", "", "Annual borrow rate in percent, e.g. 10.97")
	fs.StringVar(&o.leverages, "leverages", "", "Comma separated leverage menu, e.g. 1,2,3,4,5")
	fs.StringVar(&o.export, "export", "", "Comma separated export formats (csv,json)")
	fs.BoolVar(&o.tui, "tui", false, "Run the interactive calculator")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return o, nil
}

// run is what a single invocation computes from config and flags.
type run struct {
	params     position.Params
	candidates []float64
	formats    []export.Format
}

// resolve layers the flags over cfg. Flags win over config values.
func (o *options) resolve(cfg *config.Config) (run, error) {
	var err error

	if o.amount != "" {
		if cfg.Amount, err = format.ParseAmount(o.amount); err != nil {
			return run{}, fmt.Errorf("-amount: %w", err)
		}
	}
	if o.ltv != "" {
		if cfg.LTV, err = format.ParseFraction(o.ltv); err != nil {
			return run{}, fmt.Errorf("-ltv: %w", err)
		}
	}
	if o.leverage != "" {
		if cfg.Leverage, err = format.ParseLeverage(o.leverage); err != nil {
			return run{}, fmt.Errorf("-leverage: %w", err)
		}
	}

	params, err := cfg.Params()
	if err != nil {
		return run{}, err
	}

	if o.collateralRate != "" {
		if params.CollateralRate, err = format.ParsePercentRate(o.collateralRate); err != nil {
			return run{}, fmt.Errorf("-collateral-rate: %w", err)
		}
	}
	if o.borrowRate != "" {
		if params.BorrowRate, err = format.ParsePercentRate(o.borrowRate); err != nil {
			return run{}, fmt.Errorf("-borrow-rate: %w", err)
		}
	}

	candidates := cfg.Leverages
	if o.leverages != "" {
		if candidates, err = format.ParseLeverageList(o.leverages); err != nil {
			return run{}, fmt.Errorf("-leverages: %w", err)
		}
	}

	var formats []export.Format
	if o.export != "" {
		if formats, err = export.ParseFormats(splitList(o.export)); err != nil {
			return run{}, fmt.Errorf("-export: %w", err)
		}
	}

	return run{params: params, candidates: candidates, formats: formats}, nil
}
