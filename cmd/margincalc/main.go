package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/margin-calculator/internal/config"
	"github.com/rovshanmuradov/margin-calculator/internal/export"
	"github.com/rovshanmuradov/margin-calculator/internal/logger"
	"github.com/rovshanmuradov/margin-calculator/internal/position"
	"github.com/rovshanmuradov/margin-calculator/internal/sensitivity"
	"github.com/rovshanmuradov/margin-calculator/internal/ui"
	"github.com/rovshanmuradov/margin-calculator/internal/ui/screen"
	"github.com/rovshanmuradov/margin-calculator/internal/ui/style"
)

func main() {
	opts, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	// Create context with signal handling
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.CreatePrettyLogger(cfg.DebugLogging)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() {
		_ = appLogger.Sync()
	}()

	path := opts.configPath
	if path == "" {
		path = "defaults"
	}
	appLogger.Info("Config loaded", zap.String("path", path))

	r, err := opts.resolve(cfg)
	if err != nil {
		if position.IsInvalidInput(err) {
			appLogger.Error("Invalid position input", zap.Error(err))
		} else {
			appLogger.Error("Invalid arguments", zap.Error(err))
		}
		os.Exit(1)
	}

	if opts.tui {
		os.Exit(runTUI(rootCtx, cfg, r))
	}

	if err := runReport(rootCtx, os.Stdout, appLogger, cfg, r); err != nil {
		if position.IsInvalidInput(err) {
			appLogger.Error("Invalid position input", zap.Error(err))
		} else {
			appLogger.Error("Report failed", zap.Error(err))
		}
		os.Exit(1)
	}
}

// runReport evaluates the position once, prints it and optionally exports it.
func runReport(ctx context.Context, out io.Writer, appLogger *zap.Logger, cfg *config.Config, r run) error {
	base, err := position.New(r.params)
	if err != nil {
		return err
	}

	report, err := sensitivity.NewReport(base, sensitivity.WithMaxLeverage(base, r.candidates))
	if err != nil {
		return err
	}

	appLogger.Info("Position evaluated",
		zap.Float64("leverage", base.Leverage()),
		zap.Float64("net_apy", base.NetAPY()),
		zap.Int("rows", len(report.Rows)))

	fmt.Fprintln(out, style.TitleStyle.Render("Margin Position Calculator"))
	fmt.Fprintln(out, style.SubHeaderStyle.Render("Key Metrics"))
	fmt.Fprintln(out, screen.RenderMetrics(base))
	fmt.Fprintln(out, style.SubHeaderStyle.Render("Leverage Sensitivity"))
	fmt.Fprintln(out, screen.RenderSensitivity(report.Rows, base.Leverage(), 0))

	if len(r.formats) == 0 {
		return nil
	}
	if len(report.Rows) == 0 {
		appLogger.Warn("No leverage fits the LTV, nothing to export")
		return nil
	}

	exporter := export.NewReportExporter(appLogger)
	_, err = exporter.ExportReport(ctx, report, export.Options{
		Formats:   r.formats,
		OutputDir: cfg.ExportDir,
	})
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	return nil
}

// runTUI runs the interactive calculator and returns the exit code.
func runTUI(ctx context.Context, cfg *config.Config, r run) int {
	appLogger, closeLog, err := logger.CreateFileLogger(cfg.DebugLogging, cfg.LogFile)
	if err != nil {
		log.Printf("Failed to init logger: %v", err)
		return 1
	}
	defer func() {
		_ = closeLog()
	}()

	formats := r.formats
	if len(formats) == 0 {
		if formats, err = export.ParseFormats(cfg.ExportFormats); err != nil {
			appLogger.Error("Invalid export formats", zap.Error(err))
			return 1
		}
	}

	calcCfg := screen.CalculatorConfig{
		Params:    r.params,
		Leverages: r.candidates,
		Export: export.Options{
			Formats:   formats,
			OutputDir: cfg.ExportDir,
		},
	}
	exporter := export.NewReportExporter(appLogger)

	appLogger.Info("Starting calculator UI")
	handler := ui.NewRecoveryHandler(appLogger, func() (tea.Model, []tea.ProgramOption) {
		calc := screen.NewCalculator(ctx, calcCfg, exporter, appLogger)
		return ui.NewSafeUIWrapper(calc, appLogger), []tea.ProgramOption{tea.WithAltScreen()}
	})

	// Quit the running program as soon as a signal arrives.
	stopUI := context.AfterFunc(ctx, handler.Stop)
	defer stopUI()

	if err := handler.RunWithRecovery(ctx); err != nil {
		appLogger.Error("Calculator UI failed", zap.Error(err))
		log.Printf("Calculator UI failed: %v", err)
		return 1
	}
	appLogger.Info("Calculator UI stopped")
	return 0
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if clean := strings.TrimSpace(part); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}
