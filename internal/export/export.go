package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/margin-calculator/internal/position"
	"github.com/rovshanmuradov/margin-calculator/internal/sensitivity"
)

// Format represents the export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

const (
	DefaultPrefix = "margin_report"
	maxOpenTries  = 3
)

var (
	ErrEmptyReport       = errors.New("report has no sensitivity rows")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// ParseFormat maps a config or flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, s)
	}
}

// ParseFormats maps every entry with ParseFormat.
func ParseFormats(values []string) ([]Format, error) {
	formats := make([]Format, 0, len(values))
	for _, v := range values {
		f, err := ParseFormat(v)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

// Options configures the export behavior
type Options struct {
	Formats   []Format
	OutputDir string
	Prefix    string // file name prefix, DefaultPrefix when empty
}

// ReportExporter writes sensitivity reports to disk
type ReportExporter struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewReportExporter creates a new report exporter
func NewReportExporter(logger *zap.Logger) *ReportExporter {
	return &ReportExporter{
		logger: logger,
		now:    time.Now,
	}
}

// ExportReport writes report once per requested format and returns the
// written paths in the order of opts.Formats.
func (re *ReportExporter) ExportReport(ctx context.Context, report sensitivity.Report, opts Options) ([]string, error) {
	if len(report.Rows) == 0 {
		return nil, ErrEmptyReport
	}
	opts.Formats = uniqueFormats(opts.Formats)
	if len(opts.Formats) == 0 {
		opts.Formats = []Format{FormatCSV}
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	stamp := re.now().Format("20060102_150405")
	paths := make([]string, len(opts.Formats))

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)

	for i, format := range opts.Formats {
		g.Go(func() error {
			outputPath := filepath.Join(opts.OutputDir, re.generateFilename(opts.Prefix, stamp, format))

			var write func(io.Writer) error
			switch format {
			case FormatCSV:
				write = func(w io.Writer) error { return writeCSV(w, report.Rows) }
			case FormatJSON:
				write = func(w io.Writer) error { return writeJSON(w, report, re.now()) }
			default:
				return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
			}

			if err := re.writeFile(gCtx, outputPath, write); err != nil {
				return err
			}

			mu.Lock()
			paths[i] = outputPath
			mu.Unlock()

			re.logger.Info("Report exported",
				zap.String("file", outputPath),
				zap.Int("rows", len(report.Rows)),
				zap.String("format", string(format)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return paths, nil
}

func uniqueFormats(formats []Format) []Format {
	seen := make(map[Format]bool, len(formats))
	out := make([]Format, 0, len(formats))
	for _, f := range formats {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// generateFilename creates a filename based on export options
func (re *ReportExporter) generateFilename(prefix, stamp string, format Format) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return fmt.Sprintf("%s_%s.%s", prefix, stamp, format)
}

// writeFile creates path, retrying transient failures, and streams write into it.
func (re *ReportExporter) writeFile(ctx context.Context, path string, write func(io.Writer) error) error {
	notify := func(err error, d time.Duration) {
		re.logger.Warn("Retrying report file creation",
			zap.String("file", path),
			zap.Error(err),
			zap.Duration("backoff", d))
	}

	open := func() (*os.File, error) {
		file, err := os.Create(path)
		if err != nil {
			if errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return file, nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 50 * time.Millisecond

	file, err := backoff.Retry(ctx, open,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(maxOpenTries),
		backoff.WithNotify(notify))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// writeCSV writes the header and one record per row
func writeCSV(w io.Writer, rows []sensitivity.Row) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(sensitivity.CSVHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i := range rows {
		if err := writer.Write(rows[i].ToCSV()); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// Document is the JSON export layout.
type Document struct {
	ExportTime  time.Time         `json:"export_time"`
	GeneratedAt time.Time         `json:"generated_at"`
	Position    position.Metrics  `json:"position"`
	RowCount    int               `json:"row_count"`
	Rows        []sensitivity.Row `json:"rows"`
}

// writeJSON writes the report with metadata as indented JSON
func writeJSON(w io.Writer, report sensitivity.Report, exportTime time.Time) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	doc := Document{
		ExportTime:  exportTime,
		GeneratedAt: report.GeneratedAt,
		Position:    report.Position,
		RowCount:    len(report.Rows),
		Rows:        report.Rows,
	}

	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
