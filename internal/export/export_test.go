package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rovshanmuradov/margin-calculator/internal/position"
	"github.com/rovshanmuradov/margin-calculator/internal/sensitivity"
)

func generateTestReport(t *testing.T) sensitivity.Report {
	t.Helper()
	base, err := position.New(position.Params{
		Amount:         100,
		LTV:            0.8,
		Leverage:       5,
		CollateralRate: 0.1376,
		BorrowRate:     0.1097,
	})
	require.NoError(t, err)

	report, err := sensitivity.NewReport(base, sensitivity.DefaultLeverages(base))
	require.NoError(t, err)
	return report
}

func newTestExporter(logger *zap.Logger) *ReportExporter {
	exporter := NewReportExporter(logger)
	exporter.now = func() time.Time {
		return time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	}
	return exporter
}

func TestReportExportCSV(t *testing.T) {
	exporter := newTestExporter(zap.NewNop())
	tempDir := t.TempDir()
	report := generateTestReport(t)

	paths, err := exporter.ExportReport(context.Background(), report, Options{
		Formats:   []Format{FormatCSV},
		OutputDir: tempDir,
	})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(tempDir, "margin_report_20261018_093000.csv"), paths[0])

	file, err := os.Open(paths[0])
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(report.Rows)+1)
	assert.Equal(t, sensitivity.CSVHeaders(), records[0])
	assert.Equal(t, "1.000000", records[1][0])
	assert.Equal(t, "500.000000", records[5][1])
}

func TestReportExportJSON(t *testing.T) {
	exporter := newTestExporter(zap.NewNop())
	tempDir := t.TempDir()
	report := generateTestReport(t)

	paths, err := exporter.ExportReport(context.Background(), report, Options{
		Formats:   []Format{FormatJSON},
		OutputDir: tempDir,
		Prefix:    "what_if",
	})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.True(t, strings.HasPrefix(filepath.Base(paths[0]), "what_if_"))

	content, err := os.ReadFile(paths[0])
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(content, &doc))
	assert.Equal(t, len(report.Rows), doc.RowCount)
	assert.Equal(t, report.Rows, doc.Rows)
	assert.InDelta(t, 24.92, doc.Position.NetAPY, 1e-9)
	assert.InDelta(t, 500.0, doc.Position.Deposit, 1e-9)
}

func TestReportExportAllFormats(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	exporter := newTestExporter(zap.New(core))
	tempDir := t.TempDir()

	paths, err := exporter.ExportReport(context.Background(), generateTestReport(t), Options{
		Formats:   []Format{FormatJSON, FormatCSV, FormatJSON},
		OutputDir: filepath.Join(tempDir, "nested"),
	})
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, ".json", filepath.Ext(paths[0]))
	assert.Equal(t, ".csv", filepath.Ext(paths[1]))

	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}

	assert.Equal(t, 2, logs.FilterMessage("Report exported").Len())
}

func TestReportExportDefaultsToCSV(t *testing.T) {
	exporter := newTestExporter(zap.NewNop())

	paths, err := exporter.ExportReport(context.Background(), generateTestReport(t), Options{
		OutputDir: t.TempDir(),
	})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, ".csv", filepath.Ext(paths[0]))
}

func TestReportExportEmptyReport(t *testing.T) {
	exporter := newTestExporter(zap.NewNop())

	_, err := exporter.ExportReport(context.Background(), sensitivity.Report{}, Options{
		OutputDir: t.TempDir(),
	})
	assert.ErrorIs(t, err, ErrEmptyReport)
}

func TestReportExportUnsupportedFormat(t *testing.T) {
	exporter := newTestExporter(zap.NewNop())

	_, err := exporter.ExportReport(context.Background(), generateTestReport(t), Options{
		Formats:   []Format{"xml"},
		OutputDir: t.TempDir(),
	})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReportExportOutputDirIsFile(t *testing.T) {
	exporter := newTestExporter(zap.NewNop())
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := exporter.ExportReport(context.Background(), generateTestReport(t), Options{
		OutputDir: blocker,
	})
	assert.Error(t, err)
}

func TestWriteFileDoesNotRetryPermanentErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	exporter := newTestExporter(zap.New(core))

	missing := filepath.Join(t.TempDir(), "missing", "report.csv")
	err := exporter.writeFile(context.Background(), missing, func(w io.Writer) error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, 0, logs.FilterMessage("Retrying report file creation").Len())
}

func TestParseFormats(t *testing.T) {
	formats, err := ParseFormats([]string{"CSV", " json "})
	require.NoError(t, err)
	assert.Equal(t, []Format{FormatCSV, FormatJSON}, formats)

	_, err = ParseFormats([]string{"csv", "pdf"})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
