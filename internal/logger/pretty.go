// internal/logger/pretty.go
package logger

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Colors for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
)

func prettyEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		CallerKey:      "",
		StacktraceKey:  "",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    customLevelEncoder,
		EncodeTime:     customTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

// customLevelEncoder formats log levels with colors
func customLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch level {
	case zapcore.DebugLevel:
		enc.AppendString(fmt.Sprintf("%s[DEBUG]%s", ColorCyan, ColorReset))
	case zapcore.InfoLevel:
		enc.AppendString(fmt.Sprintf("%s[INFO]%s", ColorGreen, ColorReset))
	case zapcore.WarnLevel:
		enc.AppendString(fmt.Sprintf("%s[WARN]%s", ColorYellow, ColorReset))
	case zapcore.ErrorLevel:
		enc.AppendString(fmt.Sprintf("%s[ERROR]%s", ColorRed, ColorReset))
	case zapcore.FatalLevel:
		enc.AppendString(fmt.Sprintf("%s[FATAL]%s", ColorRed+ColorBold, ColorReset))
	default:
		enc.AppendString(fmt.Sprintf("[%s]", level.CapitalString()))
	}
}

// customTimeEncoder formats time in a readable way
func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05"))
}

func levelFor(debug bool) zapcore.Level {
	if debug {
		return zap.DebugLevel
	}
	return zap.InfoLevel
}

// NewPrettyCore builds the colored, message-only console core over w.
func NewPrettyCore(w io.Writer, level zapcore.LevelEnabler) zapcore.Core {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(prettyEncoderConfig()),
		zapcore.AddSync(w),
		level,
	)
	return &FieldFilterCore{core: core}
}

// CreatePrettyLogger creates a logger with user-friendly output on stdout.
// It fails only when the process has no stdout to write to.
func CreatePrettyLogger(debug bool) (*zap.Logger, error) {
	if os.Stdout == nil {
		return nil, errors.New("stdout is not available")
	}
	return zap.New(NewPrettyCore(zapcore.Lock(os.Stdout), levelFor(debug))), nil
}

// FormatMessage turns well-known log messages and their fields into a
// one-line summary for the console.
func FormatMessage(msg string, fields ...zap.Field) string {
	switch {
	case strings.Contains(msg, "Config loaded"):
		path := extractField(fields, "path")
		if path == "" {
			path = "defaults"
		}
		return fmt.Sprintf("%s⚙ Config loaded from %s%s", ColorBlue, path, ColorReset)

	case strings.Contains(msg, "Position evaluated"):
		apy := extractField(fields, "net_apy")
		lev := extractField(fields, "leverage")
		return fmt.Sprintf("%s📈 Position evaluated at %sx: net APY %s%%%s", ColorCyan, lev, apy, ColorReset)

	case strings.Contains(msg, "Invalid position input"):
		reason := extractField(fields, "error")
		return fmt.Sprintf("%s✗ Invalid input: %s%s", ColorRed, reason, ColorReset)

	case strings.Contains(msg, "Report exported"):
		file := extractField(fields, "file")
		return fmt.Sprintf("%s💾 Report exported: %s%s", ColorGreen, file, ColorReset)

	default:
		return msg
	}
}

// Helper functions
func extractField(fields []zapcore.Field, key string) string {
	for _, field := range fields {
		if field.Key != key {
			continue
		}
		switch field.Type {
		case zapcore.StringType:
			return field.String
		case zapcore.Float64Type:
			return fmt.Sprintf("%.2f", zapFloat(field))
		case zapcore.ErrorType:
			if err, ok := field.Interface.(error); ok {
				return err.Error()
			}
		}
		return fmt.Sprintf("%v", field.Interface)
	}
	return ""
}

func zapFloat(field zapcore.Field) float64 {
	return math.Float64frombits(uint64(field.Integer))
}

// FieldFilterCore wraps a zapcore.Core, drops structured fields and
// rewrites known messages with FormatMessage.
type FieldFilterCore struct {
	core   zapcore.Core
	fields []zapcore.Field
}

func (c *FieldFilterCore) Enabled(level zapcore.Level) bool {
	return c.core.Enabled(level)
}

func (c *FieldFilterCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &FieldFilterCore{core: c.core, fields: merged}
}

func (c *FieldFilterCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *FieldFilterCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	all := append(append([]zapcore.Field{}, c.fields...), fields...)

	cleanEntry := entry
	cleanEntry.Message = FormatMessage(entry.Message, all...)

	return c.core.Write(cleanEntry, nil)
}

func (c *FieldFilterCore) Sync() error {
	return c.core.Sync()
}
