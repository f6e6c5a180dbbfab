package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ANSI color codes
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
	Gray    = "\033[90m"

	BrightRed     = "\033[91m"
	BrightGreen   = "\033[92m"
	BrightYellow  = "\033[93m"
	BrightBlue    = "\033[94m"
	BrightMagenta = "\033[95m"
	BrightCyan    = "\033[96m"
	BrightWhite   = "\033[97m"
)

// ColoredLogger wraps zap.Logger with colored, component-tagged output
type ColoredLogger struct {
	*zap.Logger
	enableColors bool
}

// Component identifies the part of the client a log line comes from
type Component string

const (
	ComponentMarket   Component = "MARKET"
	ComponentWallet   Component = "WALLET"
	ComponentIPFS     Component = "IPFS"
	ComponentContract Component = "CONTRACT"
	ComponentGateway  Component = "GATEWAY"
	ComponentUI       Component = "UI"
	ComponentCLI      Component = "CLI"
	ComponentGeneral  Component = "GENERAL"
)

func getComponentColor(component Component) string {
	switch component {
	case ComponentMarket:
		return BrightBlue
	case ComponentWallet:
		return BrightMagenta
	case ComponentIPFS:
		return BrightYellow
	case ComponentContract:
		return BrightCyan
	case ComponentGateway:
		return BrightGreen
	case ComponentUI:
		return Cyan
	case ComponentCLI:
		return Blue
	case ComponentGeneral:
		return Yellow
	default:
		return White
	}
}

func getLevelColor(level zapcore.Level) string {
	switch level {
	case zapcore.DebugLevel:
		return Gray
	case zapcore.InfoLevel:
		return BrightWhite
	case zapcore.WarnLevel:
		return BrightYellow
	case zapcore.ErrorLevel:
		return BrightRed
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return Red
	default:
		return White
	}
}

var levelLetters = map[zapcore.Level]string{
	zapcore.DebugLevel: "D",
	zapcore.InfoLevel:  "I",
	zapcore.WarnLevel:  "W",
	zapcore.ErrorLevel: "E",
}

func paint(enable bool, color, s string) string {
	if !enable {
		return s
	}
	return color + s + Reset
}

// coloredConsoleEncoder builds the compact console encoder: "15:04:05 I file msg"
func coloredConsoleEncoder(enableColors bool) zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()

	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(paint(enableColors, Dim, t.Format("15:04:05")))
	}

	cfg.EncodeLevel = func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		letter, ok := levelLetters[level]
		if !ok {
			letter = "?"
		}
		enc.AppendString(paint(enableColors, getLevelColor(level)+Bold, letter))
	}

	cfg.EncodeCaller = func(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		file := strings.TrimSuffix(filepath.Base(caller.File), ".go")
		enc.AppendString(paint(enableColors, Dim, file))
	}

	return zapcore.NewConsoleEncoder(cfg)
}

// ParseLevel maps a config level string to a zap level. Unknown values yield info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func newLogger(w io.Writer, level zapcore.Level, enableColors bool) *ColoredLogger {
	core := zapcore.NewCore(coloredConsoleEncoder(enableColors), zapcore.AddSync(w), level)
	return &ColoredLogger{
		Logger:       zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)),
		enableColors: enableColors,
	}
}

// NewColoredLogger creates a debug-level logger writing to stdout
func NewColoredLogger(component Component, enableColors bool) (*ColoredLogger, error) {
	return newLogger(os.Stdout, zapcore.DebugLevel, enableColors), nil
}

// NewFileLogger creates a logger that appends to a file. Colors are usually
// disabled for files so the log stays greppable.
func NewFileLogger(component Component, filePath string, enableColors bool) (*ColoredLogger, error) {
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", filePath, err)
	}

	return newLogger(file, zapcore.DebugLevel, enableColors), nil
}

// NewLogger creates a logger at the given level. An empty outputFile logs to stdout.
func NewLogger(level, outputFile string) (*ColoredLogger, error) {
	if outputFile == "" {
		return newLogger(os.Stdout, ParseLevel(level), true), nil
	}
	l, err := NewFileLogger(ComponentGeneral, outputFile, false)
	if err != nil {
		return nil, err
	}
	l.Logger = l.Logger.WithOptions(zap.IncreaseLevel(ParseLevel(level)))
	return l, nil
}

// NewNopLogger returns a logger that discards everything. Used by tests.
func NewNopLogger() *ColoredLogger {
	return &ColoredLogger{Logger: zap.NewNop()}
}

func (l *ColoredLogger) tag(component Component, msg string) string {
	if l.enableColors {
		return fmt.Sprintf("%s[%s]%s %s", getComponentColor(component), component, Reset, msg)
	}
	return fmt.Sprintf("[%s] %s", component, msg)
}

// Component-specific logging methods
func (l *ColoredLogger) ComponentInfo(component Component, msg string, fields ...zap.Field) {
	l.Info(l.tag(component, msg), fields...)
}

func (l *ColoredLogger) ComponentWarn(component Component, msg string, fields ...zap.Field) {
	l.Warn(l.tag(component, msg), fields...)
}

func (l *ColoredLogger) ComponentError(component Component, msg string, fields ...zap.Field) {
	l.Error(l.tag(component, msg), fields...)
}

func (l *ColoredLogger) ComponentDebug(component Component, msg string, fields ...zap.Field) {
	l.Debug(l.tag(component, msg), fields...)
}
