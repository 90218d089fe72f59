package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// LogLevel represents the logging verbosity level
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// DebugCategory represents specific debug categories for targeted debugging
// of the gateway's two coupled subsystems (RTCP rewriting and SDP
// rewriting) plus the ambient ICE/keyframe-pacing concerns around them.
type DebugCategory string

const (
	DebugRTCP     DebugCategory = "rtcp"
	DebugSDP      DebugCategory = "sdp"
	DebugICE      DebugCategory = "ice"
	DebugKeyframe DebugCategory = "keyframe"
	DebugAll      DebugCategory = "all"
)

// Config holds logger configuration
type Config struct {
	Level             LogLevel
	Format            OutputFormat
	OutputFile        string
	EnabledCategories map[DebugCategory]bool
	mu                sync.RWMutex
}

// OutputFormat determines the log output format
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatText OutputFormat = "text"
)

// Global logger instance
var (
	defaultLogger *Logger
	once          sync.Once
)

// Logger wraps slog.Logger with category-based debugging
type Logger struct {
	*slog.Logger
	config *Config
	file   *os.File
}

// NewConfig creates a new logger configuration with defaults
func NewConfig() *Config {
	return &Config{
		Level:             LevelInfo,
		Format:            FormatText,
		OutputFile:        "",
		EnabledCategories: make(map[DebugCategory]bool),
	}
}

// ParseLevel converts a string to LogLevel
func ParseLevel(level string) (LogLevel, error) {
	switch level {
	case "debug", "DEBUG":
		return LevelDebug, nil
	case "info", "INFO":
		return LevelInfo, nil
	case "warn", "WARN", "warning", "WARNING":
		return LevelWarn, nil
	case "error", "ERROR":
		return LevelError, nil
	default:
		return "", fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", level)
	}
}

// ParseFormat converts a string to OutputFormat
func ParseFormat(format string) (OutputFormat, error) {
	switch format {
	case "json", "JSON":
		return FormatJSON, nil
	case "text", "TEXT":
		return FormatText, nil
	default:
		return "", fmt.Errorf("invalid log format: %s (must be json or text)", format)
	}
}

// ToSlogLevel converts LogLevel to slog.Level
func (l LogLevel) ToSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a new Logger instance with the given configuration
func New(cfg *Config) (*Logger, error) {
	var writer io.Writer = os.Stdout
	var file *os.File

	// Setup output file if specified
	if cfg.OutputFile != "" {
		f, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", cfg.OutputFile, err)
		}
		writer = f
		file = f
	}

	// Create handler based on format
	var handler slog.Handler
	handlerOpts := &slog.HandlerOptions{
		Level: cfg.Level.ToSlogLevel(),
	}

	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(writer, handlerOpts)
	case FormatText:
		handler = slog.NewTextHandler(writer, handlerOpts)
	default:
		handler = slog.NewTextHandler(writer, handlerOpts)
	}

	logger := &Logger{
		Logger: slog.New(handler),
		config: cfg,
		file:   file,
	}

	return logger, nil
}

// EnableCategory enables a specific debug category
func (c *Config) EnableCategory(category DebugCategory) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if category == DebugAll {
		// Enable all categories
		c.EnabledCategories[DebugRTCP] = true
		c.EnabledCategories[DebugSDP] = true
		c.EnabledCategories[DebugICE] = true
		c.EnabledCategories[DebugKeyframe] = true
	} else {
		c.EnabledCategories[category] = true
	}
}

// IsCategoryEnabled checks if a debug category is enabled
func (c *Config) IsCategoryEnabled(category DebugCategory) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.EnabledCategories[category]
}

// IsDebugEnabled checks if any debug category is enabled
func (c *Config) IsDebugEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.EnabledCategories) > 0
}

// Close closes the log file if one was opened
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Category-specific logging methods

// DebugRTCP logs compound RTCP rewriting details if RTCP debugging is enabled
func (l *Logger) DebugRTCP(msg string, args ...any) {
	if l.config.IsCategoryEnabled(DebugRTCP) {
		args = append([]any{"category", "rtcp"}, args...)
		l.Debug(msg, args...)
	}
}

// DebugSDP logs SDP extract/anonymize/merge details if SDP debugging is enabled
func (l *Logger) DebugSDP(msg string, args ...any) {
	if l.config.IsCategoryEnabled(DebugSDP) {
		args = append([]any{"category", "sdp"}, args...)
		l.Debug(msg, args...)
	}
}

// DebugICE logs ICE candidate/credential details if ICE debugging is enabled
func (l *Logger) DebugICE(msg string, args ...any) {
	if l.config.IsCategoryEnabled(DebugICE) {
		args = append([]any{"category", "ice"}, args...)
		l.Debug(msg, args...)
	}
}

// DebugKeyframe logs FIR/PLI pacing decisions if keyframe debugging is enabled
func (l *Logger) DebugKeyframe(msg string, args ...any) {
	if l.config.IsCategoryEnabled(DebugKeyframe) {
		args = append([]any{"category", "keyframe"}, args...)
		l.Debug(msg, args...)
	}
}

// DebugRTCPPacket logs a sub-packet's type/fmt/length as it is walked
func (l *Logger) DebugRTCPPacket(pktType uint8, fmtCode uint8, length int) {
	if l.config.IsCategoryEnabled(DebugRTCP) {
		l.Debug("rtcp sub-packet",
			"category", "rtcp",
			"type", pktType,
			"fmt", fmtCode,
			"name", feedbackName(pktType, fmtCode),
			"length_bytes", length)
	}
}

// DebugRTCPPayload logs raw RTCP FCI bytes
func (l *Logger) DebugRTCPPayload(pktType uint8, payload []byte) {
	if l.config.IsCategoryEnabled(DebugRTCP) {
		maxBytes := 32
		if len(payload) < maxBytes {
			maxBytes = len(payload)
		}
		l.Debug("rtcp fci",
			"category", "rtcp",
			"type", pktType,
			"fci_bytes", fmt.Sprintf("% x", payload[:maxBytes]),
			"total_size", len(payload))
	}
}

// DebugSDPSection logs a direction (offer/anonymize/merge) and its resulting size
func (l *Logger) DebugSDPSection(direction string, sizeBytes int) {
	if l.config.IsCategoryEnabled(DebugSDP) {
		l.Debug("sdp rewrite",
			"category", "sdp",
			"direction", direction,
			"size_bytes", sizeBytes)
	}
}

// WithContext returns a copy of the logger; ctx is not consulted and no
// context values are added
func (l *Logger) WithContext(ctx context.Context) *Logger {
	return &Logger{
		Logger: l.Logger,
		config: l.config,
		file:   l.file,
	}
}

// With returns a new Logger with the given attributes
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
		config: l.config,
		file:   l.file,
	}
}

// feedbackName maps an RTCP type/fmt pair to the name of the feedback
// message it carries, per the RFC 4585/5104 FMT assignments.
func feedbackName(pktType uint8, fmtCode uint8) string {
	switch pktType {
	case 200:
		return "SR"
	case 201:
		return "RR"
	case 202:
		return "SDES"
	case 203:
		return "BYE"
	case 204:
		return "APP"
	case 192:
		return "FIR-legacy"
	case 205:
		if fmtCode == 1 {
			return "NACK"
		}
		return fmt.Sprintf("RTPFB(%d)", fmtCode)
	case 206:
		switch fmtCode {
		case 1:
			return "PLI"
		case 4:
			return "FIR"
		case 15:
			return "REMB"
		default:
			return fmt.Sprintf("PSFB(%d)", fmtCode)
		}
	default:
		return fmt.Sprintf("unknown(%d)", pktType)
	}
}

// SetDefault sets the global default logger
func SetDefault(logger *Logger) {
	defaultLogger = logger
	slog.SetDefault(logger.Logger)
}

// Default returns the default logger, creating one if necessary
func Default() *Logger {
	once.Do(func() {
		cfg := NewConfig()
		logger, err := New(cfg)
		if err != nil {
			// Fallback to basic logger
			logger = &Logger{
				Logger: slog.Default(),
				config: cfg,
			}
		}
		defaultLogger = logger
	})
	return defaultLogger
}

// Package-level convenience functions

// Debug logs at Debug level using the default logger
func Debug(msg string, args ...any) {
	Default().Debug(msg, args...)
}

// Info logs at Info level using the default logger
func Info(msg string, args ...any) {
	Default().Info(msg, args...)
}

// Warn logs at Warn level using the default logger
func Warn(msg string, args ...any) {
	Default().Warn(msg, args...)
}

// Error logs at Error level using the default logger
func Error(msg string, args ...any) {
	Default().Error(msg, args...)
}
