package logger

import (
	"flag"
	"fmt"
	"strings"
)

// Flags holds all logging-related command-line flags
type Flags struct {
	LogLevel      string
	LogFormat     string
	LogFile       string
	DebugRTCP     bool
	DebugSDP      bool
	DebugICE      bool
	DebugKeyframe bool
	DebugAll      bool
}

// RegisterFlags registers logging flags with the given FlagSet
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}

	fs.StringVar(&f.LogLevel, "log-level", "info",
		"Log level: debug, info, warn, error")
	fs.StringVar(&f.LogLevel, "l", "info",
		"Log level (shorthand)")

	fs.StringVar(&f.LogFormat, "log-format", "text",
		"Log output format: text, json")

	fs.StringVar(&f.LogFile, "log-file", "",
		"Log output file path (default: stdout)")
	fs.StringVar(&f.LogFile, "o", "",
		"Log output file path (shorthand)")

	// Debug category flags
	fs.BoolVar(&f.DebugRTCP, "debug-rtcp", false,
		"Enable detailed RTCP rewriting debugging (sub-packet walk, SSRC fix, NACK, REMB cap)")
	fs.BoolVar(&f.DebugSDP, "debug-sdp", false,
		"Enable detailed SDP rewriting debugging (extract, anonymize, merge)")
	fs.BoolVar(&f.DebugICE, "debug-ice", false,
		"Enable ICE candidate/credential debugging")
	fs.BoolVar(&f.DebugKeyframe, "debug-keyframe", false,
		"Enable FIR/PLI keyframe-request pacing debugging")
	fs.BoolVar(&f.DebugAll, "debug-all", false,
		"Enable all debug categories")

	return f
}

// ToConfig converts Flags to a logger Config
func (f *Flags) ToConfig() (*Config, error) {
	cfg := NewConfig()

	// Parse log level
	level, err := ParseLevel(f.LogLevel)
	if err != nil {
		return nil, err
	}
	cfg.Level = level

	// Parse format
	format, err := ParseFormat(f.LogFormat)
	if err != nil {
		return nil, err
	}
	cfg.Format = format

	// Set output file
	cfg.OutputFile = f.LogFile

	// Enable debug categories
	if f.DebugAll {
		cfg.EnableCategory(DebugAll)
		// Force debug level when any debug category is enabled
		cfg.Level = LevelDebug
	} else {
		if f.DebugRTCP {
			cfg.EnableCategory(DebugRTCP)
			cfg.Level = LevelDebug
		}
		if f.DebugSDP {
			cfg.EnableCategory(DebugSDP)
			cfg.Level = LevelDebug
		}
		if f.DebugICE {
			cfg.EnableCategory(DebugICE)
			cfg.Level = LevelDebug
		}
		if f.DebugKeyframe {
			cfg.EnableCategory(DebugKeyframe)
			cfg.Level = LevelDebug
		}
	}

	return cfg, nil
}

// PrintUsageExamples prints usage examples for logging flags
func PrintUsageExamples() {
	examples := `
Logging Examples:

  Basic usage (INFO level, text format to stdout):
    ./gateway

  Enable DEBUG level:
    ./gateway --log-level debug
    ./gateway -l debug

  Log to file:
    ./gateway --log-file gateway.log
    ./gateway -o gateway.log

  JSON format for structured logging:
    ./gateway --log-format json -o gateway.json

  Debug RTCP rewriting only:
    ./gateway --debug-rtcp

  Debug SDP rewriting only:
    ./gateway --debug-sdp

  Debug multiple categories:
    ./gateway --debug-rtcp --debug-sdp --debug-ice

  Debug everything:
    ./gateway --debug-all -o debug.log

  Production logging (WARN level, JSON to file):
    ./gateway -l warn --log-format json -o production.log
`
	fmt.Println(examples)
}

// String returns a string representation of enabled flags
func (f *Flags) String() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("level=%s", f.LogLevel))
	parts = append(parts, fmt.Sprintf("format=%s", f.LogFormat))

	if f.LogFile != "" {
		parts = append(parts, fmt.Sprintf("output=%s", f.LogFile))
	} else {
		parts = append(parts, "output=stdout")
	}

	var debugCategories []string
	if f.DebugAll {
		debugCategories = append(debugCategories, "all")
	} else {
		if f.DebugRTCP {
			debugCategories = append(debugCategories, "rtcp")
		}
		if f.DebugSDP {
			debugCategories = append(debugCategories, "sdp")
		}
		if f.DebugICE {
			debugCategories = append(debugCategories, "ice")
		}
		if f.DebugKeyframe {
			debugCategories = append(debugCategories, "keyframe")
		}
	}

	if len(debugCategories) > 0 {
		parts = append(parts, fmt.Sprintf("debug=[%s]", strings.Join(debugCategories, ",")))
	}

	return strings.Join(parts, " ")
}
