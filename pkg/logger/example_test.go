package logger_test

import (
	"fmt"
	"os"

	"github.com/meetecho-oss/b2bua-core/pkg/logger"
)

// Example showing basic logger usage
func ExampleLogger_basic() {
	// Create logger with default config
	cfg := logger.NewConfig()
	cfg.Level = logger.LevelInfo
	cfg.Format = logger.FormatText

	log, err := logger.New(cfg)
	if err != nil {
		panic(err)
	}
	defer log.Close()

	// Basic logging
	log.Info("gateway started", "version", "1.0.0")
	log.Warn("deprecated attribute seen", "attribute", "a=crypto")
	log.Error("failed to bind listener", "error", "address already in use")
}

// Example showing debug category usage
func ExampleLogger_categories() {
	cfg := logger.NewConfig()
	cfg.Level = logger.LevelDebug
	cfg.EnableCategory(logger.DebugRTCP)
	cfg.EnableCategory(logger.DebugSDP)

	log, err := logger.New(cfg)
	if err != nil {
		panic(err)
	}
	defer log.Close()

	// RTCP debugging (only logged if DebugRTCP enabled)
	log.DebugRTCPPacket(205, 1, 16) // a NACK sub-packet

	// SDP debugging (only logged if DebugSDP enabled)
	log.DebugSDPSection("anonymize", 842)

	// Generic category logging
	log.DebugRTCP("ssrc fix applied", "local", "0x11111111", "remote", "0x22222222")
	log.DebugSDP("offer extracted", "audio_candidates", 2, "video_candidates", 3)
}

// Example showing command-line flags integration
func ExampleFlags() {
	// In main.go:
	// import (
	//     "flag"
	//     "github.com/meetecho-oss/b2bua-core/pkg/logger"
	// )
	//
	// fs := flag.NewFlagSet("myapp", flag.ExitOnError)
	// logFlags := logger.RegisterFlags(fs)
	// fs.Parse(os.Args[1:])
	//
	// logConfig, _ := logFlags.ToConfig()
	// log, _ := logger.New(logConfig)
	// defer log.Close()

	fmt.Println("See cmd/gateway/main.go for complete example")
}

// Example showing JSON format output
func ExampleLogger_json() {
	cfg := logger.NewConfig()
	cfg.Level = logger.LevelInfo
	cfg.Format = logger.FormatJSON
	cfg.OutputFile = "gateway.json"

	log, err := logger.New(cfg)
	if err != nil {
		panic(err)
	}
	defer log.Close()
	defer os.Remove("gateway.json") // Cleanup

	log.Info("session created",
		"session_id", "12345",
		"remote_addr", "192.168.1.1",
		"duration_ms", 250)

	// Output will be in JSON format:
	// {"time":"...","level":"INFO","msg":"session created","session_id":"12345","remote_addr":"192.168.1.1","duration_ms":250}
}

// Example showing conditional debug logging
func ExampleLogger_conditional() {
	cfg := logger.NewConfig()
	cfg.EnableCategory(logger.DebugICE)

	log, err := logger.New(cfg)
	if err != nil {
		panic(err)
	}
	defer log.Close()

	// This will only execute if DebugICE is enabled
	// No performance overhead if disabled
	log.DebugICE("candidate appended", "type", "host", "component", 1)

	// Category methods automatically check if enabled
	// No manual check needed - zero cost if disabled
	log.DebugRTCP("packet walked", "type", 200)
}
