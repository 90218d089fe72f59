// Package config loads the gateway process's ambient settings - the
// listen address, per-session bitrate ceiling, and FIR/PLI pacing
// interval - from a .env-style file of flat KEY=VALUE pairs.
package config

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration for the gateway process.
type Config struct {
	HTTP    HTTPConfig
	Gateway GatewayConfig
}

// HTTPConfig holds the offer/answer exchange listener's settings.
type HTTPConfig struct {
	ListenAddr string
}

// GatewayConfig holds the per-session transport and pacing ceilings
// applied to every bridged call.
type GatewayConfig struct {
	// MaxVideoBitrateBPS caps REMB reports rewritten towards the
	// publisher; 0 disables capping.
	MaxVideoBitrateBPS uint64
	// KeyframePaceInterval is the minimum gap enforced between FIR/PLI
	// requests for the same stream; 0 disables pacing.
	KeyframePaceInterval time.Duration
	// LocalIPOverride pins the address reported in `c=`/`a=rtcp:`
	// lines, bypassing outbound-route auto-detection. Empty means
	// auto-detect.
	LocalIPOverride string
}

// defaults returns a Config with every field at its production default,
// overridden by whatever keys are present in the loaded env file.
func defaults() *Config {
	return &Config{
		HTTP: HTTPConfig{
			ListenAddr: ":8443",
		},
		Gateway: GatewayConfig{
			MaxVideoBitrateBPS:   2_000_000,
			KeyframePaceInterval: time.Second,
			LocalIPOverride:      "",
		},
	}
}

// Load reads configuration from a .env-style file. A missing file is
// not an error: the gateway runs on its defaults, matching a common
// "works out of the box, .env only overrides" deployment style.
func Load(envPath string) (*Config, error) {
	cfg := defaults()

	file, err := os.Open(envPath)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open env file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse key=value
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// URL decode values that might be encoded
		decodedValue, err := url.QueryUnescape(value)
		if err != nil {
			// If decode fails, use original value
			decodedValue = value
		}

		if err := cfg.apply(key, decodedValue); err != nil {
			return nil, fmt.Errorf("env file: %s: %w", key, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan env file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) apply(key, value string) error {
	switch key {
	case "listen_addr":
		c.HTTP.ListenAddr = value
	case "max_video_bitrate_bps":
		bps, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid uint: %w", err)
		}
		c.Gateway.MaxVideoBitrateBPS = bps
	case "keyframe_pace_interval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		c.Gateway.KeyframePaceInterval = d
	case "local_ip_override":
		c.Gateway.LocalIPOverride = value
	}
	return nil
}

// Validate checks that the loaded configuration is internally
// consistent.
func (c *Config) Validate() error {
	if c.HTTP.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	return nil
}
