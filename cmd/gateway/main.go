// Command gateway runs the offer/answer HTTP exchange and RTCP
// rewriting core of a browser-to-plugin WebRTC B2BUA leg: it accepts
// a browser's SDP offer, extracts its ICE/DTLS transport state,
// anonymizes it for the plugin side, and merges the plugin's answer
// with locally gathered transport parameters before returning it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/meetecho-oss/b2bua-core/pkg/config"
	"github.com/meetecho-oss/b2bua-core/pkg/dtls"
	"github.com/meetecho-oss/b2bua-core/pkg/gateway"
	"github.com/meetecho-oss/b2bua-core/pkg/ice"
	"github.com/meetecho-oss/b2bua-core/pkg/logger"
	"github.com/meetecho-oss/b2bua-core/pkg/transport"
	"github.com/rs/zerolog"
)

func main() {
	fs := flag.NewFlagSet("gateway", flag.ExitOnError)
	logFlags := logger.RegisterFlags(fs)
	envPath := fs.String("env", ".env", "path to an optional .env-style config override file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "WebRTC B2BUA media-plane protocol rewriting gateway\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		logger.PrintUsageExamples()
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	logConfig, err := logFlags.ToConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	logger.SetDefault(log)

	log.Info("starting WebRTC B2BUA gateway", "log_config", logFlags.String())

	cfg, err := config.Load(*envPath)
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	log.Info("configuration loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"max_video_bitrate_bps", cfg.Gateway.MaxVideoBitrateBPS,
		"keyframe_pace_interval", cfg.Gateway.KeyframePaceInterval.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	dtlsCollaborator, err := dtls.NewSelfSignedCollaborator()
	if err != nil {
		log.Error("failed to create DTLS collaborator", "error", err)
		os.Exit(1)
	}

	transportCollaborator := &transport.AutoDetectCollaborator{Override: cfg.Gateway.LocalIPOverride}

	pacer := gateway.NewKeyframePacer(cfg.Gateway.KeyframePaceInterval, log.Logger)

	zlog := zerolog.New(os.Stdout).With().Timestamp().Logger()

	var iceMu sync.Mutex
	var iceCollaborators []*ice.GatheringCollaborator
	deps := func() gateway.Deps {
		iceCollaborator := ice.NewGatheringCollaborator()
		iceMu.Lock()
		iceCollaborators = append(iceCollaborators, iceCollaborator)
		iceMu.Unlock()
		return gateway.Deps{
			ICE:       iceCollaborator,
			DTLS:      dtlsCollaborator,
			Transport: transportCollaborator,
			Pacer:     pacer,
			Tracer:    gateway.NewWireTracer(zlog, "gateway"),
		}
	}

	srv := gateway.NewServer(deps, cfg.Gateway.MaxVideoBitrateBPS, log.Logger)
	if err := srv.Start(ctx, cfg.HTTP.ListenAddr); err != nil {
		log.Error("failed to start HTTP server", "error", err)
		os.Exit(1)
	}

	log.Info("gateway ready", "address", cfg.HTTP.ListenAddr)

	<-ctx.Done()

	log.Info("shutting down")
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := srv.Stop(stopCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}

	iceMu.Lock()
	collaborators := iceCollaborators
	iceMu.Unlock()
	for _, c := range collaborators {
		if err := c.Close(); err != nil {
			log.Error("error closing ice collaborator", "error", err)
		}
	}

	log.Info("shutdown complete")
}
