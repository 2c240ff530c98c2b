package main

import (
	"flag"
	"os"

	"github.com/alice-platform/gateway-engine/pkg/api"
	"github.com/alice-platform/gateway-engine/pkg/api/middleware"
	"github.com/alice-platform/gateway-engine/pkg/config"
	"github.com/alice-platform/gateway-engine/pkg/events"
	"github.com/alice-platform/gateway-engine/pkg/gateway"
	"github.com/alice-platform/gateway-engine/pkg/health"
	"github.com/alice-platform/gateway-engine/pkg/logging"
	"github.com/alice-platform/gateway-engine/pkg/mesh"
	"github.com/alice-platform/gateway-engine/pkg/metrics"
	"github.com/alice-platform/gateway-engine/pkg/pubsub"
	"github.com/alice-platform/gateway-engine/pkg/server"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	addr := flag.String("addr", "", "Listen address (overrides config and GATEWAY_ADDR)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.NewJSONLogger(os.Stderr, logging.ErrorLevel).
			Error("failed to load configuration", logging.Error(err))
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if err := cfg.Validate(); err != nil {
		logging.NewJSONLogger(os.Stderr, logging.ErrorLevel).
			Error("invalid configuration", logging.Error(err))
		os.Exit(1)
	}

	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(cfg.Logging.Level))
	logging.SetDefaultLogger(logger)

	logger.Info("gateway engine starting",
		logging.String("addr", cfg.Server.Addr),
		logging.String("version", api.Version),
	)

	bus := pubsub.NewBus()
	latency := mesh.LatencyModel{
		BaseMs: cfg.Mesh.BaseLatencyMs,
		StepMs: cfg.Mesh.StepLatencyMs,
	}

	gw := gateway.New(gateway.Config{
		EndpointBase: cfg.Session.EndpointBase,
		LatencyModel: &latency,
		Logger:       logger,
		Metrics:      metrics.DefaultRegistry(),
		Bus:          bus,
	})

	logger.Info("protocol catalog loaded", logging.Count(len(gw.Protocols())))

	apiServer := api.NewServer(gw, logger)
	apiServer.SetMaxBodyBytes(cfg.Server.MaxBodyBytes)

	// The gateway console is served from another origin.
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = []string{"*"}
	apiServer.SetCORSConfig(cors)

	gs := server.NewGracefulServer(cfg.Server.Addr, apiServer.Handler(), logger)
	gs.SetShutdownTimeout(cfg.Server.ShutdownTimeout)
	gs.SetConfigReloadFunc(func() error {
		reloaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		if err := reloaded.Validate(); err != nil {
			return err
		}
		logger.SetLevel(logging.ParseLevel(reloaded.Logging.Level))
		return nil
	})

	if cfg.Events.Enabled {
		broadcaster := events.NewBroadcaster(bus, cfg.Events.Addr, logger)
		if err := broadcaster.Start(); err != nil {
			logger.Error("failed to start event broadcaster", logging.Error(err))
			os.Exit(1)
		}
		apiServer.RegisterHealthCheck("event_bus", health.EventBusCheck(broadcaster.Running))
		gs.OnShutdown(broadcaster.Stop)
	}
	gs.OnShutdown(bus.Shutdown)

	if err := gs.Start(); err != nil {
		logger.Error("server error", logging.Error(err))
		os.Exit(1)
	}
}
