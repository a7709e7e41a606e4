package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mfeld/queuebridge/internal/ami"
	"github.com/mfeld/queuebridge/internal/auth"
	"github.com/mfeld/queuebridge/internal/config"
	"github.com/mfeld/queuebridge/internal/metrics"
	"github.com/mfeld/queuebridge/internal/monitor"
	"github.com/mfeld/queuebridge/internal/notify"
	"github.com/mfeld/queuebridge/internal/storage"
	"github.com/mfeld/queuebridge/internal/vars"
	"github.com/mfeld/queuebridge/internal/websocket"
	"github.com/mfeld/queuebridge/pkg/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Str("ami", cfg.AMIHost+":"+cfg.AMIPort).
		Str("notify_mode", cfg.NotifyMode).
		Str("roster_queue", cfg.RosterQueue).
		Msg("starting queuebridge")

	// Create the state store
	store, err := storage.NewStore(context.Background(), log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create state store")
	}

	// Create WebSocket hub for dashboard fan-out
	hub := websocket.NewHub(log.Logger)
	go hub.Run()

	// Build the notification transport: the bus transport per NOTIFY_MODE,
	// plus the hub so dashboards see the same stream.
	busTransport, err := buildTransport(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create notification transport")
	}
	defer busTransport.Close()
	transport := notify.NewFanout(busTransport, websocket.NewTransport(hub))

	notifier := notify.NewNotifier(transport, cfg.PublisherID, log.Logger)

	// Wire the event translation pipeline
	extractor := vars.New(cfg.VarPrefix)
	mon := monitor.New(store, notifier, extractor, cfg.RosterQueue, log.Logger)
	router := monitor.NewRouter(log.Logger)
	mon.RegisterHandlers(router)

	// Create context for services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to the manager interface and feed events to the router.
	// Events are handled serially on this goroutine; the state machine
	// depends on that ordering.
	amiPort, err := strconv.Atoi(cfg.AMIPort)
	if err != nil {
		log.Fatal().Str("port", cfg.AMIPort).Msg("invalid AMI_PORT")
	}
	amiClient := ami.NewClient(ami.Options{
		Host:      cfg.AMIHost,
		Port:      amiPort,
		Username:  cfg.AMIUsername,
		Secret:    cfg.AMISecret,
		Keepalive: cfg.AMIKeepalive,
	}, log.Logger)
	go func() {
		if err := amiClient.Run(ctx, func(evt ami.Event) {
			router.Dispatch(ctx, evt)
		}); err != nil {
			log.Error().Err(err).Msg("manager client stopped")
		}
	}()

	// Create WebSocket handler
	wsHandler := websocket.NewHandler(hub, cfg, log.Logger)

	// Create router
	r := chi.NewRouter()

	// Add middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Register public routes (no auth required)
	r.Get("/health", healthHandler)

	// Internal routes (no auth - for sidecar monitoring)
	r.Route("/internal", func(r chi.Router) {
		r.Get("/stats", metrics.Get().Handler)
	})

	// Add auth middleware for protected routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)
		r.Get("/ws", wsHandler.ServeHTTP)
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Stop the manager client
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// buildTransport selects the bus transport from configuration.
func buildTransport(cfg *config.Config) (notify.Transport, error) {
	switch cfg.NotifyMode {
	case "log":
		return notify.NewLogTransport(log.Logger), nil
	case "mqtt":
		return notify.NewMQTTTransport(notify.MQTTOptions{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			QoS:      cfg.MQTTQoS,
		})
	default:
		return nil, fmt.Errorf("unknown NOTIFY_MODE %q", cfg.NotifyMode)
	}
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"queuebridge"}`)
}
