package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bindinc/agentdesk/internal/api"
	"github.com/bindinc/agentdesk/internal/auth"
	"github.com/bindinc/agentdesk/internal/callsession"
	"github.com/bindinc/agentdesk/internal/config"
	"github.com/bindinc/agentdesk/internal/directory"
	"github.com/bindinc/agentdesk/internal/metrics"
	"github.com/bindinc/agentdesk/internal/scheduler"
	"github.com/bindinc/agentdesk/internal/storage"
	"github.com/bindinc/agentdesk/internal/ticker"
	"github.com/bindinc/agentdesk/internal/websocket"
	"github.com/bindinc/agentdesk/internal/workstation"
	"github.com/bindinc/agentdesk/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
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
		Str("agent_id", cfg.AgentID).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("log_level", cfg.LogLevel).
		Msg("starting agentdesk server")

	// Create context for services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create persistence store
	store, err := storage.NewStore(ctx, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}

	// Seed the customer directory
	dir := directory.New(log.Logger)
	dir.SeedDemo()
	log.Info().Int("customers", dir.Count()).Msg("customer directory seeded")

	// Assemble the workstation
	station := workstation.New(workstation.Config{
		AgentID:         cfg.AgentID,
		AgentName:       cfg.AgentName,
		ACWDuration:     cfg.ACWDuration,
		QueueGraceDelay: cfg.QueueGraceDelay,
		BackendBaseURL:  cfg.BackendBaseURL,
		Recording: callsession.RecordingConfig{
			Enabled:        cfg.RecordingEnabled,
			RequireConsent: cfg.RecordingRequireConsent,
			AutoStart:      cfg.RecordingAutoStart,
		},
	}, dir, store, scheduler.New(), log.Logger)

	// Create WebSocket hub and attach it as the push channel
	hub := websocket.NewHub(log.Logger)
	go hub.Run()
	station.SetBroadcaster(hub)

	// Broadcast the workstation snapshot once per second
	tickerService := ticker.NewTicker(station, hub, 1*time.Second, log.Logger)
	go tickerService.Start(ctx)

	// Create handlers
	wsHandler := websocket.NewHandler(hub, cfg, log.Logger)
	statusHandler := api.NewStatusHandler(station, log.Logger)
	sessionHandler := api.NewSessionHandler(station, log.Logger)
	queueHandler := api.NewQueueHandler(station.Queue, dir, log.Logger)
	dispositionHandler := api.NewDispositionHandler(station.Disposition, log.Logger)
	customerHandler := api.NewCustomerHandler(dir, log.Logger)
	adminHandler := api.NewAdminHandler(station, store, log.Logger)

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
	r.Get("/metrics", metrics.Get().Handler())

	// Add auth middleware for protected routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Get("/ws", wsHandler.ServeHTTP)

		r.Route("/api", func(r chi.Router) {
			r.Get("/snapshot", statusHandler.GetSnapshot)
			r.Get("/notifications", statusHandler.GetNotifications)

			r.Route("/status", func(r chi.Router) {
				r.Get("/", statusHandler.GetStatus)
				r.Get("/catalog", statusHandler.GetCatalog)
				r.Put("/", statusHandler.SetStatus)
			})

			r.Route("/session", func(r chi.Router) {
				r.Get("/", sessionHandler.GetSession)
				r.Post("/start", sessionHandler.StartCall)
				r.Post("/identify", sessionHandler.IdentifyCaller)
				r.Post("/recording-consent", sessionHandler.ConfirmRecordingConsent)
				r.Post("/hold", sessionHandler.ToggleHold)
				r.Post("/end", sessionHandler.EndCall)
			})

			r.Route("/queue", func(r chi.Router) {
				r.Get("/", queueHandler.GetQueue)
				r.Put("/settings", queueHandler.UpdateSettings)
				r.Post("/enqueue", queueHandler.Enqueue)
				r.Post("/next", queueHandler.PullNext)
				r.Post("/generate", queueHandler.Generate)
				r.Post("/clear", queueHandler.Clear)
			})

			r.Route("/disposition", func(r chi.Router) {
				r.Get("/", dispositionHandler.GetForm)
				r.Get("/categories", dispositionHandler.GetCategories)
				r.Post("/open", dispositionHandler.Open)
				r.Put("/category", dispositionHandler.SelectCategory)
				r.Put("/outcome", dispositionHandler.SelectOutcome)
				r.Put("/notes", dispositionHandler.SetNotes)
				r.Put("/follow-up", dispositionHandler.SetFollowUp)
				r.Post("/commit", dispositionHandler.Commit)
			})

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", customerHandler.ListCustomers)
				r.Get("/{customerId}", customerHandler.GetCustomer)
				r.Get("/{customerId}/history", customerHandler.GetHistory)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(api.RequireSupervisorOrAdmin)
				r.Get("/calls", adminHandler.GetCallRecords)
				r.Get("/agents/{agentId}/history", adminHandler.GetAgentHistory)
				r.Get("/today", adminHandler.GetTodayStats)
			})
		})

		r.Route("/internal", func(r chi.Router) {
			r.Use(api.RequireAdmin)
			r.Post("/wipe", adminHandler.WipeStore)
		})
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

	// Cancel ticker context
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

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"agentdesk"}`)
}
