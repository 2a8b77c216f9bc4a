package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/grutapig/colddm/alchemyst"
	"github.com/grutapig/colddm/log"
	"github.com/grutapig/colddm/profile"
	"github.com/grutapig/colddm/relay"
	"github.com/grutapig/colddm/sse"
	"github.com/rs/cors"
)

const SHUTDOWN_TIMEOUT = 15 * time.Second

type Application struct {
	config           *Config
	channels         *Channels
	relay            *relay.Relay
	provider         *profile.Provider
	backend          *alchemyst.AlchemystApi
	loggingService   *LoggingService
	telegramService  *TelegramService
	cleanupScheduler *CleanupScheduler
	wg               sync.WaitGroup
}

func NewApplication(
	config *Config,
	channels *Channels,
	dmRelay *relay.Relay,
	provider *profile.Provider,
	backend *alchemyst.AlchemystApi,
	loggingService *LoggingService,
	telegramService *TelegramService,
	cleanupScheduler *CleanupScheduler,
) *Application {
	return &Application{
		config:           config,
		channels:         channels,
		relay:            dmRelay,
		provider:         provider,
		backend:          backend,
		loggingService:   loggingService,
		telegramService:  telegramService,
		cleanupScheduler: cleanupScheduler,
	}
}

func (app *Application) Initialize() error {
	if !app.backend.Ready() {
		log.Warnf("⚠️ %s not set, every request will fail validation", ENV_ALCHEMYST_API_KEY)
	}
	if app.loggingService != nil {
		log.Infof("Logging service initialized successfully")
	}

	app.cleanupScheduler.Start()

	if app.telegramService != nil {
		log.Infof("📨 Telegram notifier enabled for %d chats", len(app.telegramService.GetRegisteredChats()))
		app.wg.Add(1)
		go func() {
			defer app.wg.Done()
			NotificationHandler(app.channels.NotificationCh, app.telegramService)
		}()
	}
	return nil
}

// Router returns the HTTP surface with permissive CORS applied.
func (app *Application) Router() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc(ROUTE_PERSONALIZE, app.handlePersonalize).Methods(http.MethodPost)
	router.HandleFunc(ROUTE_HEALTH, app.handleHealth).Methods(http.MethodGet)

	return cors.New(cors.Options{
		AllowedOrigins: app.config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept"},
	}).Handler(router)
}

// Run serves until ctx is cancelled, then drains in-flight streams.
func (app *Application) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              app.config.ListenAddr,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("🚀 Cold DM server listening on %s", app.config.ListenAddr)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		// handlers may still run their outcome hooks, keep the queue open
		return err
	}
	close(app.channels.NotificationCh)
	app.wg.Wait()
	return nil
}

func (app *Application) Shutdown() {
	log.Infof("Shutting down application...")

	app.cleanupScheduler.Stop()

	if app.loggingService != nil {
		if err := app.loggingService.Close(); err != nil {
			log.Errorf("Error closing logging database: %v", err)
		}
	}

	log.Infof("Application shutdown completed")
}

// handlePersonalize always answers with an event stream. A body that cannot
// be decoded is treated as an empty request and fails validation in-stream.
func (app *Application) handlePersonalize(w http.ResponseWriter, r *http.Request) {
	var request relay.Request
	body := http.MaxBytesReader(w, r.Body, MAX_REQUEST_BODY)
	if err := json.NewDecoder(body).Decode(&request); err != nil {
		log.Debugf("Undecodable personalize body: %v", err)
		request = relay.Request{}
	}

	writer := sse.NewWriter(w)
	app.relay.Run(r.Context(), request, writer)
}

type HealthResponse struct {
	Status            string `json:"status"`
	LiveProfiles      bool   `json:"live_profiles"`
	BackendConfigured bool   `json:"backend_configured"`
}

func (app *Application) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(HealthResponse{
		Status:            "ok",
		LiveProfiles:      app.provider.LiveConfigured(),
		BackendConfigured: app.backend.Ready(),
	})
	if err != nil {
		log.Errorf("Error writing health response: %v", err)
	}
}
