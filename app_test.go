package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/grutapig/colddm/alchemyst"
	"github.com/grutapig/colddm/consumer"
	"github.com/grutapig/colddm/profile"
	"github.com/grutapig/colddm/relay"
	"github.com/grutapig/colddm/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAlchemystKey = "test-alchemyst-key"

type fakeAlchemyst struct {
	mu      sync.Mutex
	prompts []string
	frames  []string
}

func (f *fakeAlchemyst) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+testAlchemystKey {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var request alchemyst.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || len(request.ChatHistory) != 1 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.prompts = append(f.prompts, request.ChatHistory[0].Content)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "text/event-stream")
	for _, frame := range f.frames {
		fmt.Fprintf(w, "data: %s\n\n", frame)
		w.(http.Flusher).Flush()
	}
}

func (f *fakeAlchemyst) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func setupTestApplication(t *testing.T, apiKey string, upstream http.Handler) (*Application, *httptest.Server) {
	upstreamServer := httptest.NewServer(upstream)
	t.Cleanup(upstreamServer.Close)

	config := &Config{
		AlchemystAPIKey:  apiKey,
		AlchemystAPIURL:  upstreamServer.URL,
		AlchemystTimeout: 5 * time.Second,
		ListenAddr:       "127.0.0.1:0",
		AllowedOrigins:   []string{"*"},
		LoggingDBPath:    filepath.Join(t.TempDir(), "generations.db"),
		LogRetentionDays: DEFAULT_LOG_RETENTION_DAYS,
	}
	channels := ProvideChannels()
	provider, err := ProvideProfileProvider(config)
	require.NoError(t, err)
	backend, err := ProvideAlchemystAPI(config)
	require.NoError(t, err)
	loggingService, err := ProvideLoggingService(config)
	require.NoError(t, err)

	app := NewApplication(
		config,
		channels,
		ProvideRelay(backend, provider, loggingService, nil, channels),
		provider,
		backend,
		loggingService,
		nil,
		ProvideCleanupScheduler(config, loggingService),
	)
	require.NoError(t, app.Initialize())
	t.Cleanup(app.Shutdown)

	server := httptest.NewServer(app.Router())
	t.Cleanup(server.Close)
	return app, server
}

func TestApplication_Personalize(t *testing.T) {
	upstream := &fakeAlchemyst{frames: []string{
		`{"type":"thinking_update","content":"Reading the profile..."}`,
		`{"type":"final_response","content":"Hi Bill, your malaria work inspired our vaccine cold-chain startup."}`,
		`[DONE]`,
	}}
	app, server := setupTestApplication(t, testAlchemystKey, upstream)

	var kinds []string
	state, err := consumer.NewClient(server.URL).Generate(context.Background(), "@BillGates", "pitch our cold-chain startup", func(event sse.Event, _ *consumer.State) {
		kinds = append(kinds, event.Kind.String())
	})
	require.NoError(t, err)

	assert.True(t, state.Finished)
	assert.Equal(t, "Hi Bill, your malaria work inspired our vaccine cold-chain startup.", state.FinalMessage)
	require.NotEmpty(t, state.ThinkingUpdates)
	assert.Equal(t, "🔍 Fetching profile data for @BillGates...", state.ThinkingUpdates[0])
	assert.Contains(t, state.ThinkingUpdates, "Reading the profile...")
	assert.Equal(t, "final_response", kinds[len(kinds)-3])
	assert.Equal(t, []string{"metadata", "done"}, kinds[len(kinds)-2:])

	var metadata relay.Metadata
	require.NoError(t, state.DecodeMetadata(&metadata))
	assert.Equal(t, "Enhanced Cold DM for @BillGates", metadata.Title)
	assert.True(t, strings.HasPrefix(metadata.ChatId, "chat_"))
	assert.Equal(t, "Bill Gates", metadata.TwitterData.DisplayName)
	assert.Equal(t, profile.SourceFallback, metadata.TwitterData.DataSource)

	prompt := upstream.lastPrompt()
	assert.Contains(t, prompt, "pitch our cold-chain startup")
	assert.Contains(t, prompt, "Bill Gates")

	// the outcome hook runs after the stream closes
	assert.Eventually(t, func() bool {
		stats, err := app.loggingService.GetGenerationStats(1)
		return err == nil && stats["completed"] == int64(1) && stats["fallback"] == int64(1)
	}, 2*time.Second, 20*time.Millisecond)
}

func TestApplication_PersonalizeValidation(t *testing.T) {
	upstream := &fakeAlchemyst{}

	t.Run("MissingMotive", func(t *testing.T) {
		_, server := setupTestApplication(t, testAlchemystKey, upstream)
		_, err := consumer.NewClient(server.URL).Generate(context.Background(), "billgates", "   ", nil)

		var streamErr *consumer.StreamError
		require.ErrorAs(t, err, &streamErr)
		assert.Equal(t, relay.MSG_INPUT_REQUIRED, streamErr.Message)
	})

	t.Run("MissingKey", func(t *testing.T) {
		_, server := setupTestApplication(t, "", upstream)
		_, err := consumer.NewClient(server.URL).Generate(context.Background(), "billgates", "say hi", nil)

		var streamErr *consumer.StreamError
		require.ErrorAs(t, err, &streamErr)
		assert.Equal(t, relay.MSG_MISSING_KEY, streamErr.Message)
	})

	t.Run("UndecodableBody", func(t *testing.T) {
		_, server := setupTestApplication(t, testAlchemystKey, upstream)
		resp, err := http.Post(server.URL+ROUTE_PERSONALIZE, "application/json", strings.NewReader("{not json"))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
		_, err = consumer.Consume(context.Background(), resp.Body, nil)
		var streamErr *consumer.StreamError
		require.ErrorAs(t, err, &streamErr)
		assert.Equal(t, relay.MSG_INPUT_REQUIRED, streamErr.Message)
	})

	assert.Empty(t, upstream.lastPrompt())
}

func TestApplication_UpstreamStatusError(t *testing.T) {
	upstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})
	_, server := setupTestApplication(t, testAlchemystKey, upstream)

	state, err := consumer.NewClient(server.URL).Generate(context.Background(), "sundarpichai", "say hi", nil)
	var streamErr *consumer.StreamError
	require.ErrorAs(t, err, &streamErr)
	assert.True(t, strings.HasPrefix(streamErr.Message, "Failed to generate DM: "))
	assert.Contains(t, streamErr.Message, "503")
	assert.Empty(t, state.FinalMessage)
	assert.Len(t, state.ThinkingUpdates, 4)
}

func TestApplication_Health(t *testing.T) {
	_, server := setupTestApplication(t, testAlchemystKey, &fakeAlchemyst{})

	resp, err := http.Get(server.URL + ROUTE_HEALTH)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, HealthResponse{Status: "ok", LiveProfiles: false, BackendConfigured: true}, health)
}

func TestApplication_Routing(t *testing.T) {
	_, server := setupTestApplication(t, testAlchemystKey, &fakeAlchemyst{})

	t.Run("CORS", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, server.URL+ROUTE_HEALTH, nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "https://dm.example.com")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("Preflight", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, server.URL+ROUTE_PERSONALIZE, nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "https://dm.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Content-Type")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
		assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)
	})

	t.Run("WrongMethod", func(t *testing.T) {
		resp, err := http.Get(server.URL + ROUTE_PERSONALIZE)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}
