package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/grutapig/colddm/alchemyst"
	"github.com/grutapig/colddm/log"
	"github.com/grutapig/colddm/profile"
	"github.com/grutapig/colddm/relay"
	"github.com/grutapig/colddm/twitterapi"
	"go.uber.org/dig"
)

type Config struct {
	AlchemystAPIKey     string
	AlchemystAPIURL     string
	AlchemystTimeout    time.Duration
	TwitterBearerToken  string
	TwitterAPIBaseURL   string
	ProxyDSN            string
	ListenAddr          string
	LogLevel            string
	AllowedOrigins      []string
	TelegramAPIKey      string
	TelegramAdminChatID string
	LoggingDBPath       string
	LogRetentionDays    int
}

type Channels struct {
	NotificationCh chan GenerationNotification
}

func ProvideConfig() (*Config, error) {
	timeoutSeconds, err := intFromEnv(ENV_ALCHEMYST_TIMEOUT_SECONDS, DEFAULT_ALCHEMYST_TIMEOUT_SECONDS)
	if err != nil {
		return nil, err
	}
	retentionDays, err := intFromEnv(ENV_LOG_RETENTION_DAYS, DEFAULT_LOG_RETENTION_DAYS)
	if err != nil {
		return nil, err
	}

	listenAddr := os.Getenv(ENV_LISTEN_ADDR)
	if listenAddr == "" {
		listenAddr = DEFAULT_LISTEN_ADDR
	}

	origins := []string{"*"}
	if raw := os.Getenv(ENV_ALLOWED_ORIGINS); raw != "" {
		origins = origins[:0]
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
	}

	return &Config{
		AlchemystAPIKey:     os.Getenv(ENV_ALCHEMYST_API_KEY),
		AlchemystAPIURL:     os.Getenv(ENV_ALCHEMYST_API_URL),
		AlchemystTimeout:    time.Duration(timeoutSeconds) * time.Second,
		TwitterBearerToken:  os.Getenv(ENV_TWITTER_BEARER_TOKEN),
		TwitterAPIBaseURL:   os.Getenv(ENV_TWITTER_API_BASE_URL),
		ProxyDSN:            os.Getenv(ENV_PROXY_DSN),
		ListenAddr:          listenAddr,
		LogLevel:            os.Getenv(ENV_LOG_LEVEL),
		AllowedOrigins:      origins,
		TelegramAPIKey:      os.Getenv(ENV_TELEGRAM_API_KEY),
		TelegramAdminChatID: os.Getenv(ENV_TELEGRAM_ADMIN_CHAT_ID),
		LoggingDBPath:       os.Getenv(ENV_LOGGING_DATABASE_PATH),
		LogRetentionDays:    retentionDays,
	}, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s should be a positive integer, got %q", key, raw)
	}
	return value, nil
}

func ProvideChannels() *Channels {
	return &Channels{
		NotificationCh: make(chan GenerationNotification, NOTIFICATION_QUEUE_SIZE),
	}
}

// ProvideProfileProvider wires the live Twitter client only when a bearer
// token is configured; without one every request uses fallback data.
func ProvideProfileProvider(config *Config) (*profile.Provider, error) {
	if config.TwitterBearerToken == "" {
		log.Infof("🔄 %s not set, profiles will use fallback data", ENV_TWITTER_BEARER_TOKEN)
		return profile.NewProvider(nil), nil
	}
	twitterAPI, err := twitterapi.NewTwitterAPIService(config.TwitterBearerToken, config.TwitterAPIBaseURL, config.ProxyDSN)
	if err != nil {
		return nil, err
	}
	return profile.NewProvider(twitterAPI), nil
}

func ProvideAlchemystAPI(config *Config) (*alchemyst.AlchemystApi, error) {
	return alchemyst.NewAlchemystClient(config.AlchemystAPIKey, config.AlchemystAPIURL, config.ProxyDSN, config.AlchemystTimeout)
}

func ProvideLoggingService(config *Config) (*LoggingService, error) {
	if config.LoggingDBPath == "" {
		return nil, nil
	}
	return NewLoggingService(config.LoggingDBPath)
}

func ProvideCleanupScheduler(config *Config, loggingService *LoggingService) *CleanupScheduler {
	return NewCleanupScheduler(loggingService, config.LogRetentionDays)
}

func ProvideNotificationFormatter() *NotificationFormatter {
	return NewNotificationFormatter()
}

func ProvideTelegramService(config *Config, formatter *NotificationFormatter) (*TelegramService, error) {
	if config.TelegramAPIKey == "" || config.TelegramAdminChatID == "" {
		return nil, nil
	}
	return NewTelegramService(config.TelegramAPIKey, config.ProxyDSN, config.TelegramAdminChatID, formatter)
}

// ProvideRelay attaches the generation log and the notifier, when enabled,
// as outcome hooks.
func ProvideRelay(backend *alchemyst.AlchemystApi, provider *profile.Provider, loggingService *LoggingService, telegramService *TelegramService, channels *Channels) *relay.Relay {
	opts := []relay.Option{
		relay.WithOnFinish(logOutcome),
	}
	if loggingService != nil {
		opts = append(opts, relay.WithOnFinish(func(outcome relay.Outcome) {
			if err := loggingService.LogGeneration(outcome); err != nil {
				log.Errorf("Error logging generation %s: %v", outcome.RequestId, err)
			}
		}))
	}
	if telegramService != nil {
		opts = append(opts, relay.WithOnFinish(func(outcome relay.Outcome) {
			EnqueueNotification(channels.NotificationCh, outcome)
		}))
	}
	return relay.NewRelay(backend, provider, opts...)
}

func logOutcome(outcome relay.Outcome) {
	if outcome.State == relay.StateComplete {
		log.Infof("✅ Generation %s for @%s completed in %s (source: %s, %d chars, over budget: %t)",
			outcome.RequestId, outcome.Handle, outcome.Duration.Round(time.Millisecond), outcome.DataSource, outcome.FinalLength, outcome.OverBudget)
		return
	}
	log.Warnf("❌ Generation %s for @%s failed after %s: %v", outcome.RequestId, outcome.Handle, outcome.Duration.Round(time.Millisecond), outcome.Err)
}

func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	if err := container.Provide(ProvideConfig); err != nil {
		return nil, fmt.Errorf("failed to provide config: %w", err)
	}

	if err := container.Provide(ProvideChannels); err != nil {
		return nil, fmt.Errorf("failed to provide channels: %w", err)
	}

	if err := container.Provide(ProvideProfileProvider); err != nil {
		return nil, fmt.Errorf("failed to provide profile provider: %w", err)
	}

	if err := container.Provide(ProvideAlchemystAPI); err != nil {
		return nil, fmt.Errorf("failed to provide Alchemyst API: %w", err)
	}

	if err := container.Provide(ProvideLoggingService); err != nil {
		return nil, fmt.Errorf("failed to provide logging service: %w", err)
	}

	if err := container.Provide(ProvideCleanupScheduler); err != nil {
		return nil, fmt.Errorf("failed to provide cleanup scheduler: %w", err)
	}

	if err := container.Provide(ProvideNotificationFormatter); err != nil {
		return nil, fmt.Errorf("failed to provide notification formatter: %w", err)
	}

	if err := container.Provide(ProvideTelegramService); err != nil {
		return nil, fmt.Errorf("failed to provide Telegram service: %w", err)
	}

	if err := container.Provide(ProvideRelay); err != nil {
		return nil, fmt.Errorf("failed to provide relay: %w", err)
	}

	if err := container.Provide(NewApplication); err != nil {
		return nil, fmt.Errorf("failed to provide application: %w", err)
	}

	return container, nil
}
