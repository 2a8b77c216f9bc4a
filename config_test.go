package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvideConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		for _, key := range []string{ENV_ALCHEMYST_API_KEY, ENV_ALCHEMYST_TIMEOUT_SECONDS, ENV_LISTEN_ADDR, ENV_ALLOWED_ORIGINS, ENV_LOG_RETENTION_DAYS, ENV_TWITTER_BEARER_TOKEN} {
			t.Setenv(key, "")
		}

		config, err := ProvideConfig()
		require.NoError(t, err)
		assert.Equal(t, DEFAULT_LISTEN_ADDR, config.ListenAddr)
		assert.Equal(t, 30*time.Second, config.AlchemystTimeout)
		assert.Equal(t, DEFAULT_LOG_RETENTION_DAYS, config.LogRetentionDays)
		assert.Equal(t, []string{"*"}, config.AllowedOrigins)
		assert.Empty(t, config.AlchemystAPIKey)
	})

	t.Run("FromEnvironment", func(t *testing.T) {
		t.Setenv(ENV_ALCHEMYST_API_KEY, "key")
		t.Setenv(ENV_ALCHEMYST_TIMEOUT_SECONDS, "45")
		t.Setenv(ENV_LISTEN_ADDR, "127.0.0.1:8080")
		t.Setenv(ENV_ALLOWED_ORIGINS, "https://a.example.com, ,https://b.example.com")
		t.Setenv(ENV_LOG_RETENTION_DAYS, "7")

		config, err := ProvideConfig()
		require.NoError(t, err)
		assert.Equal(t, "key", config.AlchemystAPIKey)
		assert.Equal(t, 45*time.Second, config.AlchemystTimeout)
		assert.Equal(t, "127.0.0.1:8080", config.ListenAddr)
		assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, config.AllowedOrigins)
		assert.Equal(t, 7, config.LogRetentionDays)
	})

	t.Run("InvalidNumber", func(t *testing.T) {
		t.Setenv(ENV_ALCHEMYST_TIMEOUT_SECONDS, "soon")
		_, err := ProvideConfig()
		assert.ErrorContains(t, err, ENV_ALCHEMYST_TIMEOUT_SECONDS)

		t.Setenv(ENV_ALCHEMYST_TIMEOUT_SECONDS, "-1")
		_, err = ProvideConfig()
		assert.Error(t, err)
	})
}

func TestBuildContainer(t *testing.T) {
	t.Setenv(ENV_ALCHEMYST_API_KEY, "key")
	t.Setenv(ENV_TWITTER_BEARER_TOKEN, "")
	t.Setenv(ENV_TELEGRAM_API_KEY, "")
	t.Setenv(ENV_LOGGING_DATABASE_PATH, "")

	container, err := BuildContainer()
	require.NoError(t, err)

	err = container.Invoke(func(app *Application) {
		assert.Nil(t, app.loggingService)
		assert.Nil(t, app.telegramService)
		assert.False(t, app.provider.LiveConfigured())
		assert.True(t, app.backend.Ready())
	})
	require.NoError(t, err)
}
