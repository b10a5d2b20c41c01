package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "CHECK_INTERVAL_MINUTES", "DATABASE_PATH",
	"LOG_LEVEL", "PRETTY_LOG", "SCRAPE_TIMEOUT", "SCRAPE_DELAY_MIN", "SCRAPE_DELAY_MAX",
	"BATCH_PAUSE_MIN", "BATCH_PAUSE_MAX", "SCRAPE_RATE_PER_SECOND", "RANDOM_SEED",
	"DEFAULT_CURRENCY", "NOTIFIER", "MAILGUN_DOMAIN", "MAILGUN_API_KEY",
	"ALERT_EMAIL_FROM", "ALERT_EMAIL_TO",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.TelegramBotToken)
	assert.Zero(t, cfg.TelegramChatID)
	assert.Equal(t, 30*time.Minute, cfg.CheckInterval)
	assert.Equal(t, "./products.db", cfg.DatabasePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.PrettyLog)
	assert.Equal(t, 10*time.Second, cfg.ScrapeTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.ScrapeDelayMin)
	assert.Equal(t, 3*time.Second, cfg.ScrapeDelayMax)
	assert.Equal(t, time.Second, cfg.BatchPauseMin)
	assert.Equal(t, 3*time.Second, cfg.BatchPauseMax)
	assert.Equal(t, 1.0, cfg.RatePerSecond)
	assert.Equal(t, "USD", cfg.DefaultCurrency)
	assert.True(t, cfg.UseTelegram())
	assert.False(t, cfg.UseEmail())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "987")
	t.Setenv("CHECK_INTERVAL_MINUTES", "5")
	t.Setenv("SCRAPE_TIMEOUT", "2s")
	t.Setenv("PRETTY_LOG", "false")
	t.Setenv("DEFAULT_CURRENCY", "brl")
	t.Setenv("RANDOM_SEED", "7")
	t.Setenv("NOTIFIER", "both")
	t.Setenv("MAILGUN_DOMAIN", "mg.exemplo.com")
	t.Setenv("MAILGUN_API_KEY", "key")
	t.Setenv("ALERT_EMAIL_FROM", "alertas@exemplo.com")
	t.Setenv("ALERT_EMAIL_TO", "eu@exemplo.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(987), cfg.TelegramChatID)
	assert.Equal(t, 5*time.Minute, cfg.CheckInterval)
	assert.Equal(t, 2*time.Second, cfg.ScrapeTimeout)
	assert.False(t, cfg.PrettyLog)
	assert.Equal(t, "BRL", cfg.DefaultCurrency)
	assert.Equal(t, int64(7), cfg.RandomSeed)
	assert.True(t, cfg.UseTelegram())
	assert.True(t, cfg.UseEmail())
}

func TestLoadErrors(t *testing.T) {
	t.Run("sem token", func(t *testing.T) {
		clearEnv(t)
		_, err := Load()
		assert.ErrorContains(t, err, "TELEGRAM_BOT_TOKEN")
	})

	t.Run("email sem mailgun", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
		t.Setenv("NOTIFIER", "email")
		_, err := Load()
		assert.ErrorContains(t, err, "MAILGUN_DOMAIN")
	})

	t.Run("canal desconhecido", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
		t.Setenv("NOTIFIER", "sms")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("intervalo inválido usa o padrão", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
		t.Setenv("CHECK_INTERVAL_MINUTES", "-3")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 30*time.Minute, cfg.CheckInterval)
	})
}
