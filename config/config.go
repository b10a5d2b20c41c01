package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Canais de notificação aceitos em NOTIFIER
const (
	NotifierTelegram = "telegram"
	NotifierEmail    = "email"
	NotifierBoth     = "both"
)

// Config contém as configurações da aplicação
type Config struct {
	TelegramBotToken string
	TelegramChatID   int64 // opcional; sem ele o bot aceita qualquer chat e não envia alertas
	CheckInterval    time.Duration
	DatabasePath     string

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool

	// Ritmo do scraping
	ScrapeTimeout  time.Duration
	ScrapeDelayMin time.Duration
	ScrapeDelayMax time.Duration
	BatchPauseMin  time.Duration
	BatchPauseMax  time.Duration
	RatePerSecond  float64
	RandomSeed     int64

	DefaultCurrency string

	// Notificações
	Notifier      string
	MailgunDomain string
	MailgunAPIKey string
	AlertFrom     string
	AlertTo       string
}

// Load carrega as configurações das variáveis de ambiente
func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN não configurado")
	}

	cfg := &Config{
		TelegramBotToken: token,
		CheckInterval:    time.Duration(getenvInt("CHECK_INTERVAL_MINUTES", 30)) * time.Minute,
		DatabasePath:     getenv("DATABASE_PATH", "./products.db"),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		PrettyLog: mustBool("PRETTY_LOG", true),

		ScrapeTimeout:  mustDuration("SCRAPE_TIMEOUT", 10*time.Second),
		ScrapeDelayMin: mustDuration("SCRAPE_DELAY_MIN", 500*time.Millisecond),
		ScrapeDelayMax: mustDuration("SCRAPE_DELAY_MAX", 3*time.Second),
		BatchPauseMin:  mustDuration("BATCH_PAUSE_MIN", time.Second),
		BatchPauseMax:  mustDuration("BATCH_PAUSE_MAX", 3*time.Second),
		RatePerSecond:  getenvFloat("SCRAPE_RATE_PER_SECOND", 1),
		RandomSeed:     int64(getenvInt("RANDOM_SEED", 0)),

		DefaultCurrency: strings.ToUpper(getenv("DEFAULT_CURRENCY", "USD")),

		Notifier:      strings.ToLower(getenv("NOTIFIER", NotifierTelegram)),
		MailgunDomain: os.Getenv("MAILGUN_DOMAIN"),
		MailgunAPIKey: os.Getenv("MAILGUN_API_KEY"),
		AlertFrom:     os.Getenv("ALERT_EMAIL_FROM"),
		AlertTo:       os.Getenv("ALERT_EMAIL_TO"),
	}

	// Chat ID é opcional (pode ser usado para restrições, mas não obrigatório)
	if chatIDStr := os.Getenv("TELEGRAM_CHAT_ID"); chatIDStr != "" {
		if chatID, err := strconv.ParseInt(chatIDStr, 10, 64); err == nil {
			cfg.TelegramChatID = chatID
		}
	}

	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 30 * time.Minute
	}

	switch cfg.Notifier {
	case NotifierTelegram:
	case NotifierEmail, NotifierBoth:
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.AlertFrom == "" || cfg.AlertTo == "" {
			return nil, fmt.Errorf("NOTIFIER=%s exige MAILGUN_DOMAIN, MAILGUN_API_KEY, ALERT_EMAIL_FROM e ALERT_EMAIL_TO", cfg.Notifier)
		}
	default:
		return nil, fmt.Errorf("NOTIFIER inválido: %q (use telegram, email ou both)", cfg.Notifier)
	}

	return cfg, nil
}

// UseTelegram indica se os alertas devem ir para o Telegram
func (c *Config) UseTelegram() bool {
	return c.Notifier == NotifierTelegram || c.Notifier == NotifierBoth
}

// UseEmail indica se os alertas devem ir por e-mail
func (c *Config) UseEmail() bool {
	return c.Notifier == NotifierEmail || c.Notifier == NotifierBoth
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
