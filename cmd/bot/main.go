package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"monitor-precos/config"
	"monitor-precos/internal/bot"
	"monitor-precos/internal/database"
	"monitor-precos/internal/logger"
	"monitor-precos/internal/monitor"
	"monitor-precos/internal/notifier"
	"monitor-precos/internal/pacing"
	"monitor-precos/internal/scraper"
)

func main() {
	// Carregar variáveis de ambiente
	if err := godotenv.Load(); err != nil {
		log.Println("Arquivo .env não encontrado, usando variáveis de ambiente do sistema")
	}

	// Carregar configurações
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Erro ao carregar configurações: %v", err)
	}

	lg := logger.New(cfg.LogLevel, cfg.PrettyLog)
	if err := run(cfg, lg); err != nil {
		lg.Error("erro fatal", logger.Error(err))
		_ = lg.Sync()
		os.Exit(1)
	}
	_ = lg.Sync()
}

func run(cfg *config.Config, lg logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Inicializar banco de dados
	db, err := database.New(cfg.DatabasePath, lg)
	if err != nil {
		return fmt.Errorf("erro ao inicializar banco de dados: %w", err)
	}
	defer db.Close()

	// Inicializar bot do Telegram
	telegramBot, err := bot.Init(cfg.TelegramBotToken, lg)
	if err != nil {
		return fmt.Errorf("erro ao inicializar bot do Telegram: %w", err)
	}

	random := pacing.NewSource(cfg.RandomSeed)

	// Inicializar scrapers
	retailFetcher := func(acceptLanguage string) *scraper.Fetcher {
		return scraper.NewFetcher(scraper.FetchOptions{
			Timeout:        cfg.ScrapeTimeout,
			MinDelay:       cfg.ScrapeDelayMin,
			MaxDelay:       cfg.ScrapeDelayMax,
			UserAgents:     scraper.UserAgents,
			AcceptLanguage: acceptLanguage,
			RatePerSecond:  cfg.RatePerSecond,
			Random:         random,
		})
	}
	genericFetcher := scraper.NewFetcher(scraper.FetchOptions{
		Timeout:       cfg.ScrapeTimeout,
		RatePerSecond: cfg.RatePerSecond,
		Random:        random,
	})

	registry := scraper.NewRegistry(lg,
		scraper.NewGenericScraper(genericFetcher, cfg.DefaultCurrency, lg),
		scraper.NewAmazonScraper(retailFetcher("en-US,en;q=0.5"), lg),
		scraper.NewMercadoLivreScraper(retailFetcher("pt-BR,pt;q=0.9,en;q=0.5"), lg),
	)

	// Canais de notificação
	var channels notifier.Multi
	if cfg.UseTelegram() {
		channels = append(channels, notifier.NewTelegram(telegramBot, cfg.TelegramChatID, lg))
	}
	if cfg.UseEmail() {
		channels = append(channels, notifier.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.AlertFrom, cfg.AlertTo, lg))
	}

	// Criar gerenciador de monitoramento
	monitorInstance := monitor.New(db, db, db, registry, channels, lg, monitor.Options{
		BatchPauseMin: cfg.BatchPauseMin,
		BatchPauseMax: cfg.BatchPauseMax,
		Random:        random,
	})

	// Iniciar monitoramento em background
	scheduler := monitor.NewScheduler(monitorInstance, cfg.CheckInterval, lg)
	scheduler.Start(ctx)

	// Configurar comandos do bot
	handler := bot.New(telegramBot, db, monitorInstance, scheduler, cfg.TelegramChatID, lg)
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	go handler.Run(ctx, telegramBot.GetUpdatesChan(u))

	// Aguardar sinal de interrupção
	<-ctx.Done()

	lg.Info("encerrando bot...")
	telegramBot.StopReceivingUpdates()
	scheduler.Stop()
	return nil
}
