package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"monitor-precos/internal/logger"
	"monitor-precos/internal/models"
	"monitor-precos/internal/monitor"
)

// Init inicializa o bot do Telegram
func Init(token string, log logger.Logger) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN não configurado. Verifique o arquivo .env")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		if err.Error() == "Unauthorized" {
			return nil, fmt.Errorf("token do Telegram inválido ou expirado. Verifique o TELEGRAM_BOT_TOKEN no arquivo .env. Para obter um token, fale com @BotFather no Telegram")
		}
		return nil, fmt.Errorf("erro ao conectar com Telegram: %w", err)
	}

	api.Debug = false
	log.Info("bot autorizado", logger.String("username", api.Self.UserName))
	return api, nil
}

// Sender é a parte do BotAPI usada pelos handlers
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Store é o catálogo de produtos e alertas usado pelos comandos
type Store interface {
	AddProduct(ctx context.Context, url, name, retailer string, target decimal.NullDecimal) (int64, error)
	ListActive(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	UpdateTargetPrice(ctx context.Context, id int64, target decimal.NullDecimal) error
	DeactivateProduct(ctx context.Context, id int64) error
	UnsentAlerts(ctx context.Context) ([]models.Alert, error)
}

// Checker é a parte do monitor usada pelos comandos
type Checker interface {
	CheckOne(ctx context.Context, productID int64) (*monitor.CheckResult, error)
	GetStats(ctx context.Context, productID int64) (models.PriceStats, error)
	GetHistory(ctx context.Context, productID int64, since time.Time) ([]models.PriceObservation, error)
}

// BatchRunner dispara uma rodada completa (/checkall)
type BatchRunner interface {
	Trigger(ctx context.Context) (monitor.BatchReport, error)
}

// Bot responde aos comandos recebidos pelo Telegram
type Bot struct {
	api     Sender
	store   Store
	checker Checker
	batch   BatchRunner
	logger  logger.Logger

	authorizedChatID int64
	now              func() time.Time
}

// New cria o bot. authorizedChatID == 0 libera todos os chats.
func New(api Sender, store Store, checker Checker, batch BatchRunner, authorizedChatID int64, log logger.Logger) *Bot {
	return &Bot{
		api:              api,
		store:            store,
		checker:          checker,
		batch:            batch,
		logger:           log,
		authorizedChatID: authorizedChatID,
		now:              time.Now,
	}
}

// Run consome as atualizações até o canal fechar ou o contexto terminar
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			b.Handle(ctx, update.Message)
		}
	}
}

// Handle trata uma mensagem recebida
func (b *Bot) Handle(ctx context.Context, message *tgbotapi.Message) {
	command, args := parseCommand(message.Text)
	if command == "" {
		return
	}
	chatID := message.Chat.ID

	// Comandos públicos (não precisam de autorização)
	isPublicCommand := command == "/start" || command == "/help"
	if !isPublicCommand && b.authorizedChatID != 0 && chatID != b.authorizedChatID {
		b.reply(chatID, "Você não está autorizado a usar este bot.")
		return
	}

	b.logger.Debug("comando recebido", logger.String("command", command), logger.Int64("chat_id", chatID))

	switch command {
	case "/start", "/help":
		b.handleHelp(chatID)
	case "/add":
		b.handleAddProduct(ctx, chatID, args)
	case "/list":
		b.handleListProducts(ctx, chatID)
	case "/remove":
		b.handleRemoveProduct(ctx, chatID, args)
	case "/target":
		b.handleTarget(ctx, chatID, args)
	case "/check":
		b.handleCheckProduct(ctx, chatID, args)
	case "/checkall":
		b.handleCheckAll(ctx, chatID)
	case "/stats":
		b.handleStats(ctx, chatID, args)
	case "/history":
		b.handleHistory(ctx, chatID, args)
	case "/alerts":
		b.handleAlerts(ctx, chatID)
	default:
		b.reply(chatID, "Comando não reconhecido. Use /help para ver os comandos disponíveis.")
	}
}

// parseCommand separa o comando (sem @botname) dos argumentos
func parseCommand(text string) (string, []string) {
	parts := strings.Fields(text)
	if len(parts) == 0 || !strings.HasPrefix(parts[0], "/") {
		return "", nil
	}
	command := strings.ToLower(parts[0])
	if idx := strings.Index(command, "@"); idx > 0 {
		command = command[:idx]
	}
	return command, parts[1:]
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error("erro ao enviar mensagem", logger.Int64("chat_id", chatID), logger.Error(err))
	}
}

// replyHTML envia com HTML e, se o Telegram recusar, tenta sem formatação
func (b *Bot) replyHTML(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("erro ao enviar mensagem com HTML, tentando sem formatação", logger.Error(err))
		msg.ParseMode = ""
		if _, err := b.api.Send(msg); err != nil {
			b.logger.Error("erro ao enviar mensagem sem formatação", logger.Error(err))
		}
	}
}
