package notifier

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"monitor-precos/internal/logger"
	"monitor-precos/internal/models"
)

// Sender é a parte do BotAPI usada para enviar mensagens
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram envia os alertas para um chat do Telegram
type Telegram struct {
	bot    Sender
	chatID int64
	logger logger.Logger
}

// NewTelegram cria o notificador do Telegram
func NewTelegram(bot Sender, chatID int64, log logger.Logger) *Telegram {
	return &Telegram{bot: bot, chatID: chatID, logger: log}
}

func (t *Telegram) Send(ctx context.Context, product models.Product, price decimal.Decimal) bool {
	if t.chatID == 0 {
		t.logger.Warn("TELEGRAM_CHAT_ID não configurado, alerta não enviado",
			logger.Int64("product_id", product.ID))
		return false
	}
	if ctx.Err() != nil {
		return false
	}

	msg := tgbotapi.NewMessage(t.chatID, alertText(product, price))
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Error("erro ao enviar alerta pelo Telegram",
			logger.Int64("product_id", product.ID),
			logger.Error(err))
		return false
	}

	t.logger.Info("notificação enviada pelo Telegram", logger.Int64("product_id", product.ID))
	return true
}
