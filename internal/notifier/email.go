package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/shopspring/decimal"

	"monitor-precos/internal/logger"
	"monitor-precos/internal/models"
)

// MailSender é a parte do cliente Mailgun usada pelo notificador
type MailSender interface {
	NewMessage(from, subject, text string, to ...string) *mailgun.Message
	Send(ctx context.Context, m *mailgun.Message) (string, string, error)
}

// Email envia os alertas por e-mail via Mailgun
type Email struct {
	mg      MailSender
	from    string
	to      string
	timeout time.Duration
	logger  logger.Logger
}

// NewMailgun cria o notificador a partir do domínio e da chave da API
func NewMailgun(domain, apiKey, from, to string, log logger.Logger) *Email {
	return NewEmail(mailgun.NewMailgun(domain, apiKey), from, to, log)
}

// NewEmail cria o notificador com um MailSender qualquer
func NewEmail(mg MailSender, from, to string, log logger.Logger) *Email {
	return &Email{mg: mg, from: from, to: to, timeout: 10 * time.Second, logger: log}
}

func (e *Email) Send(ctx context.Context, product models.Product, price decimal.Decimal) bool {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	subject := "Alerta de queda de preço: " + product.DisplayName()
	message := e.mg.NewMessage(e.from, subject, emailBody(product, price), e.to)

	_, id, err := e.mg.Send(ctx, message)
	if err != nil {
		e.logger.Error("erro ao enviar alerta por e-mail",
			logger.Int64("product_id", product.ID),
			logger.String("to", e.to),
			logger.Error(err))
		return false
	}

	e.logger.Info("notificação enviada por e-mail",
		logger.Int64("product_id", product.ID),
		logger.String("to", e.to),
		logger.String("message_id", id))
	return true
}

func emailBody(product models.Product, price decimal.Decimal) string {
	target := "-"
	if product.TargetPrice.Valid {
		target = product.TargetPrice.Decimal.StringFixed(2)
	}
	return fmt.Sprintf(`Alerta de queda de preço!

Produto: %s
Preço atual: %s
Seu preço alvo: %s

Compre agora: %s
`, product.DisplayName(), price.StringFixed(2), target, product.URL)
}
