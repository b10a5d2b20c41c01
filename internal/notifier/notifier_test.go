package notifier

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mailgun/mailgun-go/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monitor-precos/internal/logger"
	"monitor-precos/internal/models"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

type fakeMail struct {
	subject string
	text    string
	to      []string
	err     error
}

func (f *fakeMail) NewMessage(from, subject, text string, to ...string) *mailgun.Message {
	f.subject, f.text, f.to = subject, text, to
	return &mailgun.Message{}
}

func (f *fakeMail) Send(ctx context.Context, m *mailgun.Message) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return "Queued", "<id@mg>", nil
}

type fixed bool

func (f fixed) Send(context.Context, models.Product, decimal.Decimal) bool { return bool(f) }

func product() models.Product {
	return models.Product{
		ID:          7,
		URL:         "https://www.amazon.com/dp/B0",
		Name:        "Fone Bluetooth",
		TargetPrice: decimal.NewNullDecimal(decimal.RequireFromString("50")),
	}
}

func TestTelegram(t *testing.T) {
	ctx := context.Background()
	price := decimal.RequireFromString("48")

	t.Run("envia mensagem", func(t *testing.T) {
		s := &fakeSender{}
		ok := NewTelegram(s, 123, logger.NewNop()).Send(ctx, product(), price)
		assert.True(t, ok)
		require.Len(t, s.sent, 1)
		msg, isMsg := s.sent[0].(tgbotapi.MessageConfig)
		require.True(t, isMsg)
		assert.Equal(t, int64(123), msg.ChatID)
		assert.Contains(t, msg.Text, "Fone Bluetooth")
		assert.Contains(t, msg.Text, "48.00")
		assert.Contains(t, msg.Text, "50.00")
		assert.Contains(t, msg.Text, "https://www.amazon.com/dp/B0")
	})

	t.Run("falha do envio vira false", func(t *testing.T) {
		s := &fakeSender{err: errors.New("telegram fora do ar")}
		assert.False(t, NewTelegram(s, 123, logger.NewNop()).Send(ctx, product(), price))
	})

	t.Run("sem chat configurado", func(t *testing.T) {
		s := &fakeSender{}
		assert.False(t, NewTelegram(s, 0, logger.NewNop()).Send(ctx, product(), price))
		assert.Empty(t, s.sent)
	})
}

func TestEmail(t *testing.T) {
	ctx := context.Background()
	price := decimal.RequireFromString("48")

	t.Run("envia e-mail", func(t *testing.T) {
		mg := &fakeMail{}
		ok := NewEmail(mg, "alertas@exemplo.com", "eu@exemplo.com", logger.NewNop()).Send(ctx, product(), price)
		assert.True(t, ok)
		assert.Equal(t, "Alerta de queda de preço: Fone Bluetooth", mg.subject)
		assert.Equal(t, []string{"eu@exemplo.com"}, mg.to)
		assert.Contains(t, mg.text, "Preço atual: 48.00")
		assert.Contains(t, mg.text, "Seu preço alvo: 50.00")
		assert.Contains(t, mg.text, "Compre agora: https://www.amazon.com/dp/B0")
	})

	t.Run("erro do mailgun vira false", func(t *testing.T) {
		mg := &fakeMail{err: errors.New("401 unauthorized")}
		assert.False(t, NewEmail(mg, "a@b.com", "c@d.com", logger.NewNop()).Send(ctx, product(), price))
	})
}

func TestMulti(t *testing.T) {
	ctx := context.Background()
	price := decimal.RequireFromString("1")

	assert.True(t, Multi{fixed(false), fixed(true)}.Send(ctx, product(), price))
	assert.False(t, Multi{fixed(false), fixed(false)}.Send(ctx, product(), price))
	assert.False(t, Multi{}.Send(ctx, product(), price))
}
