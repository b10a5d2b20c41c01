package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertTypePriceDrop é o único tipo de alerta existente hoje
const AlertTypePriceDrop = "PRICE_DROP"

// PriceObservation é uma leitura de preço/estoque de um produto.
// Depois de gravada nunca é alterada nem removida.
type PriceObservation struct {
	ID          string
	ProductID   int64
	Price       decimal.Decimal // Sempre com duas casas decimais
	Currency    string
	ScrapedAt   time.Time
	InStock     bool
	ContentHash string // SHA-256 do corpo da página (opcional)
}

// Alert registra cada decisão de notificar, enviada ou não
type Alert struct {
	ID               string
	ProductID        int64
	TriggeredPrice   decimal.Decimal
	TriggeredAt      time.Time
	NotificationSent bool
	Type             string
}

// PriceStats agrega o histórico de preços de um produto.
// Os três valores ficam inválidos quando não há histórico.
type PriceStats struct {
	Count   int
	Lowest  decimal.NullDecimal
	Highest decimal.NullDecimal
	Average decimal.NullDecimal
}
