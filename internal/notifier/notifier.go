// Package notifier entrega os alertas de queda de preço.
// Nenhuma implementação devolve erro: o resultado é só entregue ou não.
package notifier

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"monitor-precos/internal/models"
)

// Notifier envia o alerta de um produto
type Notifier interface {
	Send(ctx context.Context, product models.Product, price decimal.Decimal) bool
}

// Multi envia para todos os canais; conta como entregue se algum deles entregou
type Multi []Notifier

func (m Multi) Send(ctx context.Context, product models.Product, price decimal.Decimal) bool {
	delivered := false
	for _, n := range m {
		if n.Send(ctx, product, price) {
			delivered = true
		}
	}
	return delivered
}

func alertText(product models.Product, price decimal.Decimal) string {
	text := fmt.Sprintf(
		"🎉 PROMOÇÃO DETECTADA!\n\n"+
			"Produto: %s\n"+
			"Preço atual: %s\n",
		product.DisplayName(),
		price.StringFixed(2),
	)
	if product.TargetPrice.Valid {
		text += fmt.Sprintf("Preço alvo: %s\n", product.TargetPrice.Decimal.StringFixed(2))
	}
	text += fmt.Sprintf("\nLink: %s", product.URL)
	return text
}
