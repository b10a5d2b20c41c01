package stats

import (
	"github.com/shopspring/decimal"

	"monitor-precos/internal/models"
)

// Summarize calcula menor, maior e média dos preços.
// Com histórico vazio os três ficam inválidos, nunca zero.
func Summarize(history []models.PriceObservation) models.PriceStats {
	prices := make([]decimal.Decimal, 0, len(history))
	for _, h := range history {
		prices = append(prices, h.Price)
	}
	return SummarizePrices(prices)
}

// SummarizePrices faz o mesmo cálculo a partir apenas dos preços
func SummarizePrices(prices []decimal.Decimal) models.PriceStats {
	if len(prices) == 0 {
		return models.PriceStats{}
	}

	lowest, highest, sum := prices[0], prices[0], decimal.Zero
	for _, p := range prices {
		if p.LessThan(lowest) {
			lowest = p
		}
		if p.GreaterThan(highest) {
			highest = p
		}
		sum = sum.Add(p)
	}

	avg := sum.Div(decimal.NewFromInt(int64(len(prices)))).Round(2)

	return models.PriceStats{
		Count:   len(prices),
		Lowest:  decimal.NewNullDecimal(lowest),
		Highest: decimal.NewNullDecimal(highest),
		Average: decimal.NewNullDecimal(avg),
	}
}
