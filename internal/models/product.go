package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa um produto sendo monitorado
type Product struct {
	ID          int64
	URL         string
	Name        string
	Retailer    string              // Loja detectada a partir da URL
	TargetPrice decimal.NullDecimal // Sem preço alvo => nunca gera alerta
	Active      bool
	CreatedAt   time.Time
}

// HasTarget informa se o produto tem preço alvo definido
func (p Product) HasTarget() bool {
	return p.TargetPrice.Valid
}

// DisplayName retorna o nome do produto ou um texto padrão
func (p Product) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return "Produto sem nome"
}
