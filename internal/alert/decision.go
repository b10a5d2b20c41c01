// Package alert decide quando uma queda de preço deve gerar notificação.
//
// Cada produto está implicitamente em um de dois estados, deduzidos das
// duas observações mais recentes: acima do alvo ou no alvo (ou abaixo).
// Só a transição de acima para no alvo dispara notificação; enquanto o
// preço continuar no alvo os alertas repetidos são suprimidos.
package alert

import (
	"github.com/shopspring/decimal"

	"monitor-precos/internal/models"
)

// Decision é o resultado da avaliação
type Decision int

const (
	NoAlert Decision = iota
	Notify
)

func (d Decision) String() string {
	if d == Notify {
		return "notify"
	}
	return "no_alert"
}

// State é o estado de um preço em relação ao alvo
type State int

const (
	AboveTarget State = iota
	AtOrBelowTarget
)

func (s State) String() string {
	if s == AtOrBelowTarget {
		return "at_or_below_target"
	}
	return "above_target"
}

// StateOf classifica um preço em relação ao alvo
func StateOf(price, target decimal.Decimal) State {
	if price.LessThanOrEqual(target) {
		return AtOrBelowTarget
	}
	return AboveTarget
}

// Decide avalia a observação recém gravada (curr) contra o alvo e a
// observação imediatamente anterior (prev, nil se curr é a primeira).
func Decide(curr models.PriceObservation, target decimal.NullDecimal, prev *models.PriceObservation) Decision {
	if !target.Valid {
		return NoAlert
	}
	if StateOf(curr.Price, target.Decimal) == AboveTarget {
		return NoAlert
	}

	// Nunca comparar a observação com ela mesma
	if prev != nil && prev.ID != "" && prev.ID == curr.ID {
		prev = nil
	}

	if prev == nil || StateOf(prev.Price, target.Decimal) == AboveTarget {
		return Notify
	}
	return NoAlert
}
