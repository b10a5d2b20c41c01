package alert

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"monitor-precos/internal/models"
)

func obs(id, price string) models.PriceObservation {
	return models.PriceObservation{ID: id, Price: decimal.RequireFromString(price)}
}

func target(price string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(price))
}

func TestDecideWithoutTargetNeverAlerts(t *testing.T) {
	prices := []string{"100.00", "1.00", "0.01", "50.00"}
	var prev *models.PriceObservation
	for i, p := range prices {
		curr := obs(fmt.Sprint(i), p)
		assert.Equal(t, NoAlert, Decide(curr, decimal.NullDecimal{}, prev))
		prev = &curr
	}
}

func TestDecide(t *testing.T) {
	prev := func(price string) *models.PriceObservation {
		o := obs("prev", price)
		return &o
	}

	tests := []struct {
		name string
		curr string
		prev *models.PriceObservation
		want Decision
	}{
		{name: "acima do alvo", curr: "60.00", prev: nil, want: NoAlert},
		{name: "primeira observação já no alvo", curr: "50.00", prev: nil, want: Notify},
		{name: "cruzou para baixo", curr: "48.00", prev: prev("55.00"), want: Notify},
		{name: "continua abaixo", curr: "45.00", prev: prev("48.00"), want: NoAlert},
		{name: "anterior exatamente no alvo", curr: "40.00", prev: prev("50.00"), want: NoAlert},
		{name: "subiu de volta", curr: "52.00", prev: prev("45.00"), want: NoAlert},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(obs("curr", tt.curr), target("50.00"), tt.prev))
		})
	}
}

func TestDecideIgnoresSameObservation(t *testing.T) {
	curr := obs("same-id", "45.00")
	self := curr
	assert.Equal(t, Notify, Decide(curr, target("50.00"), &self))
}

// Alvo 50: alertas exatamente nos índices 2 (48, cruzando) e 5 (40, depois de subir para 52)
func TestDecideScenarioSequence(t *testing.T) {
	prices := []string{"60.00", "55.00", "48.00", "45.00", "52.00", "40.00"}

	var fired []int
	var prev *models.PriceObservation
	for i, p := range prices {
		curr := obs(fmt.Sprint(i), p)
		if Decide(curr, target("50.00"), prev) == Notify {
			fired = append(fired, i)
		}
		prev = &curr
	}

	assert.Equal(t, []int{2, 5}, fired)
}

// Nunca dois alertas seguidos enquanto o preço não sobe acima do alvo
func TestDecideNeverFiresTwiceWhileBelow(t *testing.T) {
	prices := []string{"49.99", "10.00", "50.00", "30.00", "50.01", "50.00", "1.00"}

	var prev *models.PriceObservation
	lastFired := false
	for i, p := range prices {
		curr := obs(fmt.Sprint(i), p)
		fired := Decide(curr, target("50.00"), prev) == Notify
		if fired && lastFired {
			t.Fatalf("alerta repetido no índice %d", i)
		}
		if prev != nil {
			crossed := StateOf(prev.Price, target("50.00").Decimal) == AboveTarget &&
				StateOf(curr.Price, target("50.00").Decimal) == AtOrBelowTarget
			assert.Equal(t, crossed, fired, "índice %d", i)
		}
		if StateOf(curr.Price, target("50.00").Decimal) == AboveTarget {
			lastFired = false
		} else if fired {
			lastFired = true
		}
		prev = &curr
	}
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "notify", Notify.String())
	assert.Equal(t, "no_alert", NoAlert.String())
	assert.Equal(t, "above_target", AboveTarget.String())
	assert.Equal(t, "at_or_below_target", AtOrBelowTarget.String())
}
