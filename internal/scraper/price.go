package scraper

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

var (
	nonPriceChars = regexp.MustCompile(`[^0-9.]`)
	// Preço dentro de um texto livre: "1,299.99", "49.90", "$15"
	pricePattern = regexp.MustCompile(`[0-9]{1,3}(?:,[0-9]{3})+(?:\.[0-9]{1,2})?|[0-9]+(?:\.[0-9]{1,2})?`)

	errEmptyPrice = errors.New("texto sem dígitos")
)

// ParsePrice limpa o texto do preço e converte para decimal com duas casas.
// decimalSep é ',' para lojas brasileiras (1.299,90) e '.' para as demais.
func ParsePrice(raw string, decimalSep rune) (decimal.Decimal, error) {
	text := raw
	if decimalSep == ',' {
		text = strings.ReplaceAll(text, ".", "")
		text = strings.ReplaceAll(text, ",", ".")
	}
	text = nonPriceChars.ReplaceAllString(text, "")
	text = strings.TrimRight(text, ".")
	if strings.Count(text, ".") > 1 {
		text = strings.TrimLeft(text, ".")
	}

	if text == "" {
		return decimal.Zero, errEmptyPrice
	}

	price, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("formato de preço inválido %q: %w", text, err)
	}
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("preço não positivo: %s", price)
	}

	return price.Round(2), nil
}

// findPriceText procura um preço dentro de um texto livre
func findPriceText(text string) string {
	return pricePattern.FindString(text)
}

// firstText percorre os seletores em ordem e devolve o primeiro texto não vazio.
// O atributo content (meta tags, microdata) tem preferência sobre o texto.
func firstText(doc *goquery.Document, selectors []string) (string, string) {
	for _, selector := range selectors {
		var found string
		doc.Find(selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
			found = selectionText(s)
			return found == ""
		})
		if found != "" {
			return found, selector
		}
	}
	return "", ""
}

func selectionText(s *goquery.Selection) string {
	if content, ok := s.Attr("content"); ok && strings.TrimSpace(content) != "" {
		return strings.TrimSpace(content)
	}
	return strings.TrimSpace(s.Text())
}
