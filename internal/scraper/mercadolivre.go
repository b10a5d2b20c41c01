package scraper

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"monitor-precos/internal/logger"
)

// Primeiro os seletores do preço promocional, depois os genéricos da página do produto
var mercadoLivrePriceSelectors = []string{
	".ui-pdp-price__second-line .andes-money-amount__fraction",
	".ui-pdp-price--size-large .andes-money-amount__fraction",
	"[data-testid='price'] .andes-money-amount__fraction",
	".ui-pdp-price__first-line .andes-money-amount__fraction",
	".andes-money-amount__fraction",
	".price-tag-fraction",
	"meta[property='product:price:amount']",
}

var (
	mercadoLivreCentsSelector = ".ui-pdp-price__second-line .andes-money-amount__cents"
	jsonLDOffersPrice         = regexp.MustCompile(`"offers"[^}]*"price"\s*:\s*"?([0-9.]+)"?`)
	unavailableMarkers        = []string{"indisponível", "pausado", "esgotado"}
)

// MercadoLivreScraper implementa o scraper para Mercado Livre
type MercadoLivreScraper struct {
	fetcher *Fetcher
	logger  logger.Logger
}

// NewMercadoLivreScraper cria uma nova instância do scraper do Mercado Livre
func NewMercadoLivreScraper(fetcher *Fetcher, log logger.Logger) *MercadoLivreScraper {
	return &MercadoLivreScraper{fetcher: fetcher, logger: log}
}

func (m *MercadoLivreScraper) Name() string { return "mercadolivre" }

// CanHandle verifica se o scraper pode lidar com a URL fornecida
func (m *MercadoLivreScraper) CanHandle(url string) bool {
	return strings.Contains(url, "mercadolivre.com.br")
}

// Extract extrai o preço de um produto do Mercado Livre
func (m *MercadoLivreScraper) Extract(ctx context.Context, url string) (*Result, error) {
	page, err := m.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	doc := page.Doc

	priceText, selector := firstText(doc, mercadoLivrePriceSelectors)
	decimalSep := ','

	switch {
	case priceText == "":
		// Último recurso: JSON-LD, que usa ponto como separador decimal
		priceText = jsonLDPrice(doc)
		decimalSep = '.'
	case strings.HasPrefix(selector, "meta"):
		decimalSep = '.'
	case strings.HasSuffix(selector, "__fraction") && !strings.Contains(priceText, ","):
		// A fração vem sem centavos, que ficam num elemento separado
		if cents := strings.TrimSpace(doc.Find(mercadoLivreCentsSelector).First().Text()); cents != "" {
			priceText += "," + cents
		}
	}

	if priceText == "" {
		return nil, notFoundError(url, "preço não encontrado na página")
	}

	price, err := ParsePrice(priceText, decimalSep)
	if err != nil {
		return nil, parseError(url, "erro ao parsear preço '"+priceText+"'", err)
	}

	m.logger.Info("preço extraído do Mercado Livre",
		logger.String("url", url),
		logger.String("price", price.StringFixed(2)))

	return &Result{
		Price:       price,
		Currency:    "BRL",
		InStock:     mercadoLivreInStock(doc),
		ContentHash: page.Hash,
	}, nil
}

func jsonLDPrice(doc *goquery.Document) string {
	var price string
	doc.Find("script[type='application/ld+json']").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if matches := jsonLDOffersPrice.FindStringSubmatch(s.Text()); len(matches) > 1 {
			price = matches[1]
			return false
		}
		return true
	})
	return price
}

func mercadoLivreInStock(doc *goquery.Document) bool {
	text := strings.ToLower(doc.Find(".ui-pdp-stock-information, .ui-pdp-message").Text())
	for _, marker := range unavailableMarkers {
		if strings.Contains(text, marker) {
			return false
		}
	}
	return true
}
