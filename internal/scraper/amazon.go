package scraper

import (
	"context"
	"strings"

	"monitor-precos/internal/logger"
)

// Seletores de preço da Amazon, em ordem de prioridade. A Amazon muda isso com frequência.
var amazonPriceSelectors = []string{
	"#corePriceDisplay_desktop_feature_div .a-price-whole",
	"#price_inside_buybox",
	"#priceblock_ourprice",
	"#priceblock_dealprice",
	".a-price.aok-align-center .a-offscreen",
}

const amazonWholeSuffix = ".a-price-whole"

var amazonCurrencies = []struct {
	host     string
	currency string
}{
	{"amazon.co.uk", "GBP"},
	{"amazon.ca", "CAD"},
	{"amazon.de", "EUR"},
	{"amazon.com", "USD"},
}

// AmazonScraper implementa o scraper para as lojas da Amazon
type AmazonScraper struct {
	fetcher *Fetcher
	logger  logger.Logger
}

// NewAmazonScraper cria o scraper da Amazon
func NewAmazonScraper(fetcher *Fetcher, log logger.Logger) *AmazonScraper {
	return &AmazonScraper{fetcher: fetcher, logger: log}
}

func (a *AmazonScraper) Name() string { return "amazon" }

// CanHandle verifica se a URL é de uma das Amazons suportadas
func (a *AmazonScraper) CanHandle(url string) bool {
	for _, c := range amazonCurrencies {
		if strings.Contains(url, c.host) {
			return true
		}
	}
	return false
}

// Extract busca o preço e o estoque de um produto da Amazon
func (a *AmazonScraper) Extract(ctx context.Context, url string) (*Result, error) {
	page, err := a.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	rawPrice, selector := firstText(page.Doc, amazonPriceSelectors)
	if rawPrice == "" {
		return nil, notFoundError(url, "elemento de preço não encontrado na página da Amazon")
	}

	// A parte inteira vem separada dos centavos
	if strings.HasSuffix(selector, amazonWholeSuffix) {
		whole := page.Doc.Find(selector).First()
		fraction := strings.TrimSpace(whole.SiblingsFiltered(".a-price-fraction").First().Text())
		if fraction != "" {
			rawPrice = strings.TrimRight(rawPrice, ".") + "." + fraction
		}
	}

	price, err := ParsePrice(rawPrice, '.')
	if err != nil {
		return nil, parseError(url, "não foi possível interpretar o preço '"+rawPrice+"'", err)
	}

	// Sem o marcador de indisponível o produto é considerado em estoque
	availability := strings.ToLower(page.Doc.Find("#availability").Text())
	inStock := !strings.Contains(availability, "unavailable")

	a.logger.Info("preço extraído da Amazon",
		logger.String("url", url),
		logger.String("price", price.StringFixed(2)))

	return &Result{
		Price:       price,
		Currency:    amazonCurrency(url),
		InStock:     inStock,
		ContentHash: page.Hash,
	}, nil
}

func amazonCurrency(url string) string {
	for _, c := range amazonCurrencies {
		if strings.Contains(url, c.host) {
			return c.currency
		}
	}
	return "USD"
}
