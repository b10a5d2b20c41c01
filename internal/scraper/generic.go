package scraper

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"monitor-precos/internal/logger"
)

// Classes e microdata comuns para preço
var genericPriceSelectors = []string{
	"[itemprop='price']",
	".price",
	".product-price",
	".sale-price",
	".current-price",
	"[class*='price']",
}

// GenericScraper é o fallback: aceita qualquer URL
type GenericScraper struct {
	fetcher         *Fetcher
	defaultCurrency string
	logger          logger.Logger
}

// NewGenericScraper cria o scraper genérico
func NewGenericScraper(fetcher *Fetcher, defaultCurrency string, log logger.Logger) *GenericScraper {
	if defaultCurrency == "" {
		defaultCurrency = "USD"
	}
	return &GenericScraper{fetcher: fetcher, defaultCurrency: defaultCurrency, logger: log}
}

func (g *GenericScraper) Name() string { return "generic" }

func (g *GenericScraper) CanHandle(string) bool { return true }

// Extract tenta cada seletor até achar um preço positivo.
// Se algum texto foi encontrado mas nenhum virou preço, a falha é de parse.
func (g *GenericScraper) Extract(ctx context.Context, url string) (*Result, error) {
	page, err := g.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	doc := page.Doc

	var located string
	for _, selector := range genericPriceSelectors {
		text := selectionText(doc.Find(selector).First())
		if text == "" {
			continue
		}
		if located == "" {
			located = text
		}

		raw := findPriceText(text)
		if raw == "" {
			continue
		}
		price, err := ParsePrice(strings.ReplaceAll(raw, ",", ""), '.')
		if err != nil {
			continue
		}

		g.logger.Info("preço extraído pelo scraper genérico",
			logger.String("selector", selector),
			logger.String("url", url),
			logger.String("price", price.StringFixed(2)))

		return &Result{
			Price:       price,
			Currency:    g.currency(doc),
			InStock:     genericInStock(doc),
			ContentHash: page.Hash,
		}, nil
	}

	if located != "" {
		return nil, parseError(url, "não foi possível interpretar o preço '"+located+"'", nil)
	}
	return nil, notFoundError(url, "preço não encontrado na página (scraper genérico)")
}

func (g *GenericScraper) currency(doc *goquery.Document) string {
	if c := selectionText(doc.Find("[itemprop='priceCurrency']").First()); len(c) == 3 {
		return strings.ToUpper(c)
	}
	return g.defaultCurrency
}

func genericInStock(doc *goquery.Document) bool {
	s := doc.Find("[itemprop='availability']").First()
	if s.Length() == 0 {
		return true
	}
	signal := selectionText(s)
	if href, ok := s.Attr("href"); ok {
		signal += " " + href
	}
	return !strings.Contains(strings.ToLower(signal), "outofstock")
}
