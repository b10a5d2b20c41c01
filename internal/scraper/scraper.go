package scraper

import (
	"context"

	"github.com/shopspring/decimal"

	"monitor-precos/internal/logger"
)

// Result é o preço normalizado devolvido por um Extractor
type Result struct {
	Price       decimal.Decimal
	Currency    string
	InStock     bool
	ContentHash string
}

// Extractor define a interface para scrapers de diferentes lojas
type Extractor interface {
	Name() string
	// CanHandle não pode ter efeitos colaterais
	CanHandle(url string) bool
	Extract(ctx context.Context, url string) (*Result, error)
}

// Registry mantém os scrapers específicos, em ordem, e um fallback obrigatório
type Registry struct {
	scrapers []Extractor
	fallback Extractor
	logger   logger.Logger
}

// NewRegistry cria um novo registro de scrapers.
// A ordem importa: o primeiro que aceitar a URL vence.
func NewRegistry(log logger.Logger, fallback Extractor, scrapers ...Extractor) *Registry {
	if fallback == nil {
		panic("scraper: registry precisa de um fallback")
	}
	return &Registry{
		scrapers: scrapers,
		fallback: fallback,
		logger:   log,
	}
}

// FindScraper encontra o scraper apropriado para uma URL (nunca nil)
func (r *Registry) FindScraper(url string) Extractor {
	s, _ := r.find(url)
	return s
}

func (r *Registry) find(url string) (Extractor, bool) {
	for _, s := range r.scrapers {
		if s.CanHandle(url) {
			return s, false
		}
	}
	return r.fallback, true
}

// Dispatch extrai o preço com o scraper escolhido.
// Se ele falhar o erro sobe como está, sem tentar outro scraper.
func (r *Registry) Dispatch(ctx context.Context, url string) (*Result, error) {
	s, isFallback := r.find(url)
	if isFallback {
		r.logger.Debug("nenhum scraper específico, usando fallback",
			logger.String("scraper", s.Name()),
			logger.String("url", url))
	} else {
		r.logger.Debug("despachando extração",
			logger.String("scraper", s.Name()),
			logger.String("url", url))
	}
	return s.Extract(ctx, url)
}
