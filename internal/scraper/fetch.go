package scraper

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"monitor-precos/internal/pacing"
)

// UserAgents é o conjunto de navegadores usado no rodízio dos scrapers específicos
var UserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

const (
	defaultReferer = "https://www.google.com"
	defaultAccept  = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	// Limite de leitura do corpo da página
	maxBodySize = 8 << 20
)

// FetchOptions configura um Fetcher
type FetchOptions struct {
	Timeout        time.Duration
	MinDelay       time.Duration // Atraso aleatório antes da requisição
	MaxDelay       time.Duration
	UserAgents     []string
	Referer        string
	AcceptLanguage string
	RatePerSecond  float64 // <= 0 desativa o limitador
	Random         pacing.Source
	Sleep          pacing.SleepFunc
	Client         *http.Client
}

// Page é o HTML já carregado e a impressão digital do corpo
type Page struct {
	Doc  *goquery.Document
	Hash string
}

// Fetcher faz uma única requisição por extração aplicando a política anti-bloqueio
type Fetcher struct {
	client  *http.Client
	opts    FetchOptions
	limiter *rate.Limiter
}

// NewFetcher cria um Fetcher preenchendo os valores padrão
func NewFetcher(opts FetchOptions) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if len(opts.UserAgents) == 0 {
		opts.UserAgents = UserAgents[:1]
	}
	if opts.Referer == "" {
		opts.Referer = defaultReferer
	}
	if opts.AcceptLanguage == "" {
		opts.AcceptLanguage = "en-US,en;q=0.5"
	}
	if opts.Random == nil {
		opts.Random = pacing.NewSource(0)
	}
	if opts.Sleep == nil {
		opts.Sleep = pacing.Sleep
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}

	f := &Fetcher{client: client, opts: opts}
	if opts.RatePerSecond > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
	}
	return f
}

// Fetch baixa a página e devolve o documento pronto para os seletores
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	url = cleanURL(url)

	if delay := pacing.Between(f.opts.Random, f.opts.MinDelay, f.opts.MaxDelay); delay > 0 {
		if err := f.opts.Sleep(ctx, delay); err != nil {
			return nil, networkError(url, "extração interrompida", err)
		}
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, networkError(url, "extração interrompida", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, networkError(url, "URL inválida", err)
	}

	ua := f.opts.UserAgents[pacing.Pick(f.opts.Random, len(f.opts.UserAgents))]
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Referer", f.opts.Referer)
	req.Header.Set("Accept", defaultAccept)
	req.Header.Set("Accept-Language", f.opts.AcceptLanguage)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, networkError(url, "erro de rede ao buscar página", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, networkError(url, fmt.Sprintf("status code: %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, networkError(url, "erro ao ler corpo da página", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, parseError(url, "HTML inválido", err)
	}

	sum := sha256.Sum256(body)
	return &Page{Doc: doc, Hash: hex.EncodeToString(sum[:])}, nil
}

func cleanURL(url string) string {
	parts := strings.Split(url, "#")
	return parts[0]
}
