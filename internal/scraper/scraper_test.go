package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monitor-precos/internal/logger"
	"monitor-precos/internal/pacing"
)

type fakeExtractor struct {
	name    string
	pattern string
	err     error
	calls   int
}

func (f *fakeExtractor) Name() string { return f.name }

func (f *fakeExtractor) CanHandle(url string) bool {
	return f.pattern == "*" || (f.pattern != "" && strings.Contains(url, f.pattern))
}

func (f *fakeExtractor) Extract(ctx context.Context, url string) (*Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &Result{Price: decimal.RequireFromString("10.00"), Currency: "USD", InStock: true}, nil
}

func TestRegistryDispatchFirstMatchWins(t *testing.T) {
	first := &fakeExtractor{name: "first", pattern: "shop.example"}
	second := &fakeExtractor{name: "second", pattern: "example"}
	fallback := &fakeExtractor{name: "fallback", pattern: "*"}
	reg := NewRegistry(logger.NewNop(), fallback, first, second)

	for i := 0; i < 3; i++ {
		_, err := reg.Dispatch(context.Background(), "https://shop.example/item")
		require.NoError(t, err)
	}

	assert.Equal(t, 3, first.calls)
	assert.Equal(t, 0, second.calls)
	assert.Equal(t, 0, fallback.calls)
	assert.Same(t, second, reg.FindScraper("https://other.example/item"))
}

func TestRegistryFallsBackWhenNothingMatches(t *testing.T) {
	specific := &fakeExtractor{name: "specific", pattern: "amazon.com"}
	fallback := &fakeExtractor{name: "fallback", pattern: "*"}
	reg := NewRegistry(logger.NewNop(), fallback, specific)

	_, err := reg.Dispatch(context.Background(), "https://loja.exemplo.com/produto")
	require.NoError(t, err)
	assert.Equal(t, 0, specific.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestRegistryDoesNotRetryOnFailure(t *testing.T) {
	failure := notFoundError("https://amazon.com/x", "sem preço")
	specific := &fakeExtractor{name: "specific", pattern: "amazon.com", err: failure}
	fallback := &fakeExtractor{name: "fallback", pattern: "*"}
	reg := NewRegistry(logger.NewNop(), fallback, specific)

	_, err := reg.Dispatch(context.Background(), "https://amazon.com/x")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
	assert.Equal(t, 1, specific.calls)
	assert.Equal(t, 0, fallback.calls)
}

func TestRegistryRequiresFallback(t *testing.T) {
	assert.Panics(t, func() { NewRegistry(logger.NewNop(), nil) })
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		sep     rune
		want    string
		wantErr bool
	}{
		{name: "dólar com milhar", raw: "$1,299.99", sep: '.', want: "1299.99"},
		{name: "inteiro da amazon", raw: "1,299.", sep: '.', want: "1299.00"},
		{name: "real brasileiro", raw: "R$ 1.299,90", sep: ',', want: "1299.90"},
		{name: "arredonda para duas casas", raw: "10.005", sep: '.', want: "10.01"},
		{name: "traço no lugar do preço", raw: "Price: $—", sep: '.', wantErr: true},
		{name: "vazio", raw: "", sep: '.', wantErr: true},
		{name: "zero", raw: "$0.00", sep: '.', wantErr: true},
		{name: "dois pontos decimais", raw: "12.34.56", sep: '.', wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrice(tt.raw, tt.sep)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestExtractionErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := networkError("http://x", "erro de rede", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsKind(err, KindNetwork))
	assert.False(t, IsKind(err, KindParse))
	assert.False(t, IsKind(cause, KindNetwork))
	assert.Contains(t, err.Error(), "http://x")
	assert.Equal(t, "not_found", KindNotFound.String())
}

func TestDetectRetailer(t *testing.T) {
	assert.Equal(t, "Amazon", DetectRetailer("https://www.amazon.com/dp/B000"))
	assert.Equal(t, "Mercado Livre", DetectRetailer("https://produto.mercadolivre.com.br/MLB-1"))
	assert.Equal(t, "Best Buy", DetectRetailer("https://www.bestbuy.com/site/x"))
	assert.Equal(t, "Other", DetectRetailer("https://loja.exemplo.com/x"))
}

// recordingSleep guarda as pausas pedidas sem dormir de verdade
type recordingSleep struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingSleep) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func testFetcher(sleep *recordingSleep, minDelay, maxDelay time.Duration) *Fetcher {
	return NewFetcher(FetchOptions{
		Timeout:    2 * time.Second,
		MinDelay:   minDelay,
		MaxDelay:   maxDelay,
		UserAgents: UserAgents,
		Random:     pacing.NewSource(99),
		Sleep:      sleep.Sleep,
	})
}

func serveHTML(t *testing.T, status int, body string) (*httptest.Server, *http.Header) {
	t.Helper()
	var headers http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &headers
}

func TestFetcherAppliesAntiBlockingPolicy(t *testing.T) {
	srv, headers := serveHTML(t, http.StatusOK, `<html><body><span id="x">ok</span></body></html>`)
	sleep := &recordingSleep{}
	f := testFetcher(sleep, 500*time.Millisecond, 3*time.Second)

	page, err := f.Fetch(context.Background(), srv.URL+"/produto#reviews")
	require.NoError(t, err)
	assert.Equal(t, "ok", page.Doc.Find("#x").Text())
	assert.Len(t, page.Hash, 64)

	require.Len(t, sleep.delays, 1)
	assert.GreaterOrEqual(t, sleep.delays[0], 500*time.Millisecond)
	assert.Less(t, sleep.delays[0], 3*time.Second)

	assert.Contains(t, UserAgents, headers.Get("User-Agent"))
	assert.Equal(t, "https://www.google.com", headers.Get("Referer"))
	assert.NotEmpty(t, headers.Get("Accept-Language"))
}

func TestFetcherWithoutDelayDoesNotSleep(t *testing.T) {
	srv, _ := serveHTML(t, http.StatusOK, `<html></html>`)
	sleep := &recordingSleep{}
	f := testFetcher(sleep, 0, 0)

	_, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Empty(t, sleep.delays)
}

func TestFetcherTimeoutIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	f := NewFetcher(FetchOptions{Timeout: 50 * time.Millisecond, Random: pacing.NewSource(1)})
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNetwork))
}

func TestFetcherNon200IsNetworkError(t *testing.T) {
	srv, _ := serveHTML(t, http.StatusServiceUnavailable, "bloqueado")
	f := testFetcher(&recordingSleep{}, 0, 0)

	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNetwork))
	assert.Contains(t, err.Error(), "503")
}
