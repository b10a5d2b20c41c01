package monitor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"monitor-precos/internal/alert"
	"monitor-precos/internal/logger"
	"monitor-precos/internal/models"
	"monitor-precos/internal/pacing"
	"monitor-precos/internal/scraper"
)

// ProductStore é o catálogo de produtos
type ProductStore interface {
	ListActive(ctx context.Context) ([]models.Product, error)
	// FindByID devolve nil, nil quando o produto não existe
	FindByID(ctx context.Context, id int64) (*models.Product, error)
}

// HistoryStore lê o histórico de preços
type HistoryStore interface {
	Latest(ctx context.Context, productID int64) (*models.PriceObservation, error)
	ByProduct(ctx context.Context, productID int64, since time.Time) ([]models.PriceObservation, error)
	Stats(ctx context.Context, productID int64) (models.PriceStats, error)
}

// Recorder grava o resultado de uma verificação: a observação e, se
// houve decisão de notificar, o alerta. Os dois são gravados juntos ou
// nenhum é.
type Recorder interface {
	Record(ctx context.Context, obs *models.PriceObservation, a *models.Alert) error
}

// Notifier entrega o alerta; false quando a entrega falhou
type Notifier interface {
	Send(ctx context.Context, product models.Product, price decimal.Decimal) bool
}

// Dispatcher escolhe o scraper e extrai o preço de uma URL
type Dispatcher interface {
	Dispatch(ctx context.Context, url string) (*scraper.Result, error)
}

// Options ajusta o ritmo e as dependências não determinísticas do monitor
type Options struct {
	BatchPauseMin time.Duration
	BatchPauseMax time.Duration
	Clock         pacing.Clock
	Random        pacing.Source
	Sleep         pacing.SleepFunc
}

// CheckResult é o resultado da verificação de um produto.
// Observation fica nil quando a extração falhou; ExtractErr diz o motivo.
type CheckResult struct {
	Product     models.Product
	Observation *models.PriceObservation
	Alert       *models.Alert
	ExtractErr  error
}

// BatchReport resume uma rodada sobre todos os produtos ativos
type BatchReport struct {
	Checked  int
	Recorded int
	Failed   int
	Alerts   int
	Duration time.Duration
}

// Monitor gerencia a verificação de preços dos produtos
type Monitor struct {
	products   ProductStore
	history    HistoryStore
	recorder   Recorder
	dispatcher Dispatcher
	notifier   Notifier
	logger     logger.Logger

	pauseMin time.Duration
	pauseMax time.Duration
	now      pacing.Clock
	random   pacing.Source
	sleep    pacing.SleepFunc

	inflight singleflight.Group
}

// New cria uma nova instância do monitor
func New(products ProductStore, history HistoryStore, recorder Recorder, dispatcher Dispatcher, notifier Notifier, log logger.Logger, opts Options) *Monitor {
	if opts.BatchPauseMin == 0 && opts.BatchPauseMax == 0 {
		opts.BatchPauseMin = time.Second
		opts.BatchPauseMax = 3 * time.Second
	}
	if opts.Clock == nil {
		opts.Clock = pacing.UTC
	}
	if opts.Random == nil {
		opts.Random = pacing.NewSource(0)
	}
	if opts.Sleep == nil {
		opts.Sleep = pacing.Sleep
	}

	return &Monitor{
		products:   products,
		history:    history,
		recorder:   recorder,
		dispatcher: dispatcher,
		notifier:   notifier,
		logger:     log,
		pauseMin:   opts.BatchPauseMin,
		pauseMax:   opts.BatchPauseMax,
		now:        opts.Clock,
		random:     opts.Random,
		sleep:      opts.Sleep,
	}
}

// CheckOne verifica um produto pelo ID (usado pelo comando /check).
// Produto inexistente devolve nil, nil.
func (m *Monitor) CheckOne(ctx context.Context, productID int64) (*CheckResult, error) {
	product, err := m.products.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar produto %d: %w", productID, err)
	}
	if product == nil {
		m.logger.Debug("produto não encontrado, ignorando", logger.Int64("product_id", productID))
		return nil, nil
	}
	return m.check(ctx, *product)
}

// CheckAllActive verifica todos os produtos ativos, um de cada vez,
// com uma pausa aleatória entre eles. Falha em um produto não
// interrompe a rodada.
func (m *Monitor) CheckAllActive(ctx context.Context) (BatchReport, error) {
	start := m.now()
	var report BatchReport

	products, err := m.products.ListActive(ctx)
	if err != nil {
		return report, fmt.Errorf("erro ao buscar produtos ativos: %w", err)
	}

	m.logger.Info("iniciando verificação de produtos", logger.Int("total", len(products)))

	for i, product := range products {
		if err := ctx.Err(); err != nil {
			return m.cancelled(report, start, err)
		}

		report.Checked++
		res, err := m.check(ctx, product)
		switch {
		case err != nil:
			report.Failed++
			m.logger.Error("erro ao verificar produto",
				logger.Int64("product_id", product.ID),
				logger.Error(err))
		case res.Observation == nil:
			report.Failed++
		default:
			report.Recorded++
			if res.Alert != nil {
				report.Alerts++
			}
		}

		if i < len(products)-1 {
			pause := pacing.Between(m.random, m.pauseMin, m.pauseMax)
			if err := m.sleep(ctx, pause); err != nil {
				return m.cancelled(report, start, err)
			}
		}
	}

	report.Duration = m.now().Sub(start)
	m.logger.Info("verificação concluída",
		logger.Int("checked", report.Checked),
		logger.Int("recorded", report.Recorded),
		logger.Int("failed", report.Failed),
		logger.Int("alerts", report.Alerts),
		logger.Duration("duration", report.Duration))
	return report, nil
}

func (m *Monitor) cancelled(report BatchReport, start time.Time, err error) (BatchReport, error) {
	report.Duration = m.now().Sub(start)
	m.logger.Warn("verificação cancelada",
		logger.Int("checked", report.Checked),
		logger.Duration("duration", report.Duration))
	return report, err
}

// GetStats devolve mínimo, máximo e média do histórico de um produto
func (m *Monitor) GetStats(ctx context.Context, productID int64) (models.PriceStats, error) {
	return m.history.Stats(ctx, productID)
}

// GetHistory devolve o histórico em ordem cronológica.
// since zero devolve tudo; caso contrário só o que veio depois de since.
func (m *Monitor) GetHistory(ctx context.Context, productID int64, since time.Time) ([]models.PriceObservation, error) {
	return m.history.ByProduct(ctx, productID, since)
}

// check agrupa verificações simultâneas do mesmo produto em uma só.
// Uma verificação iniciada sempre termina: o cancelamento de quem a
// chamou não a interrompe, só o timeout da extração.
func (m *Monitor) check(ctx context.Context, product models.Product) (*CheckResult, error) {
	v, err, shared := m.inflight.Do(strconv.FormatInt(product.ID, 10), func() (interface{}, error) {
		return m.checkProduct(context.WithoutCancel(ctx), product)
	})
	if shared {
		m.logger.Debug("verificação já em andamento, reaproveitando resultado",
			logger.Int64("product_id", product.ID))
	}
	res, _ := v.(*CheckResult)
	return res, err
}

func (m *Monitor) checkProduct(ctx context.Context, product models.Product) (*CheckResult, error) {
	result := &CheckResult{Product: product}

	extracted, err := m.dispatcher.Dispatch(ctx, product.URL)
	if err != nil {
		fields := []zap.Field{
			logger.Int64("product_id", product.ID),
			logger.String("url", product.URL),
			logger.Error(err),
		}
		var extErr *scraper.ExtractionError
		if errors.As(err, &extErr) {
			fields = append(fields, logger.Stringer("kind", extErr.Kind))
		}
		m.logger.Warn("erro ao buscar preço", fields...)
		result.ExtractErr = err
		return result, nil
	}

	prev, err := m.history.Latest(ctx, product.ID)
	if err != nil {
		return result, fmt.Errorf("erro ao buscar último preço do produto %d: %w", product.ID, err)
	}

	obs := &models.PriceObservation{
		ProductID:   product.ID,
		Price:       extracted.Price.Round(2),
		Currency:    extracted.Currency,
		ScrapedAt:   m.now(),
		InStock:     extracted.InStock,
		ContentHash: extracted.ContentHash,
	}

	// A notificação acontece antes da gravação para que nenhuma
	// transação fique aberta durante a chamada de rede.
	var a *models.Alert
	if alert.Decide(*obs, product.TargetPrice, prev) == alert.Notify {
		sent := false
		if m.notifier != nil {
			sent = m.notifier.Send(ctx, product, obs.Price)
		}
		a = &models.Alert{
			ProductID:        product.ID,
			TriggeredPrice:   obs.Price,
			TriggeredAt:      m.now(),
			NotificationSent: sent,
			Type:             models.AlertTypePriceDrop,
		}
	}

	if err := m.recorder.Record(ctx, obs, a); err != nil {
		return result, fmt.Errorf("erro ao gravar verificação do produto %d: %w", product.ID, err)
	}
	result.Observation = obs
	result.Alert = a

	m.logger.Info("preço registrado",
		logger.Int64("product_id", product.ID),
		logger.String("price", obs.Price.StringFixed(2)),
		logger.String("currency", obs.Currency),
		logger.Bool("in_stock", obs.InStock))

	if a != nil && !a.NotificationSent {
		m.logger.Warn("alerta gravado sem notificação", logger.Int64("product_id", product.ID))
	}
	return result, nil
}
