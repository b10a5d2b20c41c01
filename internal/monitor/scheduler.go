package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"monitor-precos/internal/logger"
)

// ErrBusy indica que já existe uma rodada em andamento
var ErrBusy = errors.New("verificação já em andamento")

// Scheduler dispara CheckAllActive periodicamente
type Scheduler struct {
	monitor  *Monitor
	interval time.Duration
	logger   logger.Logger

	running atomic.Bool
	cancel  context.CancelFunc
	stopCh  chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// NewScheduler cria o agendador; interval <= 0 usa 30 minutos
func NewScheduler(m *Monitor, interval time.Duration, log logger.Logger) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &Scheduler{
		monitor:  m,
		interval: interval,
		logger:   log,
		stopCh:   make(chan struct{}),
	}
}

// Start roda uma verificação imediatamente e depois a cada intervalo, em background
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.logger.Info("monitor iniciado", logger.Duration("interval", s.interval))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.tick(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.tick(ctx)
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop interrompe o agendador e espera a rodada atual terminar
func (s *Scheduler) Stop() {
	s.once.Do(func() {
		close(s.stopCh)
		if s.cancel != nil {
			s.cancel()
		}
	})
	s.wg.Wait()
	s.logger.Info("monitor parado")
}

// Trigger roda uma verificação agora, de forma síncrona.
// Devolve ErrBusy se outra rodada estiver em andamento.
func (s *Scheduler) Trigger(ctx context.Context) (BatchReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return BatchReport{}, ErrBusy
	}
	defer s.running.Store(false)

	return s.monitor.CheckAllActive(ctx)
}

func (s *Scheduler) tick(ctx context.Context) {
	_, err := s.Trigger(ctx)
	switch {
	case errors.Is(err, ErrBusy):
		s.logger.Warn("rodada anterior ainda em andamento, pulando")
	case errors.Is(err, context.Canceled):
	case err != nil:
		s.logger.Error("erro na verificação periódica", logger.Error(err))
	}
}
