// Package pacing concentra a aleatoriedade e as pausas usadas pelos
// scrapers e pelo monitor, para que os testes possam controlá-las.
package pacing

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Source é a fonte de números aleatórios injetável
type Source interface {
	Int63n(n int64) int64
}

type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource cria uma fonte segura para uso concorrente.
// seed == 0 usa o relógio como semente.
func NewSource(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *lockedSource) Int63n(n int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Int63n(n)
}

// Between sorteia uma duração uniforme em [min, max).
// Se max <= min retorna min.
func Between(src Source, min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(src.Int63n(int64(max-min)))
}

// Pick sorteia um índice em [0, n)
func Pick(src Source, n int) int {
	if n <= 1 {
		return 0
	}
	return int(src.Int63n(int64(n)))
}

// SleepFunc dorme d ou até o contexto ser cancelado
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep é a implementação real de SleepFunc
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Clock devolve o instante atual
type Clock func() time.Time

// UTC é o relógio padrão
func UTC() time.Time {
	return time.Now().UTC()
}
