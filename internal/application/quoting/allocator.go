package quoting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/surblend-api/internal/domain"
	"github.com/jhoicas/surblend-api/internal/domain/quote"
	"github.com/jhoicas/surblend-api/internal/domain/repository"
	"github.com/rs/zerolog"
)

// Valores por defecto del reintento.
const (
	DefaultMaxAttempts = 3
	DefaultBackoff     = 50 * time.Millisecond
)

// AllocatorConfig parámetros del asignador de números.
type AllocatorConfig struct {
	Location    *time.Location // zona horaria del período; nil = UTC
	MaxAttempts int
	Backoff     time.Duration // espera inicial; se duplica en cada intento
}

// Allocator asigna números Q-YYYYMM-NNNN únicos. La atomicidad la da el
// QuoteSequenceStore; aquí se fija el período y se reintentan los fallos transitorios.
type Allocator struct {
	store    repository.QuoteSequenceStore
	cfg      AllocatorConfig
	recorder Recorder
	log      zerolog.Logger
}

// NewAllocator construye el asignador.
func NewAllocator(store repository.QuoteSequenceStore, cfg AllocatorConfig, recorder Recorder, log zerolog.Logger) *Allocator {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Backoff < 0 {
		cfg.Backoff = 0
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Allocator{store: store, cfg: cfg, recorder: recorder, log: log}
}

// Allocate reserva el siguiente número del mes de now. El período queda fijado antes del
// primer intento: un reintento que cruce la medianoche de fin de mes no cambia de mes.
// Tras MaxAttempts fallos transitorios devuelve el último *domain.RetryableError.
func (a *Allocator) Allocate(ctx context.Context, now time.Time) (quote.Number, error) {
	period := quote.PeriodOf(now, a.cfg.Location)
	wait := a.cfg.Backoff

	var lastErr error
	for attempt := 1; attempt <= a.cfg.MaxAttempts; attempt++ {
		seq, err := a.store.Next(ctx, period)
		if err == nil {
			a.recorder.NumberAllocated(attempt)
			return quote.Number{Period: period, Sequence: seq}, nil
		}
		if !domain.IsRetryable(err) {
			a.recorder.NumberAllocationFailed()
			return quote.Number{}, fmt.Errorf("asignar número %s: %w", period, err)
		}
		lastErr = err
		a.log.Warn().Err(err).Int("attempt", attempt).Str("period", period.String()).Msg("contención al asignar número de cotización")
		if attempt == a.cfg.MaxAttempts {
			break
		}
		if err := sleep(ctx, wait); err != nil {
			a.recorder.NumberAllocationFailed()
			return quote.Number{}, &domain.RetryableError{Op: "asignar número " + period.String(), Err: err}
		}
		wait *= 2
	}
	a.recorder.NumberAllocationFailed()
	var re *domain.RetryableError
	if errors.As(lastErr, &re) {
		return quote.Number{}, re
	}
	return quote.Number{}, &domain.RetryableError{Op: "asignar número " + period.String(), Err: lastErr}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
