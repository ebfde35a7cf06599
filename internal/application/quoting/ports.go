package quoting

import (
	"context"

	"github.com/jhoicas/surblend-api/internal/domain/entity"
	"github.com/jhoicas/surblend-api/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción con el repo de cotizaciones y la bitácora atados a ella.
type TxRunner interface {
	RunQuoting(ctx context.Context, fn func(
		quoteRepo repository.QuoteRepository,
		logRepo repository.ActivityLogRepository,
	) error) error
}

// BlendResolver devuelve una mezcla con sus valores derivados recalculados.
type BlendResolver interface {
	Resolve(ctx context.Context, id string) (*entity.Blend, error)
}

// IngredientLookup resuelve ingredientes por ID (NotFoundError si falta alguno).
type IngredientLookup interface {
	GetMany(ctx context.Context, ids []string) (map[string]*entity.Ingredient, error)
}

// Recorder métricas de negocio de cotizaciones. La implementación Prometheus vive en
// infrastructure/metrics; NopRecorder sirve cuando están deshabilitadas.
type Recorder interface {
	QuoteCreated()
	QuoteTransitioned(from, to string)
	NumberAllocated(attempts int)
	NumberAllocationFailed()
	QuotesExpired(n int)
}

// NopRecorder no registra nada.
type NopRecorder struct{}

func (NopRecorder) QuoteCreated() {}
func (NopRecorder) QuoteTransitioned(_, _ string) {}
func (NopRecorder) NumberAllocated(int) {}
func (NopRecorder) NumberAllocationFailed() {}
func (NopRecorder) QuotesExpired(int) {}
