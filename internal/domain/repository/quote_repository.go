package repository

import (
	"context"
	"time"

	"github.com/jhoicas/surblend-api/internal/domain/entity"
	"github.com/jhoicas/surblend-api/internal/domain/quote"
)

// QuoteFilter filtros de listado de cotizaciones.
type QuoteFilter struct {
	Status     string
	CustomerID string
	Limit      int
	Offset     int
}

// QuoteRepository define el puerto de persistencia para Quote.
//
// UpdateStatus y UpdatePricing son compare-and-set sobre el estado: solo escriben si el
// estado persistido sigue siendo expectedStatus; si no, devuelven domain.ErrConflict.
type QuoteRepository interface {
	Create(ctx context.Context, q *entity.Quote) error
	GetByID(ctx context.Context, id string) (*entity.Quote, error)
	GetByNumber(ctx context.Context, number string) (*entity.Quote, error)
	List(ctx context.Context, f QuoteFilter) ([]*entity.Quote, int, error)
	UpdatePricing(ctx context.Context, q *entity.Quote, expectedStatus string) error
	UpdateStatus(ctx context.Context, q *entity.Quote, expectedStatus string) error
	// ListExpirable cotizaciones DRAFT/SENT con valid_until < now.
	ListExpirable(ctx context.Context, now time.Time, limit int) ([]*entity.Quote, error)
	CountByBlend(ctx context.Context, blendID string) (int, error)
}

// QuoteSequenceStore contador atómico por período: lee el máximo, incrementa y reserva
// en una sola operación. Los fallos transitorios se devuelven como *domain.RetryableError.
type QuoteSequenceStore interface {
	Next(ctx context.Context, period quote.Period) (int64, error)
}

// QuoteSequenceFloor último número ya persistido de un período (0 si no hay ninguno).
// Los contadores que no viven en la base de datos se siembran con él al empezar un período.
type QuoteSequenceFloor interface {
	MaxSequence(ctx context.Context, period quote.Period) (int64, error)
}
