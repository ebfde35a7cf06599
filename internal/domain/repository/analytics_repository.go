package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// QuoteOutcome conteos de cotizaciones decididas en un rango.
type QuoteOutcome struct {
	Accepted int
	Rejected int
	Expired  int
}

// AnalyticsRepository define las consultas de lectura para el dashboard.
// Las implementaciones son read-only (no modifican datos).
type AnalyticsRepository interface {
	// CountQuotes cuenta cotizaciones creadas desde since (zero = todas).
	CountQuotes(ctx context.Context, since time.Time) (int, error)
	CountCustomers(ctx context.Context) (int, error)
	CountActiveIngredients(ctx context.Context) (int, error)
	// AcceptedRevenue suma total_price + services_total de las cotizaciones aceptadas.
	AcceptedRevenue(ctx context.Context) (decimal.Decimal, error)
	// AverageRealizedMargin margen promedio (%) sobre el costo congelado de las aceptadas.
	AverageRealizedMargin(ctx context.Context) (decimal.Decimal, error)
	Outcomes(ctx context.Context) (QuoteOutcome, error)
}
