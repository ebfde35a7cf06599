package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/surblend-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// CountQuotes cotizaciones creadas desde since (zero = todas).
func (r *AnalyticsRepo) CountQuotes(ctx context.Context, since time.Time) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM quotes WHERE created_at >= $1`, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("analytics.CountQuotes: %w", err)
	}
	return n, nil
}

// CountCustomers clientes activos.
func (r *AnalyticsRepo) CountCustomers(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM customers WHERE is_active`).Scan(&n); err != nil {
		return 0, fmt.Errorf("analytics.CountCustomers: %w", err)
	}
	return n, nil
}

// CountActiveIngredients ingredientes disponibles.
func (r *AnalyticsRepo) CountActiveIngredients(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM ingredients WHERE is_available`).Scan(&n); err != nil {
		return 0, fmt.Errorf("analytics.CountActiveIngredients: %w", err)
	}
	return n, nil
}

// AcceptedRevenue Σ(total_price + services_total) de las aceptadas.
func (r *AnalyticsRepo) AcceptedRevenue(ctx context.Context) (decimal.Decimal, error) {
	var d decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(total_price + services_total), 0) FROM quotes WHERE status = 'ACCEPTED'`,
	).Scan(&d)
	if err != nil {
		return decimal.Zero, fmt.Errorf("analytics.AcceptedRevenue: %w", err)
	}
	return d, nil
}

// AverageRealizedMargin promedio de (precio unitario / costo congelado − 1) × 100 sobre las aceptadas.
func (r *AnalyticsRepo) AverageRealizedMargin(ctx context.Context) (decimal.Decimal, error) {
	const query = `
	SELECT COALESCE(AVG(
	    (unit_price / NULLIF((blend_snapshot->>'cost_per_ton')::NUMERIC, 0) - 1) * 100
	), 0)
	FROM quotes
	WHERE status = 'ACCEPTED'`
	var d decimal.Decimal
	if err := r.q.QueryRow(ctx, query).Scan(&d); err != nil {
		return decimal.Zero, fmt.Errorf("analytics.AverageRealizedMargin: %w", err)
	}
	return d, nil
}

// Outcomes conteo de cotizaciones decididas por estado final.
func (r *AnalyticsRepo) Outcomes(ctx context.Context) (repository.QuoteOutcome, error) {
	const query = `
	SELECT
	    COUNT(*) FILTER (WHERE status = 'ACCEPTED'),
	    COUNT(*) FILTER (WHERE status = 'REJECTED'),
	    COUNT(*) FILTER (WHERE status = 'EXPIRED')
	FROM quotes`
	var o repository.QuoteOutcome
	if err := r.q.QueryRow(ctx, query).Scan(&o.Accepted, &o.Rejected, &o.Expired); err != nil {
		return o, fmt.Errorf("analytics.Outcomes: %w", err)
	}
	return o, nil
}
