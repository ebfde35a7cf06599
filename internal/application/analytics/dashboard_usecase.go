// Package analytics contiene los casos de uso de reportes del negocio de cotizaciones.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/surblend-api/internal/application/dto"
	"github.com/jhoicas/surblend-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DashboardUseCase genera el resumen del tablero.
//
// Fuente de datos: AnalyticsRepository (consultas read-only).
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	loc           *time.Location
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso. loc define el inicio del mes (nil = UTC).
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository, loc *time.Location) *DashboardUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardUseCase{analyticsRepo: analyticsRepo, loc: loc, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *DashboardUseCase) WithClock(now func() time.Time) *DashboardUseCase {
	uc.now = now
	return uc
}

// GetStats corre las consultas en paralelo; la primera que falle cancela las demás.
func (uc *DashboardUseCase) GetStats(ctx context.Context) (*dto.DashboardStatsDTO, error) {
	now := uc.now().In(uc.loc)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, uc.loc)

	var (
		total, thisMonth, customers, ingredients int
		revenue, margin                           decimal.Decimal
		outcomes                                  repository.QuoteOutcome
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		total, err = uc.analyticsRepo.CountQuotes(gctx, time.Time{})
		return wrap("total de cotizaciones", err)
	})
	g.Go(func() (err error) {
		thisMonth, err = uc.analyticsRepo.CountQuotes(gctx, monthStart)
		return wrap("cotizaciones del mes", err)
	})
	g.Go(func() (err error) {
		customers, err = uc.analyticsRepo.CountCustomers(gctx)
		return wrap("clientes", err)
	})
	g.Go(func() (err error) {
		ingredients, err = uc.analyticsRepo.CountActiveIngredients(gctx)
		return wrap("ingredientes", err)
	})
	g.Go(func() (err error) {
		revenue, err = uc.analyticsRepo.AcceptedRevenue(gctx)
		return wrap("ingresos", err)
	})
	g.Go(func() (err error) {
		margin, err = uc.analyticsRepo.AverageRealizedMargin(gctx)
		return wrap("margen", err)
	})
	g.Go(func() (err error) {
		outcomes, err = uc.analyticsRepo.Outcomes(gctx)
		return wrap("resultados", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &dto.DashboardStatsDTO{
		TotalQuotes:       total,
		QuotesThisMonth:   thisMonth,
		TotalCustomers:    customers,
		ActiveIngredients: ingredients,
		TotalRevenue:      revenue.Round(2),
		AverageMargin:     margin.Round(2),
		ConversionRate:    conversionRate(outcomes),
		DateLabel:         monthLabel(now),
	}, nil
}

// conversionRate aceptadas / (aceptadas + rechazadas + vencidas) × 100.
func conversionRate(o repository.QuoteOutcome) decimal.Decimal {
	decided := o.Accepted + o.Rejected + o.Expired
	if decided == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(o.Accepted)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(decided))).
		Round(2)
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("dashboard: %s: %w", what, err)
	}
	return nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
