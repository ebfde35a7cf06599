package dto

import "github.com/shopspring/decimal"

// DashboardStatsDTO respuesta de GET /api/analytics/dashboard.
type DashboardStatsDTO struct {
	TotalQuotes       int             `json:"total_quotes"`
	QuotesThisMonth   int             `json:"quotes_this_month"`
	TotalCustomers    int             `json:"total_customers"`
	ActiveIngredients int             `json:"active_ingredients"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`  // aceptadas: total + servicios
	AverageMargin     decimal.Decimal `json:"average_margin"` // % sobre costo congelado
	ConversionRate    decimal.Decimal `json:"conversion_rate"` // aceptadas / decididas × 100
	DateLabel         string          `json:"date_label"`
}
