package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceDTO servicio adicional de una cotización.
type ServiceDTO struct {
	Name string          `json:"name"`
	Cost decimal.Decimal `json:"cost"`
}

// CreateQuoteRequest body para POST /api/quotes.
// MarginType/MarginValue opcionales: si faltan se usa el margen del cliente o el de la configuración.
type CreateQuoteRequest struct {
	CustomerID       string           `json:"customer_id"`
	BlendID          string           `json:"blend_id"`
	Quantity         decimal.Decimal  `json:"quantity"`
	MarginType       string           `json:"margin_type,omitempty"`
	MarginValue      *decimal.Decimal `json:"margin_value,omitempty"`
	Services         []ServiceDTO     `json:"services,omitempty"`
	ApplicationAcres *decimal.Decimal `json:"application_acres,omitempty"`
	InternalNotes    string           `json:"internal_notes,omitempty"`
	CustomerNotes    string           `json:"customer_notes,omitempty"`
}

// UpdateQuoteRequest body para PUT /api/quotes/:id (solo DRAFT; dispara re-cálculo).
type UpdateQuoteRequest struct {
	Quantity         *decimal.Decimal `json:"quantity,omitempty"`
	MarginType       *string          `json:"margin_type,omitempty"`
	MarginValue      *decimal.Decimal `json:"margin_value,omitempty"`
	Services         *[]ServiceDTO    `json:"services,omitempty"`
	ApplicationAcres *decimal.Decimal `json:"application_acres,omitempty"`
	InternalNotes    *string          `json:"internal_notes,omitempty"`
	CustomerNotes    *string          `json:"customer_notes,omitempty"`
}

// BlendSnapshotResponse mezcla congelada en la cotización.
type BlendSnapshotResponse struct {
	BlendID    string          `json:"blend_id"`
	Name       string          `json:"name"`
	Code       string          `json:"code,omitempty"`
	CostPerTon decimal.Decimal `json:"cost_per_ton"`
	Nutrients  NutrientsDTO    `json:"nutrients"`
}

// QuoteResponse cotización en respuestas.
type QuoteResponse struct {
	ID               string                `json:"id"`
	QuoteNumber      string                `json:"quote_number"`
	CustomerID       string                `json:"customer_id"`
	BlendID          string                `json:"blend_id"`
	Blend            BlendSnapshotResponse `json:"blend"`
	Quantity         decimal.Decimal       `json:"quantity"`
	MarginType       string                `json:"margin_type"`
	MarginValue      decimal.Decimal       `json:"margin_value"`
	Services         []ServiceDTO          `json:"services"`
	ApplicationAcres *decimal.Decimal      `json:"application_acres,omitempty"`
	UnitPrice        decimal.Decimal       `json:"unit_price"`
	TotalPrice       decimal.Decimal       `json:"total_price"`
	ServicesTotal    decimal.Decimal       `json:"services_total"`
	CostPerAcre      *decimal.Decimal      `json:"cost_per_acre,omitempty"`
	Status           string                `json:"status"`
	ValidUntil       time.Time             `json:"valid_until"`
	SentAt           *time.Time            `json:"sent_at,omitempty"`
	AcceptedAt       *time.Time            `json:"accepted_at,omitempty"`
	InternalNotes    string                `json:"internal_notes,omitempty"`
	CustomerNotes    string                `json:"customer_notes,omitempty"`
	CreatedBy        string                `json:"created_by"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

// QuoteListResponse lista paginada de cotizaciones.
type QuoteListResponse struct {
	Items []QuoteResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
