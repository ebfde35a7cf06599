package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una cotización.
const (
	QuoteStatusDraft    = "DRAFT"
	QuoteStatusSent     = "SENT"
	QuoteStatusAccepted = "ACCEPTED"
	QuoteStatusRejected = "REJECTED"
	QuoteStatusExpired  = "EXPIRED"
)

// Tipos de margen.
const (
	MarginPercent = "percent"
	MarginFixed   = "fixed"
)

// MarginPolicy porcentaje multiplicativo o monto fijo por tonelada.
type MarginPolicy struct {
	Type  string          `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// Service costo adicional (flete, ensacado...) adjunto a una cotización.
type Service struct {
	Name string          `json:"name"`
	Cost decimal.Decimal `json:"cost"`
}

// Quote cotización a un cliente. UnitPrice, TotalPrice, ServicesTotal y CostPerAcre son
// caché de una función pura de (Blend, Quantity, Margin, Services, ApplicationAcres).
type Quote struct {
	ID               string
	Number           string // Q-YYYYMM-NNNN, inmutable
	CustomerID       string
	BlendID          string
	Blend            BlendSnapshot
	Quantity         decimal.Decimal // toneladas
	Margin           MarginPolicy
	Services         []Service
	ApplicationAcres *decimal.Decimal
	UnitPrice        decimal.Decimal
	TotalPrice       decimal.Decimal
	ServicesTotal    decimal.Decimal
	CostPerAcre      *decimal.Decimal
	Status           string
	ValidUntil       time.Time
	SentAt           *time.Time
	AcceptedAt       *time.Time
	InternalNotes    string
	CustomerNotes    string
	CreatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsPriced indica si la cotización pasó por el motor de precios.
func (q *Quote) IsPriced() bool {
	return q.UnitPrice.IsPositive() && q.TotalPrice.IsPositive()
}

// IsTerminal ACCEPTED, REJECTED y EXPIRED no admiten más transiciones.
func (q *Quote) IsTerminal() bool {
	switch q.Status {
	case QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusExpired:
		return true
	}
	return false
}
