package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateCustomerRequest body para POST /api/customers.
type CreateCustomerRequest struct {
	Name               string           `json:"name"`
	Code               string           `json:"code,omitempty"`
	Email              string           `json:"email,omitempty"`
	Phone              string           `json:"phone,omitempty"`
	Address            string           `json:"address,omitempty"`
	City               string           `json:"city,omitempty"`
	State              string           `json:"state,omitempty"`
	ZipCode            string           `json:"zip_code,omitempty"`
	ContactPerson      string           `json:"contact_person,omitempty"`
	TaxID              string           `json:"tax_id,omitempty"`
	CreditLimit        *decimal.Decimal `json:"credit_limit,omitempty"`
	PaymentTerms       string           `json:"payment_terms,omitempty"`
	DefaultMarginType  string           `json:"default_margin_type,omitempty"`
	DefaultMarginValue *decimal.Decimal `json:"default_margin_value,omitempty"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Code               string           `json:"code,omitempty"`
	Email              string           `json:"email,omitempty"`
	Phone              string           `json:"phone,omitempty"`
	Address            string           `json:"address,omitempty"`
	City               string           `json:"city,omitempty"`
	State              string           `json:"state,omitempty"`
	ZipCode            string           `json:"zip_code,omitempty"`
	ContactPerson      string           `json:"contact_person,omitempty"`
	TaxID              string           `json:"tax_id,omitempty"`
	CreditLimit        *decimal.Decimal `json:"credit_limit,omitempty"`
	PaymentTerms       string           `json:"payment_terms"`
	DefaultMarginType  string           `json:"default_margin_type,omitempty"`
	DefaultMarginValue *decimal.Decimal `json:"default_margin_value,omitempty"`
	IsActive           bool             `json:"is_active"`
	CreatedAt          time.Time        `json:"created_at"`
}
