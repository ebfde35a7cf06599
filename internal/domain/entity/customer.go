package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer cliente (productor) al que se cotizan mezclas.
// DefaultMargin, si existe, se usa cuando la cotización no indica margen.
type Customer struct {
	ID            string
	Name          string
	Code          string // opcional, único
	Email         string
	Phone         string
	Address       string
	City          string
	State         string
	ZipCode       string
	ContactPerson string
	TaxID         string
	CreditLimit   *decimal.Decimal
	PaymentTerms  string // "Net 30" por defecto
	DefaultMargin *MarginPolicy
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
