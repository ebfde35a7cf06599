package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de ingrediente.
const (
	IngredientDry    = "dry"
	IngredientLiquid = "liquid"
)

// Ingredient materia prima con su análisis de nutrientes y costo por tonelada.
// CostPerTon solo cambia mediante un PriceChange auditado.
type Ingredient struct {
	ID              string
	Name            string // único
	Code            string // opcional, único si no está vacío
	Type            string // dry | liquid
	Nutrients       NutrientProfile
	Density         *decimal.Decimal // lbs/ft³ (dry) o lbs/gal (liquid)
	MoistureContent decimal.Decimal
	CostPerTon      decimal.Decimal
	MarginPercent   decimal.Decimal  // margen sugerido (%), default 20
	FixedMargin     *decimal.Decimal // margen fijo sugerido ($/ton)
	IsAvailable     bool
	MinOrderQty     decimal.Decimal  // toneladas
	MaxOrderQty     *decimal.Decimal // toneladas, nil = sin tope
	Source          string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PriceChange registro append-only de un cambio de costo de ingrediente.
type PriceChange struct {
	ID           string
	IngredientID string
	OldPrice     decimal.Decimal
	NewPrice     decimal.Decimal
	Reason       string
	ChangedBy    string
	ChangedAt    time.Time
}
