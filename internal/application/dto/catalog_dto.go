package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateIngredientRequest body para POST /api/ingredients.
type CreateIngredientRequest struct {
	Name            string           `json:"name"`
	Code            string           `json:"code,omitempty"`
	Type            string           `json:"type"` // dry | liquid
	Nutrients       NutrientsDTO     `json:"nutrients"`
	Density         *decimal.Decimal `json:"density,omitempty"`
	MoistureContent decimal.Decimal  `json:"moisture_content"`
	CostPerTon      decimal.Decimal  `json:"cost_per_ton"`
	MarginPercent   *decimal.Decimal `json:"margin_percent,omitempty"` // default 20
	FixedMargin     *decimal.Decimal `json:"fixed_margin,omitempty"`
	IsAvailable     *bool            `json:"is_available,omitempty"` // default true
	MinOrderQty     decimal.Decimal  `json:"min_order_qty"`
	MaxOrderQty     *decimal.Decimal `json:"max_order_qty,omitempty"`
	Source          string           `json:"source,omitempty"`
	Notes           string           `json:"notes,omitempty"`
}

// UpdateIngredientRequest body para PUT /api/ingredients/:id. El costo no se modifica aquí
// (usar POST /api/ingredients/:id/price).
type UpdateIngredientRequest struct {
	Name          *string          `json:"name,omitempty"`
	Code          *string          `json:"code,omitempty"`
	Type          *string          `json:"type,omitempty"`
	Nutrients     *NutrientsDTO    `json:"nutrients,omitempty"`
	MarginPercent *decimal.Decimal `json:"margin_percent,omitempty"`
	FixedMargin   *decimal.Decimal `json:"fixed_margin,omitempty"`
	IsAvailable   *bool            `json:"is_available,omitempty"`
	MinOrderQty   *decimal.Decimal `json:"min_order_qty,omitempty"`
	MaxOrderQty   *decimal.Decimal `json:"max_order_qty,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
}

// ChangePriceRequest body para POST /api/ingredients/:id/price.
type ChangePriceRequest struct {
	CostPerTon decimal.Decimal `json:"cost_per_ton"`
	Reason     string          `json:"reason"`
}

// IngredientResponse ingrediente en respuestas.
type IngredientResponse struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Code            string           `json:"code,omitempty"`
	Type            string           `json:"type"`
	Nutrients       NutrientsDTO     `json:"nutrients"`
	Density         *decimal.Decimal `json:"density,omitempty"`
	MoistureContent decimal.Decimal  `json:"moisture_content"`
	CostPerTon      decimal.Decimal  `json:"cost_per_ton"`
	MarginPercent   decimal.Decimal  `json:"margin_percent"`
	FixedMargin     *decimal.Decimal `json:"fixed_margin,omitempty"`
	IsAvailable     bool             `json:"is_available"`
	MinOrderQty     decimal.Decimal  `json:"min_order_qty"`
	MaxOrderQty     *decimal.Decimal `json:"max_order_qty,omitempty"`
	Source          string           `json:"source,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// IngredientListResponse lista paginada de ingredientes.
type IngredientListResponse struct {
	Items []IngredientResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// PriceChangeResponse entrada del historial de precios.
type PriceChangeResponse struct {
	ID        string          `json:"id"`
	OldPrice  decimal.Decimal `json:"old_price"`
	NewPrice  decimal.Decimal `json:"new_price"`
	Reason    string          `json:"reason"`
	ChangedBy string          `json:"changed_by"`
	ChangedAt time.Time       `json:"changed_at"`
}
