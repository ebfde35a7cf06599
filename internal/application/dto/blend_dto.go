package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// BlendComponentRequest línea de la composición.
type BlendComponentRequest struct {
	IngredientID string           `json:"ingredient_id"`
	Percentage   decimal.Decimal  `json:"percentage"`
	Amount       *decimal.Decimal `json:"amount,omitempty"` // si falta: pct/100 × dosis
}

// CreateBlendRequest body para POST /api/blends y POST /api/blends/preview.
type CreateBlendRequest struct {
	Name            string                  `json:"name"`
	Code            string                  `json:"code,omitempty"`
	Description     string                  `json:"description,omitempty"`
	IsTemplate      bool                    `json:"is_template"`
	Target          *NutrientsDTO           `json:"target,omitempty"`
	ApplicationRate *decimal.Decimal        `json:"application_rate,omitempty"`
	ApplicationUnit string                  `json:"application_unit,omitempty"`
	Components      []BlendComponentRequest `json:"ingredients"`
}

// UpdateBlendRequest body para PUT /api/blends/:id. Components o Target disparan recálculo.
type UpdateBlendRequest struct {
	Name            *string                 `json:"name,omitempty"`
	Description     *string                 `json:"description,omitempty"`
	IsTemplate      *bool                   `json:"is_template,omitempty"`
	Target          *NutrientsDTO           `json:"target,omitempty"`
	ApplicationRate *decimal.Decimal        `json:"application_rate,omitempty"`
	ApplicationUnit *string                 `json:"application_unit,omitempty"`
	Components      []BlendComponentRequest `json:"ingredients,omitempty"`
}

// BlendComponentResponse línea de la composición en respuestas.
type BlendComponentResponse struct {
	IngredientID   string          `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	Percentage     decimal.Decimal `json:"percentage"`
	Amount         decimal.Decimal `json:"amount"`
}

// ApplicationMetricsResponse métricas por acre (solo lbs/acre).
type ApplicationMetricsResponse struct {
	NutrientsPerAcre NutrientsDTO    `json:"nutrients_per_acre"`
	CostPerAcre      decimal.Decimal `json:"cost_per_acre"`
}

// BlendResponse mezcla con valores derivados recalculados.
type BlendResponse struct {
	ID              string                      `json:"id,omitempty"`
	Name            string                      `json:"name"`
	Code            string                      `json:"code,omitempty"`
	Description     string                      `json:"description,omitempty"`
	Components      []BlendComponentResponse    `json:"ingredients"`
	Nutrients       NutrientsDTO                `json:"nutrients"`
	CostPerTon      decimal.Decimal             `json:"cost_per_ton"`
	Target          *NutrientsDTO               `json:"target,omitempty"`
	TargetDelta     *NutrientsDTO               `json:"target_delta,omitempty"`
	ApplicationRate decimal.Decimal             `json:"application_rate"`
	ApplicationUnit string                      `json:"application_unit"`
	Application     *ApplicationMetricsResponse `json:"application,omitempty"`
	IsTemplate      bool                        `json:"is_template"`
	IsActive        bool                        `json:"is_active"`
	CreatedBy       string                      `json:"created_by,omitempty"`
	CreatedAt       *time.Time                  `json:"created_at,omitempty"`
	UpdatedAt       *time.Time                  `json:"updated_at,omitempty"`
}

// BlendListResponse lista paginada de mezclas.
type BlendListResponse struct {
	Items []BlendResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// DeleteBlendResponse resultado de DELETE /api/blends/:id.
type DeleteBlendResponse struct {
	ID          string `json:"id"`
	Deactivated bool   `json:"deactivated"` // true: la mezcla está referenciada por cotizaciones
	Deleted     bool   `json:"deleted"`
}
