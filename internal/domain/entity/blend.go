package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnitLbsPerAcre unidad de dosis por defecto.
const UnitLbsPerAcre = "lbs/acre"

// BlendComponent una línea de la composición: ingrediente, porcentaje y cantidad absoluta.
type BlendComponent struct {
	IngredientID   string          `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	Percentage     decimal.Decimal `json:"percentage"`
	Amount         decimal.Decimal `json:"amount"` // en unidades de ApplicationRate
}

// ApplicationMetrics métricas por acre derivadas de la dosis (solo lbs/acre).
type ApplicationMetrics struct {
	NutrientsPerAcre NutrientProfile // libras de cada nutriente por acre
	CostPerAcre      decimal.Decimal // costo de material por acre
}

// Blend formulación de mezcla. Nutrients, CostPerTon y Application son derivados de
// Components y se recalculan en cada lectura; nunca se persisten como fuente de verdad.
type Blend struct {
	ID              string
	Name            string
	Code            string
	Description     string
	Components      []BlendComponent
	Nutrients       NutrientProfile
	CostPerTon      decimal.Decimal
	Target          *NutrientProfile // objetivo orientativo, no se exige
	ApplicationRate decimal.Decimal
	ApplicationUnit string
	Application     *ApplicationMetrics
	IsTemplate      bool
	IsActive        bool
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Snapshot congela los valores derivados de la mezcla para cotizar.
func (b *Blend) Snapshot() BlendSnapshot {
	return BlendSnapshot{
		BlendID:    b.ID,
		Name:       b.Name,
		Code:       b.Code,
		CostPerTon: b.CostPerTon,
		Nutrients:  b.Nutrients,
		Components: append([]BlendComponent(nil), b.Components...),
	}
}

// BlendSnapshot copia inmutable de una mezcla en el momento de cotizar.
type BlendSnapshot struct {
	BlendID    string           `json:"blend_id"`
	Name       string           `json:"name"`
	Code       string           `json:"code,omitempty"`
	CostPerTon decimal.Decimal  `json:"cost_per_ton"`
	Nutrients  NutrientProfile  `json:"nutrients"`
	Components []BlendComponent `json:"components"` // para validar topes de pedido al editar
}
