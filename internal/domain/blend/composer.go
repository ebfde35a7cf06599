// Package blend contiene el servicio de dominio que valida una composición de mezcla
// y deriva su análisis de nutrientes, su costo por tonelada y sus métricas de aplicación.
// Es cálculo puro: sin estado compartido ni I/O.
package blend

import (
	"fmt"

	"github.com/jhoicas/surblend-api/internal/domain"
	"github.com/jhoicas/surblend-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	// Tolerancia absoluta de la suma de porcentajes (absorbe redondeos de la UI).
	percentTolerance = decimal.RequireFromString("0.01")
	// Tolerancia absoluta entre la cantidad informada y pct/100 × dosis.
	amountTolerance = decimal.RequireFromString("0.01")
	lbsPerTon       = decimal.NewFromInt(2000)
)

// Input una línea propuesta de la composición. Amount es opcional.
type Input struct {
	Ingredient *entity.Ingredient
	Percentage decimal.Decimal
	Amount     *decimal.Decimal
}

// Result mezcla derivada de una composición válida.
type Result struct {
	Components      []entity.BlendComponent
	Nutrients       entity.NutrientProfile
	CostPerTon      decimal.Decimal
	ApplicationRate decimal.Decimal
}

// Compose valida la composición y calcula:
//
//	Nutriente = Σ(ingrediente.nutriente × pct / 100)
//	CostoTon  = Σ(ingrediente.costo_ton × pct / 100)
//	Cantidad  = pct / 100 × dosis (si no viene informada)
//
// Cualquier dato fuera de rango se devuelve como *domain.ValidationError; nada se corrige.
func Compose(inputs []Input, applicationRate decimal.Decimal) (*Result, error) {
	if !applicationRate.IsPositive() {
		return nil, domain.NewValidationError("application_rate", applicationRate, "debe ser mayor que 0")
	}
	if len(inputs) == 0 {
		return nil, domain.NewValidationError("composition", 0, "la mezcla debe tener al menos un ingrediente")
	}

	res := &Result{
		Components:      make([]entity.BlendComponent, 0, len(inputs)),
		ApplicationRate: applicationRate,
	}
	seen := make(map[string]struct{}, len(inputs))
	total := decimal.Zero

	for i, in := range inputs {
		field := fmt.Sprintf("composition[%d]", i)
		ing := in.Ingredient
		if ing == nil {
			return nil, domain.NewValidationError(field+".ingredient_id", "", "ingrediente requerido")
		}
		if _, dup := seen[ing.ID]; dup {
			return nil, domain.NewValidationError(field+".ingredient_id", ing.ID, "ingrediente repetido en la composición")
		}
		seen[ing.ID] = struct{}{}

		if in.Percentage.IsNegative() || in.Percentage.GreaterThan(hundred) {
			return nil, domain.NewValidationError(field+".percentage", in.Percentage, "debe estar entre 0 y 100")
		}
		if !ing.CostPerTon.IsPositive() {
			return nil, domain.NewValidationError(field+".cost_per_ton", ing.CostPerTon, "el costo del ingrediente debe ser positivo")
		}

		share := in.Percentage.Shift(-2)
		expected := share.Mul(applicationRate)
		amount := expected
		if in.Amount != nil {
			if in.Amount.IsNegative() {
				return nil, domain.NewValidationError(field+".amount", *in.Amount, "no puede ser negativa")
			}
			if in.Amount.Sub(expected).Abs().GreaterThan(amountTolerance) {
				return nil, domain.NewValidationError(field+".amount", *in.Amount,
					fmt.Sprintf("no coincide con %s%% de la dosis (%s)", in.Percentage, expected))
			}
			amount = *in.Amount
		}

		res.Nutrients = res.Nutrients.Add(ing.Nutrients.Scale(share))
		res.CostPerTon = res.CostPerTon.Add(ing.CostPerTon.Mul(share))
		total = total.Add(in.Percentage)

		res.Components = append(res.Components, entity.BlendComponent{
			IngredientID:   ing.ID,
			IngredientName: ing.Name,
			Percentage:     in.Percentage,
			Amount:         amount,
		})
	}

	if total.Sub(hundred).Abs().GreaterThan(percentTolerance) {
		return nil, domain.NewValidationError("composition", total, "los porcentajes deben sumar 100")
	}
	if f, bad := res.Nutrients.OutOfRange(); bad {
		return nil, domain.NewValidationError("nutrients."+f.Name, f.Value, "resultado fuera de [0,100]; revisar el análisis de los ingredientes")
	}
	return res, nil
}

// ApplicationMetrics libras de nutriente y costo de material por acre.
// Solo aplica a dosis en lbs/acre; para otras unidades devuelve nil.
func (r *Result) ApplicationMetrics(unit string) *entity.ApplicationMetrics {
	if unit != entity.UnitLbsPerAcre {
		return nil
	}
	return &entity.ApplicationMetrics{
		NutrientsPerAcre: r.Nutrients.Scale(r.ApplicationRate.Shift(-2)),
		CostPerAcre:      r.ApplicationRate.Mul(r.CostPerTon).Div(lbsPerTon),
	}
}

// Apply vuelca los valores derivados sobre la entidad Blend.
func (r *Result) Apply(b *entity.Blend) {
	b.Components = r.Components
	b.Nutrients = r.Nutrients
	b.CostPerTon = r.CostPerTon
	b.ApplicationRate = r.ApplicationRate
	b.Application = r.ApplicationMetrics(b.ApplicationUnit)
}

// TargetDelta diferencia orientativa (mezcla − objetivo) por nutriente.
func TargetDelta(actual entity.NutrientProfile, target *entity.NutrientProfile) *entity.NutrientProfile {
	if target == nil {
		return nil
	}
	d := actual.Sub(*target)
	return &d
}
