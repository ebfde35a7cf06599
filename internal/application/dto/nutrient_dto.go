package dto

import (
	"github.com/jhoicas/surblend-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// NutrientsDTO análisis de nutrientes (%) en requests y respuestas.
type NutrientsDTO struct {
	Nitrogen   decimal.Decimal `json:"nitrogen"`
	Phosphate  decimal.Decimal `json:"phosphate"`
	Potash     decimal.Decimal `json:"potash"`
	Sulfur     decimal.Decimal `json:"sulfur"`
	Calcium    decimal.Decimal `json:"calcium"`
	Magnesium  decimal.Decimal `json:"magnesium"`
	Boron      decimal.Decimal `json:"boron"`
	Iron       decimal.Decimal `json:"iron"`
	Manganese  decimal.Decimal `json:"manganese"`
	Zinc       decimal.Decimal `json:"zinc"`
	Copper     decimal.Decimal `json:"copper"`
	Molybdenum decimal.Decimal `json:"molybdenum"`
}

// ToEntity convierte al perfil de dominio.
func (n NutrientsDTO) ToEntity() entity.NutrientProfile {
	return entity.NutrientProfile(n)
}

// NutrientsFromEntity convierte desde el perfil de dominio.
func NutrientsFromEntity(p entity.NutrientProfile) NutrientsDTO {
	return NutrientsDTO(p)
}
