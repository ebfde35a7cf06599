package catalog

import (
	"github.com/jhoicas/surblend-api/internal/application/dto"
	"github.com/jhoicas/surblend-api/internal/domain/blend"
	"github.com/jhoicas/surblend-api/internal/domain/entity"
)

// IngredientToResponse convierte la entidad al DTO de salida.
func IngredientToResponse(ing *entity.Ingredient) *dto.IngredientResponse {
	return &dto.IngredientResponse{
		ID:              ing.ID,
		Name:            ing.Name,
		Code:            ing.Code,
		Type:            ing.Type,
		Nutrients:       dto.NutrientsFromEntity(ing.Nutrients),
		Density:         ing.Density,
		MoistureContent: ing.MoistureContent,
		CostPerTon:      ing.CostPerTon,
		MarginPercent:   ing.MarginPercent,
		FixedMargin:     ing.FixedMargin,
		IsAvailable:     ing.IsAvailable,
		MinOrderQty:     ing.MinOrderQty,
		MaxOrderQty:     ing.MaxOrderQty,
		Source:          ing.Source,
		Notes:           ing.Notes,
		CreatedAt:       ing.CreatedAt,
		UpdatedAt:       ing.UpdatedAt,
	}
}

// BlendToResponse convierte una mezcla ya recalculada. Las fechas se omiten en vista previa (ID vacío).
func BlendToResponse(b *entity.Blend) *dto.BlendResponse {
	out := &dto.BlendResponse{
		ID:              b.ID,
		Name:            b.Name,
		Code:            b.Code,
		Description:     b.Description,
		Components:      make([]dto.BlendComponentResponse, 0, len(b.Components)),
		Nutrients:       dto.NutrientsFromEntity(b.Nutrients),
		CostPerTon:      b.CostPerTon,
		ApplicationRate: b.ApplicationRate,
		ApplicationUnit: b.ApplicationUnit,
		IsTemplate:      b.IsTemplate,
		IsActive:        b.IsActive,
		CreatedBy:       b.CreatedBy,
	}
	for _, c := range b.Components {
		out.Components = append(out.Components, dto.BlendComponentResponse{
			IngredientID:   c.IngredientID,
			IngredientName: c.IngredientName,
			Percentage:     c.Percentage,
			Amount:         c.Amount,
		})
	}
	if b.Target != nil {
		t := dto.NutrientsFromEntity(*b.Target)
		out.Target = &t
		if d := blend.TargetDelta(b.Nutrients, b.Target); d != nil {
			dd := dto.NutrientsFromEntity(*d)
			out.TargetDelta = &dd
		}
	}
	if b.Application != nil {
		out.Application = &dto.ApplicationMetricsResponse{
			NutrientsPerAcre: dto.NutrientsFromEntity(b.Application.NutrientsPerAcre),
			CostPerAcre:      b.Application.CostPerAcre,
		}
	}
	if b.ID != "" {
		created, updated := b.CreatedAt, b.UpdatedAt
		out.CreatedAt = &created
		out.UpdatedAt = &updated
	}
	return out
}
