package quoting

import (
	"github.com/jhoicas/surblend-api/internal/application/dto"
	"github.com/jhoicas/surblend-api/internal/domain/entity"
)

// QuoteToResponse convierte la entidad al DTO de salida.
func QuoteToResponse(q *entity.Quote) *dto.QuoteResponse {
	services := make([]dto.ServiceDTO, 0, len(q.Services))
	for _, s := range q.Services {
		services = append(services, dto.ServiceDTO{Name: s.Name, Cost: s.Cost})
	}
	return &dto.QuoteResponse{
		ID:          q.ID,
		QuoteNumber: q.Number,
		CustomerID:  q.CustomerID,
		BlendID:     q.BlendID,
		Blend: dto.BlendSnapshotResponse{
			BlendID:    q.Blend.BlendID,
			Name:       q.Blend.Name,
			Code:       q.Blend.Code,
			CostPerTon: q.Blend.CostPerTon,
			Nutrients:  dto.NutrientsFromEntity(q.Blend.Nutrients),
		},
		Quantity:         q.Quantity,
		MarginType:       q.Margin.Type,
		MarginValue:      q.Margin.Value,
		Services:         services,
		ApplicationAcres: q.ApplicationAcres,
		UnitPrice:        q.UnitPrice,
		TotalPrice:       q.TotalPrice,
		ServicesTotal:    q.ServicesTotal,
		CostPerAcre:      q.CostPerAcre,
		Status:           q.Status,
		ValidUntil:       q.ValidUntil,
		SentAt:           q.SentAt,
		AcceptedAt:       q.AcceptedAt,
		InternalNotes:    q.InternalNotes,
		CustomerNotes:    q.CustomerNotes,
		CreatedBy:        q.CreatedBy,
		CreatedAt:        q.CreatedAt,
		UpdatedAt:        q.UpdatedAt,
	}
}

func servicesFromDTO(in []dto.ServiceDTO) []entity.Service {
	out := make([]entity.Service, 0, len(in))
	for _, s := range in {
		out = append(out, entity.Service{Name: s.Name, Cost: s.Cost})
	}
	return out
}
