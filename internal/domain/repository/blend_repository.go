package repository

import (
	"context"

	"github.com/jhoicas/surblend-api/internal/domain/entity"
)

// BlendFilter filtros de listado de mezclas.
type BlendFilter struct {
	ActiveOnly    bool
	TemplatesOnly bool
	Limit         int
	Offset        int
}

// BlendRepository persiste la cabecera y la composición de una mezcla.
// Los valores derivados (nutrientes, costo) no se guardan: el caso de uso los recalcula.
type BlendRepository interface {
	Create(ctx context.Context, b *entity.Blend) error
	GetByID(ctx context.Context, id string) (*entity.Blend, error)
	GetByCode(ctx context.Context, code string) (*entity.Blend, error)
	List(ctx context.Context, f BlendFilter) ([]*entity.Blend, int, error)
	// Update reemplaza cabecera y composición completa.
	Update(ctx context.Context, b *entity.Blend) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}
