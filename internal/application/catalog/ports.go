package catalog

import (
	"context"

	"github.com/jhoicas/surblend-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con repos del catálogo atados a ella.
// Lo usa el cambio de precio: costo, historial y bitácora se escriben juntos o nada.
type TxRunner interface {
	RunCatalog(ctx context.Context, fn func(
		ingredientRepo repository.IngredientRepository,
		priceRepo repository.PriceHistoryRepository,
		logRepo repository.ActivityLogRepository,
	) error) error
}
