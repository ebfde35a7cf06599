package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/surblend-api/internal/application/catalog"
	"github.com/jhoicas/surblend-api/internal/application/quoting"
	"github.com/jhoicas/surblend-api/internal/domain/repository"
)

// Ensure TxRunner implements catalog.TxRunner and quoting.TxRunner.
var _ catalog.TxRunner = (*TxRunner)(nil)
var _ quoting.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunCatalog inicia una transacción con repos del catálogo (cambio de precio auditado).
func (r *TxRunner) RunCatalog(ctx context.Context, fn func(
	ingredientRepo repository.IngredientRepository,
	priceRepo repository.PriceHistoryRepository,
	logRepo repository.ActivityLogRepository,
) error) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(NewIngredientRepository(tx), NewPriceHistoryRepository(tx), NewActivityLogRepository(tx))
	})
}

// RunQuoting inicia una transacción con el repo de cotizaciones y la bitácora.
func (r *TxRunner) RunQuoting(ctx context.Context, fn func(
	quoteRepo repository.QuoteRepository,
	logRepo repository.ActivityLogRepository,
) error) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(NewQuoteRepository(tx), NewActivityLogRepository(tx))
	})
}
