package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/surblend-api/internal/domain"
	"github.com/jhoicas/surblend-api/internal/domain/quote"
	"github.com/jhoicas/surblend-api/internal/domain/repository"
)

var _ repository.QuoteSequenceStore = (*QuoteSequenceStore)(nil)

// DefaultLockTimeout espera máxima por el lock de la fila del período.
const DefaultLockTimeout = 2 * time.Second

// QuoteSequenceStore contador por período en quote_sequences. El UPSERT … RETURNING
// lee, incrementa y reserva en una sola sentencia: dos transacciones concurrentes
// sobre el mismo período se serializan en el lock de la fila.
type QuoteSequenceStore struct {
	q           TxQuerier
	lockTimeout time.Duration
}

// NewQuoteSequenceStore construye el store. lockTimeout <= 0 usa DefaultLockTimeout.
func NewQuoteSequenceStore(q TxQuerier, lockTimeout time.Duration) *QuoteSequenceStore {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &QuoteSequenceStore{q: q, lockTimeout: lockTimeout}
}

// Next reserva el siguiente número del período. Contención, deadlock o cancelación
// por timeout se devuelven como *domain.RetryableError.
func (s *QuoteSequenceStore) Next(ctx context.Context, period quote.Period) (int64, error) {
	var seq int64
	err := inTx(ctx, s.q, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())); err != nil {
			return err
		}
		// la primera fila del período arranca sobre lo ya emitido en quotes
		const query = `
			INSERT INTO quote_sequences (period, last_value, updated_at)
			VALUES ($1, (
				SELECT COALESCE(MAX(split_part(quote_number, '-', 3)::bigint), 0) + 1
				FROM quotes WHERE quote_number LIKE $2
			), now())
			ON CONFLICT (period) DO UPDATE
			SET last_value = quote_sequences.last_value + 1, updated_at = now()
			RETURNING last_value`
		return tx.QueryRow(ctx, query, period.String(), period.Prefix()+"%").Scan(&seq)
	})
	if err != nil {
		if isTransient(err) || errors.Is(err, context.DeadlineExceeded) {
			return 0, &domain.RetryableError{Op: "quote_sequences " + period.String(), Err: err}
		}
		return 0, fmt.Errorf("quote_sequences %s: %w", period, err)
	}
	return seq, nil
}
