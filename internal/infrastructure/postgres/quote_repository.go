package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/surblend-api/internal/domain"
	"github.com/jhoicas/surblend-api/internal/domain/entity"
	"github.com/jhoicas/surblend-api/internal/domain/quote"
	"github.com/jhoicas/surblend-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.QuoteRepository    = (*QuoteRepo)(nil)
	_ repository.QuoteSequenceFloor = (*QuoteRepo)(nil)
)

const quoteColumns = `
	id, quote_number, customer_id, blend_id, blend_snapshot, quantity, margin_type, margin_value,
	services, application_acres, unit_price, total_price, services_total, cost_per_acre,
	status, valid_until, sent_at, accepted_at, internal_notes, customer_notes, created_by,
	created_at, updated_at`

// QuoteRepo implementación de QuoteRepository (usable con pool o tx).
type QuoteRepo struct {
	q Querier
}

// NewQuoteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewQuoteRepository(q Querier) *QuoteRepo {
	return &QuoteRepo{q: q}
}

// Create persiste una cotización nueva.
func (r *QuoteRepo) Create(ctx context.Context, qt *entity.Quote) error {
	snapshot, services, err := marshalQuoteJSON(qt)
	if err != nil {
		return err
	}
	query := `INSERT INTO quotes (` + quoteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
		        $19, $20, $21, $22, $23)`
	_, err = r.q.Exec(ctx, query,
		qt.ID, qt.Number, qt.CustomerID, qt.BlendID, snapshot, qt.Quantity, qt.Margin.Type, qt.Margin.Value,
		services, nullDecimal(qt.ApplicationAcres), qt.UnitPrice, qt.TotalPrice, qt.ServicesTotal, nullDecimal(qt.CostPerAcre),
		qt.Status, qt.ValidUntil, qt.SentAt, qt.AcceptedAt, qt.InternalNotes, qt.CustomerNotes, nullString(qt.CreatedBy),
		qt.CreatedAt, qt.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

// GetByID obtiene una cotización por ID.
func (r *QuoteRepo) GetByID(ctx context.Context, id string) (*entity.Quote, error) {
	return r.getOne(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = $1`, id)
}

// GetByNumber obtiene una cotización por número.
func (r *QuoteRepo) GetByNumber(ctx context.Context, number string) (*entity.Quote, error) {
	return r.getOne(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE quote_number = $1`, number)
}

// List lista cotizaciones, más recientes primero.
func (r *QuoteRepo) List(ctx context.Context, f repository.QuoteFilter) ([]*entity.Quote, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.CustomerID != "" {
		args = append(args, f.CustomerID)
		where = append(where, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM quotes WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count quotes: %w", err)
	}
	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM quotes WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		quoteColumns, cond, len(args)-1, len(args))
	list, err := r.queryMany(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// UpdatePricing guarda los campos editables y los precios recalculados si el estado
// sigue siendo expectedStatus.
func (r *QuoteRepo) UpdatePricing(ctx context.Context, qt *entity.Quote, expectedStatus string) error {
	_, services, err := marshalQuoteJSON(qt)
	if err != nil {
		return err
	}
	query := `
		UPDATE quotes SET
			quantity = $3, margin_type = $4, margin_value = $5, services = $6, application_acres = $7,
			unit_price = $8, total_price = $9, services_total = $10, cost_per_acre = $11,
			internal_notes = $12, customer_notes = $13, updated_at = $14
		WHERE id = $1 AND status = $2`
	tag, err := r.q.Exec(ctx, query,
		qt.ID, expectedStatus,
		qt.Quantity, qt.Margin.Type, qt.Margin.Value, services, nullDecimal(qt.ApplicationAcres),
		qt.UnitPrice, qt.TotalPrice, qt.ServicesTotal, nullDecimal(qt.CostPerAcre),
		qt.InternalNotes, qt.CustomerNotes, qt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update quote pricing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// UpdateStatus compare-and-set del estado: solo escribe si el estado persistido es expectedStatus.
func (r *QuoteRepo) UpdateStatus(ctx context.Context, qt *entity.Quote, expectedStatus string) error {
	query := `
		UPDATE quotes SET status = $3, sent_at = $4, accepted_at = $5, updated_at = $6
		WHERE id = $1 AND status = $2`
	tag, err := r.q.Exec(ctx, query, qt.ID, expectedStatus, qt.Status, qt.SentAt, qt.AcceptedAt, qt.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update quote status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// ListExpirable cotizaciones DRAFT/SENT con la vigencia vencida, las más antiguas primero.
func (r *QuoteRepo) ListExpirable(ctx context.Context, now time.Time, limit int) ([]*entity.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes
		WHERE status IN ('DRAFT', 'SENT') AND valid_until < $1
		ORDER BY valid_until LIMIT $2`
	return r.queryMany(ctx, query, now, limit)
}

// CountByBlend cuenta cotizaciones de una mezcla (cualquier estado).
func (r *QuoteRepo) CountByBlend(ctx context.Context, blendID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM quotes WHERE blend_id = $1`, blendID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count quotes by blend: %w", err)
	}
	return n, nil
}

// MaxSequence mayor secuencia persistida del período (0 si no hay cotizaciones).
func (r *QuoteRepo) MaxSequence(ctx context.Context, period quote.Period) (int64, error) {
	const query = `
		SELECT COALESCE(MAX(split_part(quote_number, '-', 3)::bigint), 0)
		FROM quotes
		WHERE quote_number LIKE $1`
	var seq int64
	if err := r.q.QueryRow(ctx, query, period.Prefix()+"%").Scan(&seq); err != nil {
		return 0, fmt.Errorf("max quote sequence %s: %w", period, err)
	}
	return seq, nil
}

func (r *QuoteRepo) getOne(ctx context.Context, query string, arg any) (*entity.Quote, error) {
	qt, err := scanQuote(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get quote: %w", err)
	}
	return qt, nil
}

func (r *QuoteRepo) queryMany(ctx context.Context, query string, args ...any) ([]*entity.Quote, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Quote
	for rows.Next() {
		qt, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		list = append(list, qt)
	}
	return list, rows.Err()
}

func scanQuote(row rowScanner) (*entity.Quote, error) {
	var (
		qt                 entity.Quote
		snapshot, services []byte
		acres, perAcre     decimal.NullDecimal
		createdBy          *string
	)
	err := row.Scan(
		&qt.ID, &qt.Number, &qt.CustomerID, &qt.BlendID, &snapshot, &qt.Quantity, &qt.Margin.Type, &qt.Margin.Value,
		&services, &acres, &qt.UnitPrice, &qt.TotalPrice, &qt.ServicesTotal, &perAcre,
		&qt.Status, &qt.ValidUntil, &qt.SentAt, &qt.AcceptedAt, &qt.InternalNotes, &qt.CustomerNotes, &createdBy,
		&qt.CreatedAt, &qt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(snapshot, &qt.Blend); err != nil {
		return nil, fmt.Errorf("unmarshal blend snapshot: %w", err)
	}
	if len(services) > 0 {
		if err := json.Unmarshal(services, &qt.Services); err != nil {
			return nil, fmt.Errorf("unmarshal services: %w", err)
		}
	}
	qt.ApplicationAcres = decimalPtr(acres)
	qt.CostPerAcre = decimalPtr(perAcre)
	qt.CreatedBy = derefString(createdBy)
	return &qt, nil
}

func marshalQuoteJSON(qt *entity.Quote) (snapshot, services []byte, err error) {
	snapshot, err = json.Marshal(qt.Blend)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal blend snapshot: %w", err)
	}
	svc := qt.Services
	if svc == nil {
		svc = []entity.Service{}
	}
	services, err = json.Marshal(svc)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal services: %w", err)
	}
	return snapshot, services, nil
}
