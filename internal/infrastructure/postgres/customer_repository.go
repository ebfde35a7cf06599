package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/surblend-api/internal/domain"
	"github.com/jhoicas/surblend-api/internal/domain/entity"
	"github.com/jhoicas/surblend-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

const customerColumns = `
	id, name, code, email, phone, address, city, state, zip_code, contact_person, tax_id,
	credit_limit, payment_terms, default_margin_type, default_margin_value, is_active, created_at, updated_at`

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// Create persiste un nuevo cliente.
func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	query := `INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	mType, mValue := marginColumns(c.DefaultMargin)
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Name, nullString(c.Code), c.Email, c.Phone, c.Address, c.City, c.State, c.ZipCode,
		c.ContactPerson, c.TaxID, nullDecimal(c.CreditLimit), c.PaymentTerms, mType, mValue, c.IsActive,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
}

// GetByCode obtiene un cliente por código.
func (r *CustomerRepo) GetByCode(ctx context.Context, code string) (*entity.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE code = $1`, code)
}

// List lista clientes con paginación.
func (r *CustomerRepo) List(ctx context.Context, limit, offset int) ([]*entity.Customer, error) {
	rows, err := r.q.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Update actualiza un cliente.
func (r *CustomerRepo) Update(ctx context.Context, c *entity.Customer) error {
	query := `
		UPDATE customers SET name = $2, code = $3, email = $4, phone = $5, address = $6, city = $7,
			state = $8, zip_code = $9, contact_person = $10, tax_id = $11, credit_limit = $12,
			payment_terms = $13, default_margin_type = $14, default_margin_value = $15,
			is_active = $16, updated_at = $17
		WHERE id = $1`
	mType, mValue := marginColumns(c.DefaultMargin)
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Name, nullString(c.Code), c.Email, c.Phone, c.Address, c.City,
		c.State, c.ZipCode, c.ContactPerson, c.TaxID, nullDecimal(c.CreditLimit),
		c.PaymentTerms, mType, mValue, c.IsActive, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

func (r *CustomerRepo) getOne(ctx context.Context, query string, arg any) (*entity.Customer, error) {
	c, err := scanCustomer(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

func scanCustomer(row rowScanner) (*entity.Customer, error) {
	var (
		c                   entity.Customer
		code, mType         *string
		creditLimit, mValue decimal.NullDecimal
	)
	err := row.Scan(
		&c.ID, &c.Name, &code, &c.Email, &c.Phone, &c.Address, &c.City, &c.State, &c.ZipCode,
		&c.ContactPerson, &c.TaxID, &creditLimit, &c.PaymentTerms, &mType, &mValue, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Code = derefString(code)
	c.CreditLimit = decimalPtr(creditLimit)
	if mType != nil && mValue.Valid {
		c.DefaultMargin = &entity.MarginPolicy{Type: *mType, Value: mValue.Decimal}
	}
	return &c, nil
}

func marginColumns(m *entity.MarginPolicy) (*string, decimal.NullDecimal) {
	if m == nil {
		return nil, decimal.NullDecimal{}
	}
	t := m.Type
	return &t, decimal.NullDecimal{Decimal: m.Value, Valid: true}
}
