package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/surblend-api/internal/application/dto"
	"github.com/jhoicas/surblend-api/internal/domain"
	"github.com/jhoicas/surblend-api/internal/domain/entity"
	"github.com/jhoicas/surblend-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const defaultPaymentTerms = "Net 30"

// CustomerUseCase casos de uso para clientes.
type CustomerUseCase struct {
	repo repository.CustomerRepository
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{repo: repo}
}

// Create crea un nuevo cliente. El margen por defecto, si viene, se valida aquí.
func (uc *CustomerUseCase) Create(ctx context.Context, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "", "nombre requerido")
	}
	code := strings.TrimSpace(in.Code)
	if code != "" {
		existing, err := uc.repo.GetByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("cliente %q: %w", code, domain.ErrDuplicate)
		}
	}
	if in.CreditLimit != nil && in.CreditLimit.IsNegative() {
		return nil, domain.NewValidationError("credit_limit", *in.CreditLimit, "no puede ser negativo")
	}
	margin, err := marginFromRequest(in.DefaultMarginType, in.DefaultMarginValue)
	if err != nil {
		return nil, err
	}
	terms := in.PaymentTerms
	if terms == "" {
		terms = defaultPaymentTerms
	}
	now := time.Now()
	customer := &entity.Customer{
		ID:            uuid.New().String(),
		Name:          name,
		Code:          code,
		Email:         in.Email,
		Phone:         in.Phone,
		Address:       in.Address,
		City:          in.City,
		State:         in.State,
		ZipCode:       in.ZipCode,
		ContactPerson: in.ContactPerson,
		TaxID:         in.TaxID,
		CreditLimit:   in.CreditLimit,
		PaymentTerms:  terms,
		DefaultMargin: margin,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return toCustomerResponse(customer), nil
}

// Get obtiene un cliente.
func (uc *CustomerUseCase) Get(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, &domain.NotFoundError{Entity: "customer", ID: id}
	}
	return toCustomerResponse(c), nil
}

// List lista clientes.
func (uc *CustomerUseCase) List(ctx context.Context, limit, offset int) ([]*dto.CustomerResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCustomerResponse(c))
	}
	return out, nil
}

// SetActive activa o desactiva un cliente (los inactivos no reciben cotizaciones nuevas).
func (uc *CustomerUseCase) SetActive(ctx context.Context, id string, active bool) (*dto.CustomerResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, &domain.NotFoundError{Entity: "customer", ID: id}
	}
	c.IsActive = active
	c.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return toCustomerResponse(c), nil
}

// marginFromRequest sin tipo ni valor no hay margen propio; un valor sin tipo se toma como porcentaje.
func marginFromRequest(typ string, value *decimal.Decimal) (*entity.MarginPolicy, error) {
	if typ == "" && value == nil {
		return nil, nil
	}
	if typ == "" {
		typ = entity.MarginPercent
	}
	if typ != entity.MarginPercent && typ != entity.MarginFixed {
		return nil, domain.NewValidationError("default_margin_type", typ, "debe ser percent o fixed")
	}
	if value == nil {
		return nil, domain.NewValidationError("default_margin_value", "", "valor requerido")
	}
	if value.IsNegative() {
		return nil, domain.NewValidationError("default_margin_value", *value, "no puede ser negativo")
	}
	return &entity.MarginPolicy{Type: typ, Value: *value}, nil
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	out := &dto.CustomerResponse{
		ID:            c.ID,
		Name:          c.Name,
		Code:          c.Code,
		Email:         c.Email,
		Phone:         c.Phone,
		Address:       c.Address,
		City:          c.City,
		State:         c.State,
		ZipCode:       c.ZipCode,
		ContactPerson: c.ContactPerson,
		TaxID:         c.TaxID,
		CreditLimit:   c.CreditLimit,
		PaymentTerms:  c.PaymentTerms,
		IsActive:      c.IsActive,
		CreatedAt:     c.CreatedAt,
	}
	if c.DefaultMargin != nil {
		out.DefaultMarginType = c.DefaultMargin.Type
		v := c.DefaultMargin.Value
		out.DefaultMarginValue = &v
	}
	return out
}
