package http

import (
	"context"

	"github.com/jhoicas/surblend-api/internal/application/dto"
)

// Contratos que los handlers necesitan de la capa de aplicación. Los implementan los
// casos de uso concretos; las interfaces permiten probar los handlers con fakes.

type authService interface {
	NeedsBootstrap(ctx context.Context) (bool, error)
	RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error)
}

type userService interface {
	Me(ctx context.Context, id string) (*dto.UserResponse, error)
}

type ingredientService interface {
	Create(ctx context.Context, in dto.CreateIngredientRequest) (*dto.IngredientResponse, error)
	Get(ctx context.Context, id string) (*dto.IngredientResponse, error)
	List(ctx context.Context, onlyAvailable bool, search string, page dto.PageRequest) (*dto.IngredientListResponse, error)
	Update(ctx context.Context, id string, in dto.UpdateIngredientRequest) (*dto.IngredientResponse, error)
	ChangePrice(ctx context.Context, userID, ip, id string, in dto.ChangePriceRequest) (*dto.IngredientResponse, error)
	PriceHistory(ctx context.Context, id string) ([]dto.PriceChangeResponse, error)
	Delete(ctx context.Context, id string) error
}

type blendService interface {
	Preview(ctx context.Context, in dto.CreateBlendRequest) (*dto.BlendResponse, error)
	Create(ctx context.Context, userID string, in dto.CreateBlendRequest) (*dto.BlendResponse, error)
	Get(ctx context.Context, id string) (*dto.BlendResponse, error)
	List(ctx context.Context, activeOnly, templatesOnly bool, page dto.PageRequest) (*dto.BlendListResponse, error)
	Update(ctx context.Context, id string, in dto.UpdateBlendRequest) (*dto.BlendResponse, error)
	Delete(ctx context.Context, userID, ip, id string) (*dto.DeleteBlendResponse, error)
}

type customerService interface {
	Create(ctx context.Context, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error)
	Get(ctx context.Context, id string) (*dto.CustomerResponse, error)
	List(ctx context.Context, limit, offset int) ([]*dto.CustomerResponse, error)
	SetActive(ctx context.Context, id string, active bool) (*dto.CustomerResponse, error)
}

type quoteService interface {
	Create(ctx context.Context, userID, ip string, in dto.CreateQuoteRequest) (*dto.QuoteResponse, error)
	Get(ctx context.Context, idOrNumber string) (*dto.QuoteResponse, error)
	List(ctx context.Context, status, customerID string, page dto.PageRequest) (*dto.QuoteListResponse, error)
	Update(ctx context.Context, userID, ip, id string, in dto.UpdateQuoteRequest) (*dto.QuoteResponse, error)
	Transition(ctx context.Context, userID, ip, id, target string) (*dto.QuoteResponse, error)
}

type dashboardService interface {
	GetStats(ctx context.Context) (*dto.DashboardStatsDTO, error)
}

// pinger lo implementa *pgxpool.Pool.
type pinger interface {
	Ping(ctx context.Context) error
}
