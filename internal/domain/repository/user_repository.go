package repository

import (
	"context"
	"time"

	"github.com/jhoicas/surblend-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	CountByRole(ctx context.Context, role string) (int, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}
