package auth

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
	"github.com/jhoicas/surblend-api/pkg/jwt"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro y login.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
	log      zerolog.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig, log zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg, log: log}
}

// NeedsBootstrap indica si aún no existe ningún admin (el primer registro es libre y crea un admin).
func (uc *AuthUseCase) NeedsBootstrap(ctx context.Context) (bool, error) {
	n, err := uc.userRepo.CountByRole(ctx, entity.RoleAdmin)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// RegisterUser crea un usuario: hashea password con bcrypt y persiste.
// Devuelve ErrEmailAlreadyExists si el email ya existe y ErrDuplicate si el username ya existe.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" {
		return nil, domain.NewValidationError("username", "", "requerido")
	}
	if !strings.Contains(email, "@") {
		return nil, domain.NewValidationError("email", in.Email, "email inválido")
	}
	if len(in.Password) < minPasswordLength {
		return nil, domain.NewValidationError("password", "", fmt.Sprintf("mínimo %d caracteres", minPasswordLength))
	}
	role := in.Role
	if role == "" {
		role = entity.RoleViewer
	}
	bootstrap, err := uc.NeedsBootstrap(ctx)
	if err != nil {
		return nil, err
	}
	if bootstrap {
		role = entity.RoleAdmin
	}
	if !entity.IsValidRole(role) {
		return nil, domain.NewValidationError("role", role, "debe ser admin, sales_rep o viewer")
	}

	if existing, err := uc.userRepo.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	if existing, err := uc.userRepo.GetByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("usuario %q: %w", username, domain.ErrDuplicate)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		FullName:     in.FullName,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", user.ID).Str("role", role).Msg("usuario registrado")
	return toUserResponse(user), nil
}

// Login verifica username (o email) y password, genera JWT y retorna token + usuario.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	var (
		user *entity.User
		err  error
	)
	if strings.Contains(in.Username, "@") {
		user, err = uc.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Username)))
	} else {
		user, err = uc.userRepo.GetByUsername(ctx, strings.TrimSpace(in.Username))
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Username, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if err := uc.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		uc.log.Warn().Err(err).Str("user_id", user.ID).Msg("no se pudo registrar el último login")
	} else {
		user.LastLogin = &now
	}
	return &dto.LoginResponse{
		Token:     token,
		TokenType: "bearer",
		User:      *toUserResponse(user),
	}, nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}
}
