package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/surblend-api/internal/application/dto"
	"github.com/jhoicas/surblend-api/internal/domain"
	"github.com/rs/zerolog"
)

// respondError traduce un error de dominio a status HTTP + dto.ErrorResponse.
// Los errores no tipados se registran con el logger de la petición (ContextLogger) y se
// devuelven como 500 sin exponer el detalle.
func respondError(c *fiber.Ctx, err error) error {
	var (
		vErr  *domain.ValidationError
		nfErr *domain.NotFoundError
		itErr *domain.InvalidTransitionError
	)
	switch {
	case errors.As(err, &vErr):
		return fail(c, fiber.StatusBadRequest, "VALIDATION", vErr.Error())
	case errors.As(err, &nfErr):
		return fail(c, fiber.StatusNotFound, "NOT_FOUND", nfErr.Error())
	case errors.As(err, &itErr):
		return fail(c, fiber.StatusConflict, "INVALID_TRANSITION", itErr.Error())
	case errors.Is(err, domain.ErrEmailAlreadyExists), errors.Is(err, domain.ErrDuplicate):
		return fail(c, fiber.StatusConflict, "DUPLICATE", err.Error())
	case errors.Is(err, domain.ErrConflict):
		return fail(c, fiber.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fail(c, fiber.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		return fail(c, fiber.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrUserNotFound):
		return fail(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "credenciales inválidas")
	case errors.Is(err, domain.ErrForbidden):
		return fail(c, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado")
	case domain.IsRetryable(err):
		c.Set(fiber.HeaderRetryAfter, "1")
		return fail(c, fiber.StatusServiceUnavailable, "RETRY_LATER", err.Error())
	}
	zerolog.Ctx(c.UserContext()).Error().Err(err).Str("path", c.Path()).Msg("error interno")
	return fail(c, fiber.StatusInternalServerError, "INTERNAL", "error interno")
}

func fail(c *fiber.Ctx, status int, code, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func badBody(c *fiber.Ctx) error {
	return fail(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
}
