package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInvalidTransition  = errors.New("transición de estado inválida")
	ErrRetryable          = errors.New("operación reintentable")
)

// ValidationError describe un dato de entrada rechazado: campo, valor y motivo.
// Nunca se corrige automáticamente; se devuelve al caller tal cual.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

// NewValidationError construye un ValidationError formateando el valor con %v.
func NewValidationError(field string, value any, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: fmt.Sprintf("%v", value), Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s=%s: %s", e.Field, e.Value, e.Reason)
}

// Is permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// InvalidTransitionError transición de ciclo de vida no permitida desde el estado actual.
type InvalidTransitionError struct {
	From   string
	To     string
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("no se puede pasar de %s a %s", e.From, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is permite errors.Is(err, ErrInvalidTransition).
func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// RetryableError fallo transitorio (contención, timeout) que el caller puede reintentar.
type RetryableError struct {
	Op  string
	Err error
}

func (e *RetryableError) Error() string {
	if e.Err == nil {
		return e.Op + ": fallo transitorio"
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RetryableError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, ErrRetryable).
func (e *RetryableError) Is(target error) bool { return target == ErrRetryable }

// NotFoundError entidad referenciada que no existe (ingrediente, mezcla, cliente, cotización).
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q no encontrado", e.Entity, e.ID)
}

// Is permite errors.Is(err, ErrNotFound).
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// IsRetryable indica si err (o alguno de sus envueltos) es reintentable.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRetryable)
}
