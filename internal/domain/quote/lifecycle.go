package quote

import (
	"time"

	"github.com/jhoicas/surblend-api/internal/domain"
	"github.com/jhoicas/surblend-api/internal/domain/entity"
)

// ValidUntil fecha de vencimiento: creación + días de vigencia configurados.
func ValidUntil(createdAt time.Time, validityDays int) time.Time {
	return createdAt.AddDate(0, 0, validityDays)
}

// IsLapsed indica si la vigencia ya pasó (now estrictamente posterior a ValidUntil).
func IsLapsed(q *entity.Quote, now time.Time) bool {
	return now.After(q.ValidUntil)
}

// Send DRAFT → SENT. Exige precios calculados y vigencia.
func Send(q entity.Quote, now time.Time) (entity.Quote, error) {
	if q.Status != entity.QuoteStatusDraft {
		return q, invalid(q.Status, entity.QuoteStatusSent, "")
	}
	if !q.IsPriced() {
		return q, invalid(q.Status, entity.QuoteStatusSent, "la cotización no tiene precio calculado")
	}
	if IsLapsed(&q, now) {
		return q, invalid(q.Status, entity.QuoteStatusSent, "la vigencia venció")
	}
	q.Status = entity.QuoteStatusSent
	q.SentAt = &now
	q.UpdatedAt = now
	return q, nil
}

// Accept SENT → ACCEPTED.
func Accept(q entity.Quote, now time.Time) (entity.Quote, error) {
	if q.Status != entity.QuoteStatusSent {
		return q, invalid(q.Status, entity.QuoteStatusAccepted, "")
	}
	if IsLapsed(&q, now) {
		return q, invalid(q.Status, entity.QuoteStatusAccepted, "la vigencia venció")
	}
	q.Status = entity.QuoteStatusAccepted
	q.AcceptedAt = &now
	q.UpdatedAt = now
	return q, nil
}

// Reject SENT → REJECTED.
func Reject(q entity.Quote, now time.Time) (entity.Quote, error) {
	if q.Status != entity.QuoteStatusSent {
		return q, invalid(q.Status, entity.QuoteStatusRejected, "")
	}
	q.Status = entity.QuoteStatusRejected
	q.UpdatedAt = now
	return q, nil
}

// Expire DRAFT|SENT → EXPIRED cuando now > ValidUntil. Sobre una cotización ya
// EXPIRED no hace nada (idempotente).
func Expire(q entity.Quote, now time.Time) (entity.Quote, error) {
	if q.Status == entity.QuoteStatusExpired {
		return q, nil
	}
	if q.IsTerminal() {
		return q, invalid(q.Status, entity.QuoteStatusExpired, "")
	}
	if !IsLapsed(&q, now) {
		return q, invalid(q.Status, entity.QuoteStatusExpired, "la cotización sigue vigente")
	}
	q.Status = entity.QuoteStatusExpired
	q.UpdatedAt = now
	return q, nil
}

// Transition despacha a la transición correspondiente al estado destino.
func Transition(q entity.Quote, target string, now time.Time) (entity.Quote, error) {
	switch target {
	case entity.QuoteStatusSent:
		return Send(q, now)
	case entity.QuoteStatusAccepted:
		return Accept(q, now)
	case entity.QuoteStatusRejected:
		return Reject(q, now)
	case entity.QuoteStatusExpired:
		return Expire(q, now)
	}
	return q, invalid(q.Status, target, "estado destino desconocido")
}

// EnsureEditable cantidad, margen, servicios y superficie solo se editan en DRAFT.
func EnsureEditable(q *entity.Quote) error {
	if q.Status != entity.QuoteStatusDraft {
		return invalid(q.Status, entity.QuoteStatusDraft, "solo se editan cotizaciones en DRAFT")
	}
	return nil
}

func invalid(from, to, reason string) error {
	return &domain.InvalidTransitionError{From: from, To: to, Reason: reason}
}
