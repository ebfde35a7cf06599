package entity

import "time"

// Acciones registradas en la bitácora.
const (
	ActionQuoteCreated     = "quote.created"
	ActionQuoteUpdated     = "quote.updated"
	ActionQuoteTransition  = "quote.transition"
	ActionIngredientPrice  = "ingredient.price_changed"
	ActionBlendDeactivated = "blend.deactivated"
)

// ActivityLog entrada de auditoría de una acción de usuario o del sistema.
type ActivityLog struct {
	ID         string
	UserID     string // vacío para acciones del sistema (barrido de vencimiento)
	Action     string
	EntityType string
	EntityID   string
	Details    map[string]any
	IPAddress  string
	CreatedAt  time.Time
}
