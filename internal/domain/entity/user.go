package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleSalesRep = "sales_rep"
	RoleViewer   = "viewer"
)

// User representa un usuario del sistema.
type User struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         string // admin, sales_rep, viewer
	IsActive     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsValidRole indica si role es uno de los roles conocidos.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleSalesRep, RoleViewer:
		return true
	}
	return false
}
