package models

import (
	"time"

	"github.com/google/uuid"
)

// Роли пользователей сообщества.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User описывает участника закрытого сообщества.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Principal — аутентифицированная идентичность, от имени которой выполняется
// операция. Сервисы принимают Principal целиком, а не сырые значения из
// контекста запроса.
type Principal struct {
	ID       uuid.UUID
	Role     string
	IsActive bool
}

// IsAdmin сообщает, является ли субъект администратором.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// PrincipalOf строит Principal из записи пользователя.
func PrincipalOf(u *User) Principal {
	return Principal{ID: u.ID, Role: u.Role, IsActive: u.IsActive}
}
