package dto

import (
	"time"

	"github.com/gestion-soporte/mesa-ayuda/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse payload.
type LoginResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsuarioID int64      `json:"usuario_id"`
	Nombre    string     `json:"nombre"`
	Rol       domain.Rol `json:"rol"`
	Sucursal  string     `json:"sucursal"`
}
