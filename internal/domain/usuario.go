package domain

import "time"

// Rol enumerates user roles.
type Rol string

const (
	RolSucursal   Rol = "sucursal"
	RolSoporte    Rol = "soporte"
	RolSupervisor Rol = "supervisor"
	RolAdmin      Rol = "admin"
)

// EsElevado reports whether the role sees tickets beyond its own.
func (r Rol) EsElevado() bool {
	return r == RolSoporte || r == RolSupervisor || r == RolAdmin
}

// PuedeAsignar reports whether the role may assign tickets to technicians.
func (r Rol) PuedeAsignar() bool {
	return r == RolSoporte || r == RolSupervisor || r == RolAdmin
}

// PuedeAprobar reports whether the role may approve or reject tickets.
func (r Rol) PuedeAprobar() bool {
	return r == RolSupervisor || r == RolAdmin
}

// Usuario is a system account referenced by tickets.
type Usuario struct {
	ID           int64
	Nombre       string
	Email        string
	PasswordHash string
	Rol          Rol
	Sucursal     string
	Activo       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor is the authenticated identity a service call runs under. The engine
// never authenticates; it only authorizes against this.
type Actor struct {
	ID  int64
	Rol Rol
}
