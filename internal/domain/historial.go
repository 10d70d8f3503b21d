package domain

import "time"

// HistorialEntry is an immutable audit entry for one observed state
// transition. EstadoAnterior is nil for the creation event.
type HistorialEntry struct {
	ID             int64
	TicketID       int64
	EstadoAnterior *Estado
	EstadoNuevo    Estado
	UsuarioID      int64
	Comentario     string
	CreatedAt      time.Time
}
