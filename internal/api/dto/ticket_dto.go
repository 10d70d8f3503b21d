package dto

import (
	"time"

	"github.com/gestion-soporte/mesa-ayuda/internal/domain"
)

// CreateTicketRequest payload for ticket creation.
type CreateTicketRequest struct {
	Titulo             string           `json:"titulo"`
	Descripcion        string           `json:"descripcion"`
	Categoria          domain.Categoria `json:"categoria"`
	Prioridad          domain.Prioridad `json:"prioridad"`
	Sucursal           string           `json:"sucursal"`
	Adjuntos           []domain.Adjunto `json:"adjuntos"`
	RequiereAprobacion bool             `json:"requiere_aprobacion"`
}

// UpdateTicketRequest payload for partial updates.
type UpdateTicketRequest struct {
	Titulo            *string           `json:"titulo"`
	Descripcion       *string           `json:"descripcion"`
	Categoria         *domain.Categoria `json:"categoria"`
	Prioridad         *domain.Prioridad `json:"prioridad"`
	Estado            *domain.Estado    `json:"estado"`
	AsignadoID        *int64            `json:"asignado_id"`
	Adjuntos          []domain.Adjunto  `json:"adjuntos"`
	ReporteSupervisor *string           `json:"reporte_supervisor"`
	Comentario        string            `json:"comentario"`
}

// ChangeStateRequest payload for state transitions.
type ChangeStateRequest struct {
	Estado     domain.Estado `json:"estado"`
	Comentario string        `json:"comentario"`
}

// AssignRequest payload for assignment and reassignment.
type AssignRequest struct {
	UsuarioID int64 `json:"usuario_id"`
}

// RejectRequest payload for supervisor rejection.
type RejectRequest struct {
	Motivo            string `json:"motivo"`
	NotificarSucursal *bool  `json:"notificar_sucursal"`
}

// ApproveRequest payload for supervisor approval.
type ApproveRequest struct {
	Comentario string `json:"comentario"`
}

// TicketResponse is the API shape of a ticket.
type TicketResponse struct {
	ID                int64            `json:"id"`
	Titulo            string           `json:"titulo"`
	Descripcion       string           `json:"descripcion"`
	Categoria         domain.Categoria `json:"categoria"`
	Prioridad         domain.Prioridad `json:"prioridad"`
	Estado            domain.Estado    `json:"estado"`
	CreadorID         int64            `json:"creador_id"`
	AsignadoID        *int64           `json:"asignado_id,omitempty"`
	ReasignadoAID     *int64           `json:"reasignado_a_id,omitempty"`
	SupervisorID      *int64           `json:"supervisor_id,omitempty"`
	Sucursal          string           `json:"sucursal"`
	Adjuntos          []domain.Adjunto `json:"adjuntos,omitempty"`
	Comentarios       string           `json:"comentarios,omitempty"`
	ReporteSupervisor string           `json:"reporte_supervisor,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	ClosedAt          *time.Time       `json:"closed_at,omitempty"`
	ReasignadoAt      *time.Time       `json:"reasignado_at,omitempty"`
}

// HistorialResponse is one audit entry.
type HistorialResponse struct {
	ID             int64          `json:"id"`
	TicketID       int64          `json:"ticket_id"`
	EstadoAnterior *domain.Estado `json:"estado_anterior,omitempty"`
	EstadoNuevo    domain.Estado  `json:"estado_nuevo"`
	UsuarioID      int64          `json:"usuario_id"`
	Comentario     string         `json:"comentario,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// RechazoResponse reports a rejection outcome.
type RechazoResponse struct {
	Ticket              TicketResponse `json:"ticket"`
	NotificacionEnviada bool           `json:"notificacion_enviada"`
}

// StatsResponse aggregates a user's tickets.
type StatsResponse struct {
	Total        int64                      `json:"total"`
	PorEstado    map[domain.Estado]int64    `json:"por_estado"`
	PorPrioridad map[domain.Prioridad]int64 `json:"por_prioridad"`
}

// FromTicket maps domain to API shape.
func FromTicket(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:                ticket.ID,
		Titulo:            ticket.Titulo,
		Descripcion:       ticket.Descripcion,
		Categoria:         ticket.Categoria,
		Prioridad:         ticket.Prioridad,
		Estado:            ticket.Estado,
		CreadorID:         ticket.CreadorID,
		AsignadoID:        ticket.AsignadoID,
		ReasignadoAID:     ticket.ReasignadoAID,
		SupervisorID:      ticket.SupervisorID,
		Sucursal:          ticket.Sucursal,
		Adjuntos:          ticket.Adjuntos,
		Comentarios:       ticket.Comentarios,
		ReporteSupervisor: ticket.ReporteSupervisor,
		CreatedAt:         ticket.CreatedAt,
		UpdatedAt:         ticket.UpdatedAt,
		ClosedAt:          ticket.ClosedAt,
		ReasignadoAt:      ticket.ReasignadoAt,
	}
}

// FromHistorial maps an audit entry to API shape.
func FromHistorial(entry *domain.HistorialEntry) HistorialResponse {
	return HistorialResponse{
		ID:             entry.ID,
		TicketID:       entry.TicketID,
		EstadoAnterior: entry.EstadoAnterior,
		EstadoNuevo:    entry.EstadoNuevo,
		UsuarioID:      entry.UsuarioID,
		Comentario:     entry.Comentario,
		CreatedAt:      entry.CreatedAt,
	}
}
