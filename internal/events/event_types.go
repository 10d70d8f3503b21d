package events

import (
	"time"

	"github.com/gestion-soporte/mesa-ayuda/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreado         EventType = "ticket_creado"
	EventTicketEstadoCambiado EventType = "ticket_estado_cambiado"
	EventTicketAsignado       EventType = "ticket_asignado"
	EventTicketAprobado       EventType = "ticket_aprobado"
	EventTicketRechazado      EventType = "ticket_rechazado"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	ActorID   int64       `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreadoPayload payload.
type TicketCreadoPayload struct {
	Titulo    string           `json:"titulo"`
	Sucursal  string           `json:"sucursal"`
	Prioridad domain.Prioridad `json:"prioridad"`
	Estado    domain.Estado    `json:"estado"`
}

// EstadoCambiadoPayload payload.
type EstadoCambiadoPayload struct {
	EstadoAnterior domain.Estado `json:"estado_anterior"`
	EstadoNuevo    domain.Estado `json:"estado_nuevo"`
	Comentario     string        `json:"comentario,omitempty"`
}

// TicketAsignadoPayload payload.
type TicketAsignadoPayload struct {
	AsignadoID   *int64 `json:"asignado_id,omitempty"`
	Reasignacion bool   `json:"reasignacion"`
}

// DecisionSupervisorPayload payload for approvals and rejections.
type DecisionSupervisorPayload struct {
	SupervisorID int64  `json:"supervisor_id"`
	Motivo       string `json:"motivo,omitempty"`
	AsignadoID   *int64 `json:"asignado_id,omitempty"`
}
