package domain

import "time"

// Estado enumerates lifecycle states for tickets.
type Estado string

const (
	EstadoNuevo               Estado = "nuevo"
	EstadoEnProgreso          Estado = "en_progreso"
	EstadoResuelto            Estado = "resuelto"
	EstadoPendiente           Estado = "pendiente"
	EstadoCerrado             Estado = "cerrado"
	EstadoCancelado           Estado = "cancelado"
	EstadoPendienteAprobacion Estado = "pendiente_aprobacion"
	EstadoRechazado           Estado = "rechazado"
)

// Prioridad enumerates urgency levels.
type Prioridad string

const (
	PrioridadBaja    Prioridad = "baja"
	PrioridadMedia   Prioridad = "media"
	PrioridadAlta    Prioridad = "alta"
	PrioridadUrgente Prioridad = "urgente"
)

// Categoria enumerates ticket categories.
type Categoria string

const (
	CategoriaHardware Categoria = "hardware"
	CategoriaSoftware Categoria = "software"
	CategoriaRed      Categoria = "red"
	CategoriaAccesos  Categoria = "accesos"
	CategoriaOtro     Categoria = "otro"
)

// Adjunto describes an attachment reference stored with the ticket.
type Adjunto struct {
	URL    string `json:"url"`
	Nombre string `json:"nombre"`
	Mime   string `json:"mime,omitempty"`
}

// Ticket is the aggregate for branch support requests.
type Ticket struct {
	ID                int64
	Titulo            string
	Descripcion       string
	Categoria         Categoria
	Prioridad         Prioridad
	Estado            Estado
	CreadorID         int64
	AsignadoID        *int64
	ReasignadoAID     *int64
	SupervisorID      *int64
	Sucursal          string
	Adjuntos          []Adjunto
	Comentarios       string
	ReporteSupervisor string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ClosedAt          *time.Time
	ReasignadoAt      *time.Time
}

// EsTerminal reports whether the state admits no further transitions.
func (e Estado) EsTerminal() bool {
	return e == EstadoCerrado || e == EstadoCancelado || e == EstadoRechazado
}

// EsValido reports whether the state belongs to the enumeration.
func (e Estado) EsValido() bool {
	switch e {
	case EstadoNuevo, EstadoEnProgreso, EstadoResuelto, EstadoPendiente,
		EstadoCerrado, EstadoCancelado, EstadoPendienteAprobacion, EstadoRechazado:
		return true
	}
	return false
}

// CierraTicket reports whether entering the state stamps closed_at.
func (e Estado) CierraTicket() bool {
	switch e {
	case EstadoResuelto, EstadoCerrado, EstadoPendiente, EstadoCancelado:
		return true
	}
	return false
}

// EsValida reports whether the priority belongs to the enumeration.
func (p Prioridad) EsValida() bool {
	switch p {
	case PrioridadBaja, PrioridadMedia, PrioridadAlta, PrioridadUrgente:
		return true
	}
	return false
}

// EsValida reports whether the category belongs to the enumeration.
func (c Categoria) EsValida() bool {
	switch c {
	case CategoriaHardware, CategoriaSoftware, CategoriaRed, CategoriaAccesos, CategoriaOtro:
		return true
	}
	return false
}

var transicionesPermitidas = map[Estado][]Estado{
	EstadoNuevo:               {EstadoEnProgreso, EstadoCancelado},
	EstadoEnProgreso:          {EstadoResuelto, EstadoPendiente, EstadoCerrado, EstadoCancelado},
	EstadoResuelto:            {EstadoPendiente, EstadoCerrado, EstadoEnProgreso, EstadoCancelado},
	EstadoPendiente:           {EstadoEnProgreso, EstadoResuelto, EstadoCerrado, EstadoCancelado},
	EstadoPendienteAprobacion: {EstadoNuevo, EstadoRechazado, EstadoCancelado},
	EstadoCerrado:             {},
	EstadoCancelado:           {},
	EstadoRechazado:           {},
}

// TransicionValida reports whether the state machine admits current → next.
func TransicionValida(actual, siguiente Estado) bool {
	for _, candidata := range transicionesPermitidas[actual] {
		if candidata == siguiente {
			return true
		}
	}
	return false
}
