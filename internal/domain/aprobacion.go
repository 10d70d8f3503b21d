package domain

import "time"

// AccionAprobacion captures a supervisor decision outcome.
type AccionAprobacion string

const (
	AccionAprobado  AccionAprobacion = "aprobado"
	AccionRechazado AccionAprobacion = "rechazado"
)

// Aprobacion records one supervisor decision on a ticket. Rows outlive later
// ticket mutations so the decision trail stays intact.
type Aprobacion struct {
	ID                  int64
	TicketID            int64
	SupervisorID        int64
	Accion              AccionAprobacion
	Motivo              string
	NotificacionEnviada bool
	CreatedAt           time.Time
}

// EstadisticasSupervisor aggregates decisions for one supervisor.
// PendientesGlobal counts every ticket awaiting approval, not only those the
// supervisor acted on: any supervisor can take any pending ticket.
type EstadisticasSupervisor struct {
	Total            int64
	Aprobados        int64
	Rechazados       int64
	PendientesGlobal int64
}

// HistorialAprobacion is one decision joined with ticket display fields for
// the supervisor dashboard.
type HistorialAprobacion struct {
	Aprobacion
	TicketTitulo string
	TicketEstado Estado
	Sucursal     string
}
