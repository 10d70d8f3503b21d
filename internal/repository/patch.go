package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gestion-soporte/mesa-ayuda/internal/domain"
)

// TicketPatch enumerates the updatable fields of a ticket. A nil field is
// absent from the update; the repository derives state-dependent side effects
// (assignment clearing, closure and reassignment stamps) from the fields that
// are present.
type TicketPatch struct {
	Titulo            *string
	Descripcion       *string
	Categoria         *domain.Categoria
	Prioridad         *domain.Prioridad
	Estado            *domain.Estado
	AsignadoID        *int64
	ReasignadoAID     *int64
	SupervisorID      *int64
	Sucursal          *string
	Adjuntos          []domain.Adjunto
	ReporteSupervisor *string
	Comentario        string
}

// buildUpdateSet translates a patch into SET clauses and ordered arguments.
// Placeholders start at $1; the caller appends the WHERE arguments after.
//
// Side effects encoded here, against the previous row state:
//   - estado = pendiente forces asignado_id to NULL in the same statement,
//     overriding any assignment carried by the patch;
//   - entering a closing state stamps closed_at, entering any other state
//     clears it, keeping closed_at in lockstep with estado;
//   - a reassignment target stamps reasignado_at;
//   - a non-empty comment overwrites comentarios (the append-only log lives
//     in the historial ledger);
//   - updated_at is always stamped.
func buildUpdateSet(patch TicketPatch, now time.Time) ([]string, []any, error) {
	var clauses []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if patch.Titulo != nil {
		add("titulo", *patch.Titulo)
	}
	if patch.Descripcion != nil {
		add("descripcion", *patch.Descripcion)
	}
	if patch.Categoria != nil {
		add("categoria", *patch.Categoria)
	}
	if patch.Prioridad != nil {
		add("prioridad", *patch.Prioridad)
	}
	if patch.Estado != nil {
		add("estado", *patch.Estado)
		if *patch.Estado == domain.EstadoPendiente {
			clauses = append(clauses, "asignado_id=NULL")
		}
		if patch.Estado.CierraTicket() {
			add("closed_at", now)
		} else {
			clauses = append(clauses, "closed_at=NULL")
		}
	}
	if patch.AsignadoID != nil && (patch.Estado == nil || *patch.Estado != domain.EstadoPendiente) {
		add("asignado_id", *patch.AsignadoID)
	}
	if patch.ReasignadoAID != nil {
		add("reasignado_a_id", *patch.ReasignadoAID)
		add("reasignado_at", now)
	}
	if patch.SupervisorID != nil {
		add("supervisor_id", *patch.SupervisorID)
	}
	if patch.Sucursal != nil {
		add("sucursal", *patch.Sucursal)
	}
	if patch.Adjuntos != nil {
		raw, err := json.Marshal(patch.Adjuntos)
		if err != nil {
			return nil, nil, err
		}
		add("adjuntos", raw)
	}
	if patch.ReporteSupervisor != nil {
		add("reporte_supervisor", *patch.ReporteSupervisor)
	}
	if patch.Comentario != "" {
		add("comentarios", patch.Comentario)
	}

	add("updated_at", now)
	return clauses, args, nil
}

// Vacio reports whether the patch carries no updatable field.
func (p TicketPatch) Vacio() bool {
	return p.Titulo == nil && p.Descripcion == nil && p.Categoria == nil &&
		p.Prioridad == nil && p.Estado == nil && p.AsignadoID == nil &&
		p.ReasignadoAID == nil && p.SupervisorID == nil && p.Sucursal == nil &&
		p.Adjuntos == nil && p.ReporteSupervisor == nil && p.Comentario == ""
}
