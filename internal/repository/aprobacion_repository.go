package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestion-soporte/mesa-ayuda/internal/clock"
	"github.com/gestion-soporte/mesa-ayuda/internal/domain"
	apperrors "github.com/gestion-soporte/mesa-ayuda/pkg/util"
)

// AprobacionRepository records supervisor decisions independently of ticket
// mutation, so the decision trail survives later ticket updates.
type AprobacionRepository interface {
	Record(ctx context.Context, decision *domain.Aprobacion) error
	HistorialForSupervisor(ctx context.Context, supervisorID int64) ([]domain.HistorialAprobacion, error)
	StatsForSupervisor(ctx context.Context, supervisorID int64) (domain.EstadisticasSupervisor, error)
}

type aprobacionRepository struct {
	pool *pgxpool.Pool
	clk  clock.Clock
}

// NewAprobacionRepository builds the ledger.
func NewAprobacionRepository(pool *pgxpool.Pool, clk clock.Clock) AprobacionRepository {
	return &aprobacionRepository{pool: pool, clk: clk}
}

func (r *aprobacionRepository) Record(ctx context.Context, decision *domain.Aprobacion) error {
	decision.CreatedAt = r.clk.Now()

	const query = `
        INSERT INTO aprobaciones (ticket_id, supervisor_id, accion, motivo, notificacion_enviada, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	if err := r.pool.QueryRow(ctx, query,
		decision.TicketID,
		decision.SupervisorID,
		decision.Accion,
		decision.Motivo,
		decision.NotificacionEnviada,
		decision.CreatedAt,
	).Scan(&decision.ID); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// HistorialForSupervisor lists decisions joined with ticket display fields.
// Returns an empty slice when the ledger table is not yet provisioned so
// dashboards stay up.
func (r *aprobacionRepository) HistorialForSupervisor(ctx context.Context, supervisorID int64) ([]domain.HistorialAprobacion, error) {
	const query = `
        SELECT a.id, a.ticket_id, a.supervisor_id, a.accion, a.motivo, a.notificacion_enviada, a.created_at,
               t.titulo, t.estado, t.sucursal
        FROM aprobaciones a
        JOIN tickets t ON t.id = a.ticket_id
        WHERE a.supervisor_id=$1
        ORDER BY a.created_at DESC`
	rows, err := r.pool.Query(ctx, query, supervisorID)
	if err != nil {
		if tableMissing(err) {
			return []domain.HistorialAprobacion{}, nil
		}
		return nil, apperrors.NewInternalError(err)
	}
	defer rows.Close()

	result := []domain.HistorialAprobacion{}
	for rows.Next() {
		var item domain.HistorialAprobacion
		if err := rows.Scan(
			&item.ID,
			&item.TicketID,
			&item.SupervisorID,
			&item.Accion,
			&item.Motivo,
			&item.NotificacionEnviada,
			&item.CreatedAt,
			&item.TicketTitulo,
			&item.TicketEstado,
			&item.Sucursal,
		); err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return result, nil
}

// StatsForSupervisor aggregates the supervisor's decisions plus the global
// count of tickets awaiting approval. Zeroed results when the ledger is not
// yet provisioned.
func (r *aprobacionRepository) StatsForSupervisor(ctx context.Context, supervisorID int64) (domain.EstadisticasSupervisor, error) {
	var stats domain.EstadisticasSupervisor

	const decisionQuery = `
        SELECT COUNT(*) FILTER (WHERE accion='aprobado'),
               COUNT(*) FILTER (WHERE accion='rechazado')
        FROM aprobaciones WHERE supervisor_id=$1`
	if err := r.pool.QueryRow(ctx, decisionQuery, supervisorID).Scan(&stats.Aprobados, &stats.Rechazados); err != nil {
		if tableMissing(err) {
			return domain.EstadisticasSupervisor{}, nil
		}
		return stats, apperrors.NewInternalError(err)
	}
	stats.Total = stats.Aprobados + stats.Rechazados

	const pendingQuery = `SELECT COUNT(*) FROM tickets WHERE estado=$1`
	if err := r.pool.QueryRow(ctx, pendingQuery, domain.EstadoPendienteAprobacion).Scan(&stats.PendientesGlobal); err != nil {
		if tableMissing(err) {
			return stats, nil
		}
		return stats, apperrors.NewInternalError(err)
	}
	return stats, nil
}

// tableMissing detects postgres undefined_table, the signal that a ledger has
// not been provisioned yet.
func tableMissing(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}
