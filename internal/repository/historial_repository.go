package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestion-soporte/mesa-ayuda/internal/clock"
	"github.com/gestion-soporte/mesa-ayuda/internal/domain"
	apperrors "github.com/gestion-soporte/mesa-ayuda/pkg/util"
)

// HistorialRepository stores the append-only transition audit trail. Rows are
// never updated or deleted.
type HistorialRepository interface {
	Append(ctx context.Context, ticketID int64, anterior *domain.Estado, nuevo domain.Estado, usuarioID int64, comentario string) (*domain.HistorialEntry, error)
	ListForTicket(ctx context.Context, ticketID int64) ([]domain.HistorialEntry, error)
}

type historialRepository struct {
	pool *pgxpool.Pool
	clk  clock.Clock
}

// NewHistorialRepository builds the ledger.
func NewHistorialRepository(pool *pgxpool.Pool, clk clock.Clock) HistorialRepository {
	return &historialRepository{pool: pool, clk: clk}
}

func (r *historialRepository) Append(ctx context.Context, ticketID int64, anterior *domain.Estado, nuevo domain.Estado, usuarioID int64, comentario string) (*domain.HistorialEntry, error) {
	entry := &domain.HistorialEntry{
		TicketID:       ticketID,
		EstadoAnterior: anterior,
		EstadoNuevo:    nuevo,
		UsuarioID:      usuarioID,
		Comentario:     comentario,
		CreatedAt:      r.clk.Now(),
	}

	const query = `
        INSERT INTO ticket_historial (ticket_id, estado_anterior, estado_nuevo, usuario_id, comentario, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	if err := r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.EstadoAnterior,
		entry.EstadoNuevo,
		entry.UsuarioID,
		entry.Comentario,
		entry.CreatedAt,
	).Scan(&entry.ID); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return entry, nil
}

func (r *historialRepository) ListForTicket(ctx context.Context, ticketID int64) ([]domain.HistorialEntry, error) {
	const query = `
        SELECT id, ticket_id, estado_anterior, estado_nuevo, usuario_id, comentario, created_at
        FROM ticket_historial WHERE ticket_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	defer rows.Close()

	var result []domain.HistorialEntry
	for rows.Next() {
		var entry domain.HistorialEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.EstadoAnterior,
			&entry.EstadoNuevo,
			&entry.UsuarioID,
			&entry.Comentario,
			&entry.CreatedAt,
		); err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return result, nil
}
