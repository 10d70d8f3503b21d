package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/gestion-soporte/mesa-ayuda/internal/clock"
	"github.com/gestion-soporte/mesa-ayuda/internal/domain"
	apperrors "github.com/gestion-soporte/mesa-ayuda/pkg/util"
)

// Viewer scopes reads to what the requesting actor may see. A nil viewer
// means unrestricted access.
type Viewer struct {
	ID  int64
	Rol domain.Rol
}

// TicketFilter captures listing parameters.
type TicketFilter struct {
	Estados     []domain.Estado
	Prioridades []domain.Prioridad
	Categorias  []domain.Categoria
	Sucursal    *string
	CreadoDesde *time.Time
	CreadoHasta *time.Time
	Limit       int
	Offset      int
}

// TicketRepository is the only component allowed to mutate ticket rows. It
// encodes the state-dependent side effects of an update inside one
// transaction so callers cannot leave a row inconsistent.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64, viewer *Viewer) (*domain.Ticket, error)
	Update(ctx context.Context, id int64, patch TicketPatch, actor *Viewer) (*domain.Ticket, error)
	Delete(ctx context.Context, id int64, actorID int64) (bool, error)
	ListForUser(ctx context.Context, userID int64, filter TicketFilter) ([]domain.Ticket, error)
	ListAll(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	CountForUser(ctx context.Context, userID int64) (domain.StatsSummary, error)
}

type ticketRepository struct {
	pool      *pgxpool.Pool
	historial HistorialRepository
	clk       clock.Clock
	logger    *zap.Logger
}

// NewTicketRepository instantiates the repository. The historial ledger is
// written after the ticket transaction commits; its failures never surface
// to callers.
func NewTicketRepository(pool *pgxpool.Pool, historial HistorialRepository, clk clock.Clock, logger *zap.Logger) TicketRepository {
	return &ticketRepository{pool: pool, historial: historial, clk: clk, logger: logger}
}

const ticketColumns = `id, titulo, descripcion, categoria, prioridad, estado,
       creador_id, asignado_id, reasignado_a_id, supervisor_id, sucursal,
       adjuntos, comentarios, reporte_supervisor,
       created_at, updated_at, closed_at, reasignado_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	if strings.TrimSpace(ticket.Titulo) == "" {
		return apperrors.NewValidationError("titulo requerido", nil)
	}
	if ticket.Estado == "" {
		ticket.Estado = domain.EstadoNuevo
	}
	if ticket.Prioridad == "" {
		ticket.Prioridad = domain.PrioridadMedia
	}
	if ticket.Categoria == "" {
		ticket.Categoria = domain.CategoriaOtro
	}

	adjuntos, err := json.Marshal(adjuntosOrEmpty(ticket.Adjuntos))
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	now := r.clk.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now

	const query = `
        INSERT INTO tickets (titulo, descripcion, categoria, prioridad, estado,
                             creador_id, asignado_id, sucursal, adjuntos, comentarios,
                             created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id`
	if err := r.pool.QueryRow(ctx, query,
		ticket.Titulo,
		ticket.Descripcion,
		ticket.Categoria,
		ticket.Prioridad,
		ticket.Estado,
		ticket.CreadorID,
		ticket.AsignadoID,
		ticket.Sucursal,
		adjuntos,
		ticket.Comentarios,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	).Scan(&ticket.ID); err != nil {
		return apperrors.NewInternalError(err)
	}

	r.appendHistorial(ctx, ticket.ID, nil, ticket.Estado, ticket.CreadorID, "")
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64, viewer *Viewer) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	args := []any{id}
	if restricted(viewer) {
		args = append(args, viewer.ID)
		query += ` AND (creador_id=$2 OR asignado_id=$2)`
	}
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return ticket, nil
}

// Update applies the patch inside one transaction: the current row is
// re-read under lock so side effects are computed against the previous
// state, then the SET clauses built from the patch are applied and the row
// committed. Only after commit, and only when the state actually changed, a
// history append is attempted.
func (r *ticketRepository) Update(ctx context.Context, id int64, patch TicketPatch, actor *Viewer) (*domain.Ticket, error) {
	if patch.Vacio() {
		return nil, apperrors.NewValidationError("sin campos para actualizar", nil)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	selectQuery := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	selectArgs := []any{id}
	if restricted(actor) {
		selectArgs = append(selectArgs, actor.ID)
		selectQuery += ` AND (creador_id=$2 OR asignado_id=$2)`
	}
	selectQuery += ` FOR UPDATE`

	previo, err := scanTicket(tx.QueryRow(ctx, selectQuery, selectArgs...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}

	clauses, args, err := buildUpdateSet(patch, r.clk.Now())
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	args = append(args, id)
	updateQuery := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=$%d RETURNING %s`,
		strings.Join(clauses, ", "), len(args), ticketColumns)

	actualizado, err := scanTicket(tx.QueryRow(ctx, updateQuery, args...))
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	// The ticket row is the source of truth; the historial is best effort
	// and may miss an entry if the process dies right here.
	if patch.Estado != nil && previo.Estado != actualizado.Estado {
		anterior := previo.Estado
		// usuario_id 0 marks an unattributed internal update; the services
		// always pass the acting viewer.
		var actorID int64
		if actor != nil {
			actorID = actor.ID
		}
		r.appendHistorial(ctx, id, &anterior, actualizado.Estado, actorID, patch.Comentario)
	}
	return actualizado, nil
}

func (r *ticketRepository) Delete(ctx context.Context, id int64, actorID int64) (bool, error) {
	var creadorID int64
	err := r.pool.QueryRow(ctx, `SELECT creador_id FROM tickets WHERE id=$1`, id).Scan(&creadorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return false, apperrors.NewInternalError(err)
	}
	if creadorID != actorID {
		return false, apperrors.NewPermissionError("solo el creador puede eliminar el ticket")
	}

	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return false, apperrors.NewInternalError(err)
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *ticketRepository) ListForUser(ctx context.Context, userID int64, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"(creador_id=$1 OR asignado_id=$1)"}
	args := []any{userID}
	clauses, args = appendFilterClauses(clauses, args, filter)
	return r.list(ctx, clauses, args, filter)
}

func (r *ticketRepository) ListAll(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}
	clauses, args = appendFilterClauses(clauses, args, filter)
	return r.list(ctx, clauses, args, filter)
}

func (r *ticketRepository) list(ctx context.Context, clauses []string, args []any, filter TicketFilter) ([]domain.Ticket, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) CountForUser(ctx context.Context, userID int64) (domain.StatsSummary, error) {
	const query = `
        SELECT estado, prioridad, COUNT(*)
        FROM tickets
        WHERE creador_id=$1 OR asignado_id=$1
        GROUP BY estado, prioridad`

	stats := domain.NewStatsSummary()
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return stats, apperrors.NewInternalError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var estado domain.Estado
		var prioridad domain.Prioridad
		var count int64
		if err := rows.Scan(&estado, &prioridad, &count); err != nil {
			return stats, apperrors.NewInternalError(err)
		}
		stats.Total += count
		stats.PorEstado[estado] += count
		stats.PorPrioridad[prioridad] += count
	}
	if err := rows.Err(); err != nil {
		return stats, apperrors.NewInternalError(err)
	}
	return stats, nil
}

func (r *ticketRepository) appendHistorial(ctx context.Context, ticketID int64, anterior *domain.Estado, nuevo domain.Estado, usuarioID int64, comentario string) {
	if r.historial == nil {
		return
	}
	if _, err := r.historial.Append(ctx, ticketID, anterior, nuevo, usuarioID, comentario); err != nil {
		r.logger.Error("historial append failed",
			zap.Int64("ticket_id", ticketID),
			zap.String("estado_nuevo", string(nuevo)),
			zap.Error(err))
	}
}

func restricted(viewer *Viewer) bool {
	return viewer != nil && !viewer.Rol.EsElevado()
}

func appendFilterClauses(clauses []string, args []any, filter TicketFilter) ([]string, []any) {
	if len(filter.Estados) > 0 {
		placeholders := make([]string, len(filter.Estados))
		for i, estado := range filter.Estados {
			args = append(args, estado)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("estado IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Prioridades) > 0 {
		placeholders := make([]string, len(filter.Prioridades))
		for i, prioridad := range filter.Prioridades {
			args = append(args, prioridad)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("prioridad IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Categorias) > 0 {
		placeholders := make([]string, len(filter.Categorias))
		for i, categoria := range filter.Categorias {
			args = append(args, categoria)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("categoria IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Sucursal != nil {
		args = append(args, *filter.Sucursal)
		clauses = append(clauses, fmt.Sprintf("sucursal=$%d", len(args)))
	}
	if filter.CreadoDesde != nil {
		args = append(args, *filter.CreadoDesde)
		clauses = append(clauses, fmt.Sprintf("created_at>=$%d", len(args)))
	}
	if filter.CreadoHasta != nil {
		args = append(args, *filter.CreadoHasta)
		clauses = append(clauses, fmt.Sprintf("created_at<=$%d", len(args)))
	}
	return clauses, args
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	var adjuntos []byte
	if err := row.Scan(
		&ticket.ID,
		&ticket.Titulo,
		&ticket.Descripcion,
		&ticket.Categoria,
		&ticket.Prioridad,
		&ticket.Estado,
		&ticket.CreadorID,
		&ticket.AsignadoID,
		&ticket.ReasignadoAID,
		&ticket.SupervisorID,
		&ticket.Sucursal,
		&adjuntos,
		&ticket.Comentarios,
		&ticket.ReporteSupervisor,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ClosedAt,
		&ticket.ReasignadoAt,
	); err != nil {
		return nil, err
	}
	if len(adjuntos) > 0 {
		if err := json.Unmarshal(adjuntos, &ticket.Adjuntos); err != nil {
			return nil, err
		}
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		result = append(result, *ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return result, nil
}

func adjuntosOrEmpty(adjuntos []domain.Adjunto) []domain.Adjunto {
	if adjuntos == nil {
		return []domain.Adjunto{}
	}
	return adjuntos
}
