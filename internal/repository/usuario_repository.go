package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestion-soporte/mesa-ayuda/internal/domain"
	apperrors "github.com/gestion-soporte/mesa-ayuda/pkg/util"
)

// UsuarioRepository handles persistence for user accounts. The engine only
// needs reads: branch resolution, assignment targets, identity lookups.
type UsuarioRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Usuario, error)
	GetByEmail(ctx context.Context, email string) (*domain.Usuario, error)
	ListSoporteActivos(ctx context.Context) ([]domain.Usuario, error)
}

type usuarioRepository struct {
	pool *pgxpool.Pool
}

// NewUsuarioRepository instantiates the repository.
func NewUsuarioRepository(pool *pgxpool.Pool) UsuarioRepository {
	return &usuarioRepository{pool: pool}
}

const usuarioColumns = `id, nombre, email, password_hash, rol, sucursal, activo, created_at, updated_at`

func (r *usuarioRepository) GetByID(ctx context.Context, id int64) (*domain.Usuario, error) {
	query := `SELECT ` + usuarioColumns + ` FROM usuarios WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *usuarioRepository) GetByEmail(ctx context.Context, email string) (*domain.Usuario, error) {
	query := `SELECT ` + usuarioColumns + ` FROM usuarios WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

// ListSoporteActivos returns active support users ordered by id, the order
// the first-found assignment policy walks.
func (r *usuarioRepository) ListSoporteActivos(ctx context.Context) ([]domain.Usuario, error) {
	query := `SELECT ` + usuarioColumns + ` FROM usuarios WHERE rol=$1 AND activo ORDER BY id ASC`
	rows, err := r.pool.Query(ctx, query, domain.RolSoporte)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	defer rows.Close()

	var result []domain.Usuario
	for rows.Next() {
		var usuario domain.Usuario
		if err := scanUsuario(rows, &usuario); err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		result = append(result, usuario)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return result, nil
}

func (r *usuarioRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Usuario, error) {
	var usuario domain.Usuario
	if err := scanUsuario(r.pool.QueryRow(ctx, query, arg), &usuario); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("usuario", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return &usuario, nil
}

func scanUsuario(row pgx.Row, usuario *domain.Usuario) error {
	return row.Scan(
		&usuario.ID,
		&usuario.Nombre,
		&usuario.Email,
		&usuario.PasswordHash,
		&usuario.Rol,
		&usuario.Sucursal,
		&usuario.Activo,
		&usuario.CreatedAt,
		&usuario.UpdatedAt,
	)
}
