package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/clinicore/treasury-backend/internal/apperrors"
	"github.com/clinicore/treasury-backend/internal/core/domain"
	portsrepo "github.com/clinicore/treasury-backend/internal/core/ports/repositories"
	"github.com/clinicore/treasury-backend/internal/models"
	"github.com/clinicore/treasury-backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCaisseRepository struct {
	BaseRepository
}

// newPgxCaisseRepository creates a new repository for register data.
func newPgxCaisseRepository(pool *pgxpool.Pool) portsrepo.CaisseRepositoryFacade {
	return &PgxCaisseRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.CaisseRepositoryFacade = (*PgxCaisseRepository)(nil)

// SaveCaisse persists a new caisse.
func (r *PgxCaisseRepository) SaveCaisse(ctx context.Context, caisse domain.Caisse) error {
	modelCaisse := mapping.ToModelCaisse(caisse)
	query := `
		INSERT INTO caisses (caisse_id, name, location, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelCaisse.CaisseID,
		modelCaisse.Name,
		modelCaisse.Location,
		modelCaisse.IsActive,
		modelCaisse.CreatedAt,
		modelCaisse.CreatedBy,
		modelCaisse.LastUpdatedAt,
		modelCaisse.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to insert caisse "+modelCaisse.CaisseID, err)
	}
	return nil
}

// FindCaisseByID retrieves a caisse by its ID.
func (r *PgxCaisseRepository) FindCaisseByID(ctx context.Context, caisseID string) (*domain.Caisse, error) {
	query := `
		SELECT caisse_id, name, location, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM caisses
		WHERE caisse_id = $1;
	`
	var m models.Caisse
	err := r.Pool.QueryRow(ctx, query, caisseID).Scan(
		&m.CaisseID,
		&m.Name,
		&m.Location,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find caisse by ID "+caisseID, err)
	}

	domainCaisse := mapping.ToDomainCaisse(m)
	return &domainCaisse, nil
}

// ListCaisses retrieves all caisses, active first, then by name.
func (r *PgxCaisseRepository) ListCaisses(ctx context.Context) ([]domain.Caisse, error) {
	query := `
		SELECT caisse_id, name, location, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM caisses
		ORDER BY is_active DESC, name;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query caisses", err)
	}
	defer rows.Close()

	caisses := []domain.Caisse{}
	for rows.Next() {
		var m models.Caisse
		err := rows.Scan(
			&m.CaisseID,
			&m.Name,
			&m.Location,
			&m.IsActive,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan caisse row", err)
		}
		caisses = append(caisses, mapping.ToDomainCaisse(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating caisse rows", err)
	}

	return caisses, nil
}

// DeactivateCaisse marks a caisse as inactive.
func (r *PgxCaisseRepository) DeactivateCaisse(ctx context.Context, caisseID string, userID string, now time.Time) error {
	query := `
		UPDATE caisses
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE caisse_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, caisseID, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to deactivate caisse "+caisseID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
