package institution

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"botregistry/internal/registry/models"
	"botregistry/internal/registry/store"
	id "botregistry/pkg/domain"
	"botregistry/pkg/platform/sentinel"
)

// PostgresStore persists institutions in PostgreSQL.
//
// Name uniqueness is enforced by the unique index rather than a pre-check, so
// concurrent same-name creates resolve to exactly one winner.
type PostgresStore struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (s *PostgresStore) CreateIfNameAvailable(ctx context.Context, inst *models.Institution) error {
	query, args, err := s.sb.Insert("institutions").
		Columns("id", "name", "status", "created_at", "updated_at").
		Values(uuid.UUID(inst.ID), inst.Name, string(inst.Status), inst.CreatedAt, inst.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build institution insert: %w", err)
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		if store.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert institution: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, inst *models.Institution) error {
	query, args, err := s.sb.Update("institutions").
		Set("name", inst.Name).
		Set("status", string(inst.Status)).
		Set("updated_at", inst.UpdatedAt).
		Where(sq.Eq{"id": uuid.UUID(inst.ID)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build institution update: %w", err)
	}
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("update institution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, instID id.InstitutionID) (*models.Institution, error) {
	query, args, err := s.selectInstitutions().
		Where(sq.Eq{"id": uuid.UUID(instID)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build institution select: %w", err)
	}
	row := s.pool.QueryRow(ctx, query, args...)
	inst, err := scanInstitution(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find institution: %w", err)
	}
	return inst, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Institution, error) {
	query, args, err := s.selectInstitutions().OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build institution list: %w", err)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list institutions: %w", err)
	}
	defer rows.Close()

	var out []*models.Institution
	for rows.Next() {
		inst, err := scanInstitution(rows)
		if err != nil {
			return nil, fmt.Errorf("scan institution: %w", err)
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, instID id.InstitutionID) (bool, error) {
	query, args, err := s.sb.Delete("institutions").
		Where(sq.Eq{"id": uuid.UUID(instID)}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build institution delete: %w", err)
	}
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		if store.IsForeignKeyViolation(err) {
			// A participant was attached between the service's dependent
			// check and this delete; surface it as the same conflict.
			return false, sentinel.ErrConflict
		}
		return false, fmt.Errorf("delete institution: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) selectInstitutions() sq.SelectBuilder {
	return s.sb.Select("id", "name", "status", "created_at", "updated_at").
		From("institutions")
}

func scanInstitution(row pgx.Row) (*models.Institution, error) {
	var (
		inst   models.Institution
		rawID  uuid.UUID
		status string
	)
	if err := row.Scan(&rawID, &inst.Name, &status, &inst.CreatedAt, &inst.UpdatedAt); err != nil {
		return nil, err
	}
	inst.ID = id.InstitutionID(rawID)
	inst.Status = models.InstitutionStatus(status)
	return &inst, nil
}
