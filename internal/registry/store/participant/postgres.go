package participant

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

// PostgresStore persists participants in PostgreSQL.
//
// Name uniqueness rides on the unique index; the institution foreign key acts
// as a backstop behind the service-layer existence check.
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

func (s *PostgresStore) CreateIfNameAvailable(ctx context.Context, p *models.Participant) error {
	query, args, err := s.sb.Insert("participants").
		Columns("id", "institution_id", "name", "host", "type", "status", "api_key", "created_at", "updated_at").
		Values(uuid.UUID(p.ID), uuid.UUID(p.InstitutionID), p.Name, p.Host, string(p.Type), string(p.Status), p.APIKey, p.CreatedAt, p.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build participant insert: %w", err)
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		if store.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		if store.IsForeignKeyViolation(err) {
			// Institution vanished between the service's existence check and
			// this insert.
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, p *models.Participant) error {
	query, args, err := s.sb.Update("participants").
		Set("institution_id", uuid.UUID(p.InstitutionID)).
		Set("name", p.Name).
		Set("host", p.Host).
		Set("type", string(p.Type)).
		Set("status", string(p.Status)).
		Set("api_key", p.APIKey).
		Set("updated_at", p.UpdatedAt).
		Where(sq.Eq{"id": uuid.UUID(p.ID)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build participant update: %w", err)
	}
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		if store.IsForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("update participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, partID id.ParticipantID) (*models.Participant, error) {
	query, args, err := s.selectParticipants().
		Where(sq.Eq{"id": uuid.UUID(partID)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build participant select: %w", err)
	}
	p, err := scanParticipant(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find participant: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) FindByAPIKey(ctx context.Context, key string) (*models.Participant, error) {
	query, args, err := s.selectParticipants().
		Where(sq.Eq{"api_key": key}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build participant key select: %w", err)
	}
	p, err := scanParticipant(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find participant by key: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) List(ctx context.Context, filter models.ParticipantFilter) ([]*models.Participant, error) {
	builder := s.selectParticipants().OrderBy("name")
	if len(filter.Types) > 0 {
		types := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			types[i] = string(t)
		}
		builder = builder.Where(sq.Eq{"type": types})
	}
	if !filter.IncludeInactive {
		builder = builder.Where(sq.Eq{"status": string(models.ParticipantStatusActive)})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build participant list: %w", err)
	}
	return s.queryParticipants(ctx, query, args)
}

func (s *PostgresStore) ListByInstitution(ctx context.Context, instID id.InstitutionID) ([]*models.Participant, error) {
	query, args, err := s.selectParticipants().
		Where(sq.Eq{"institution_id": uuid.UUID(instID)}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build participant institution list: %w", err)
	}
	return s.queryParticipants(ctx, query, args)
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, partID id.ParticipantID, status models.ParticipantStatus) (*models.Participant, error) {
	query, args, err := s.sb.Update("participants").
		Set("status", string(status)).
		Where(sq.Eq{"id": uuid.UUID(partID)}).
		Suffix("RETURNING id, institution_id, name, host, type, status, api_key, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build participant status update: %w", err)
	}
	p, err := scanParticipant(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("update participant status: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) Delete(ctx context.Context, partID id.ParticipantID) (bool, error) {
	query, args, err := s.sb.Delete("participants").
		Where(sq.Eq{"id": uuid.UUID(partID)}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build participant delete: %w", err)
	}
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete participant: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) queryParticipants(ctx context.Context, query string, args []any) ([]*models.Participant, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	var out []*models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) selectParticipants() sq.SelectBuilder {
	return s.sb.Select("id", "institution_id", "name", "host", "type", "status", "api_key", "created_at", "updated_at").
		From("participants")
}

func scanParticipant(row pgx.Row) (*models.Participant, error) {
	var (
		p      models.Participant
		rawID  uuid.UUID
		instID uuid.UUID
		ptype  string
		status string
	)
	if err := row.Scan(&rawID, &instID, &p.Name, &p.Host, &ptype, &status, &p.APIKey, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.ID = id.ParticipantID(rawID)
	p.InstitutionID = id.InstitutionID(instID)
	p.Type = models.ParticipantType(ptype)
	p.Status = models.ParticipantStatus(status)
	return &p, nil
}
