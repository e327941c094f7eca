package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"proofwall/internal/content/models"
	"proofwall/pkg/domain"
	"proofwall/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresStore persists content records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

const recordColumns = `id, reference, content_hash, proof_job_id, verified, verifier_result, created_at, verified_at`

func (s *PostgresStore) Create(ctx context.Context, record *models.Record) error {
	if record == nil {
		return fmt.Errorf("content record is required")
	}
	query := `
		INSERT INTO contents (id, reference, content_hash, proof_job_id, verified, created_at)
		VALUES ($1, $2, $3, $4, false, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(record.ID),
		record.Reference,
		record.ContentHash,
		record.ProofJobID,
		record.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create content: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.ContentID) (*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM contents WHERE id = $1`
	record, err := scanRecord(s.db.QueryRowContext(ctx, query, uuid.UUID(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find content: %w", err)
	}
	return record, nil
}

// MarkVerified flips the flag with a conditional update so concurrent writers
// cannot verify the same record twice.
func (s *PostgresStore) MarkVerified(ctx context.Context, id domain.ContentID, result json.RawMessage, at time.Time) (*models.Record, error) {
	query := `
		UPDATE contents
		SET verified = true, verifier_result = $2, verified_at = $3
		WHERE id = $1 AND verified = false
		RETURNING ` + recordColumns
	record, err := scanRecord(s.db.QueryRowContext(ctx, query, uuid.UUID(id), nullableJSON(result), at))
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("mark content verified: %w", err)
	}

	if _, err := s.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, sentinel.ErrInvalidState
}

func scanRecord(row rowScanner) (*models.Record, error) {
	var (
		id         uuid.UUID
		record     models.Record
		result     []byte
		verifiedAt sql.NullTime
	)
	if err := row.Scan(&id, &record.Reference, &record.ContentHash, &record.ProofJobID,
		&record.Verified, &result, &record.CreatedAt, &verifiedAt); err != nil {
		return nil, err
	}
	record.ID = domain.ContentID(id)
	if len(result) > 0 {
		record.VerifierResult = json.RawMessage(result)
	}
	if verifiedAt.Valid {
		at := verifiedAt.Time
		record.VerifiedAt = &at
	}
	return &record, nil
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
