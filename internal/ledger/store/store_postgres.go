package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"proofwall/internal/ledger/models"
	"proofwall/pkg/domain"
	"proofwall/pkg/platform/sentinel"
)

// PostgresStore persists grants in PostgreSQL. Order comes from the BIGSERIAL seq column.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, grant *models.Grant) error {
	if grant == nil {
		return fmt.Errorf("grant is required")
	}
	query := `
		INSERT INTO access_grants (id, content_id, payer, method, tier, price, receipt, client, granted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(grant.ID),
		uuid.UUID(grant.ContentID),
		grant.Payer,
		grant.Method,
		grant.Tier,
		grant.Price,
		grant.Receipt,
		grant.Client,
		grant.Timestamp,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("append grant: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListFor(ctx context.Context, contentID domain.ContentID) ([]models.Grant, error) {
	query := `
		SELECT id, content_id, payer, method, tier, price, receipt, client, granted_at
		FROM access_grants
		WHERE content_id = $1
		ORDER BY seq
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(contentID))
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	defer rows.Close()

	grants := []models.Grant{}
	for rows.Next() {
		var (
			g       models.Grant
			id, cid uuid.UUID
		)
		if err := rows.Scan(&id, &cid, &g.Payer, &g.Method, &g.Tier, &g.Price, &g.Receipt, &g.Client, &g.Timestamp); err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		g.ID = domain.GrantID(id)
		g.ContentID = domain.ContentID(cid)
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grants: %w", err)
	}
	return grants, nil
}
