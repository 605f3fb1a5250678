package contexts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/common"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/dbx"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/models"
)

// PostgresRepository implements decryption-context storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, dc *models.DecryptionContext) error {
	query := `
		INSERT INTO decryption_contexts (request_id, batch_id, requester_id, state_hash, processed)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.db.ExecContext(ctx, query,
		dc.RequestID, dc.BatchID, dc.RequesterID, dc.StateHash, dc.Processed)
	if err != nil {
		return fmt.Errorf("failed to create decryption context: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, requestID string) (*models.DecryptionContext, error) {
	query := `
		SELECT batch_id, requester_id, state_hash, processed
		FROM decryption_contexts WHERE request_id = $1;
	`
	dc := &models.DecryptionContext{RequestID: requestID}
	err := r.db.QueryRowContext(ctx, query, requestID).Scan(
		&dc.BatchID, &dc.RequesterID, &dc.StateHash, &dc.Processed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select decryption context: %w", err)
	}
	return dc, nil
}

func (r *PostgresRepository) MarkProcessed(ctx context.Context, requestID string) error {
	query := `UPDATE decryption_contexts SET processed = TRUE WHERE request_id = $1;`

	res, err := r.db.ExecContext(ctx, query, requestID)
	if err != nil {
		return fmt.Errorf("failed to mark context processed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
