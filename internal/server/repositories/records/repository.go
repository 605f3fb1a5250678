// Package records persists encrypted provider submissions, keyed by
// (batch, provider).
package records

import (
	"context"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/models"
)

type Repository interface {
	// Upsert overwrites any prior record from the same provider in the
	// same batch (last write wins).
	Upsert(ctx context.Context, rec *models.EncryptedRecord) error
	// Get returns common.ErrNotFound when the provider never submitted
	// into the batch.
	Get(ctx context.Context, batchID int64, providerID string) (*models.EncryptedRecord, error)
}
