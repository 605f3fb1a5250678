// Package contexts persists decryption contexts, keyed by the
// oracle-assigned request id.
package contexts

import (
	"context"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/models"
)

type Repository interface {
	// Create stores a context exactly once, at request time.
	Create(ctx context.Context, dc *models.DecryptionContext) error
	// Get returns common.ErrNotFound for an unknown request id.
	Get(ctx context.Context, requestID string) (*models.DecryptionContext, error)
	// MarkProcessed flips the processed flag; it is never reset.
	MarkProcessed(ctx context.Context, requestID string) error
}
