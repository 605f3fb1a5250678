package contexts

import (
	"context"
	"sync"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/common"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/models"
)

type InMemoryRepository struct {
	mu   sync.RWMutex
	rows map[string]*models.DecryptionContext
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{rows: make(map[string]*models.DecryptionContext)}
}

func cloneContext(dc *models.DecryptionContext) *models.DecryptionContext {
	dup := *dc
	dup.StateHash = make([]byte, len(dc.StateHash))
	copy(dup.StateHash, dc.StateHash)
	return &dup
}

func (r *InMemoryRepository) Create(ctx context.Context, dc *models.DecryptionContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[dc.RequestID] = cloneContext(dc)
	return nil
}

func (r *InMemoryRepository) Get(ctx context.Context, requestID string) (*models.DecryptionContext, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dc, ok := r.rows[requestID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneContext(dc), nil
}

func (r *InMemoryRepository) MarkProcessed(ctx context.Context, requestID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	dc, ok := r.rows[requestID]
	if !ok {
		return common.ErrNotFound
	}
	dc.Processed = true
	return nil
}
