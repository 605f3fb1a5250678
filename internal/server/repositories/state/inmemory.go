package state

import (
	"context"
	"sync"
	"time"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/common"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/models"
)

// InMemoryRepository keeps the lifecycle state in process memory. It backs
// tests and single-node deployments without a database.
type InMemoryRepository struct {
	mu        sync.RWMutex
	state     *models.SystemState
	providers map[string]struct{}
	stamps    map[string]time.Time
	processed map[int64]struct{}
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		providers: make(map[string]struct{}),
		stamps:    make(map[string]time.Time),
		processed: make(map[int64]struct{}),
	}
}

func stampKey(actorID string, track models.CooldownTrack) string {
	return actorID + "/" + string(track)
}

func (r *InMemoryRepository) Load(ctx context.Context) (*models.SystemState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.state == nil {
		return nil, common.ErrNotFound
	}
	st := *r.state
	return &st, nil
}

func (r *InMemoryRepository) Save(ctx context.Context, st *models.SystemState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	dup := *st
	r.state = &dup
	return nil
}

func (r *InMemoryRepository) IsProvider(ctx context.Context, actorID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[actorID]
	return ok, nil
}

func (r *InMemoryRepository) AddProvider(ctx context.Context, actorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[actorID] = struct{}{}
	return nil
}

func (r *InMemoryRepository) RemoveProvider(ctx context.Context, actorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.providers, actorID)
	return nil
}

func (r *InMemoryRepository) LastAction(ctx context.Context, actorID string, track models.CooldownTrack) (time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stamps[stampKey(actorID, track)], nil
}

func (r *InMemoryRepository) SetLastAction(ctx context.Context, actorID string, track models.CooldownTrack, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stamps[stampKey(actorID, track)] = at
	return nil
}

func (r *InMemoryRepository) IsProcessed(ctx context.Context, batchID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.processed[batchID]
	return ok, nil
}

func (r *InMemoryRepository) MarkProcessed(ctx context.Context, batchID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processed[batchID] = struct{}{}
	return nil
}
