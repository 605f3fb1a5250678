package records

import (
	"context"
	"fmt"
	"sync"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/common"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/models"
)

type InMemoryRepository struct {
	mu   sync.RWMutex
	rows map[string]*models.EncryptedRecord
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{rows: make(map[string]*models.EncryptedRecord)}
}

func rowKey(batchID int64, providerID string) string {
	return fmt.Sprintf("%d/%s", batchID, providerID)
}

func cloneRecord(rec *models.EncryptedRecord) *models.EncryptedRecord {
	dup := *rec
	for _, f := range []*[]byte{
		&dup.DailyCalories, &dup.ProteinGrams, &dup.CarbGrams, &dup.FatGrams,
		&dup.WaterML, &dup.ActivityLevel, &dup.HealthGoal, &dup.AllergyMask,
	} {
		b := make([]byte, len(*f))
		copy(b, *f)
		*f = b
	}
	return &dup
}

func (r *InMemoryRepository) Upsert(ctx context.Context, rec *models.EncryptedRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[rowKey(rec.BatchID, rec.ProviderID)] = cloneRecord(rec)
	return nil
}

func (r *InMemoryRepository) Get(ctx context.Context, batchID int64, providerID string) (*models.EncryptedRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.rows[rowKey(batchID, providerID)]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneRecord(rec), nil
}
