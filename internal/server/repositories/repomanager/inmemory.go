package repomanager

import (
	"context"
	"database/sql"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/dbx"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/repositories/contexts"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/repositories/records"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/repositories/state"
)

// InMemoryRepositoryManager hands out process-wide singleton repositories;
// the DBTX argument is ignored. State survives across invocations for the
// process lifetime, matching the persistence model without a database.
type InMemoryRepositoryManager struct {
	state    *state.InMemoryRepository
	records  *records.InMemoryRepository
	contexts *contexts.InMemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		state:    state.NewInMemoryRepository(),
		records:  records.NewInMemoryRepository(),
		contexts: contexts.NewInMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) State(db dbx.DBTX) state.Repository {
	return m.state
}

func (m *InMemoryRepositoryManager) Records(db dbx.DBTX) records.Repository {
	return m.records
}

func (m *InMemoryRepositoryManager) Contexts(db dbx.DBTX) contexts.Repository {
	return m.contexts
}
