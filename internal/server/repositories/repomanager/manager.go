// Package repomanager groups the repositories behind one factory so the
// engine can bind them either to the shared connection or to a
// per-invocation transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/dbx"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/repositories/contexts"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/repositories/records"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/repositories/state"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	State(db dbx.DBTX) state.Repository
	Records(db dbx.DBTX) records.Repository
	Contexts(db dbx.DBTX) contexts.Repository
}
