package repomanager

import (
	"context"
	"database/sql"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/dbx"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/migrations"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/repositories/contexts"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/repositories/records"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/repositories/state"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct{}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return err
	}

	return nil
}

func (m *PostgresRepositoryManager) State(db dbx.DBTX) state.Repository {
	return state.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Records(db dbx.DBTX) records.Repository {
	return records.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Contexts(db dbx.DBTX) contexts.Repository {
	return contexts.NewPostgresRepository(db)
}
