package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/common"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/dbx"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/models"
)

// PostgresRepository implements record storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, rec *models.EncryptedRecord) error {
	query := `
		INSERT INTO batch_records (batch_id, provider_id, daily_calories, protein_grams, carb_grams, fat_grams, water_ml, activity_level, health_goal, allergy_mask)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (batch_id, provider_id)
		DO UPDATE SET
			daily_calories = EXCLUDED.daily_calories,
			protein_grams = EXCLUDED.protein_grams,
			carb_grams = EXCLUDED.carb_grams,
			fat_grams = EXCLUDED.fat_grams,
			water_ml = EXCLUDED.water_ml,
			activity_level = EXCLUDED.activity_level,
			health_goal = EXCLUDED.health_goal,
			allergy_mask = EXCLUDED.allergy_mask;
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.BatchID, rec.ProviderID,
		rec.DailyCalories, rec.ProteinGrams, rec.CarbGrams, rec.FatGrams,
		rec.WaterML, rec.ActivityLevel, rec.HealthGoal, rec.AllergyMask)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, batchID int64, providerID string) (*models.EncryptedRecord, error) {
	query := `
		SELECT daily_calories, protein_grams, carb_grams, fat_grams, water_ml, activity_level, health_goal, allergy_mask
		FROM batch_records WHERE batch_id = $1 AND provider_id = $2;
	`
	rec := &models.EncryptedRecord{BatchID: batchID, ProviderID: providerID}
	err := r.db.QueryRowContext(ctx, query, batchID, providerID).Scan(
		&rec.DailyCalories, &rec.ProteinGrams, &rec.CarbGrams, &rec.FatGrams,
		&rec.WaterML, &rec.ActivityLevel, &rec.HealthGoal, &rec.AllergyMask,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select record: %w", err)
	}
	return rec, nil
}
