package contexts

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/common"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)INSERT\s+INTO\s+decryption_contexts\s*\(request_id,\s*batch_id,\s*requester_id,\s*state_hash,\s*processed\)`

	mock.ExpectExec(q).
		WithArgs("req-1", int64(2), "p1", []byte("hash"), false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.DecryptionContext{
		RequestID:   "req-1",
		BatchID:     2,
		RequesterID: "p1",
		StateHash:   []byte("hash"),
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
}

func TestGet_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)SELECT\s+batch_id,\s*requester_id,\s*state_hash,\s*processed\s+FROM\s+decryption_contexts\s+WHERE\s+request_id\s*=\s*\$1`

	rows := sqlmock.NewRows([]string{"batch_id", "requester_id", "state_hash", "processed"}).
		AddRow(int64(2), "p1", []byte("hash"), true)
	mock.ExpectQuery(q).WithArgs("req-1").WillReturnRows(rows)

	dc, err := repo.Get(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if dc.RequestID != "req-1" || dc.BatchID != 2 || dc.RequesterID != "p1" || !dc.Processed {
		t.Fatalf("unexpected context: %+v", dc)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+batch_id`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "ghost")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestMarkProcessed_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `UPDATE\s+decryption_contexts\s+SET\s+processed\s*=\s*TRUE\s+WHERE\s+request_id\s*=\s*\$1`

	mock.ExpectExec(q).WithArgs("req-1").WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkProcessed(context.Background(), "req-1"); err != nil {
		t.Fatalf("MarkProcessed error: %v", err)
	}
}

func TestMarkProcessed_Missing(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+decryption_contexts`).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkProcessed(context.Background(), "ghost")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}
