package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"sigco/internal/infra/persistence"
)

func newMockBackend(t *testing.T) (*Backend, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	restore := OverrideSQLOpen(func(driver, dsn string) (*sql.DB, error) {
		if driver != "pgx" {
			t.Fatalf("unexpected driver %s", driver)
		}
		if dsn != DefaultDSN {
			t.Fatalf("expected default dsn, got %s", dsn)
		}
		return db, nil
	})
	t.Cleanup(restore)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS documents`).WillReturnResult(sqlmock.NewResult(0, 0))
	b, err := NewBackend(context.Background(), "")
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	return b, mock
}

func TestReadMissingRowReportsNoDocument(t *testing.T) {
	b, mock := newMockBackend(t)
	mock.ExpectQuery(`SELECT payload FROM documents WHERE name = \$1`).
		WithArgs(documentName).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))
	if _, err := b.Read(context.Background()); !errors.Is(err, persistence.ErrNoDocument) {
		t.Fatalf("expected ErrNoDocument, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestReplaceCommitsUpsert(t *testing.T) {
	b, mock := newMockBackend(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO documents`).
		WithArgs(documentName, `{"residents":[]}`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	if err := b.Replace(context.Background(), []byte(`{"residents":[]}`)); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestReplaceRollsBackOnExecError(t *testing.T) {
	b, mock := newMockBackend(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO documents`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()
	if err := b.Replace(context.Background(), []byte(`{}`)); err == nil {
		t.Fatalf("expected replace error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStoreInitializesThroughAdapter(t *testing.T) {
	b, mock := newMockBackend(t)
	store := persistence.NewDocumentStore(b)
	for i := 0; i < 2; i++ {
		mock.ExpectQuery(`SELECT payload FROM documents`).
			WithArgs(documentName).
			WillReturnRows(sqlmock.NewRows([]string{"payload"}))
	}
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO documents`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	doc, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Residents == nil {
		t.Fatalf("expected normalized document")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestNewBackendFailsWhenDDLFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	mock.ExpectExec(`CREATE TABLE`).WillReturnError(errors.New("permission denied"))
	if _, err := NewBackend(context.Background(), "postgres://example"); err == nil {
		t.Fatalf("expected ddl error")
	}
}
