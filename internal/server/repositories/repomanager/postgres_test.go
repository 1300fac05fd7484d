package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskapi/internal/server/models"
	"github.com/dmitrijs2005/taskapi/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskapi/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestPostgresManager_ImplementsInterface(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	var m RepositoryManager = NewPostgresRepositoryManagerFromDB(db)

	if _, ok := m.Users().(*users.PostgresRepository); !ok {
		t.Fatalf("Users() = %T", m.Users())
	}
	if _, ok := m.Tasks().(*tasks.PostgresRepository); !ok {
		t.Fatalf("Tasks() = %T", m.Tasks())
	}
}

func TestPostgresManager_WithTxCommits(t *testing.T) {
	db, mock := newDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE\s+FROM\s+tasks\s+WHERE\s+user_id`).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE\s+FROM\s+users\s+WHERE\s+id`).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	m := NewPostgresRepositoryManagerFromDB(db)
	err := m.WithTx(context.Background(), func(ctx context.Context, u users.Repository, ts tasks.Repository) error {
		if _, err := ts.DeleteAllByOwner(ctx, "u-1"); err != nil {
			return err
		}
		return u.Delete(ctx, "u-1")
	})
	if err != nil {
		t.Fatalf("WithTx error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresManager_WithTxRollsBack(t *testing.T) {
	db, mock := newDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT\s+INTO\s+tasks`).WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	m := NewPostgresRepositoryManagerFromDB(db)
	err := m.WithTx(context.Background(), func(ctx context.Context, _ users.Repository, ts tasks.Repository) error {
		_, err := ts.Create(ctx, &models.Task{Title: "x", UserID: "u-1"})
		return err
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m := NewPostgresRepositoryManagerFromDB(db)
	if err := m.RunMigrations(context.Background()); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := NewPostgresRepositoryManagerFromDB(db)
	if err := m.RunMigrations(context.Background()); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestPostgresManager_PingAndClose(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}

	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(errors.New("down"))
	mock.ExpectClose()

	m := NewPostgresRepositoryManagerFromDB(db)
	if err := m.Ping(context.Background()); err != nil {
		t.Fatalf("Ping error: %v", err)
	}
	if err := m.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping error")
	}
	if err := m.Close(context.Background()); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
