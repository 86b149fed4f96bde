package utils

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func mockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return db, mock
}

func TestIncrementMessageCountRelativeUpdate(t *testing.T) {
	db, mock := mockDB(t)

	// The arithmetic must run in the database, as one relative UPDATE, so
	// concurrent sends for the same team cannot lose counts.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "teams" SET "current_messages"=current_messages \+ \$1 WHERE id = \$2`).
		WithArgs(1, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := IncrementMessageCount(db, 7, 1); err != nil {
		t.Fatalf("IncrementMessageCount: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestIncrementMessageCountUnknownTeam(t *testing.T) {
	db, mock := mockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "teams" SET "current_messages"=current_messages \+ \$1 WHERE id = \$2`).
		WithArgs(1, 99).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := IncrementMessageCount(db, 99, 1); !errors.Is(err, ErrTeamNotFound) {
		t.Errorf("err = %v, want ErrTeamNotFound", err)
	}
}

func TestCheckMessageLimitLoadsTeamRow(t *testing.T) {
	db, mock := mockDB(t)

	rows := sqlmock.NewRows([]string{"id", "current_messages"}).AddRow(7, 3)
	mock.ExpectQuery(`SELECT \* FROM "teams" WHERE "teams"\."id" = \$1`).
		WillReturnRows(rows)

	status, err := CheckMessageLimit(db, testTiers(), 7)
	if err != nil {
		t.Fatalf("CheckMessageLimit: %v", err)
	}
	if status.Remaining != 2 {
		t.Errorf("Remaining = %d, want 2", status.Remaining)
	}
	if !status.WithinLimit {
		t.Error("3 of 5 consumed must still be within limit")
	}
}

func TestCheckMessageLimitUnknownTeam(t *testing.T) {
	db, mock := mockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "teams" WHERE "teams"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := CheckMessageLimit(db, testTiers(), 404); !errors.Is(err, ErrTeamNotFound) {
		t.Errorf("err = %v, want ErrTeamNotFound", err)
	}
}
