package services

import (
	"errors"
	"io"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"store-ledger/src/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func quietAuditService() *AuditService {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &AuditService{Log: log}
}

func TestAuditRecord(t *testing.T) {
	t.Run("SC1: A failed insert rolls back to its savepoint and the caller's scope still commits", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := quietAuditService()

		mock.ExpectBegin()
		mock.ExpectExec(`SAVEPOINT audit_entry`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`INSERT INTO "audit_logs"`).
			WillReturnError(errors.New("jsonb column rejected payload"))
		mock.ExpectExec(`ROLLBACK TO SAVEPOINT audit_entry`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := db.Transaction(func(tx *gorm.DB) error {
			svc.BestEffort(tx, &models.AuditLog{
				Actor:   "tester",
				Module:  "sales",
				Action:  models.AuditActionCreate,
				Summary: "test entry",
			})
			return nil
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("SC2: A successful insert leaves no dangling savepoint state", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := quietAuditService()

		mock.ExpectBegin()
		mock.ExpectExec(`SAVEPOINT audit_entry`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`INSERT INTO "audit_logs"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).
				AddRow("b7a9b6de-52a4-4d1f-9b6e-0f2e6a9c1d3e"))
		mock.ExpectCommit()

		err := db.Transaction(func(tx *gorm.DB) error {
			return svc.Record(tx, &models.AuditLog{
				Actor:   "tester",
				Module:  "sales",
				Action:  models.AuditActionUpdate,
				Summary: "test entry",
			})
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
