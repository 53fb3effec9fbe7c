package repository

import (
	"log"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB wires gorm to a sqlmock connection so repository SQL can be
// asserted without a live database.
func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 mockDB,
		PreferSimpleProtocol: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	require.NoError(t, err)

	return db, mock
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "password_hash", "gender", "age", "is_deleted", "followers", "following"})
}

func recipeRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "author_id", "date_published", "cook_time", "prep_time", "total_time", "review_count"})
}
