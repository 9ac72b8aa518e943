package orgscope

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/packops/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// scopedModel is a minimal organization-scoped model for scoping tests
type scopedModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name           string    `gorm:"size:100"`
}

func (scopedModel) TableName() string {
	return "scoped_models"
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func orgContext(orgID string) context.Context {
	ctx := context.Background()
	if orgID != "" {
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithOrganizationID(ctx, log, orgID)
	}
	return ctx
}

func TestScope(t *testing.T) {
	orgID := uuid.New()

	t.Run("applies organization filter to query", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "scoped_models" WHERE organization_id = \$1`).
			WithArgs(orgID.String()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id", "name"}))

		var results []scopedModel
		err := db.Scopes(Scope(orgID)).Find(&results).Error
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrgDBWithContext(t *testing.T) {
	orgID := uuid.New()

	t.Run("scopes query to organization from context", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "scoped_models" WHERE organization_id = \$1`).
			WithArgs(orgID.String()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id", "name"}))

		orgDB := NewOrgDB(db)
		var results []scopedModel
		err := orgDB.WithContext(orgContext(orgID.String())).Find(&results).Error
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("errors when organization missing and required", func(t *testing.T) {
		db, _, mockDB := setupMockDB(t)
		defer mockDB.Close()

		orgDB := NewOrgDB(db)
		var results []scopedModel
		err := orgDB.WithContext(context.Background()).Find(&results).Error
		assert.ErrorIs(t, err, ErrOrganizationIDRequired)
	})

	t.Run("errors on malformed organization id", func(t *testing.T) {
		db, _, mockDB := setupMockDB(t)
		defer mockDB.Close()

		orgDB := NewOrgDB(db)
		var results []scopedModel
		err := orgDB.WithContext(orgContext("not-a-uuid")).Find(&results).Error
		assert.ErrorIs(t, err, ErrInvalidOrganizationID)
	})

	t.Run("runs unscoped when not required", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "scoped_models"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id", "name"}))

		orgDB := NewOrgDB(db).SetRequired(false)
		var results []scopedModel
		err := orgDB.WithContext(context.Background()).Find(&results).Error
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrgDBForOrg(t *testing.T) {
	t.Run("rejects nil organization id", func(t *testing.T) {
		db, _, mockDB := setupMockDB(t)
		defer mockDB.Close()

		orgDB := NewOrgDB(db)
		var results []scopedModel
		err := orgDB.ForOrg(context.Background(), uuid.Nil).Find(&results).Error
		assert.ErrorIs(t, err, ErrOrganizationIDRequired)
	})
}
