package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/servicing"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockExtractRepository(t *testing.T) (*GormExtractRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormExtractRepository(gormDB), mock, mockDB
}

func TestGormExtractRepository_FindByHubAndPeriod(t *testing.T) {
	t.Run("finds the period row for an asset", func(t *testing.T) {
		repo, mock, mockDB := newMockExtractRepository(t)
		defer mockDB.Close()

		extractID := uuid.New()
		hubID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "hub_id", "period", "days_past_due", "bucket"}).
			AddRow(extractID, hubID, "2026-07", 95, "90")

		mock.ExpectQuery(`SELECT \* FROM "servicing_extracts" WHERE hub_id = \$1 AND period = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(hubID, "2026-07", 1).
			WillReturnRows(rows)

		e, err := repo.FindByHubAndPeriod(context.Background(), hubID, "2026-07")

		assert.NoError(t, err)
		assert.NotNil(t, e)
		assert.Equal(t, "2026-07", e.Period)
		assert.Equal(t, servicing.BucketNinety, e.Bucket)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for a missing period", func(t *testing.T) {
		repo, mock, mockDB := newMockExtractRepository(t)
		defer mockDB.Close()

		hubID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "servicing_extracts" WHERE hub_id = \$1 AND period = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(hubID, "2026-01", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		e, err := repo.FindByHubAndPeriod(context.Background(), hubID, "2026-01")

		assert.Error(t, err)
		assert.Nil(t, e)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormExtractRepository_FindLatestByHub(t *testing.T) {
	t.Run("orders by period descending", func(t *testing.T) {
		repo, mock, mockDB := newMockExtractRepository(t)
		defer mockDB.Close()

		hubID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "hub_id", "period", "days_past_due", "bucket"}).
			AddRow(uuid.New(), hubID, "2026-07", 0, "CURRENT")

		mock.ExpectQuery(`SELECT \* FROM "servicing_extracts" WHERE hub_id = \$1 ORDER BY period DESC,.* LIMIT .*`).
			WithArgs(hubID, 1).
			WillReturnRows(rows)

		e, err := repo.FindLatestByHub(context.Background(), hubID)

		assert.NoError(t, err)
		assert.Equal(t, "2026-07", e.Period)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormExtractRepository_CountByPeriod(t *testing.T) {
	t.Run("counts rows landed for a period", func(t *testing.T) {
		repo, mock, mockDB := newMockExtractRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"count"}).AddRow(412)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "servicing_extracts" WHERE period = \$1`).
			WithArgs("2026-07").
			WillReturnRows(rows)

		count, err := repo.CountByPeriod(context.Background(), "2026-07")

		assert.NoError(t, err)
		assert.Equal(t, int64(412), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormExtractRepository_BucketCountsByPeriod(t *testing.T) {
	t.Run("groups a period by delinquency bucket", func(t *testing.T) {
		repo, mock, mockDB := newMockExtractRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"bucket", "count"}).
			AddRow("CURRENT", 120).
			AddRow("30", 40).
			AddRow("120+", 252)

		mock.ExpectQuery(`SELECT bucket, COUNT\(\*\) AS count FROM "servicing_extracts" WHERE period = \$1 GROUP BY "bucket"`).
			WithArgs("2026-07").
			WillReturnRows(rows)

		counts, err := repo.BucketCountsByPeriod(context.Background(), "2026-07")

		assert.NoError(t, err)
		assert.Len(t, counts, 3)
		assert.Equal(t, int64(120), counts[servicing.BucketCurrent])
		assert.Equal(t, int64(40), counts[servicing.BucketThirty])
		assert.Equal(t, int64(252), counts[servicing.BucketOneTwenty])
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
