package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"gitlab.com/renewalhq/api/call-provider-service/internal/apperrors"
	"gitlab.com/renewalhq/api/call-provider-service/internal/model"
)

var providerCols = []string{
	"id", "name", "provider_type", "is_default", "is_active", "status",
	"daily_limit", "monthly_limit", "calls_made_today", "calls_made_this_month",
	"is_deleted", "created_at", "updated_at",
}

func TestGetCallProvider_Found(t *testing.T) {
	repo, mock := newTestRepo(t)
	now := time.Now()

	rows := sqlmock.NewRows(providerCols).
		AddRow(7, "Main Twilio", model.ProviderTypeTwilio, true, false, "unknown",
			100, 3000, 0, 0, false, now, now)

	mock.ExpectQuery(`SELECT \* FROM "call_provider_configs" WHERE id = \$1 AND is_deleted = \$2`).
		WithArgs(int64(7), false, 1).
		WillReturnRows(rows)

	p, err := repo.GetCallProvider(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, int64(7), p.ID)
	// Inactive rows are still loadable here; dispatch uses FindCallProviderByID.
	assert.False(t, p.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCallProvider_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`SELECT \* FROM "call_provider_configs" WHERE id = \$1 AND is_deleted = \$2`).
		WillReturnError(gorm.ErrRecordNotFound)

	p, err := repo.GetCallProvider(context.Background(), 404)

	assert.Nil(t, p)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindCallProviderByID_FiltersInactive(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`SELECT \* FROM "call_provider_configs" WHERE id = \$1 AND is_active = \$2 AND is_deleted = \$3`).
		WithArgs(int64(9), true, false, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := repo.FindCallProviderByID(context.Background(), 9)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindDefaultCallProvider_Single(t *testing.T) {
	repo, mock := newTestRepo(t)
	now := time.Now()

	rows := sqlmock.NewRows(providerCols).
		AddRow(3, "Default Exotel", model.ProviderTypeExotel, true, true, "connected",
			50, 1500, 1, 10, false, now, now)

	mock.ExpectQuery(`SELECT \* FROM "call_provider_configs" WHERE is_default = \$1 AND is_active = \$2 AND is_deleted = \$3`).
		WillReturnRows(rows)

	p, err := repo.FindDefaultCallProvider(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindDefaultCallProvider_None(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`SELECT \* FROM "call_provider_configs" WHERE is_default = \$1 AND is_active = \$2 AND is_deleted = \$3`).
		WillReturnRows(sqlmock.NewRows(providerCols))

	_, err := repo.FindDefaultCallProvider(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindDefaultCallProvider_Ambiguous(t *testing.T) {
	repo, mock := newTestRepo(t)
	now := time.Now()

	rows := sqlmock.NewRows(providerCols).
		AddRow(1, "Twilio A", model.ProviderTypeTwilio, true, true, "connected",
			100, 3000, 0, 0, false, now, now).
		AddRow(2, "Twilio B", model.ProviderTypeTwilio, true, true, "connected",
			100, 3000, 0, 0, false, now, now)

	mock.ExpectQuery(`SELECT \* FROM "call_provider_configs" WHERE is_default = \$1 AND is_active = \$2 AND is_deleted = \$3`).
		WillReturnRows(rows)

	_, err := repo.FindDefaultCallProvider(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrAmbiguousDefault)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementCallUsage_AtomicExpression(t *testing.T) {
	repo, mock := newTestRepo(t)

	// The counters must be bumped in SQL, not read-modify-write in Go.
	mock.ExpectExec(`UPDATE "call_provider_configs" SET .*"calls_made_this_month"=calls_made_this_month \+ \$\d+.*"calls_made_today"=calls_made_today \+ \$\d+.* WHERE id = \$\d+ AND is_deleted = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.IncrementCallUsage(context.Background(), 5, 1)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementCallUsage_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec(`UPDATE "call_provider_configs" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.IncrementCallUsage(context.Background(), 999, 1)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetDefaultCallProvider_ScopedToType(t *testing.T) {
	repo, mock := newTestRepo(t)
	now := time.Now()

	targetRows := sqlmock.NewRows(providerCols).
		AddRow(4, "Exotel B", model.ProviderTypeExotel, false, true, "connected",
			50, 1500, 0, 0, false, now, now)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "call_provider_configs" WHERE id = \$1 AND is_deleted = \$2`).
		WillReturnRows(targetRows)
	// Clear pass touches only rows of the target's provider_type.
	mock.ExpectExec(`UPDATE "call_provider_configs" SET "is_default"=\$\d+.* WHERE provider_type = \$\d+ AND is_deleted = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`UPDATE "call_provider_configs" SET "is_default"=\$\d+.* WHERE id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SetDefaultCallProvider(context.Background(), 4)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetDefaultCallProvider_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "call_provider_configs" WHERE id = \$1 AND is_deleted = \$2`).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectRollback()

	err := repo.SetDefaultCallProvider(context.Background(), 404)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetCallUsage_InvalidPeriod(t *testing.T) {
	repo, mock := newTestRepo(t)

	err := repo.ResetCallUsage(context.Background(), 1, "weekly")

	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSoftDeleteCallProvider_ClearsFlags(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec(`UPDATE "call_provider_configs" SET .*"is_deleted"=\$\d+.* WHERE id = \$\d+ AND is_deleted = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SoftDeleteCallProvider(context.Background(), 6, "ops@renewalhq.com")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
