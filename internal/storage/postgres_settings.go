package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"gitlab.com/renewalhq/api/call-provider-service/internal/apperrors"
	"gitlab.com/renewalhq/api/call-provider-service/internal/model"
	"gitlab.com/renewalhq/api/call-provider-service/internal/observer"
)

// FindEnabledSettings loads the row with enable_call_integration set.
func (r *PostgresRepo) FindEnabledSettings(ctx context.Context) (*model.RenewalSettings, error) {
	var s model.RenewalSettings

	operation := func() error {
		return r.db.WithContext(ctx).
			Where("enable_call_integration = ?", true).
			Order("id asc").
			First(&s).Error
	}

	policy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "FindEnabledSettings", operation)
	observer.ObserveDbOperationDuration("find_enabled", "settings", time.Since(startTime), err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("enabled settings: %w", apperrors.ErrNotFound)
		}
		return nil, checkConstraintViolation(err)
	}
	return &s, nil
}

// FindFirstSettings loads the oldest row, used as fallback when no row is
// enabled.
func (r *PostgresRepo) FindFirstSettings(ctx context.Context) (*model.RenewalSettings, error) {
	var s model.RenewalSettings

	operation := func() error {
		return r.db.WithContext(ctx).
			Order("id asc").
			First(&s).Error
	}

	policy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "FindFirstSettings", operation)
	observer.ObserveDbOperationDuration("find_first", "settings", time.Since(startTime), err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("settings: %w", apperrors.ErrNotFound)
		}
		return nil, checkConstraintViolation(err)
	}
	return &s, nil
}

// FindSettingsForProvider loads the settings row linked to one provider.
func (r *PostgresRepo) FindSettingsForProvider(ctx context.Context, providerID int64) (*model.RenewalSettings, error) {
	var s model.RenewalSettings

	operation := func() error {
		return r.db.WithContext(ctx).
			Where("active_provider_id = ?", providerID).
			First(&s).Error
	}

	policy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "FindSettingsForProvider", operation)
	observer.ObserveDbOperationDuration("find_for_provider", "settings", time.Since(startTime), err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("settings for provider %d: %w", providerID, apperrors.ErrNotFound)
		}
		return nil, checkConstraintViolation(err)
	}
	return &s, nil
}

// CreateSettings inserts a new per-provider settings row.
func (r *PostgresRepo) CreateSettings(ctx context.Context, s *model.RenewalSettings) error {
	operation := func() error {
		return r.db.WithContext(ctx).Create(s).Error
	}

	policy := newRetryPolicy(ctx, defaultRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "CreateSettings", operation)
	observer.ObserveDbOperationDuration("create", "settings", time.Since(startTime), err)
	if err != nil {
		return checkConstraintViolation(err)
	}
	return nil
}

// UpdateSettings saves the full settings row.
func (r *PostgresRepo) UpdateSettings(ctx context.Context, s *model.RenewalSettings) error {
	operation := func() error {
		return r.db.WithContext(ctx).Save(s).Error
	}

	policy := newRetryPolicy(ctx, defaultRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "UpdateSettings", operation)
	observer.ObserveDbOperationDuration("update", "settings", time.Since(startTime), err)
	if err != nil {
		return checkConstraintViolation(err)
	}
	return nil
}

// DisableIntegrationExcept clears enable_call_integration on every row other
// than the given one, preserving the single-enabled-row invariant.
func (r *PostgresRepo) DisableIntegrationExcept(ctx context.Context, id int64) error {
	operation := func() error {
		return r.db.WithContext(ctx).
			Model(&model.RenewalSettings{}).
			Where("id <> ? AND enable_call_integration = ?", id, true).
			Update("enable_call_integration", false).Error
	}

	policy := newRetryPolicy(ctx, defaultRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "DisableIntegrationExcept", operation)
	observer.ObserveDbOperationDuration("disable_others", "settings", time.Since(startTime), err)
	if err != nil {
		return checkConstraintViolation(err)
	}
	return nil
}
