package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gitlab.com/renewalhq/api/call-provider-service/internal/apperrors"
	"gitlab.com/renewalhq/api/call-provider-service/internal/model"
	"gitlab.com/renewalhq/api/call-provider-service/internal/observer"
	"gitlab.com/renewalhq/api/call-provider-service/pkg/logger"
	"gitlab.com/renewalhq/api/call-provider-service/pkg/utils"
)

// CreateCallProvider inserts a new voice provider row.
func (r *PostgresRepo) CreateCallProvider(ctx context.Context, p *model.CallProviderConfig) error {
	operation := func() error {
		return r.db.WithContext(ctx).Create(p).Error
	}

	policy := newRetryPolicy(ctx, defaultRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "CreateCallProvider", operation)
	observer.ObserveDbOperationDuration("create", "call_provider", time.Since(startTime), err)
	if err != nil {
		return checkConstraintViolation(err)
	}
	return nil
}

// ListCallProviders returns non-deleted rows matching the filter, ordered by
// priority then name.
func (r *PostgresRepo) ListCallProviders(ctx context.Context, filter ProviderFilter) ([]model.CallProviderConfig, error) {
	var providers []model.CallProviderConfig

	operation := func() error {
		q := r.db.WithContext(ctx).Where("is_deleted = ?", false)
		if filter.ProviderType != "" {
			q = q.Where("provider_type = ?", filter.ProviderType)
		}
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.IsActive != nil {
			q = q.Where("is_active = ?", *filter.IsActive)
		}
		if filter.Priority != nil {
			q = q.Where("priority = ?", *filter.Priority)
		}
		return q.Order("priority asc, name asc").Find(&providers).Error
	}

	policy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "ListCallProviders", operation)
	observer.ObserveDbOperationDuration("list", "call_provider", time.Since(startTime), err)
	if err != nil {
		return nil, checkConstraintViolation(err)
	}
	return providers, nil
}

// ListActiveCallProviders returns all active non-deleted rows.
func (r *PostgresRepo) ListActiveCallProviders(ctx context.Context) ([]model.CallProviderConfig, error) {
	active := true
	return r.ListCallProviders(ctx, ProviderFilter{IsActive: &active})
}

// GetCallProvider loads a non-deleted row regardless of active state.
func (r *PostgresRepo) GetCallProvider(ctx context.Context, id int64) (*model.CallProviderConfig, error) {
	var p model.CallProviderConfig

	operation := func() error {
		return r.db.WithContext(ctx).
			Where("id = ? AND is_deleted = ?", id, false).
			First(&p).Error
	}

	policy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "GetCallProvider", operation)
	observer.ObserveDbOperationDuration("get", "call_provider", time.Since(startTime), err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("call provider %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, checkConstraintViolation(err)
	}
	return &p, nil
}

// FindCallProviderByID loads an active, non-deleted row for dispatch.
func (r *PostgresRepo) FindCallProviderByID(ctx context.Context, id int64) (*model.CallProviderConfig, error) {
	var p model.CallProviderConfig

	operation := func() error {
		return r.db.WithContext(ctx).
			Where("id = ? AND is_active = ? AND is_deleted = ?", id, true, false).
			First(&p).Error
	}

	policy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "FindCallProviderByID", operation)
	observer.ObserveDbOperationDuration("find", "call_provider", time.Since(startTime), err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("active call provider %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, checkConstraintViolation(err)
	}
	return &p, nil
}

// FindDefaultCallProvider loads the single active default row. More than one
// match signals a data-integrity problem upstream and fails loudly.
func (r *PostgresRepo) FindDefaultCallProvider(ctx context.Context) (*model.CallProviderConfig, error) {
	var defaults []model.CallProviderConfig

	operation := func() error {
		return r.db.WithContext(ctx).
			Where("is_default = ? AND is_active = ? AND is_deleted = ?", true, true, false).
			Limit(2).
			Find(&defaults).Error
	}

	policy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "FindDefaultCallProvider", operation)
	observer.ObserveDbOperationDuration("find_default", "call_provider", time.Since(startTime), err)
	if err != nil {
		return nil, checkConstraintViolation(err)
	}

	switch len(defaults) {
	case 0:
		return nil, fmt.Errorf("default call provider: %w", apperrors.ErrNotFound)
	case 1:
		return &defaults[0], nil
	default:
		return nil, fmt.Errorf("call providers: %w", apperrors.ErrAmbiguousDefault)
	}
}

// UpdateCallProvider saves the full row.
func (r *PostgresRepo) UpdateCallProvider(ctx context.Context, p *model.CallProviderConfig) error {
	operation := func() error {
		return r.db.WithContext(ctx).Save(p).Error
	}

	policy := newRetryPolicy(ctx, defaultRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "UpdateCallProvider", operation)
	observer.ObserveDbOperationDuration("update", "call_provider", time.Since(startTime), err)
	if err != nil {
		return checkConstraintViolation(err)
	}
	return nil
}

// UpdateCallProviderCredentials applies a partial update to the credential
// columns. Secret values must already be encrypted by the caller.
func (r *PostgresRepo) UpdateCallProviderCredentials(ctx context.Context, id int64, updates map[string]interface{}, actor string) error {
	updates["updated_by"] = actor
	updates["updated_at"] = utils.Now()

	operation := func() error {
		result := r.db.WithContext(ctx).
			Model(&model.CallProviderConfig{}).
			Where("id = ? AND is_deleted = ?", id, false).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}

	policy := newRetryPolicy(ctx, defaultRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "UpdateCallProviderCredentials", operation)
	observer.ObserveDbOperationDuration("update_credentials", "call_provider", time.Since(startTime), err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("call provider %d: %w", id, apperrors.ErrNotFound)
		}
		return checkConstraintViolation(err)
	}
	return nil
}

// SetCallProviderActive toggles is_active.
func (r *PostgresRepo) SetCallProviderActive(ctx context.Context, id int64, active bool, actor string) error {
	operation := func() error {
		result := r.db.WithContext(ctx).
			Model(&model.CallProviderConfig{}).
			Where("id = ? AND is_deleted = ?", id, false).
			Updates(map[string]interface{}{
				"is_active":  active,
				"updated_by": actor,
				"updated_at": utils.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}

	policy := newRetryPolicy(ctx, defaultRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "SetCallProviderActive", operation)
	observer.ObserveDbOperationDuration("set_active", "call_provider", time.Since(startTime), err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("call provider %d: %w", id, apperrors.ErrNotFound)
		}
		return checkConstraintViolation(err)
	}
	return nil
}

// SoftDeleteCallProvider flags the row deleted, keeping it for audit.
func (r *PostgresRepo) SoftDeleteCallProvider(ctx context.Context, id int64, actor string) error {
	operation := func() error {
		result := r.db.WithContext(ctx).
			Model(&model.CallProviderConfig{}).
			Where("id = ? AND is_deleted = ?", id, false).
			Updates(map[string]interface{}{
				"is_deleted": true,
				"is_active":  false,
				"is_default": false,
				"deleted_at": utils.Now(),
				"deleted_by": actor,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}

	policy := newRetryPolicy(ctx, defaultRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "SoftDeleteCallProvider", operation)
	observer.ObserveDbOperationDuration("soft_delete", "call_provider", time.Since(startTime), err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("call provider %d: %w", id, apperrors.ErrNotFound)
		}
		return checkConstraintViolation(err)
	}
	return nil
}

// SetDefaultCallProvider clears is_default on every non-deleted row sharing
// the target's provider_type, then flags the target. Both updates run in one
// transaction so readers never observe zero or two defaults within the scope.
func (r *PostgresRepo) SetDefaultCallProvider(ctx context.Context, id int64) error {
	operation := func() error {
		tx := r.db.WithContext(ctx).Begin()
		if tx.Error != nil {
			return tx.Error
		}
		defer tx.Rollback()

		var target model.CallProviderConfig
		if err := tx.Where("id = ? AND is_deleted = ?", id, false).First(&target).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.CallProviderConfig{}).
			Where("provider_type = ? AND is_deleted = ?", target.ProviderType, false).
			Update("is_default", false).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.CallProviderConfig{}).
			Where("id = ?", id).
			Update("is_default", true).Error; err != nil {
			return err
		}

		return tx.Commit().Error
	}

	policy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "SetDefaultCallProvider", operation)
	observer.ObserveDbOperationDuration("set_default", "call_provider", time.Since(startTime), err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("call provider %d: %w", id, apperrors.ErrNotFound)
		}
		return checkConstraintViolation(err)
	}
	return nil
}

// UpdateCallProviderHealth writes the probe outcome onto the provider row.
func (r *PostgresRepo) UpdateCallProviderHealth(ctx context.Context, id int64, status string, checkedAt time.Time) error {
	operation := func() error {
		result := r.db.WithContext(ctx).
			Model(&model.CallProviderConfig{}).
			Where("id = ? AND is_deleted = ?", id, false).
			Updates(map[string]interface{}{
				"status":            status,
				"last_health_check": checkedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}

	policy := newRetryPolicy(ctx, defaultRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "UpdateCallProviderHealth", operation)
	observer.ObserveDbOperationDuration("update_health", "call_provider", time.Since(startTime), err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("call provider %d: %w", id, apperrors.ErrNotFound)
		}
		return checkConstraintViolation(err)
	}
	return nil
}

// IncrementCallUsage adds count to both usage counters in a single atomic
// UPDATE. There is deliberately no quota guard here; callers check
// CanMakeCall first.
func (r *PostgresRepo) IncrementCallUsage(ctx context.Context, id int64, count int) error {
	operation := func() error {
		result := r.db.WithContext(ctx).
			Model(&model.CallProviderConfig{}).
			Where("id = ? AND is_deleted = ?", id, false).
			Updates(map[string]interface{}{
				"calls_made_today":      gorm.Expr("calls_made_today + ?", count),
				"calls_made_this_month": gorm.Expr("calls_made_this_month + ?", count),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}

	policy := newRetryPolicy(ctx, defaultRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "IncrementCallUsage", operation)
	observer.ObserveDbOperationDuration("increment_usage", "call_provider", time.Since(startTime), err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("call provider %d: %w", id, apperrors.ErrNotFound)
		}
		return checkConstraintViolation(err)
	}
	return nil
}

// ResetCallUsage zeroes one counter and stamps the reset date. Invoked by an
// external scheduler or an operator action.
func (r *PostgresRepo) ResetCallUsage(ctx context.Context, id int64, period string) error {
	var updates map[string]interface{}
	switch period {
	case ResetPeriodDaily:
		updates = map[string]interface{}{
			"calls_made_today": 0,
			"last_reset_daily": utils.Now(),
		}
	case ResetPeriodMonthly:
		updates = map[string]interface{}{
			"calls_made_this_month": 0,
			"last_reset_monthly":    utils.Now(),
		}
	default:
		return fmt.Errorf("invalid reset period %q: %w", period, apperrors.ErrBadRequest)
	}

	operation := func() error {
		result := r.db.WithContext(ctx).
			Model(&model.CallProviderConfig{}).
			Where("id = ? AND is_deleted = ?", id, false).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}

	policy := newRetryPolicy(ctx, defaultRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "ResetCallUsage", operation)
	observer.ObserveDbOperationDuration("reset_usage", "call_provider", time.Since(startTime), err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("call provider %d: %w", id, apperrors.ErrNotFound)
		}
		return checkConstraintViolation(err)
	}

	logger.FromContext(ctx).Info("provider usage reset",
		zap.Int64("provider_id", id),
		zap.String("period", period))
	return nil
}
