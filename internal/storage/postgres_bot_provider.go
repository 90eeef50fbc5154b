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

// CreateBotProvider inserts a new bot provider row.
func (r *PostgresRepo) CreateBotProvider(ctx context.Context, p *model.BotCallingProviderConfig) error {
	operation := func() error {
		return r.db.WithContext(ctx).Create(p).Error
	}

	policy := newRetryPolicy(ctx, defaultRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "CreateBotProvider", operation)
	observer.ObserveDbOperationDuration("create", "bot_provider", time.Since(startTime), err)
	if err != nil {
		return checkConstraintViolation(err)
	}
	return nil
}

// ListBotProviders returns non-deleted rows matching the filter.
func (r *PostgresRepo) ListBotProviders(ctx context.Context, filter ProviderFilter) ([]model.BotCallingProviderConfig, error) {
	var providers []model.BotCallingProviderConfig

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
	err := retryableOperation(ctx, policy, "ListBotProviders", operation)
	observer.ObserveDbOperationDuration("list", "bot_provider", time.Since(startTime), err)
	if err != nil {
		return nil, checkConstraintViolation(err)
	}
	return providers, nil
}

// ListActiveBotProviders returns all active non-deleted rows.
func (r *PostgresRepo) ListActiveBotProviders(ctx context.Context) ([]model.BotCallingProviderConfig, error) {
	active := true
	return r.ListBotProviders(ctx, ProviderFilter{IsActive: &active})
}

// GetBotProvider loads a non-deleted row regardless of active state.
func (r *PostgresRepo) GetBotProvider(ctx context.Context, id int64) (*model.BotCallingProviderConfig, error) {
	var p model.BotCallingProviderConfig

	operation := func() error {
		return r.db.WithContext(ctx).
			Where("id = ? AND is_deleted = ?", id, false).
			First(&p).Error
	}

	policy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "GetBotProvider", operation)
	observer.ObserveDbOperationDuration("get", "bot_provider", time.Since(startTime), err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("bot provider %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, checkConstraintViolation(err)
	}
	return &p, nil
}

// FindBotProviderByID loads an active, non-deleted row for dispatch.
func (r *PostgresRepo) FindBotProviderByID(ctx context.Context, id int64) (*model.BotCallingProviderConfig, error) {
	var p model.BotCallingProviderConfig

	operation := func() error {
		return r.db.WithContext(ctx).
			Where("id = ? AND is_active = ? AND is_deleted = ?", id, true, false).
			First(&p).Error
	}

	policy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "FindBotProviderByID", operation)
	observer.ObserveDbOperationDuration("find", "bot_provider", time.Since(startTime), err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("active bot provider %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, checkConstraintViolation(err)
	}
	return &p, nil
}

// FindDefaultBotProvider loads the single active default bot row.
func (r *PostgresRepo) FindDefaultBotProvider(ctx context.Context) (*model.BotCallingProviderConfig, error) {
	var defaults []model.BotCallingProviderConfig

	operation := func() error {
		return r.db.WithContext(ctx).
			Where("is_default = ? AND is_active = ? AND is_deleted = ?", true, true, false).
			Limit(2).
			Find(&defaults).Error
	}

	policy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "FindDefaultBotProvider", operation)
	observer.ObserveDbOperationDuration("find_default", "bot_provider", time.Since(startTime), err)
	if err != nil {
		return nil, checkConstraintViolation(err)
	}

	switch len(defaults) {
	case 0:
		return nil, fmt.Errorf("default bot provider: %w", apperrors.ErrNotFound)
	case 1:
		return &defaults[0], nil
	default:
		return nil, fmt.Errorf("bot providers: %w", apperrors.ErrAmbiguousDefault)
	}
}

// UpdateBotProvider saves the full row.
func (r *PostgresRepo) UpdateBotProvider(ctx context.Context, p *model.BotCallingProviderConfig) error {
	operation := func() error {
		return r.db.WithContext(ctx).Save(p).Error
	}

	policy := newRetryPolicy(ctx, defaultRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "UpdateBotProvider", operation)
	observer.ObserveDbOperationDuration("update", "bot_provider", time.Since(startTime), err)
	if err != nil {
		return checkConstraintViolation(err)
	}
	return nil
}

// UpdateBotProviderCredentials applies a partial update to the credential
// columns. Secret values must already be encrypted by the caller.
func (r *PostgresRepo) UpdateBotProviderCredentials(ctx context.Context, id int64, updates map[string]interface{}, actor string) error {
	updates["updated_by"] = actor
	updates["updated_at"] = utils.Now()

	operation := func() error {
		result := r.db.WithContext(ctx).
			Model(&model.BotCallingProviderConfig{}).
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
	err := retryableOperation(ctx, policy, "UpdateBotProviderCredentials", operation)
	observer.ObserveDbOperationDuration("update_credentials", "bot_provider", time.Since(startTime), err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("bot provider %d: %w", id, apperrors.ErrNotFound)
		}
		return checkConstraintViolation(err)
	}
	return nil
}

// SetBotProviderActive toggles is_active.
func (r *PostgresRepo) SetBotProviderActive(ctx context.Context, id int64, active bool, actor string) error {
	operation := func() error {
		result := r.db.WithContext(ctx).
			Model(&model.BotCallingProviderConfig{}).
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
	err := retryableOperation(ctx, policy, "SetBotProviderActive", operation)
	observer.ObserveDbOperationDuration("set_active", "bot_provider", time.Since(startTime), err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("bot provider %d: %w", id, apperrors.ErrNotFound)
		}
		return checkConstraintViolation(err)
	}
	return nil
}

// SoftDeleteBotProvider flags the row deleted, keeping it for audit.
func (r *PostgresRepo) SoftDeleteBotProvider(ctx context.Context, id int64, actor string) error {
	operation := func() error {
		result := r.db.WithContext(ctx).
			Model(&model.BotCallingProviderConfig{}).
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
	err := retryableOperation(ctx, policy, "SoftDeleteBotProvider", operation)
	observer.ObserveDbOperationDuration("soft_delete", "bot_provider", time.Since(startTime), err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("bot provider %d: %w", id, apperrors.ErrNotFound)
		}
		return checkConstraintViolation(err)
	}
	return nil
}

// SetDefaultBotProvider clears is_default across the whole bot family, then
// flags the target. Unlike voice providers there is a single default for all
// bot types.
func (r *PostgresRepo) SetDefaultBotProvider(ctx context.Context, id int64) error {
	operation := func() error {
		tx := r.db.WithContext(ctx).Begin()
		if tx.Error != nil {
			return tx.Error
		}
		defer tx.Rollback()

		var target model.BotCallingProviderConfig
		if err := tx.Where("id = ? AND is_deleted = ?", id, false).First(&target).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.BotCallingProviderConfig{}).
			Where("is_deleted = ?", false).
			Update("is_default", false).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.BotCallingProviderConfig{}).
			Where("id = ?", id).
			Update("is_default", true).Error; err != nil {
			return err
		}

		return tx.Commit().Error
	}

	policy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "SetDefaultBotProvider", operation)
	observer.ObserveDbOperationDuration("set_default", "bot_provider", time.Since(startTime), err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("bot provider %d: %w", id, apperrors.ErrNotFound)
		}
		return checkConstraintViolation(err)
	}
	return nil
}

// UpdateBotProviderHealth writes the probe outcome onto the provider row.
func (r *PostgresRepo) UpdateBotProviderHealth(ctx context.Context, id int64, status string, checkedAt time.Time) error {
	operation := func() error {
		result := r.db.WithContext(ctx).
			Model(&model.BotCallingProviderConfig{}).
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
	err := retryableOperation(ctx, policy, "UpdateBotProviderHealth", operation)
	observer.ObserveDbOperationDuration("update_health", "bot_provider", time.Since(startTime), err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("bot provider %d: %w", id, apperrors.ErrNotFound)
		}
		return checkConstraintViolation(err)
	}
	return nil
}

// IncrementBotUsage adds count to both usage counters atomically.
func (r *PostgresRepo) IncrementBotUsage(ctx context.Context, id int64, count int) error {
	operation := func() error {
		result := r.db.WithContext(ctx).
			Model(&model.BotCallingProviderConfig{}).
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
	err := retryableOperation(ctx, policy, "IncrementBotUsage", operation)
	observer.ObserveDbOperationDuration("increment_usage", "bot_provider", time.Since(startTime), err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("bot provider %d: %w", id, apperrors.ErrNotFound)
		}
		return checkConstraintViolation(err)
	}
	return nil
}

// ResetBotUsage zeroes one counter and stamps the reset date.
func (r *PostgresRepo) ResetBotUsage(ctx context.Context, id int64, period string) error {
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
			Model(&model.BotCallingProviderConfig{}).
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
	err := retryableOperation(ctx, policy, "ResetBotUsage", operation)
	observer.ObserveDbOperationDuration("reset_usage", "bot_provider", time.Since(startTime), err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("bot provider %d: %w", id, apperrors.ErrNotFound)
		}
		return checkConstraintViolation(err)
	}

	logger.FromContext(ctx).Info("bot provider usage reset",
		zap.Int64("provider_id", id),
		zap.String("period", period))
	return nil
}
