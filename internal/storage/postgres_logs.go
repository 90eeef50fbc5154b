package storage

import (
	"context"
	"time"

	"gitlab.com/renewalhq/api/call-provider-service/internal/model"
	"gitlab.com/renewalhq/api/call-provider-service/internal/observer"
)

const defaultLogListLimit = 100

// CreateHealthLog appends one probe outcome row.
func (r *PostgresRepo) CreateHealthLog(ctx context.Context, l *model.HealthLog) error {
	operation := func() error {
		return r.db.WithContext(ctx).Create(l).Error
	}

	policy := newRetryPolicy(ctx, defaultRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "CreateHealthLog", operation)
	observer.ObserveDbOperationDuration("create", "health_log", time.Since(startTime), err)
	if err != nil {
		return checkConstraintViolation(err)
	}
	return nil
}

// ListHealthLogs returns probe rows matching the filter, newest first.
func (r *PostgresRepo) ListHealthLogs(ctx context.Context, filter HealthLogFilter) ([]model.HealthLog, error) {
	var logs []model.HealthLog

	operation := func() error {
		q := r.db.WithContext(ctx).Model(&model.HealthLog{})
		if filter.ProviderFamily != "" {
			q = q.Where("provider_family = ?", filter.ProviderFamily)
		}
		if filter.ProviderID != 0 {
			q = q.Where("provider_id = ?", filter.ProviderID)
		}
		if filter.IsHealthy != nil {
			q = q.Where("is_healthy = ?", *filter.IsHealthy)
		}
		if filter.Since != nil {
			q = q.Where("checked_at >= ?", *filter.Since)
		}
		if filter.Until != nil {
			q = q.Where("checked_at < ?", *filter.Until)
		}
		limit := filter.Limit
		if limit <= 0 {
			limit = defaultLogListLimit
		}
		return q.Order("checked_at desc").Limit(limit).Find(&logs).Error
	}

	policy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "ListHealthLogs", operation)
	observer.ObserveDbOperationDuration("list", "health_log", time.Since(startTime), err)
	if err != nil {
		return nil, checkConstraintViolation(err)
	}
	return logs, nil
}

// CreateUsageLog appends one usage row. Counters on the provider row are
// incremented by a separate call.
func (r *PostgresRepo) CreateUsageLog(ctx context.Context, l *model.UsageLog) error {
	operation := func() error {
		return r.db.WithContext(ctx).Create(l).Error
	}

	policy := newRetryPolicy(ctx, defaultRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "CreateUsageLog", operation)
	observer.ObserveDbOperationDuration("create", "usage_log", time.Since(startTime), err)
	if err != nil {
		return checkConstraintViolation(err)
	}
	return nil
}

// ListUsageLogs returns usage rows matching the filter, newest first.
func (r *PostgresRepo) ListUsageLogs(ctx context.Context, filter UsageLogFilter) ([]model.UsageLog, error) {
	var logs []model.UsageLog

	operation := func() error {
		q := r.db.WithContext(ctx).Model(&model.UsageLog{})
		if filter.ProviderFamily != "" {
			q = q.Where("provider_family = ?", filter.ProviderFamily)
		}
		if filter.ProviderID != 0 {
			q = q.Where("provider_id = ?", filter.ProviderID)
		}
		if filter.Since != nil {
			q = q.Where("logged_at >= ?", *filter.Since)
		}
		if filter.Until != nil {
			q = q.Where("logged_at < ?", *filter.Until)
		}
		limit := filter.Limit
		if limit <= 0 {
			limit = defaultLogListLimit
		}
		return q.Order("logged_at desc").Limit(limit).Find(&logs).Error
	}

	policy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "ListUsageLogs", operation)
	observer.ObserveDbOperationDuration("list", "usage_log", time.Since(startTime), err)
	if err != nil {
		return nil, checkConstraintViolation(err)
	}
	return logs, nil
}

// UsageTotalsSince aggregates usage rows for one provider over a window.
// An empty window yields zero totals, not an error.
func (r *PostgresRepo) UsageTotalsSince(ctx context.Context, family string, providerID int64, since time.Time) (*UsageTotals, error) {
	var totals UsageTotals

	operation := func() error {
		return r.db.WithContext(ctx).
			Model(&model.UsageLog{}).
			Select("COALESCE(SUM(calls_made), 0) AS calls_made, COALESCE(SUM(success_count), 0) AS success_count, COALESCE(SUM(failure_count), 0) AS failure_count, COALESCE(SUM(total_response_time), 0) AS total_response_time").
			Where("provider_family = ? AND provider_id = ? AND logged_at >= ?", family, providerID, since).
			Scan(&totals).Error
	}

	policy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "UsageTotalsSince", operation)
	observer.ObserveDbOperationDuration("aggregate", "usage_log", time.Since(startTime), err)
	if err != nil {
		return nil, checkConstraintViolation(err)
	}
	return &totals, nil
}

// CreateTestResult inserts a test call record, usually in "pending" state.
func (r *PostgresRepo) CreateTestResult(ctx context.Context, res *model.TestResult) error {
	operation := func() error {
		return r.db.WithContext(ctx).Create(res).Error
	}

	policy := newRetryPolicy(ctx, defaultRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "CreateTestResult", operation)
	observer.ObserveDbOperationDuration("create", "test_result", time.Since(startTime), err)
	if err != nil {
		return checkConstraintViolation(err)
	}
	return nil
}

// UpdateTestResult saves the final state of a test call record.
func (r *PostgresRepo) UpdateTestResult(ctx context.Context, res *model.TestResult) error {
	operation := func() error {
		return r.db.WithContext(ctx).Save(res).Error
	}

	policy := newRetryPolicy(ctx, defaultRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "UpdateTestResult", operation)
	observer.ObserveDbOperationDuration("update", "test_result", time.Since(startTime), err)
	if err != nil {
		return checkConstraintViolation(err)
	}
	return nil
}

// ListTestResults returns recent test call records for one provider.
func (r *PostgresRepo) ListTestResults(ctx context.Context, family string, providerID int64, limit int) ([]model.TestResult, error) {
	var results []model.TestResult

	operation := func() error {
		if limit <= 0 {
			limit = defaultLogListLimit
		}
		return r.db.WithContext(ctx).
			Where("provider_family = ? AND provider_id = ?", family, providerID).
			Order("tested_at desc").
			Limit(limit).
			Find(&results).Error
	}

	policy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := time.Now()
	err := retryableOperation(ctx, policy, "ListTestResults", operation)
	observer.ObserveDbOperationDuration("list", "test_result", time.Since(startTime), err)
	if err != nil {
		return nil, checkConstraintViolation(err)
	}
	return results, nil
}
