package usecase

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"gitlab.com/renewalhq/api/call-provider-service/internal/events"
	"gitlab.com/renewalhq/api/call-provider-service/internal/model"
	"gitlab.com/renewalhq/api/call-provider-service/internal/observer"
	"gitlab.com/renewalhq/api/call-provider-service/internal/storage"
	"gitlab.com/renewalhq/api/call-provider-service/pkg/logger"
	"gitlab.com/renewalhq/api/call-provider-service/pkg/utils"
)

// statisticsWindowDays is the trailing window for success-rate statistics.
const statisticsWindowDays = 7

// ProviderStatistics summarizes quota consumption and recent call outcomes
// for one provider.
type ProviderStatistics struct {
	ProviderFamily      string  `json:"provider_family"`
	ProviderID          int64   `json:"provider_id"`
	ProviderType        string  `json:"provider_type"`
	Name                string  `json:"name"`
	CallsMadeToday      int     `json:"calls_made_today"`
	CallsMadeThisMonth  int     `json:"calls_made_this_month"`
	DailyLimit          int     `json:"daily_limit"`
	MonthlyLimit        int     `json:"monthly_limit"`
	DailyUsagePercent   float64 `json:"daily_usage_percent"`
	MonthlyUsagePercent float64 `json:"monthly_usage_percent"`
	WindowDays          int     `json:"window_days"`
	TotalCalls          int     `json:"total_calls"`
	SuccessCount        int     `json:"success_count"`
	FailureCount        int     `json:"failure_count"`
	SuccessRate         float64 `json:"success_rate"`
	AvgResponseTime     float64 `json:"avg_response_time"`
}

// UsageService records call outcomes and exposes quota statistics. The
// append-only usage log and the quota counters on the provider row are
// written by two separate calls; a log row without a matching increment is
// possible and acceptable.
type UsageService struct {
	callRepo  storage.CallProviderRepo
	botRepo   storage.BotProviderRepo
	logRepo   storage.LogRepo
	publisher events.Publisher
}

// NewUsageService creates a UsageService.
func NewUsageService(
	callRepo storage.CallProviderRepo,
	botRepo storage.BotProviderRepo,
	logRepo storage.LogRepo,
	publisher events.Publisher,
) *UsageService {
	return &UsageService{
		callRepo:  callRepo,
		botRepo:   botRepo,
		logRepo:   logRepo,
		publisher: publisher,
	}
}

// RecordCallUsage appends a usage log row for a voice provider and bumps its
// quota counters. The increment is unconditional; quota gating happens
// before dispatch, not here.
func (s *UsageService) RecordCallUsage(ctx context.Context, providerID int64, success bool, durationSeconds float64, data []byte) error {
	cfg, err := s.callRepo.GetCallProvider(ctx, providerID)
	if err != nil {
		return err
	}

	entry := &model.UsageLog{
		ProviderFamily: model.FamilyCall,
		ProviderID:     providerID,
		CallsMade:      1,
		LoggedAt:       utils.Now(),
	}
	if success {
		entry.SuccessCount = 1
		entry.TotalResponseTime = durationSeconds
	} else {
		entry.FailureCount = 1
	}
	if len(data) > 0 {
		entry.Data = datatypes.JSON(data)
	}

	if err := s.logRepo.CreateUsageLog(ctx, entry); err != nil {
		return err
	}

	if err := s.callRepo.IncrementCallUsage(ctx, providerID, 1); err != nil {
		// The log row already exists; surface the counter failure to the caller.
		logger.FromContext(ctx).Error("Usage logged but counter increment failed",
			zap.Int64("provider_id", providerID), zap.Error(err))
		return err
	}

	observer.IncUsageIncrement(model.FamilyCall, cfg.ProviderType)
	s.publisher.Publish(ctx, events.Event{
		Kind:           events.EventUsageRecorded,
		ProviderFamily: model.FamilyCall,
		ProviderID:     providerID,
		ProviderType:   cfg.ProviderType,
		Payload: map[string]interface{}{
			"success":  success,
			"duration": durationSeconds,
		},
	})
	return nil
}

// RecordBotUsage is the bot-family counterpart of RecordCallUsage.
func (s *UsageService) RecordBotUsage(ctx context.Context, providerID int64, success bool, durationSeconds float64, data []byte) error {
	cfg, err := s.botRepo.GetBotProvider(ctx, providerID)
	if err != nil {
		return err
	}

	entry := &model.UsageLog{
		ProviderFamily: model.FamilyBot,
		ProviderID:     providerID,
		CallsMade:      1,
		LoggedAt:       utils.Now(),
	}
	if success {
		entry.SuccessCount = 1
		entry.TotalResponseTime = durationSeconds
	} else {
		entry.FailureCount = 1
	}
	if len(data) > 0 {
		entry.Data = datatypes.JSON(data)
	}

	if err := s.logRepo.CreateUsageLog(ctx, entry); err != nil {
		return err
	}

	if err := s.botRepo.IncrementBotUsage(ctx, providerID, 1); err != nil {
		logger.FromContext(ctx).Error("Usage logged but counter increment failed",
			zap.Int64("provider_id", providerID), zap.Error(err))
		return err
	}

	observer.IncUsageIncrement(model.FamilyBot, cfg.ProviderType)
	s.publisher.Publish(ctx, events.Event{
		Kind:           events.EventUsageRecorded,
		ProviderFamily: model.FamilyBot,
		ProviderID:     providerID,
		ProviderType:   cfg.ProviderType,
		Payload: map[string]interface{}{
			"success":  success,
			"duration": durationSeconds,
		},
	})
	return nil
}

// ResetCallUsage zeroes one usage counter on a voice provider.
func (s *UsageService) ResetCallUsage(ctx context.Context, providerID int64, period string) error {
	return s.callRepo.ResetCallUsage(ctx, providerID, period)
}

// ResetBotUsage zeroes one usage counter on a bot provider.
func (s *UsageService) ResetBotUsage(ctx context.Context, providerID int64, period string) error {
	return s.botRepo.ResetBotUsage(ctx, providerID, period)
}

// CallStatistics builds usage statistics for a voice provider over the
// trailing seven days.
func (s *UsageService) CallStatistics(ctx context.Context, providerID int64) (*ProviderStatistics, error) {
	cfg, err := s.callRepo.GetCallProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}

	stats := &ProviderStatistics{
		ProviderFamily:      model.FamilyCall,
		ProviderID:          cfg.ID,
		ProviderType:        cfg.ProviderType,
		Name:                cfg.Name,
		CallsMadeToday:      cfg.CallsMadeToday,
		CallsMadeThisMonth:  cfg.CallsMadeThisMonth,
		DailyLimit:          cfg.DailyLimit,
		MonthlyLimit:        cfg.MonthlyLimit,
		DailyUsagePercent:   cfg.DailyUsagePercent(),
		MonthlyUsagePercent: cfg.MonthlyUsagePercent(),
		WindowDays:          statisticsWindowDays,
	}

	s.fillWindowTotals(ctx, model.FamilyCall, providerID, stats)
	return stats, nil
}

// BotStatistics builds usage statistics for a bot provider.
func (s *UsageService) BotStatistics(ctx context.Context, providerID int64) (*ProviderStatistics, error) {
	cfg, err := s.botRepo.GetBotProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}

	stats := &ProviderStatistics{
		ProviderFamily:      model.FamilyBot,
		ProviderID:          cfg.ID,
		ProviderType:        cfg.ProviderType,
		Name:                cfg.Name,
		CallsMadeToday:      cfg.CallsMadeToday,
		CallsMadeThisMonth:  cfg.CallsMadeThisMonth,
		DailyLimit:          cfg.DailyLimit,
		MonthlyLimit:        cfg.MonthlyLimit,
		DailyUsagePercent:   cfg.DailyUsagePercent(),
		MonthlyUsagePercent: cfg.MonthlyUsagePercent(),
		WindowDays:          statisticsWindowDays,
	}

	s.fillWindowTotals(ctx, model.FamilyBot, providerID, stats)
	return stats, nil
}

// fillWindowTotals adds trailing-window outcome totals. Aggregation failures
// leave the window fields zeroed rather than failing the whole statistics
// call.
func (s *UsageService) fillWindowTotals(ctx context.Context, family string, providerID int64, stats *ProviderStatistics) {
	since := utils.DaysAgo(statisticsWindowDays)
	totals, err := s.logRepo.UsageTotalsSince(ctx, family, providerID, since)
	if err != nil {
		logger.FromContext(ctx).Warn("Failed to aggregate usage window",
			zap.Int64("provider_id", providerID), zap.Error(err))
		return
	}

	stats.TotalCalls = totals.CallsMade
	stats.SuccessCount = totals.SuccessCount
	stats.FailureCount = totals.FailureCount
	if outcomes := totals.SuccessCount + totals.FailureCount; outcomes > 0 {
		stats.SuccessRate = float64(totals.SuccessCount) / float64(outcomes) * 100
	}
	if totals.SuccessCount > 0 {
		stats.AvgResponseTime = totals.TotalResponseTime / float64(totals.SuccessCount)
	}
}
