package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gitlab.com/renewalhq/api/call-provider-service/internal/events"
	"gitlab.com/renewalhq/api/call-provider-service/internal/model"
	"gitlab.com/renewalhq/api/call-provider-service/internal/storage"
	storagemock "gitlab.com/renewalhq/api/call-provider-service/internal/storage/mock"
	"gitlab.com/renewalhq/api/call-provider-service/pkg/logger"
)

type usageFixture struct {
	svc      *UsageService
	callRepo *storagemock.CallProviderRepoMock
	botRepo  *storagemock.BotProviderRepoMock
	logRepo  *storagemock.LogRepoMock
}

func newUsageFixture(t *testing.T) *usageFixture {
	logger.Log = zaptest.NewLogger(t).Named("test")
	callRepo := new(storagemock.CallProviderRepoMock)
	botRepo := new(storagemock.BotProviderRepoMock)
	logRepo := new(storagemock.LogRepoMock)
	return &usageFixture{
		svc:      NewUsageService(callRepo, botRepo, logRepo, events.NoopPublisher{}),
		callRepo: callRepo,
		botRepo:  botRepo,
		logRepo:  logRepo,
	}
}

func TestRecordCallUsage_Success(t *testing.T) {
	f := newUsageFixture(t)
	cfg := model.NewCallProvider()

	f.callRepo.On("GetCallProvider", mock.Anything, cfg.ID).Return(cfg, nil)
	f.logRepo.On("CreateUsageLog", mock.Anything, mock.MatchedBy(func(l *model.UsageLog) bool {
		return l.ProviderFamily == model.FamilyCall &&
			l.ProviderID == cfg.ID &&
			l.CallsMade == 1 &&
			l.SuccessCount == 1 &&
			l.FailureCount == 0 &&
			l.TotalResponseTime == 120.5
	})).Return(nil)
	f.callRepo.On("IncrementCallUsage", mock.Anything, cfg.ID, 1).Return(nil)

	err := f.svc.RecordCallUsage(context.Background(), cfg.ID, true, 120.5, nil)

	require.NoError(t, err)
	f.logRepo.AssertExpectations(t)
	f.callRepo.AssertExpectations(t)
}

func TestRecordCallUsage_Failure(t *testing.T) {
	f := newUsageFixture(t)
	cfg := model.NewCallProvider()

	f.callRepo.On("GetCallProvider", mock.Anything, cfg.ID).Return(cfg, nil)
	f.logRepo.On("CreateUsageLog", mock.Anything, mock.MatchedBy(func(l *model.UsageLog) bool {
		return l.FailureCount == 1 && l.SuccessCount == 0 && l.TotalResponseTime == 0
	})).Return(nil)
	f.callRepo.On("IncrementCallUsage", mock.Anything, cfg.ID, 1).Return(nil)

	err := f.svc.RecordCallUsage(context.Background(), cfg.ID, false, 0, nil)

	require.NoError(t, err)
	f.logRepo.AssertExpectations(t)
}

func TestRecordCallUsage_CarriesWebhookPayload(t *testing.T) {
	f := newUsageFixture(t)
	cfg := model.NewCallProvider()
	payload := []byte(`{"CallSid":"CA123","CallStatus":"completed"}`)

	f.callRepo.On("GetCallProvider", mock.Anything, cfg.ID).Return(cfg, nil)
	f.logRepo.On("CreateUsageLog", mock.Anything, mock.MatchedBy(func(l *model.UsageLog) bool {
		return len(l.Data) > 0
	})).Return(nil)
	f.callRepo.On("IncrementCallUsage", mock.Anything, cfg.ID, 1).Return(nil)

	err := f.svc.RecordCallUsage(context.Background(), cfg.ID, true, 30, payload)

	require.NoError(t, err)
}

func TestRecordCallUsage_IncrementFailureSurfaces(t *testing.T) {
	f := newUsageFixture(t)
	cfg := model.NewCallProvider()

	f.callRepo.On("GetCallProvider", mock.Anything, cfg.ID).Return(cfg, nil)
	f.logRepo.On("CreateUsageLog", mock.Anything, mock.Anything).Return(nil)
	f.callRepo.On("IncrementCallUsage", mock.Anything, cfg.ID, 1).Return(assert.AnError)

	err := f.svc.RecordCallUsage(context.Background(), cfg.ID, true, 10, nil)

	assert.Error(t, err)
	// The log row was written before the increment failed.
	f.logRepo.AssertExpectations(t)
}

func TestRecordBotUsage(t *testing.T) {
	f := newUsageFixture(t)
	cfg := model.NewBotProvider()

	f.botRepo.On("GetBotProvider", mock.Anything, cfg.ID).Return(cfg, nil)
	f.logRepo.On("CreateUsageLog", mock.Anything, mock.MatchedBy(func(l *model.UsageLog) bool {
		return l.ProviderFamily == model.FamilyBot
	})).Return(nil)
	f.botRepo.On("IncrementBotUsage", mock.Anything, cfg.ID, 1).Return(nil)

	err := f.svc.RecordBotUsage(context.Background(), cfg.ID, true, 45, nil)

	require.NoError(t, err)
	f.botRepo.AssertExpectations(t)
}

func TestCallStatistics(t *testing.T) {
	f := newUsageFixture(t)
	cfg := model.NewCallProvider(func(p *model.CallProviderConfig) {
		p.DailyLimit = 100
		p.CallsMadeToday = 25
		p.MonthlyLimit = 3000
		p.CallsMadeThisMonth = 600
	})

	f.callRepo.On("GetCallProvider", mock.Anything, cfg.ID).Return(cfg, nil)
	f.logRepo.On("UsageTotalsSince", mock.Anything, model.FamilyCall, cfg.ID, mock.MatchedBy(func(since time.Time) bool {
		return time.Since(since) > 6*24*time.Hour
	})).Return(&storage.UsageTotals{
		CallsMade:         40,
		SuccessCount:      36,
		FailureCount:      4,
		TotalResponseTime: 5220.0,
	}, nil)

	stats, err := f.svc.CallStatistics(context.Background(), cfg.ID)

	require.NoError(t, err)
	assert.InDelta(t, 25.0, stats.DailyUsagePercent, 0.001)
	assert.InDelta(t, 20.0, stats.MonthlyUsagePercent, 0.001)
	assert.Equal(t, 40, stats.TotalCalls)
	assert.InDelta(t, 90.0, stats.SuccessRate, 0.001)
	assert.InDelta(t, 145.0, stats.AvgResponseTime, 0.001)
	assert.Equal(t, statisticsWindowDays, stats.WindowDays)
}

func TestCallStatistics_AggregationFailureZeroesWindow(t *testing.T) {
	f := newUsageFixture(t)
	cfg := model.NewCallProvider()

	f.callRepo.On("GetCallProvider", mock.Anything, cfg.ID).Return(cfg, nil)
	f.logRepo.On("UsageTotalsSince", mock.Anything, model.FamilyCall, cfg.ID, mock.Anything).
		Return(nil, assert.AnError)

	stats, err := f.svc.CallStatistics(context.Background(), cfg.ID)

	require.NoError(t, err)
	assert.Zero(t, stats.TotalCalls)
	assert.Zero(t, stats.SuccessRate)
}

func TestCallStatistics_NoOutcomesNoDivideByZero(t *testing.T) {
	f := newUsageFixture(t)
	cfg := model.NewCallProvider()

	f.callRepo.On("GetCallProvider", mock.Anything, cfg.ID).Return(cfg, nil)
	f.logRepo.On("UsageTotalsSince", mock.Anything, model.FamilyCall, cfg.ID, mock.Anything).
		Return(&storage.UsageTotals{}, nil)

	stats, err := f.svc.CallStatistics(context.Background(), cfg.ID)

	require.NoError(t, err)
	assert.Zero(t, stats.SuccessRate)
	assert.Zero(t, stats.AvgResponseTime)
}
