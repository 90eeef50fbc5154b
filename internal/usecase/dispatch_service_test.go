package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gitlab.com/renewalhq/api/call-provider-service/internal/apperrors"
	"gitlab.com/renewalhq/api/call-provider-service/internal/events"
	"gitlab.com/renewalhq/api/call-provider-service/internal/model"
	"gitlab.com/renewalhq/api/call-provider-service/internal/provider"
	storagemock "gitlab.com/renewalhq/api/call-provider-service/internal/storage/mock"
	"gitlab.com/renewalhq/api/call-provider-service/internal/vault"
	"gitlab.com/renewalhq/api/call-provider-service/pkg/logger"
)

type dispatchFixture struct {
	svc          *DispatchService
	callRepo     *storagemock.CallProviderRepoMock
	botRepo      *storagemock.BotProviderRepoMock
	logRepo      *storagemock.LogRepoMock
	settingsRepo *storagemock.SettingsRepoMock
}

func newDispatchFixture(t *testing.T) *dispatchFixture {
	logger.Log = zaptest.NewLogger(t).Named("test")

	v, err := vault.New("")
	require.NoError(t, err)

	callRepo := new(storagemock.CallProviderRepoMock)
	botRepo := new(storagemock.BotProviderRepoMock)
	logRepo := new(storagemock.LogRepoMock)
	settingsRepo := new(storagemock.SettingsRepoMock)

	usage := NewUsageService(callRepo, botRepo, logRepo, events.NoopPublisher{})
	settings := NewSettingsService(settingsRepo, callRepo)

	svc := NewDispatchService(
		callRepo, botRepo, logRepo,
		provider.NewCallRegistry(callRepo, v, time.Second),
		provider.NewBotRegistry(botRepo, v, time.Second),
		usage, settings, events.NoopPublisher{},
	)
	return &dispatchFixture{
		svc:          svc,
		callRepo:     callRepo,
		botRepo:      botRepo,
		logRepo:      logRepo,
		settingsRepo: settingsRepo,
	}
}

func exotelProvider(mutators ...func(*model.CallProviderConfig)) *model.CallProviderConfig {
	p := model.NewCallProvider(func(p *model.CallProviderConfig) {
		p.ProviderType = model.ProviderTypeExotel
		p.ExotelAPIKey = "key"
		p.ExotelAPIToken = "token"
		p.ExotelAccountSID = "renewalhq1"
		p.ExotelSubdomain = "api.exotel.com"
	})
	for _, m := range mutators {
		m(p)
	}
	return p
}

func TestMakeCall_SimulatedExotel(t *testing.T) {
	f := newDispatchFixture(t)
	cfg := exotelProvider()

	f.callRepo.On("FindCallProviderByID", mock.Anything, cfg.ID).Return(cfg, nil)
	f.settingsRepo.On("FindEnabledSettings", mock.Anything).Return(nil, notFound("enabled settings"))
	f.settingsRepo.On("FindFirstSettings", mock.Anything).Return(nil, notFound("settings"))
	f.callRepo.On("GetCallProvider", mock.Anything, cfg.ID).Return(cfg, nil)
	f.logRepo.On("CreateUsageLog", mock.Anything, mock.MatchedBy(func(l *model.UsageLog) bool {
		return l.SuccessCount == 1
	})).Return(nil)
	f.callRepo.On("IncrementCallUsage", mock.Anything, cfg.ID, 1).Return(nil)

	result, err := f.svc.MakeCall(context.Background(), DispatchRequest{
		ToNumber:   "+15550001111",
		ProviderID: &cfg.ID,
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, strings.HasPrefix(result.ProviderCallID, "exotel_"))
	assert.Equal(t, "initiated", result.Status)
	assert.Equal(t, cfg.ID, result.ProviderID)
	f.callRepo.AssertExpectations(t)
	f.logRepo.AssertExpectations(t)
}

func TestMakeCall_QuotaExceeded(t *testing.T) {
	f := newDispatchFixture(t)
	cfg := exotelProvider(func(p *model.CallProviderConfig) {
		p.DailyLimit = 10
		p.CallsMadeToday = 10
	})

	f.callRepo.On("FindCallProviderByID", mock.Anything, cfg.ID).Return(cfg, nil)

	_, err := f.svc.MakeCall(context.Background(), DispatchRequest{
		ToNumber:   "+15550001111",
		ProviderID: &cfg.ID,
	})

	assert.ErrorIs(t, err, apperrors.ErrQuotaExceeded)
	f.logRepo.AssertNotCalled(t, "CreateUsageLog", mock.Anything, mock.Anything)
	f.callRepo.AssertNotCalled(t, "IncrementCallUsage", mock.Anything, mock.Anything, mock.Anything)
}

func TestMakeCall_ErrorStatusBlocksDispatch(t *testing.T) {
	f := newDispatchFixture(t)
	cfg := exotelProvider(func(p *model.CallProviderConfig) {
		p.Status = model.ProviderStatusError
	})

	f.callRepo.On("FindCallProviderByID", mock.Anything, cfg.ID).Return(cfg, nil)

	_, err := f.svc.MakeCall(context.Background(), DispatchRequest{
		ToNumber:   "+15550001111",
		ProviderID: &cfg.ID,
	})

	assert.ErrorIs(t, err, apperrors.ErrQuotaExceeded)
}

func TestMakeCall_DefaultProvider(t *testing.T) {
	f := newDispatchFixture(t)
	cfg := exotelProvider(func(p *model.CallProviderConfig) {
		p.IsDefault = true
	})

	f.callRepo.On("FindDefaultCallProvider", mock.Anything).Return(cfg, nil)
	f.settingsRepo.On("FindEnabledSettings", mock.Anything).Return(nil, notFound("enabled settings"))
	f.settingsRepo.On("FindFirstSettings", mock.Anything).Return(nil, notFound("settings"))
	f.callRepo.On("GetCallProvider", mock.Anything, cfg.ID).Return(cfg, nil)
	f.logRepo.On("CreateUsageLog", mock.Anything, mock.Anything).Return(nil)
	f.callRepo.On("IncrementCallUsage", mock.Anything, cfg.ID, 1).Return(nil)

	result, err := f.svc.MakeCall(context.Background(), DispatchRequest{ToNumber: "+15550001111"})

	require.NoError(t, err)
	assert.True(t, result.Success)
	f.callRepo.AssertCalled(t, "FindDefaultCallProvider", mock.Anything)
}

func TestMakeBotCall_NotImplemented(t *testing.T) {
	f := newDispatchFixture(t)
	cfg := model.NewBotProvider()

	f.botRepo.On("FindBotProviderByID", mock.Anything, cfg.ID).Return(cfg, nil)
	f.settingsRepo.On("FindEnabledSettings", mock.Anything).Return(nil, notFound("enabled settings"))
	f.settingsRepo.On("FindFirstSettings", mock.Anything).Return(nil, notFound("settings"))

	_, err := f.svc.MakeBotCall(context.Background(), DispatchRequest{
		ToNumber:   "+15550001111",
		ProviderID: &cfg.ID,
	})

	assert.ErrorIs(t, err, apperrors.ErrNotImplemented)
}

func TestTestCallProvider(t *testing.T) {
	f := newDispatchFixture(t)
	cfg := model.NewCallProvider()

	f.callRepo.On("GetCallProvider", mock.Anything, cfg.ID).Return(cfg, nil)
	f.logRepo.On("CreateTestResult", mock.Anything, mock.MatchedBy(func(r *model.TestResult) bool {
		return r.Status == model.TestStatusPending && r.TestNumber == "+15550002222"
	})).Return(nil)
	f.logRepo.On("UpdateTestResult", mock.Anything, mock.MatchedBy(func(r *model.TestResult) bool {
		return r.Status == model.TestStatusSuccess && r.ResponseTime >= 0.2
	})).Return(nil)

	result, err := f.svc.TestCallProvider(context.Background(), cfg.ID, "+15550002222")

	require.NoError(t, err)
	assert.Equal(t, model.TestStatusSuccess, result.Status)
	assert.GreaterOrEqual(t, result.ResponseTime, 0.2)
	f.logRepo.AssertExpectations(t)
}

func TestTestCallProvider_UnsupportedType(t *testing.T) {
	f := newDispatchFixture(t)
	cfg := model.NewCallProvider(func(p *model.CallProviderConfig) {
		p.ProviderType = "carrier_pigeon"
	})

	f.callRepo.On("GetCallProvider", mock.Anything, cfg.ID).Return(cfg, nil)

	_, err := f.svc.TestCallProvider(context.Background(), cfg.ID, "+15550002222")

	assert.ErrorIs(t, err, apperrors.ErrUnsupportedProvider)
	f.logRepo.AssertNotCalled(t, "CreateTestResult", mock.Anything, mock.Anything)
}
