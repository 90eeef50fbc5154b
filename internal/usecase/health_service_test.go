package usecase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gitlab.com/renewalhq/api/call-provider-service/internal/config"
	"gitlab.com/renewalhq/api/call-provider-service/internal/events"
	"gitlab.com/renewalhq/api/call-provider-service/internal/model"
	"gitlab.com/renewalhq/api/call-provider-service/internal/provider"
	storagemock "gitlab.com/renewalhq/api/call-provider-service/internal/storage/mock"
	"gitlab.com/renewalhq/api/call-provider-service/internal/vault"
	"gitlab.com/renewalhq/api/call-provider-service/pkg/logger"
)

type healthFixture struct {
	svc      *HealthService
	callRepo *storagemock.CallProviderRepoMock
	botRepo  *storagemock.BotProviderRepoMock
	logRepo  *storagemock.LogRepoMock
}

func newHealthFixture(t *testing.T) *healthFixture {
	logger.Log = zaptest.NewLogger(t).Named("test")

	v, err := vault.New("")
	require.NoError(t, err)

	callRepo := new(storagemock.CallProviderRepoMock)
	botRepo := new(storagemock.BotProviderRepoMock)
	logRepo := new(storagemock.LogRepoMock)

	svc, err := NewHealthService(
		callRepo, botRepo, logRepo,
		provider.NewCallRegistry(callRepo, v, time.Second),
		provider.NewBotRegistry(botRepo, v, time.Second),
		events.NoopPublisher{},
		config.HealthCheckWorkerPoolConfig{PoolSize: 4, QueueSize: 16, ExpiryTime: time.Minute},
	)
	require.NoError(t, err)
	t.Cleanup(svc.Stop)

	return &healthFixture{svc: svc, callRepo: callRepo, botRepo: botRepo, logRepo: logRepo}
}

// ubonaProvider builds a voice provider row whose probe hits the given URL.
func ubonaProvider(url string, mutators ...func(*model.CallProviderConfig)) *model.CallProviderConfig {
	p := model.NewCallProvider(func(p *model.CallProviderConfig) {
		p.ProviderType = model.ProviderTypeUbona
		p.UbonaAPIKey = "ubona-secret"
		p.UbonaAPIURL = url
	})
	for _, m := range mutators {
		m(p)
	}
	return p
}

func TestCheckCallProvider_Connected(t *testing.T) {
	f := newHealthFixture(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := ubonaProvider(server.URL)
	f.callRepo.On("GetCallProvider", mock.Anything, cfg.ID).Return(cfg, nil)
	f.callRepo.On("UpdateCallProviderHealth", mock.Anything, cfg.ID, model.ProviderStatusConnected, mock.Anything).Return(nil)
	f.logRepo.On("CreateHealthLog", mock.Anything, mock.MatchedBy(func(l *model.HealthLog) bool {
		return l.IsHealthy && l.ProviderFamily == model.FamilyCall && l.ProviderID == cfg.ID
	})).Return(nil)

	report, err := f.svc.CheckCallProvider(context.Background(), cfg.ID)

	require.NoError(t, err)
	assert.True(t, report.Healthy)
	assert.Equal(t, model.ProviderStatusConnected, report.Status)
	assert.True(t, report.CanMakeCall)
	assert.Greater(t, report.ResponseTime, 0.0)
	f.callRepo.AssertExpectations(t)
	f.logRepo.AssertExpectations(t)
}

func TestCheckCallProvider_InvalidCredentials(t *testing.T) {
	f := newHealthFixture(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	cfg := ubonaProvider(server.URL)
	f.callRepo.On("GetCallProvider", mock.Anything, cfg.ID).Return(cfg, nil)
	f.callRepo.On("UpdateCallProviderHealth", mock.Anything, cfg.ID, model.ProviderStatusError, mock.Anything).Return(nil)
	f.logRepo.On("CreateHealthLog", mock.Anything, mock.MatchedBy(func(l *model.HealthLog) bool {
		return !l.IsHealthy && l.ErrorMessage == "Invalid credentials"
	})).Return(nil)

	report, err := f.svc.CheckCallProvider(context.Background(), cfg.ID)

	require.NoError(t, err)
	assert.False(t, report.Healthy)
	assert.Equal(t, model.ProviderStatusError, report.Status)
	assert.False(t, report.CanMakeCall)
	f.callRepo.AssertExpectations(t)
	f.logRepo.AssertExpectations(t)
}

func TestCheckCallProvider_InactiveForcesDisconnected(t *testing.T) {
	f := newHealthFixture(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := ubonaProvider(server.URL, func(p *model.CallProviderConfig) {
		p.IsActive = false
	})
	f.callRepo.On("GetCallProvider", mock.Anything, cfg.ID).Return(cfg, nil)
	f.callRepo.On("UpdateCallProviderHealth", mock.Anything, cfg.ID, model.ProviderStatusDisconnected, mock.Anything).Return(nil)
	f.logRepo.On("CreateHealthLog", mock.Anything, mock.Anything).Return(nil)

	report, err := f.svc.CheckCallProvider(context.Background(), cfg.ID)

	require.NoError(t, err)
	// The vendor answered, but an inactive row is never reported available.
	assert.True(t, report.Healthy)
	assert.Equal(t, model.ProviderStatusDisconnected, report.Status)
	assert.False(t, report.CanMakeCall)
	f.callRepo.AssertExpectations(t)
}

func TestCheckCallProvider_UnsupportedTypeSkipsLog(t *testing.T) {
	f := newHealthFixture(t)

	cfg := model.NewCallProvider(func(p *model.CallProviderConfig) {
		p.ProviderType = "carrier_pigeon"
	})
	f.callRepo.On("GetCallProvider", mock.Anything, cfg.ID).Return(cfg, nil)

	report, err := f.svc.CheckCallProvider(context.Background(), cfg.ID)

	require.NoError(t, err)
	assert.Equal(t, model.ProviderStatusError, report.Status)
	assert.Zero(t, report.ResponseTime)
	f.callRepo.AssertNotCalled(t, "UpdateCallProviderHealth", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.logRepo.AssertNotCalled(t, "CreateHealthLog", mock.Anything, mock.Anything)
}

func TestCheckCallProvider_PersistenceFailureDoesNotFail(t *testing.T) {
	f := newHealthFixture(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := ubonaProvider(server.URL)
	f.callRepo.On("GetCallProvider", mock.Anything, cfg.ID).Return(cfg, nil)
	f.callRepo.On("UpdateCallProviderHealth", mock.Anything, cfg.ID, model.ProviderStatusConnected, mock.Anything).
		Return(assert.AnError)
	f.logRepo.On("CreateHealthLog", mock.Anything, mock.Anything).Return(assert.AnError)

	report, err := f.svc.CheckCallProvider(context.Background(), cfg.ID)

	require.NoError(t, err)
	assert.True(t, report.Healthy)
	assert.Equal(t, model.ProviderStatusConnected, report.Status)
}

func TestCheckBotProvider_MissingFieldsUnhealthy(t *testing.T) {
	f := newHealthFixture(t)

	cfg := model.NewBotProvider(func(p *model.BotCallingProviderConfig) {
		p.ProviderType = model.ProviderTypeGnaniBot
		p.GnaniAPIKey = ""
		p.GnaniAPIURL = ""
	})
	f.botRepo.On("GetBotProvider", mock.Anything, cfg.ID).Return(cfg, nil)
	f.botRepo.On("UpdateBotProviderHealth", mock.Anything, cfg.ID, model.ProviderStatusError, mock.Anything).Return(nil)
	f.logRepo.On("CreateHealthLog", mock.Anything, mock.MatchedBy(func(l *model.HealthLog) bool {
		return l.ProviderFamily == model.FamilyBot && !l.IsHealthy
	})).Return(nil)

	report, err := f.svc.CheckBotProvider(context.Background(), cfg.ID)

	require.NoError(t, err)
	assert.False(t, report.Healthy)
	assert.Contains(t, report.Details, "missing required credentials")
	f.botRepo.AssertExpectations(t)
}

func TestCheckAll(t *testing.T) {
	f := newHealthFixture(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	first := ubonaProvider(server.URL, func(p *model.CallProviderConfig) { p.ID = 1 })
	second := ubonaProvider(server.URL, func(p *model.CallProviderConfig) { p.ID = 2 })

	f.callRepo.On("ListCallProviders", mock.Anything, mock.Anything).
		Return([]model.CallProviderConfig{*first, *second}, nil)
	f.botRepo.On("ListBotProviders", mock.Anything, mock.Anything).
		Return([]model.BotCallingProviderConfig{}, nil)
	f.callRepo.On("GetCallProvider", mock.Anything, int64(1)).Return(first, nil)
	f.callRepo.On("GetCallProvider", mock.Anything, int64(2)).Return(second, nil)
	f.callRepo.On("UpdateCallProviderHealth", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.logRepo.On("CreateHealthLog", mock.Anything, mock.Anything).Return(nil)

	bulk, err := f.svc.CheckAll(context.Background())

	require.NoError(t, err)
	assert.Len(t, bulk.CallProviders, 2)
	assert.Empty(t, bulk.BotProviders)
	for _, report := range bulk.CallProviders {
		assert.True(t, report.Healthy)
	}
}
