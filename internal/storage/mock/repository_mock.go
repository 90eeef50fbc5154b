package mock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"gitlab.com/renewalhq/api/call-provider-service/internal/model"
	"gitlab.com/renewalhq/api/call-provider-service/internal/storage"
)

// --- CallProviderRepo Mock ---

// CallProviderRepoMock mocks the CallProviderRepo interface
type CallProviderRepoMock struct {
	mock.Mock
}

func (m *CallProviderRepoMock) CreateCallProvider(ctx context.Context, p *model.CallProviderConfig) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *CallProviderRepoMock) ListCallProviders(ctx context.Context, filter storage.ProviderFilter) ([]model.CallProviderConfig, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CallProviderConfig), args.Error(1)
}

func (m *CallProviderRepoMock) ListActiveCallProviders(ctx context.Context) ([]model.CallProviderConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CallProviderConfig), args.Error(1)
}

func (m *CallProviderRepoMock) GetCallProvider(ctx context.Context, id int64) (*model.CallProviderConfig, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CallProviderConfig), args.Error(1)
}

func (m *CallProviderRepoMock) FindCallProviderByID(ctx context.Context, id int64) (*model.CallProviderConfig, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CallProviderConfig), args.Error(1)
}

func (m *CallProviderRepoMock) FindDefaultCallProvider(ctx context.Context) (*model.CallProviderConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CallProviderConfig), args.Error(1)
}

func (m *CallProviderRepoMock) UpdateCallProvider(ctx context.Context, p *model.CallProviderConfig) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *CallProviderRepoMock) UpdateCallProviderCredentials(ctx context.Context, id int64, updates map[string]interface{}, actor string) error {
	args := m.Called(ctx, id, updates, actor)
	return args.Error(0)
}

func (m *CallProviderRepoMock) SetCallProviderActive(ctx context.Context, id int64, active bool, actor string) error {
	args := m.Called(ctx, id, active, actor)
	return args.Error(0)
}

func (m *CallProviderRepoMock) SoftDeleteCallProvider(ctx context.Context, id int64, actor string) error {
	args := m.Called(ctx, id, actor)
	return args.Error(0)
}

func (m *CallProviderRepoMock) SetDefaultCallProvider(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *CallProviderRepoMock) UpdateCallProviderHealth(ctx context.Context, id int64, status string, checkedAt time.Time) error {
	args := m.Called(ctx, id, status, checkedAt)
	return args.Error(0)
}

func (m *CallProviderRepoMock) IncrementCallUsage(ctx context.Context, id int64, count int) error {
	args := m.Called(ctx, id, count)
	return args.Error(0)
}

func (m *CallProviderRepoMock) ResetCallUsage(ctx context.Context, id int64, period string) error {
	args := m.Called(ctx, id, period)
	return args.Error(0)
}

// --- BotProviderRepo Mock ---

// BotProviderRepoMock mocks the BotProviderRepo interface
type BotProviderRepoMock struct {
	mock.Mock
}

func (m *BotProviderRepoMock) CreateBotProvider(ctx context.Context, p *model.BotCallingProviderConfig) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *BotProviderRepoMock) ListBotProviders(ctx context.Context, filter storage.ProviderFilter) ([]model.BotCallingProviderConfig, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BotCallingProviderConfig), args.Error(1)
}

func (m *BotProviderRepoMock) ListActiveBotProviders(ctx context.Context) ([]model.BotCallingProviderConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BotCallingProviderConfig), args.Error(1)
}

func (m *BotProviderRepoMock) GetBotProvider(ctx context.Context, id int64) (*model.BotCallingProviderConfig, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BotCallingProviderConfig), args.Error(1)
}

func (m *BotProviderRepoMock) FindBotProviderByID(ctx context.Context, id int64) (*model.BotCallingProviderConfig, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BotCallingProviderConfig), args.Error(1)
}

func (m *BotProviderRepoMock) FindDefaultBotProvider(ctx context.Context) (*model.BotCallingProviderConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BotCallingProviderConfig), args.Error(1)
}

func (m *BotProviderRepoMock) UpdateBotProvider(ctx context.Context, p *model.BotCallingProviderConfig) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *BotProviderRepoMock) UpdateBotProviderCredentials(ctx context.Context, id int64, updates map[string]interface{}, actor string) error {
	args := m.Called(ctx, id, updates, actor)
	return args.Error(0)
}

func (m *BotProviderRepoMock) SetBotProviderActive(ctx context.Context, id int64, active bool, actor string) error {
	args := m.Called(ctx, id, active, actor)
	return args.Error(0)
}

func (m *BotProviderRepoMock) SoftDeleteBotProvider(ctx context.Context, id int64, actor string) error {
	args := m.Called(ctx, id, actor)
	return args.Error(0)
}

func (m *BotProviderRepoMock) SetDefaultBotProvider(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *BotProviderRepoMock) UpdateBotProviderHealth(ctx context.Context, id int64, status string, checkedAt time.Time) error {
	args := m.Called(ctx, id, status, checkedAt)
	return args.Error(0)
}

func (m *BotProviderRepoMock) IncrementBotUsage(ctx context.Context, id int64, count int) error {
	args := m.Called(ctx, id, count)
	return args.Error(0)
}

func (m *BotProviderRepoMock) ResetBotUsage(ctx context.Context, id int64, period string) error {
	args := m.Called(ctx, id, period)
	return args.Error(0)
}

// --- LogRepo Mock ---

// LogRepoMock mocks the LogRepo interface
type LogRepoMock struct {
	mock.Mock
}

func (m *LogRepoMock) CreateHealthLog(ctx context.Context, l *model.HealthLog) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *LogRepoMock) ListHealthLogs(ctx context.Context, filter storage.HealthLogFilter) ([]model.HealthLog, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.HealthLog), args.Error(1)
}

func (m *LogRepoMock) CreateUsageLog(ctx context.Context, l *model.UsageLog) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *LogRepoMock) ListUsageLogs(ctx context.Context, filter storage.UsageLogFilter) ([]model.UsageLog, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UsageLog), args.Error(1)
}

func (m *LogRepoMock) UsageTotalsSince(ctx context.Context, family string, providerID int64, since time.Time) (*storage.UsageTotals, error) {
	args := m.Called(ctx, family, providerID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.UsageTotals), args.Error(1)
}

func (m *LogRepoMock) CreateTestResult(ctx context.Context, r *model.TestResult) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *LogRepoMock) UpdateTestResult(ctx context.Context, r *model.TestResult) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *LogRepoMock) ListTestResults(ctx context.Context, family string, providerID int64, limit int) ([]model.TestResult, error) {
	args := m.Called(ctx, family, providerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TestResult), args.Error(1)
}

// --- SettingsRepo Mock ---

// SettingsRepoMock mocks the SettingsRepo interface
type SettingsRepoMock struct {
	mock.Mock
}

func (m *SettingsRepoMock) FindEnabledSettings(ctx context.Context) (*model.RenewalSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RenewalSettings), args.Error(1)
}

func (m *SettingsRepoMock) FindFirstSettings(ctx context.Context) (*model.RenewalSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RenewalSettings), args.Error(1)
}

func (m *SettingsRepoMock) FindSettingsForProvider(ctx context.Context, providerID int64) (*model.RenewalSettings, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RenewalSettings), args.Error(1)
}

func (m *SettingsRepoMock) CreateSettings(ctx context.Context, s *model.RenewalSettings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *SettingsRepoMock) UpdateSettings(ctx context.Context, s *model.RenewalSettings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *SettingsRepoMock) DisableIntegrationExcept(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
