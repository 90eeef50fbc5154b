package storage

import (
	"context"
	"time"

	"gitlab.com/renewalhq/api/call-provider-service/internal/model"
)

// ProviderFilter narrows provider list queries. Nil/zero fields are ignored.
type ProviderFilter struct {
	ProviderType string
	Status       string
	IsActive     *bool
	Priority     *int
}

// HealthLogFilter narrows health log queries.
type HealthLogFilter struct {
	ProviderFamily string
	ProviderID     int64
	IsHealthy      *bool
	Since          *time.Time
	Until          *time.Time
	Limit          int
}

// UsageLogFilter narrows usage log queries.
type UsageLogFilter struct {
	ProviderFamily string
	ProviderID     int64
	Since          *time.Time
	Until          *time.Time
	Limit          int
}

// UsageTotals aggregates usage log rows over a window.
type UsageTotals struct {
	CallsMade         int     `json:"calls_made"`
	SuccessCount      int     `json:"success_count"`
	FailureCount      int     `json:"failure_count"`
	TotalResponseTime float64 `json:"total_response_time"`
}

// Usage reset periods.
const (
	ResetPeriodDaily   = "daily"
	ResetPeriodMonthly = "monthly"
)

// CallProviderRepo manages the voice provider config table.
type CallProviderRepo interface {
	CreateCallProvider(ctx context.Context, p *model.CallProviderConfig) error
	ListCallProviders(ctx context.Context, filter ProviderFilter) ([]model.CallProviderConfig, error)
	ListActiveCallProviders(ctx context.Context) ([]model.CallProviderConfig, error)
	// GetCallProvider loads a non-deleted row regardless of active state.
	GetCallProvider(ctx context.Context, id int64) (*model.CallProviderConfig, error)
	// FindCallProviderByID loads an active, non-deleted row.
	FindCallProviderByID(ctx context.Context, id int64) (*model.CallProviderConfig, error)
	// FindDefaultCallProvider loads the single active default row. Zero rows
	// yield ErrNotFound, more than one yields ErrAmbiguousDefault.
	FindDefaultCallProvider(ctx context.Context) (*model.CallProviderConfig, error)
	UpdateCallProvider(ctx context.Context, p *model.CallProviderConfig) error
	UpdateCallProviderCredentials(ctx context.Context, id int64, updates map[string]interface{}, actor string) error
	SetCallProviderActive(ctx context.Context, id int64, active bool, actor string) error
	SoftDeleteCallProvider(ctx context.Context, id int64, actor string) error
	// SetDefaultCallProvider clears is_default on rows sharing the target's
	// provider_type, then sets it on the target.
	SetDefaultCallProvider(ctx context.Context, id int64) error
	UpdateCallProviderHealth(ctx context.Context, id int64, status string, checkedAt time.Time) error
	// IncrementCallUsage adds count to both counters with one atomic UPDATE.
	IncrementCallUsage(ctx context.Context, id int64, count int) error
	ResetCallUsage(ctx context.Context, id int64, period string) error
}

// BotProviderRepo manages the bot provider config table.
type BotProviderRepo interface {
	CreateBotProvider(ctx context.Context, p *model.BotCallingProviderConfig) error
	ListBotProviders(ctx context.Context, filter ProviderFilter) ([]model.BotCallingProviderConfig, error)
	ListActiveBotProviders(ctx context.Context) ([]model.BotCallingProviderConfig, error)
	GetBotProvider(ctx context.Context, id int64) (*model.BotCallingProviderConfig, error)
	FindBotProviderByID(ctx context.Context, id int64) (*model.BotCallingProviderConfig, error)
	FindDefaultBotProvider(ctx context.Context) (*model.BotCallingProviderConfig, error)
	UpdateBotProvider(ctx context.Context, p *model.BotCallingProviderConfig) error
	UpdateBotProviderCredentials(ctx context.Context, id int64, updates map[string]interface{}, actor string) error
	SetBotProviderActive(ctx context.Context, id int64, active bool, actor string) error
	SoftDeleteBotProvider(ctx context.Context, id int64, actor string) error
	// SetDefaultBotProvider clears is_default across the whole bot family,
	// then sets it on the target.
	SetDefaultBotProvider(ctx context.Context, id int64) error
	UpdateBotProviderHealth(ctx context.Context, id int64, status string, checkedAt time.Time) error
	IncrementBotUsage(ctx context.Context, id int64, count int) error
	ResetBotUsage(ctx context.Context, id int64, period string) error
}

// LogRepo manages the append-only health, usage and test tables.
type LogRepo interface {
	CreateHealthLog(ctx context.Context, l *model.HealthLog) error
	ListHealthLogs(ctx context.Context, filter HealthLogFilter) ([]model.HealthLog, error)
	CreateUsageLog(ctx context.Context, l *model.UsageLog) error
	ListUsageLogs(ctx context.Context, filter UsageLogFilter) ([]model.UsageLog, error)
	UsageTotalsSince(ctx context.Context, family string, providerID int64, since time.Time) (*UsageTotals, error)
	CreateTestResult(ctx context.Context, r *model.TestResult) error
	UpdateTestResult(ctx context.Context, r *model.TestResult) error
	ListTestResults(ctx context.Context, family string, providerID int64, limit int) ([]model.TestResult, error)
}

// SettingsRepo manages the renewal settings table.
type SettingsRepo interface {
	// FindEnabledSettings loads the row with enable_call_integration set.
	FindEnabledSettings(ctx context.Context) (*model.RenewalSettings, error)
	// FindFirstSettings loads the oldest row, used as fallback.
	FindFirstSettings(ctx context.Context) (*model.RenewalSettings, error)
	FindSettingsForProvider(ctx context.Context, providerID int64) (*model.RenewalSettings, error)
	CreateSettings(ctx context.Context, s *model.RenewalSettings) error
	UpdateSettings(ctx context.Context, s *model.RenewalSettings) error
	// DisableIntegrationExcept clears enable_call_integration on every other
	// row, keeping the single-active-row invariant.
	DisableIntegrationExcept(ctx context.Context, id int64) error
}
