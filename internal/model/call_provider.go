package model

import (
	"time"
)

// Voice provider types.
const (
	ProviderTypeTwilio = "twilio"
	ProviderTypeExotel = "exotel"
	ProviderTypeUbona  = "ubona"
)

// Provider connection statuses, written by the health monitor.
const (
	ProviderStatusConnected    = "connected"
	ProviderStatusDisconnected = "disconnected"
	ProviderStatusError        = "error"
	ProviderStatusUnknown      = "unknown"
)

// Provider priorities.
const (
	PriorityPrimary   = 1
	PrioritySecondary = 2
	PriorityTertiary  = 3
)

// CallProviderConfig represents one configured voice-call vendor account.
// Secret credential fields are stored Fernet-encrypted; the vault decrypts
// them when an adapter is constructed.
type CallProviderConfig struct {
	// ID is the internal database primary key.
	ID int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	// Name is the operator-facing label for this account.
	Name string `json:"name" gorm:"column:name" validate:"required,max=100"`
	// ProviderType selects the adapter used for this row.
	ProviderType string `json:"provider_type" gorm:"column:provider_type;index" validate:"required,oneof=twilio exotel ubona"`

	// Twilio credentials.
	TwilioAccountSID        string `json:"twilio_account_sid,omitempty" gorm:"column:twilio_account_sid"`
	TwilioAuthToken         string `json:"-" gorm:"column:twilio_auth_token"`
	TwilioFromNumber        string `json:"twilio_from_number,omitempty" gorm:"column:twilio_from_number"`
	TwilioStatusCallbackURL string `json:"twilio_status_callback_url,omitempty" gorm:"column:twilio_status_callback_url"`
	TwilioVoiceURL          string `json:"twilio_voice_url,omitempty" gorm:"column:twilio_voice_url"`

	// Exotel credentials.
	ExotelAPIKey     string `json:"-" gorm:"column:exotel_api_key"`
	ExotelAPIToken   string `json:"-" gorm:"column:exotel_api_token"`
	ExotelAccountSID string `json:"exotel_account_sid,omitempty" gorm:"column:exotel_account_sid"`
	ExotelSubdomain  string `json:"exotel_subdomain,omitempty" gorm:"column:exotel_subdomain"`
	ExotelCallerID   string `json:"exotel_caller_id,omitempty" gorm:"column:exotel_caller_id"`

	// Ubona credentials.
	UbonaAPIKey     string `json:"-" gorm:"column:ubona_api_key"`
	UbonaAPIURL     string `json:"ubona_api_url,omitempty" gorm:"column:ubona_api_url"`
	UbonaAccountSID string `json:"ubona_account_sid,omitempty" gorm:"column:ubona_account_sid"`
	UbonaCallerID   string `json:"ubona_caller_id,omitempty" gorm:"column:ubona_caller_id"`

	// DailyLimit caps calls_made_today; CanMakeCall returns false at the cap.
	DailyLimit int `json:"daily_limit" gorm:"column:daily_limit;default:1000" validate:"gte=0"`
	// MonthlyLimit caps calls_made_this_month.
	MonthlyLimit       int  `json:"monthly_limit" gorm:"column:monthly_limit;default:30000" validate:"gte=0"`
	RateLimitPerMinute int  `json:"rate_limit_per_minute" gorm:"column:rate_limit_per_minute;default:10" validate:"gte=0"`
	Priority           int  `json:"priority" gorm:"column:priority;default:1" validate:"oneof=1 2 3"`
	IsDefault          bool `json:"is_default" gorm:"column:is_default;index"`
	IsActive           bool `json:"is_active" gorm:"column:is_active;index"`

	// Status is the last observed health state (connected/disconnected/error/unknown).
	Status          string     `json:"status" gorm:"column:status;default:unknown"`
	LastHealthCheck *time.Time `json:"last_health_check,omitempty" gorm:"column:last_health_check"`

	// Usage counters, reset by the daily/monthly reset operations.
	CallsMadeToday     int        `json:"calls_made_today" gorm:"column:calls_made_today;default:0"`
	CallsMadeThisMonth int        `json:"calls_made_this_month" gorm:"column:calls_made_this_month;default:0"`
	LastResetDaily     *time.Time `json:"last_reset_daily,omitempty" gorm:"column:last_reset_daily"`
	LastResetMonthly   *time.Time `json:"last_reset_monthly,omitempty" gorm:"column:last_reset_monthly"`

	// Audit trail.
	CreatedAt time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
	CreatedBy string     `json:"created_by,omitempty" gorm:"column:created_by"`
	UpdatedBy string     `json:"updated_by,omitempty" gorm:"column:updated_by"`
	IsDeleted bool       `json:"-" gorm:"column:is_deleted;index;default:false"`
	DeletedAt *time.Time `json:"-" gorm:"column:deleted_at"`
	DeletedBy string     `json:"-" gorm:"column:deleted_by"`
}

// TableName specifies the table name for GORM.
func (CallProviderConfig) TableName() string {
	return "call_provider_configs"
}

// CanMakeCall reports whether this provider may be selected for a call right
// now: active, not in a failed state, and under both usage quotas.
func (p *CallProviderConfig) CanMakeCall() bool {
	if !p.IsActive {
		return false
	}
	if p.Status == ProviderStatusError || p.Status == ProviderStatusDisconnected {
		return false
	}
	if p.CallsMadeToday >= p.DailyLimit {
		return false
	}
	if p.CallsMadeThisMonth >= p.MonthlyLimit {
		return false
	}
	return true
}

// DailyUsagePercent returns calls_made_today as a percentage of daily_limit.
func (p *CallProviderConfig) DailyUsagePercent() float64 {
	if p.DailyLimit <= 0 {
		return 0
	}
	return float64(p.CallsMadeToday) / float64(p.DailyLimit) * 100
}

// MonthlyUsagePercent returns calls_made_this_month as a percentage of monthly_limit.
func (p *CallProviderConfig) MonthlyUsagePercent() float64 {
	if p.MonthlyLimit <= 0 {
		return 0
	}
	return float64(p.CallsMadeThisMonth) / float64(p.MonthlyLimit) * 100
}

// CallProviderSecretColumns lists the credential columns stored encrypted.
func CallProviderSecretColumns() []string {
	return []string{
		"twilio_auth_token",
		"exotel_api_key",
		"exotel_api_token",
		"ubona_api_key",
	}
}
