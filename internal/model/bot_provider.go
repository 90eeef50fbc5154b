package model

import (
	"time"
)

// Bot-calling provider types.
const (
	ProviderTypeUbonaBot      = "ubona_bot_calling"
	ProviderTypeHouseOfAgents = "house_of_agents"
	ProviderTypeGnaniBot      = "gnani_ai_bot"
	ProviderTypeTwilioBot     = "twilio_voice_bot"
)

// BotCallingProviderConfig represents one configured bot-calling vendor
// account. It mirrors CallProviderConfig's operational and audit shape with
// a different credential surface per vendor.
type BotCallingProviderConfig struct {
	// ID is the internal database primary key.
	ID   int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"column:name" validate:"required,max=100"`
	// ProviderType selects the adapter used for this row.
	ProviderType string `json:"provider_type" gorm:"column:provider_type;index" validate:"required,oneof=ubona_bot_calling house_of_agents gnani_ai_bot twilio_voice_bot"`

	// Ubona bot-calling credentials.
	UbonaAPIKey     string `json:"-" gorm:"column:ubona_api_key"`
	UbonaAPIURL     string `json:"ubona_api_url,omitempty" gorm:"column:ubona_api_url"`
	UbonaAccountSID string `json:"ubona_account_sid,omitempty" gorm:"column:ubona_account_sid"`
	UbonaCallerID   string `json:"ubona_caller_id,omitempty" gorm:"column:ubona_caller_id"`
	UbonaBotScript  string `json:"ubona_bot_script,omitempty" gorm:"column:ubona_bot_script"`

	// House of Agents credentials.
	HoaAPIKey     string `json:"-" gorm:"column:hoa_api_key"`
	HoaAPIURL     string `json:"hoa_api_url,omitempty" gorm:"column:hoa_api_url"`
	HoaAgentID    string `json:"hoa_agent_id,omitempty" gorm:"column:hoa_agent_id"`
	HoaCampaignID string `json:"hoa_campaign_id,omitempty" gorm:"column:hoa_campaign_id"`
	HoaWebhookURL string `json:"hoa_webhook_url,omitempty" gorm:"column:hoa_webhook_url"`
	HoaBotScript  string `json:"hoa_bot_script,omitempty" gorm:"column:hoa_bot_script"`

	// Gnani.ai credentials.
	GnaniAPIKey      string `json:"-" gorm:"column:gnani_api_key"`
	GnaniAPIURL      string `json:"gnani_api_url,omitempty" gorm:"column:gnani_api_url"`
	GnaniBotID       string `json:"gnani_bot_id,omitempty" gorm:"column:gnani_bot_id"`
	GnaniProjectID   string `json:"gnani_project_id,omitempty" gorm:"column:gnani_project_id"`
	GnaniLanguage    string `json:"gnani_language,omitempty" gorm:"column:gnani_language"`
	GnaniVoiceGender string `json:"gnani_voice_gender,omitempty" gorm:"column:gnani_voice_gender"`

	// Twilio voice-bot credentials.
	TwilioAccountSID string `json:"twilio_account_sid,omitempty" gorm:"column:twilio_account_sid"`
	TwilioAuthToken  string `json:"-" gorm:"column:twilio_auth_token"`
	TwilioFromNumber string `json:"twilio_from_number,omitempty" gorm:"column:twilio_from_number"`
	TwilioBotScript  string `json:"twilio_bot_script,omitempty" gorm:"column:twilio_bot_script"`

	DailyLimit         int  `json:"daily_limit" gorm:"column:daily_limit;default:1000" validate:"gte=0"`
	MonthlyLimit       int  `json:"monthly_limit" gorm:"column:monthly_limit;default:30000" validate:"gte=0"`
	RateLimitPerMinute int  `json:"rate_limit_per_minute" gorm:"column:rate_limit_per_minute;default:10" validate:"gte=0"`
	Priority           int  `json:"priority" gorm:"column:priority;default:1" validate:"oneof=1 2 3"`
	IsDefault          bool `json:"is_default" gorm:"column:is_default;index"`
	IsActive           bool `json:"is_active" gorm:"column:is_active;index"`

	Status          string     `json:"status" gorm:"column:status;default:unknown"`
	LastHealthCheck *time.Time `json:"last_health_check,omitempty" gorm:"column:last_health_check"`

	CallsMadeToday     int        `json:"calls_made_today" gorm:"column:calls_made_today;default:0"`
	CallsMadeThisMonth int        `json:"calls_made_this_month" gorm:"column:calls_made_this_month;default:0"`
	LastResetDaily     *time.Time `json:"last_reset_daily,omitempty" gorm:"column:last_reset_daily"`
	LastResetMonthly   *time.Time `json:"last_reset_monthly,omitempty" gorm:"column:last_reset_monthly"`

	CreatedAt time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
	CreatedBy string     `json:"created_by,omitempty" gorm:"column:created_by"`
	UpdatedBy string     `json:"updated_by,omitempty" gorm:"column:updated_by"`
	IsDeleted bool       `json:"-" gorm:"column:is_deleted;index;default:false"`
	DeletedAt *time.Time `json:"-" gorm:"column:deleted_at"`
	DeletedBy string     `json:"-" gorm:"column:deleted_by"`
}

// TableName specifies the table name for GORM.
func (BotCallingProviderConfig) TableName() string {
	return "bot_calling_provider_configs"
}

// CanMakeCall reports whether this bot provider may be selected right now.
// Same invariant as the voice family.
func (p *BotCallingProviderConfig) CanMakeCall() bool {
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
func (p *BotCallingProviderConfig) DailyUsagePercent() float64 {
	if p.DailyLimit <= 0 {
		return 0
	}
	return float64(p.CallsMadeToday) / float64(p.DailyLimit) * 100
}

// MonthlyUsagePercent returns calls_made_this_month as a percentage of monthly_limit.
func (p *BotCallingProviderConfig) MonthlyUsagePercent() float64 {
	if p.MonthlyLimit <= 0 {
		return 0
	}
	return float64(p.CallsMadeThisMonth) / float64(p.MonthlyLimit) * 100
}

// BotProviderSecretColumns lists the credential columns stored encrypted.
func BotProviderSecretColumns() []string {
	return []string{
		"ubona_api_key",
		"hoa_api_key",
		"gnani_api_key",
		"twilio_auth_token",
	}
}
