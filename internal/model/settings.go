package model

import (
	"time"
)

// Default call rules applied when no usable settings row exists.
const (
	DefaultCallDurationSeconds = 1800
	DefaultCallRecording       = false
	DefaultCallAnalytics       = false
)

// RenewalSettings is the row-per-provider call-shaping profile. Exactly one
// row should have EnableCallIntegration set at a time; the settings service
// enforces that on update, not the database.
type RenewalSettings struct {
	ID int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	// ActiveProviderID links this row to its voice provider. Rows are created
	// lazily, one per provider, on first access.
	ActiveProviderID int64 `json:"active_provider_id" gorm:"column:active_provider_id;uniqueIndex"`
	// EnableCallIntegration is the single global switch selecting which
	// provider's profile is in force.
	EnableCallIntegration bool `json:"enable_call_integration" gorm:"column:enable_call_integration"`

	// Integration testing toggles.
	TestModeEnabled bool   `json:"test_mode_enabled" gorm:"column:test_mode_enabled"`
	TestPhoneNumber string `json:"test_phone_number,omitempty" gorm:"column:test_phone_number"`

	// Global behaviour toggles.
	AutoRefreshEnabled    bool `json:"auto_refresh_enabled" gorm:"column:auto_refresh_enabled;default:true"`
	ShowEditCaseButton    bool `json:"show_edit_case_button" gorm:"column:show_edit_case_button;default:true"`
	EnforceProviderLimits bool `json:"enforce_provider_limits" gorm:"column:enforce_provider_limits;default:true"`
	DefaultRenewalPeriod  int  `json:"default_renewal_period" gorm:"column:default_renewal_period;default:30" validate:"gte=1"`
	AutoAssignCases       bool `json:"auto_assign_cases" gorm:"column:auto_assign_cases"`

	// Call shaping, bounded by the provider type's capability entry.
	DefaultCallDuration int  `json:"default_call_duration" gorm:"column:default_call_duration;default:30" validate:"gte=1"` // minutes
	MaxConcurrentCalls  int  `json:"max_concurrent_calls" gorm:"column:max_concurrent_calls;default:10" validate:"gte=1"`
	EnableCallRecording bool `json:"enable_call_recording" gorm:"column:enable_call_recording"`
	EnableCallAnalytics bool `json:"enable_call_analytics" gorm:"column:enable_call_analytics"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
	UpdatedBy string    `json:"updated_by,omitempty" gorm:"column:updated_by"`
}

// TableName specifies the table name for GORM.
func (RenewalSettings) TableName() string {
	return "renewal_settings"
}

// CallRules are the shaping parameters an adapter applies when placing a
// call. Resolved from the enabled RenewalSettings row, degrading to safe
// defaults when no row is usable.
type CallRules struct {
	Record        bool `json:"record"`
	DurationLimit int  `json:"duration_limit"` // seconds
	Analytics     bool `json:"analytics"`
}

// DefaultCallRules returns the hardcoded safe defaults.
func DefaultCallRules() CallRules {
	return CallRules{
		Record:        DefaultCallRecording,
		DurationLimit: DefaultCallDurationSeconds,
		Analytics:     DefaultCallAnalytics,
	}
}

// RulesFrom derives CallRules from a settings row. Duration is stored in
// minutes on the row and returned in seconds.
func RulesFrom(s *RenewalSettings) CallRules {
	return CallRules{
		Record:        s.EnableCallRecording,
		DurationLimit: s.DefaultCallDuration * 60,
		Analytics:     s.EnableCallAnalytics,
	}
}
