package model

import (
	"time"

	"gorm.io/datatypes"
)

// Provider families discriminate which config table a log row refers to.
const (
	FamilyCall = "call"
	FamilyBot  = "bot"
)

// Health check test types.
const (
	TestTypeHealthCheck = "health_check"
	TestTypeManual      = "manual_test"
)

// Test result statuses.
const (
	TestStatusPending = "pending"
	TestStatusSuccess = "success"
	TestStatusFailed  = "failed"
)

// HealthLog is an append-only record of one health probe against a provider.
type HealthLog struct {
	ID int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	// ProviderFamily is "call" or "bot"; ProviderID points into that family's config table.
	ProviderFamily string `json:"provider_family" gorm:"column:provider_family;index:idx_health_provider" validate:"required,oneof=call bot"`
	ProviderID     int64  `json:"provider_id" gorm:"column:provider_id;index:idx_health_provider" validate:"required"`
	IsHealthy      bool   `json:"is_healthy" gorm:"column:is_healthy"`
	// ErrorMessage is populated only for unhealthy probes.
	ErrorMessage string `json:"error_message,omitempty" gorm:"column:error_message"`
	// ResponseTime is the probe's wall-clock duration in seconds.
	ResponseTime float64   `json:"response_time" gorm:"column:response_time"`
	TestType     string    `json:"test_type" gorm:"column:test_type;default:health_check"`
	CheckedAt    time.Time `json:"checked_at" gorm:"column:checked_at;autoCreateTime"`
	CreatedBy    string    `json:"created_by,omitempty" gorm:"column:created_by"`
}

// TableName specifies the table name for GORM.
func (HealthLog) TableName() string {
	return "provider_health_logs"
}

// UsageLog is an append-only record of completed call outcomes. Inserting a
// row does not touch the provider's counters; IncrementUsage does that
// separately.
type UsageLog struct {
	ID             int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	ProviderFamily string `json:"provider_family" gorm:"column:provider_family;index:idx_usage_provider" validate:"required,oneof=call bot"`
	ProviderID     int64  `json:"provider_id" gorm:"column:provider_id;index:idx_usage_provider" validate:"required"`
	CallsMade      int    `json:"calls_made" gorm:"column:calls_made;default:1"`
	SuccessCount   int    `json:"success_count" gorm:"column:success_count"`
	FailureCount   int    `json:"failure_count" gorm:"column:failure_count"`
	// TotalResponseTime accumulates call durations in seconds.
	TotalResponseTime float64 `json:"total_response_time" gorm:"column:total_response_time"`
	// Data holds the raw vendor callback payload when the row came from a webhook.
	Data     datatypes.JSON `json:"data,omitempty" gorm:"type:jsonb;column:data"`
	LoggedAt time.Time      `json:"logged_at" gorm:"column:logged_at;autoCreateTime;index"`
}

// TableName specifies the table name for GORM.
func (UsageLog) TableName() string {
	return "provider_usage_logs"
}

// TestResult records an ad-hoc "place a test call to number X" action.
type TestResult struct {
	ID             int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ProviderFamily string    `json:"provider_family" gorm:"column:provider_family;index:idx_test_provider" validate:"required,oneof=call bot"`
	ProviderID     int64     `json:"provider_id" gorm:"column:provider_id;index:idx_test_provider" validate:"required"`
	TestNumber     string    `json:"test_number" gorm:"column:test_number" validate:"required"`
	Status         string    `json:"status" gorm:"column:status;default:pending" validate:"oneof=pending success failed"`
	ErrorMessage   string    `json:"error_message,omitempty" gorm:"column:error_message"`
	ResponseTime   float64   `json:"response_time" gorm:"column:response_time"`
	TestedBy       string    `json:"tested_by,omitempty" gorm:"column:tested_by"`
	TestedAt       time.Time `json:"tested_at" gorm:"column:tested_at;autoCreateTime"`
}

// TableName specifies the table name for GORM.
func (TestResult) TableName() string {
	return "provider_test_results"
}
