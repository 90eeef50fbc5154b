package model

import (
	"encoding/json"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/datatypes"

	"gitlab.com/renewalhq/api/call-provider-service/pkg/utils"
)

// init ensures gofakeit is seeded.
func init() {
	gofakeit.Seed(time.Now().UnixNano())
}

// JSONBMap builds a jsonb value from a map for testing.
func JSONBMap(data map[string]interface{}) datatypes.JSON {
	bytes, _ := json.Marshal(data)
	return datatypes.JSON(bytes)
}

// NewCallProvider creates a CallProviderConfig with plausible fake data.
// Mutators run after defaults are set.
func NewCallProvider(mutators ...func(*CallProviderConfig)) *CallProviderConfig {
	p := &CallProviderConfig{
		ID:                 int64(gofakeit.Number(1, 100000)),
		Name:               gofakeit.Company(),
		ProviderType:       ProviderTypeTwilio,
		TwilioAccountSID:   "AC" + gofakeit.LetterN(32),
		TwilioAuthToken:    gofakeit.LetterN(32),
		TwilioFromNumber:   gofakeit.Phone(),
		DailyLimit:         1000,
		MonthlyLimit:       30000,
		RateLimitPerMinute: 10,
		Priority:           PriorityPrimary,
		IsActive:           true,
		Status:             ProviderStatusUnknown,
		CreatedAt:          utils.Now().Add(-time.Duration(gofakeit.Number(1, 100)) * time.Hour),
		UpdatedAt:          utils.Now(),
		CreatedBy:          gofakeit.Username(),
	}
	for _, m := range mutators {
		m(p)
	}
	return p
}

// NewBotProvider creates a BotCallingProviderConfig with plausible fake data.
func NewBotProvider(mutators ...func(*BotCallingProviderConfig)) *BotCallingProviderConfig {
	p := &BotCallingProviderConfig{
		ID:                 int64(gofakeit.Number(1, 100000)),
		Name:               gofakeit.Company(),
		ProviderType:       ProviderTypeGnaniBot,
		GnaniAPIKey:        gofakeit.LetterN(32),
		GnaniAPIURL:        "https://" + gofakeit.DomainName(),
		GnaniBotID:         gofakeit.UUID(),
		GnaniProjectID:     gofakeit.UUID(),
		DailyLimit:         1000,
		MonthlyLimit:       30000,
		RateLimitPerMinute: 10,
		Priority:           PriorityPrimary,
		IsActive:           true,
		Status:             ProviderStatusUnknown,
		CreatedAt:          utils.Now().Add(-time.Duration(gofakeit.Number(1, 100)) * time.Hour),
		UpdatedAt:          utils.Now(),
		CreatedBy:          gofakeit.Username(),
	}
	for _, m := range mutators {
		m(p)
	}
	return p
}

// NewHealthLog creates a HealthLog with plausible fake data.
func NewHealthLog(mutators ...func(*HealthLog)) *HealthLog {
	l := &HealthLog{
		ProviderFamily: FamilyCall,
		ProviderID:     int64(gofakeit.Number(1, 100000)),
		IsHealthy:      true,
		ResponseTime:   gofakeit.Float64Range(0.05, 2.0),
		TestType:       TestTypeHealthCheck,
		CheckedAt:      utils.Now(),
		CreatedBy:      gofakeit.Username(),
	}
	for _, m := range mutators {
		m(l)
	}
	return l
}

// NewUsageLog creates a UsageLog with plausible fake data.
func NewUsageLog(mutators ...func(*UsageLog)) *UsageLog {
	l := &UsageLog{
		ProviderFamily:    FamilyCall,
		ProviderID:        int64(gofakeit.Number(1, 100000)),
		CallsMade:         1,
		SuccessCount:      1,
		FailureCount:      0,
		TotalResponseTime: gofakeit.Float64Range(5, 300),
		LoggedAt:          utils.Now(),
	}
	for _, m := range mutators {
		m(l)
	}
	return l
}

// NewRenewalSettings creates a RenewalSettings row with plausible fake data.
func NewRenewalSettings(mutators ...func(*RenewalSettings)) *RenewalSettings {
	s := &RenewalSettings{
		ActiveProviderID:      int64(gofakeit.Number(1, 100000)),
		EnableCallIntegration: false,
		AutoRefreshEnabled:    true,
		ShowEditCaseButton:    true,
		EnforceProviderLimits: true,
		DefaultRenewalPeriod:  30,
		DefaultCallDuration:   30,
		MaxConcurrentCalls:    10,
		CreatedAt:             utils.Now(),
		UpdatedAt:             utils.Now(),
	}
	for _, m := range mutators {
		m(s)
	}
	return s
}
