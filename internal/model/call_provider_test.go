package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallProvider_CanMakeCall(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(*CallProviderConfig)
		expected bool
	}{
		{
			name:     "active connected under quota",
			mutate:   func(p *CallProviderConfig) { p.Status = ProviderStatusConnected },
			expected: true,
		},
		{
			name:     "unknown status still callable",
			mutate:   func(p *CallProviderConfig) { p.Status = ProviderStatusUnknown },
			expected: true,
		},
		{
			name:     "inactive",
			mutate:   func(p *CallProviderConfig) { p.IsActive = false },
			expected: false,
		},
		{
			name:     "error status",
			mutate:   func(p *CallProviderConfig) { p.Status = ProviderStatusError },
			expected: false,
		},
		{
			name:     "disconnected status",
			mutate:   func(p *CallProviderConfig) { p.Status = ProviderStatusDisconnected },
			expected: false,
		},
		{
			name: "daily quota reached",
			mutate: func(p *CallProviderConfig) {
				p.DailyLimit = 5
				p.CallsMadeToday = 5
			},
			expected: false,
		},
		{
			name: "monthly quota reached",
			mutate: func(p *CallProviderConfig) {
				p.MonthlyLimit = 100
				p.CallsMadeThisMonth = 100
			},
			expected: false,
		},
		{
			name: "one call remaining",
			mutate: func(p *CallProviderConfig) {
				p.DailyLimit = 5
				p.CallsMadeToday = 4
			},
			expected: true,
		},
		{
			name: "quota exhausted even when connected and active",
			mutate: func(p *CallProviderConfig) {
				p.Status = ProviderStatusConnected
				p.DailyLimit = 1
				p.CallsMadeToday = 1
			},
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewCallProvider(tc.mutate)
			assert.Equal(t, tc.expected, p.CanMakeCall())
		})
	}
}

func TestCallProvider_UsagePercent(t *testing.T) {
	p := NewCallProvider(func(p *CallProviderConfig) {
		p.DailyLimit = 200
		p.CallsMadeToday = 50
		p.MonthlyLimit = 1000
		p.CallsMadeThisMonth = 250
	})

	assert.InDelta(t, 25.0, p.DailyUsagePercent(), 0.001)
	assert.InDelta(t, 25.0, p.MonthlyUsagePercent(), 0.001)

	p.DailyLimit = 0
	assert.Zero(t, p.DailyUsagePercent())
}

func TestBotProvider_CanMakeCall(t *testing.T) {
	p := NewBotProvider()
	assert.True(t, p.CanMakeCall())

	p = NewBotProvider(func(p *BotCallingProviderConfig) {
		p.DailyLimit = 10
		p.CallsMadeToday = 10
	})
	assert.False(t, p.CanMakeCall())

	p = NewBotProvider(func(p *BotCallingProviderConfig) { p.IsActive = false })
	assert.False(t, p.CanMakeCall())
}

func TestCapabilityFor(t *testing.T) {
	twilio := CapabilityFor(ProviderTypeTwilio)
	assert.True(t, twilio.SupportsRecording)
	assert.Equal(t, 240, twilio.MaxDurationMinutes)

	ubona := CapabilityFor(ProviderTypeUbona)
	assert.False(t, ubona.SupportsRecording)
	assert.False(t, ubona.SupportsAnalytics)
	assert.Equal(t, 20, ubona.MaxConcurrentCalls)

	// Unknown types get the permissive custom entry.
	unknown := CapabilityFor("some_future_vendor")
	assert.True(t, unknown.SupportsRecording)
	assert.Equal(t, 120, unknown.MaxDurationMinutes)
}

func TestDefaultCallRules(t *testing.T) {
	rules := DefaultCallRules()
	assert.False(t, rules.Record)
	assert.Equal(t, 1800, rules.DurationLimit)
	assert.False(t, rules.Analytics)
}

func TestRulesFrom(t *testing.T) {
	s := NewRenewalSettings(func(s *RenewalSettings) {
		s.EnableCallRecording = true
		s.DefaultCallDuration = 45
		s.EnableCallAnalytics = true
	})

	rules := RulesFrom(s)
	assert.True(t, rules.Record)
	assert.Equal(t, 2700, rules.DurationLimit)
	assert.True(t, rules.Analytics)
}
