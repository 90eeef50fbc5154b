package model

// Capability bounds which call-shaping options a provider type may enable.
type Capability struct {
	SupportsRecording  bool `json:"supports_recording"`
	SupportsAnalytics  bool `json:"supports_analytics"`
	MaxConcurrentCalls int  `json:"max_concurrent_calls"`
	MaxDurationMinutes int  `json:"max_duration_minutes"`
}

// providerCapabilities is the static compatibility table, keyed by voice
// provider type. Unknown types fall back to the "custom" entry.
var providerCapabilities = map[string]Capability{
	ProviderTypeTwilio: {
		SupportsRecording:  true,
		SupportsAnalytics:  true,
		MaxConcurrentCalls: 100,
		MaxDurationMinutes: 240,
	},
	ProviderTypeExotel: {
		SupportsRecording:  true,
		SupportsAnalytics:  true,
		MaxConcurrentCalls: 50,
		MaxDurationMinutes: 60,
	},
	ProviderTypeUbona: {
		SupportsRecording:  false,
		SupportsAnalytics:  false,
		MaxConcurrentCalls: 20,
		MaxDurationMinutes: 30,
	},
	"custom": {
		SupportsRecording:  true,
		SupportsAnalytics:  true,
		MaxConcurrentCalls: 100,
		MaxDurationMinutes: 120,
	},
}

// CapabilityFor returns the capability entry for a provider type, falling
// back to the permissive "custom" entry for unknown types.
func CapabilityFor(providerType string) Capability {
	if cap, ok := providerCapabilities[providerType]; ok {
		return cap
	}
	return providerCapabilities["custom"]
}
