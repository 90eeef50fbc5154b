package provider

import (
	"context"
	"fmt"
	"strings"

	"gitlab.com/renewalhq/api/call-provider-service/internal/model"
)

// Health probe statuses returned by adapters.
const (
	HealthStatusConnected = "connected"
	HealthStatusUnhealthy = "unhealthy"
)

// DefaultProbeTimeoutSeconds is the vendor probe timeout applied when none
// is configured.
const DefaultProbeTimeoutSeconds = 10

// HealthResult is the structured outcome of a vendor health probe. Probes
// never return an error; failures are folded into Status and Details.
type HealthResult struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

// Healthy reports whether the probe reached the vendor with valid credentials.
func (r HealthResult) Healthy() bool {
	return r.Status == HealthStatusConnected
}

// CallResult is the outcome of a successfully placed outbound call.
type CallResult struct {
	Success        bool   `json:"success"`
	ProviderCallID string `json:"provider_call_id"`
	Status         string `json:"status"`
}

// Adapter is the vendor-specific integration for one provider account.
// Credentials are decrypted once at construction; HealthCheck must not
// raise under any vendor misbehavior.
type Adapter interface {
	// ProviderType returns the type tag this adapter serves.
	ProviderType() string
	// HealthCheck probes the vendor with a lightweight authenticated request.
	HealthCheck(ctx context.Context) HealthResult
	// MakeCall places an outbound call shaped by the given rules.
	MakeCall(ctx context.Context, toNumber string, rules model.CallRules) (*CallResult, error)
}

// missingFields returns the names of required credential fields that are
// empty, preserving the given order.
func missingFields(fields map[string]string, order []string) []string {
	var missing []string
	for _, name := range order {
		if strings.TrimSpace(fields[name]) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// missingFieldsResult builds the unhealthy result reported before any
// network call is attempted.
func missingFieldsResult(missing []string) HealthResult {
	return HealthResult{
		Status:  HealthStatusUnhealthy,
		Details: fmt.Sprintf("missing required credentials: %s", strings.Join(missing, ", ")),
	}
}

// classifyHTTPProbe maps a vendor HTTP response to a HealthResult.
func classifyHTTPProbe(statusCode int, body string) HealthResult {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return HealthResult{Status: HealthStatusConnected, Details: "Connection successful"}
	case statusCode == 401 || statusCode == 403:
		return HealthResult{Status: HealthStatusUnhealthy, Details: "Invalid credentials"}
	default:
		return HealthResult{
			Status:  HealthStatusUnhealthy,
			Details: fmt.Sprintf("unexpected response (HTTP %d): %s", statusCode, truncate(body, 500)),
		}
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
