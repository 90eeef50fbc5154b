package provider

import (
	"testing"

	"github.com/fernet/fernet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateFernetKey(t *testing.T) string {
	t.Helper()
	var key fernet.Key
	require.NoError(t, key.Generate())
	return key.Encode()
}

func TestMissingFields(t *testing.T) {
	fields := map[string]string{
		"api_key":   "k",
		"api_url":   "",
		"agent_id":  "   ",
		"caller_id": "123",
	}
	missing := missingFields(fields, []string{"api_key", "api_url", "agent_id", "caller_id"})
	assert.Equal(t, []string{"api_url", "agent_id"}, missing)
}

func TestMissingFieldsResult(t *testing.T) {
	res := missingFieldsResult([]string{"api_key", "api_url"})
	assert.Equal(t, HealthStatusUnhealthy, res.Status)
	assert.Contains(t, res.Details, "missing required credentials")
	assert.Contains(t, res.Details, "api_key, api_url")
	assert.False(t, res.Healthy())
}

func TestClassifyHTTPProbe(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		body       string
		expected   string
		contains   string
	}{
		{"ok", 200, "", HealthStatusConnected, "Connection successful"},
		{"created", 201, "", HealthStatusConnected, ""},
		{"unauthorized", 401, "bad auth", HealthStatusUnhealthy, "Invalid credentials"},
		{"forbidden", 403, "", HealthStatusUnhealthy, "Invalid credentials"},
		{"server error", 500, "internal error", HealthStatusUnhealthy, "HTTP 500"},
		{"not found", 404, "no such account", HealthStatusUnhealthy, "no such account"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := classifyHTTPProbe(tc.statusCode, tc.body)
			assert.Equal(t, tc.expected, res.Status)
			if tc.contains != "" {
				assert.Contains(t, res.Details, tc.contains)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))

	long := make([]byte, 600)
	for i := range long {
		long[i] = 'x'
	}
	out := truncate(string(long), 500)
	assert.Len(t, out, 503)
	assert.Contains(t, out, "...")
}
