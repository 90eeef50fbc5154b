package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/renewalhq/api/call-provider-service/internal/model"
)

func ubonaConfig(apiURL string) *model.CallProviderConfig {
	return model.NewCallProvider(func(p *model.CallProviderConfig) {
		p.ProviderType = model.ProviderTypeUbona
		p.UbonaAPIKey = "ubona-key"
		p.UbonaAPIURL = apiURL
	})
}

func TestUbonaHealthCheck_Connected(t *testing.T) {
	v := newTestVault(t)

	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-KEY")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := NewUbonaAdapter(ubonaConfig(srv.URL), v, time.Second)
	res := a.HealthCheck(context.Background())

	assert.True(t, res.Healthy())
	assert.Equal(t, "ubona-key", gotKey)
}

func TestUbonaHealthCheck_MissingCredentials(t *testing.T) {
	v := newTestVault(t)
	cfg := ubonaConfig("")
	cfg.UbonaAPIKey = ""

	a := NewUbonaAdapter(cfg, v, time.Second)
	res := a.HealthCheck(context.Background())

	assert.Equal(t, HealthStatusUnhealthy, res.Status)
	assert.Contains(t, res.Details, "ubona_api_key")
	assert.Contains(t, res.Details, "ubona_api_url")
}

func TestUbonaHealthCheck_Forbidden(t *testing.T) {
	v := newTestVault(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	a := NewUbonaAdapter(ubonaConfig(srv.URL), v, time.Second)
	res := a.HealthCheck(context.Background())

	assert.Equal(t, HealthStatusUnhealthy, res.Status)
	assert.Equal(t, "Invalid credentials", res.Details)
}

func TestUbonaMakeCall_Simulated(t *testing.T) {
	v := newTestVault(t)

	a := NewUbonaAdapter(ubonaConfig("https://calls.ubona.example"), v, time.Second)
	result, err := a.MakeCall(context.Background(), "+15550002222", model.DefaultCallRules())

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, result.ProviderCallID, "ubona_")
}
