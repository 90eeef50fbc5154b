package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"gitlab.com/renewalhq/api/call-provider-service/internal/model"
	"gitlab.com/renewalhq/api/call-provider-service/internal/vault"
	"gitlab.com/renewalhq/api/call-provider-service/pkg/logger"
)

// TwilioAdapter integrates one Twilio voice account through the official SDK.
type TwilioAdapter struct {
	accountSID        string
	authToken         string
	fromNumber        string
	statusCallbackURL string
	voiceURL          string
	client            *twilio.RestClient
}

// NewTwilioAdapter builds the adapter, decrypting the auth token eagerly.
// The SDK client is only constructed when all credentials are present.
func NewTwilioAdapter(cfg *model.CallProviderConfig, v *vault.Vault) *TwilioAdapter {
	a := &TwilioAdapter{
		accountSID:        cfg.TwilioAccountSID,
		authToken:         v.Decrypt(cfg.TwilioAuthToken),
		fromNumber:        cfg.TwilioFromNumber,
		statusCallbackURL: cfg.TwilioStatusCallbackURL,
		voiceURL:          cfg.TwilioVoiceURL,
	}
	if a.accountSID != "" && a.authToken != "" {
		a.client = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: a.accountSID,
			Password: a.authToken,
		})
	}
	return a
}

// ProviderType returns the type tag this adapter serves.
func (a *TwilioAdapter) ProviderType() string {
	return model.ProviderTypeTwilio
}

// HealthCheck fetches the account resource as a credential probe.
func (a *TwilioAdapter) HealthCheck(ctx context.Context) HealthResult {
	missing := missingFields(map[string]string{
		"twilio_account_sid": a.accountSID,
		"twilio_auth_token":  a.authToken,
		"twilio_from_number": a.fromNumber,
	}, []string{"twilio_account_sid", "twilio_auth_token", "twilio_from_number"})
	if len(missing) > 0 {
		return missingFieldsResult(missing)
	}

	account, err := a.client.Api.FetchAccount(a.accountSID)
	if err != nil {
		if restErr, ok := err.(*twilioclient.TwilioRestError); ok {
			return classifyHTTPProbe(restErr.Status, restErr.Message)
		}
		return HealthResult{Status: HealthStatusUnhealthy, Details: fmt.Sprintf("connection failed: %v", err)}
	}

	status := ""
	if account.Status != nil {
		status = *account.Status
	}
	return HealthResult{
		Status:  HealthStatusConnected,
		Details: fmt.Sprintf("Account status: %s", status),
	}
}

// MakeCall creates a real outbound voice call with recording, duration cap
// and status callback taken from the resolved call rules.
func (a *TwilioAdapter) MakeCall(ctx context.Context, toNumber string, rules model.CallRules) (*CallResult, error) {
	if a.client == nil {
		return nil, fmt.Errorf("twilio credentials incomplete, cannot place call")
	}

	params := &openapi.CreateCallParams{}
	params.SetTo(toNumber)
	params.SetFrom(a.fromNumber)
	if a.voiceURL != "" {
		params.SetUrl(a.voiceURL)
	}
	if rules.Record {
		params.SetRecord(true)
	}
	if rules.DurationLimit > 0 {
		params.SetTimeLimit(rules.DurationLimit)
	}
	if a.statusCallbackURL != "" {
		params.SetStatusCallback(a.statusCallbackURL)
		params.SetStatusCallbackEvent([]string{"completed"})
	}

	start := time.Now()
	call, err := a.client.Api.CreateCall(params)
	if err != nil {
		logger.FromContext(ctx).Warn("twilio call creation failed",
			zap.String("to", toNumber),
			zap.Error(err))
		return nil, fmt.Errorf("twilio call creation failed: %w", err)
	}

	result := &CallResult{Success: true}
	if call.Sid != nil {
		result.ProviderCallID = *call.Sid
	}
	if call.Status != nil {
		result.Status = *call.Status
	}
	logger.FromContext(ctx).Info("twilio call created",
		zap.String("call_sid", result.ProviderCallID),
		zap.String("status", result.Status),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}
