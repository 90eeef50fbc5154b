package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"

	"gitlab.com/renewalhq/api/call-provider-service/internal/apperrors"
	"gitlab.com/renewalhq/api/call-provider-service/internal/model"
	"gitlab.com/renewalhq/api/call-provider-service/internal/vault"
)

// Bot adapters cover the bot-calling vendor family. Outbound bot campaigns
// are launched from the vendors' own consoles; this service only verifies
// connectivity and credentials, so MakeCall is not implemented for any of
// them yet.

// UbonaBotAdapter probes an Ubona bot-calling account.
type UbonaBotAdapter struct {
	apiKey string
	apiURL string
	http   *resty.Client
}

// NewUbonaBotAdapter builds the adapter, decrypting the API key eagerly.
func NewUbonaBotAdapter(cfg *model.BotCallingProviderConfig, v *vault.Vault, timeout time.Duration) *UbonaBotAdapter {
	return &UbonaBotAdapter{
		apiKey: v.Decrypt(cfg.UbonaAPIKey),
		apiURL: cfg.UbonaAPIURL,
		http:   newProbeClient(timeout),
	}
}

// ProviderType returns the type tag this adapter serves.
func (a *UbonaBotAdapter) ProviderType() string {
	return model.ProviderTypeUbonaBot
}

// HealthCheck probes the configured API endpoint with the account key.
func (a *UbonaBotAdapter) HealthCheck(ctx context.Context) HealthResult {
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

// MakeCall is not implemented for bot vendors.
func (a *UbonaBotAdapter) MakeCall(ctx context.Context, toNumber string, rules model.CallRules) (*CallResult, error) {
	return nil, fmt.Errorf("ubona bot calling: %w", apperrors.ErrNotImplemented)
}

// HouseOfAgentsAdapter probes a House of Agents account.
type HouseOfAgentsAdapter struct {
	apiKey  string
	apiURL  string
	agentID string
	http    *resty.Client
}

// NewHouseOfAgentsAdapter builds the adapter, decrypting the API key eagerly.
func NewHouseOfAgentsAdapter(cfg *model.BotCallingProviderConfig, v *vault.Vault, timeout time.Duration) *HouseOfAgentsAdapter {
	return &HouseOfAgentsAdapter{
		apiKey:  v.Decrypt(cfg.HoaAPIKey),
		apiURL:  cfg.HoaAPIURL,
		agentID: cfg.HoaAgentID,
		http:    newProbeClient(timeout),
	}
}

// ProviderType returns the type tag this adapter serves.
func (a *HouseOfAgentsAdapter) ProviderType() string {
	return model.ProviderTypeHouseOfAgents
}

// HealthCheck hits the vendor health endpoint with the key and agent headers.
func (a *HouseOfAgentsAdapter) HealthCheck(ctx context.Context) HealthResult {
	missing := missingFields(map[string]string{
		"hoa_api_key":  a.apiKey,
		"hoa_api_url":  a.apiURL,
		"hoa_agent_id": a.agentID,
	}, []string{"hoa_api_key", "hoa_api_url", "hoa_agent_id"})
	if len(missing) > 0 {
		return missingFieldsResult(missing)
	}

	resp, err := a.http.R().
		SetContext(ctx).
		SetHeader("X-API-KEY", a.apiKey).
		SetHeader("X-AGENT-ID", a.agentID).
		Get(strings.TrimRight(a.apiURL, "/") + "/health")
	if err != nil {
		return HealthResult{Status: HealthStatusUnhealthy, Details: fmt.Sprintf("connection failed: %v", err)}
	}
	return classifyHTTPProbe(resp.StatusCode(), resp.String())
}

// MakeCall is not implemented for bot vendors.
func (a *HouseOfAgentsAdapter) MakeCall(ctx context.Context, toNumber string, rules model.CallRules) (*CallResult, error) {
	return nil, fmt.Errorf("house of agents calling: %w", apperrors.ErrNotImplemented)
}

// GnaniBotAdapter probes a Gnani.ai bot account.
type GnaniBotAdapter struct {
	apiKey    string
	apiURL    string
	botID     string
	projectID string
	http      *resty.Client
}

// NewGnaniBotAdapter builds the adapter, decrypting the API key eagerly.
func NewGnaniBotAdapter(cfg *model.BotCallingProviderConfig, v *vault.Vault, timeout time.Duration) *GnaniBotAdapter {
	return &GnaniBotAdapter{
		apiKey:    v.Decrypt(cfg.GnaniAPIKey),
		apiURL:    cfg.GnaniAPIURL,
		botID:     cfg.GnaniBotID,
		projectID: cfg.GnaniProjectID,
		http:      newProbeClient(timeout),
	}
}

// ProviderType returns the type tag this adapter serves.
func (a *GnaniBotAdapter) ProviderType() string {
	return model.ProviderTypeGnaniBot
}

// HealthCheck probes the vendor endpoint with the bot and project headers.
func (a *GnaniBotAdapter) HealthCheck(ctx context.Context) HealthResult {
	missing := missingFields(map[string]string{
		"gnani_api_key":    a.apiKey,
		"gnani_api_url":    a.apiURL,
		"gnani_bot_id":     a.botID,
		"gnani_project_id": a.projectID,
	}, []string{"gnani_api_key", "gnani_api_url", "gnani_bot_id", "gnani_project_id"})
	if len(missing) > 0 {
		return missingFieldsResult(missing)
	}

	resp, err := a.http.R().
		SetContext(ctx).
		SetHeader("X-API-KEY", a.apiKey).
		SetHeader("X-BOT-ID", a.botID).
		SetHeader("X-PROJECT-ID", a.projectID).
		Get(a.apiURL)
	if err != nil {
		return HealthResult{Status: HealthStatusUnhealthy, Details: fmt.Sprintf("connection failed: %v", err)}
	}
	return classifyHTTPProbe(resp.StatusCode(), resp.String())
}

// MakeCall is not implemented for bot vendors.
func (a *GnaniBotAdapter) MakeCall(ctx context.Context, toNumber string, rules model.CallRules) (*CallResult, error) {
	return nil, fmt.Errorf("gnani bot calling: %w", apperrors.ErrNotImplemented)
}

// TwilioBotAdapter probes a Twilio account used for scripted voice bots.
type TwilioBotAdapter struct {
	accountSID string
	authToken  string
	fromNumber string
	client     *twilio.RestClient
}

// NewTwilioBotAdapter builds the adapter, decrypting the auth token eagerly.
func NewTwilioBotAdapter(cfg *model.BotCallingProviderConfig, v *vault.Vault) *TwilioBotAdapter {
	a := &TwilioBotAdapter{
		accountSID: cfg.TwilioAccountSID,
		authToken:  v.Decrypt(cfg.TwilioAuthToken),
		fromNumber: cfg.TwilioFromNumber,
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
func (a *TwilioBotAdapter) ProviderType() string {
	return model.ProviderTypeTwilioBot
}

// HealthCheck fetches the account resource as a credential probe.
func (a *TwilioBotAdapter) HealthCheck(ctx context.Context) HealthResult {
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

// MakeCall is not implemented for bot vendors.
func (a *TwilioBotAdapter) MakeCall(ctx context.Context, toNumber string, rules model.CallRules) (*CallResult, error) {
	return nil, fmt.Errorf("twilio voice bot calling: %w", apperrors.ErrNotImplemented)
}

// newProbeClient builds the shared resty client for HTTP probes.
func newProbeClient(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = DefaultProbeTimeoutSeconds * time.Second
	}
	return resty.New().SetTimeout(timeout)
}
