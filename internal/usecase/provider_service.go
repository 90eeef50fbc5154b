package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"gitlab.com/renewalhq/api/call-provider-service/internal/actor"
	"gitlab.com/renewalhq/api/call-provider-service/internal/apperrors"
	"gitlab.com/renewalhq/api/call-provider-service/internal/model"
	"gitlab.com/renewalhq/api/call-provider-service/internal/storage"
	"gitlab.com/renewalhq/api/call-provider-service/internal/validator"
	"gitlab.com/renewalhq/api/call-provider-service/internal/vault"
	"gitlab.com/renewalhq/api/call-provider-service/pkg/logger"
)

// callCredentialColumns are the columns UpdateCallProviderCredentials may
// touch. Secret columns get encrypted before they reach the database.
var callCredentialColumns = map[string]bool{
	"twilio_account_sid":         false,
	"twilio_auth_token":          true,
	"twilio_from_number":         false,
	"twilio_status_callback_url": false,
	"twilio_voice_url":           false,
	"exotel_api_key":             true,
	"exotel_api_token":           true,
	"exotel_account_sid":         false,
	"exotel_subdomain":           false,
	"exotel_caller_id":           false,
	"ubona_api_key":              true,
	"ubona_api_url":              false,
	"ubona_account_sid":          false,
	"ubona_caller_id":            false,
}

// botCredentialColumns is the bot-family counterpart.
var botCredentialColumns = map[string]bool{
	"ubona_api_key":      true,
	"ubona_api_url":      false,
	"ubona_account_sid":  false,
	"ubona_caller_id":    false,
	"ubona_bot_script":   false,
	"hoa_api_key":        true,
	"hoa_api_url":        false,
	"hoa_agent_id":       false,
	"hoa_campaign_id":    false,
	"hoa_webhook_url":    false,
	"hoa_bot_script":     false,
	"gnani_api_key":      true,
	"gnani_api_url":      false,
	"gnani_bot_id":       false,
	"gnani_project_id":   false,
	"gnani_language":     false,
	"gnani_voice_gender": false,
	"twilio_account_sid": false,
	"twilio_auth_token":  true,
	"twilio_from_number": false,
	"twilio_bot_script":  false,
}

// ProviderService manages provider config rows. It owns credential
// encryption; nothing below this layer sees plaintext secrets.
type ProviderService struct {
	callRepo  storage.CallProviderRepo
	botRepo   storage.BotProviderRepo
	callVault *vault.Vault
	botVault  *vault.Vault
}

// NewProviderService creates a ProviderService.
func NewProviderService(
	callRepo storage.CallProviderRepo,
	botRepo storage.BotProviderRepo,
	callVault *vault.Vault,
	botVault *vault.Vault,
) *ProviderService {
	return &ProviderService{
		callRepo:  callRepo,
		botRepo:   botRepo,
		callVault: callVault,
		botVault:  botVault,
	}
}

// CreateCallProvider validates, encrypts and inserts a new voice provider.
func (s *ProviderService) CreateCallProvider(ctx context.Context, p *model.CallProviderConfig) error {
	if err := validator.Validate(p); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	p.TwilioAuthToken = s.callVault.Encrypt(p.TwilioAuthToken)
	p.ExotelAPIKey = s.callVault.Encrypt(p.ExotelAPIKey)
	p.ExotelAPIToken = s.callVault.Encrypt(p.ExotelAPIToken)
	p.UbonaAPIKey = s.callVault.Encrypt(p.UbonaAPIKey)

	if p.Status == "" {
		p.Status = model.ProviderStatusUnknown
	}
	who := actor.FromContextOrSystem(ctx)
	p.CreatedBy = who
	p.UpdatedBy = who

	if err := s.callRepo.CreateCallProvider(ctx, p); err != nil {
		return err
	}

	logger.FromContext(ctx).Info("Created call provider",
		zap.Int64("provider_id", p.ID),
		zap.String("provider_type", p.ProviderType),
		zap.String("name", p.Name))
	return nil
}

// CreateBotProvider validates, encrypts and inserts a new bot provider.
func (s *ProviderService) CreateBotProvider(ctx context.Context, p *model.BotCallingProviderConfig) error {
	if err := validator.Validate(p); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	p.UbonaAPIKey = s.botVault.Encrypt(p.UbonaAPIKey)
	p.HoaAPIKey = s.botVault.Encrypt(p.HoaAPIKey)
	p.GnaniAPIKey = s.botVault.Encrypt(p.GnaniAPIKey)
	p.TwilioAuthToken = s.botVault.Encrypt(p.TwilioAuthToken)

	if p.Status == "" {
		p.Status = model.ProviderStatusUnknown
	}
	who := actor.FromContextOrSystem(ctx)
	p.CreatedBy = who
	p.UpdatedBy = who

	if err := s.botRepo.CreateBotProvider(ctx, p); err != nil {
		return err
	}

	logger.FromContext(ctx).Info("Created bot provider",
		zap.Int64("provider_id", p.ID),
		zap.String("provider_type", p.ProviderType),
		zap.String("name", p.Name))
	return nil
}

// UpdateCallProviderCredentials applies a partial credential update. Unknown
// columns are rejected; secret columns are encrypted in place.
func (s *ProviderService) UpdateCallProviderCredentials(ctx context.Context, id int64, credentials map[string]string) error {
	updates, err := buildCredentialUpdates(credentials, callCredentialColumns, s.callVault)
	if err != nil {
		return err
	}
	return s.callRepo.UpdateCallProviderCredentials(ctx, id, updates, actor.FromContextOrSystem(ctx))
}

// UpdateBotProviderCredentials is the bot-family counterpart.
func (s *ProviderService) UpdateBotProviderCredentials(ctx context.Context, id int64, credentials map[string]string) error {
	updates, err := buildCredentialUpdates(credentials, botCredentialColumns, s.botVault)
	if err != nil {
		return err
	}
	return s.botRepo.UpdateBotProviderCredentials(ctx, id, updates, actor.FromContextOrSystem(ctx))
}

func buildCredentialUpdates(credentials map[string]string, allowed map[string]bool, v *vault.Vault) (map[string]interface{}, error) {
	if len(credentials) == 0 {
		return nil, fmt.Errorf("no credential fields provided: %w", apperrors.ErrBadRequest)
	}

	updates := make(map[string]interface{}, len(credentials))
	for column, value := range credentials {
		secret, ok := allowed[column]
		if !ok {
			return nil, fmt.Errorf("unknown credential column %q: %w", column, apperrors.ErrBadRequest)
		}
		if secret {
			value = v.Encrypt(value)
		}
		updates[column] = value
	}
	return updates, nil
}

// SetCallProviderActive toggles a voice provider's active flag.
func (s *ProviderService) SetCallProviderActive(ctx context.Context, id int64, active bool) error {
	return s.callRepo.SetCallProviderActive(ctx, id, active, actor.FromContextOrSystem(ctx))
}

// SetBotProviderActive toggles a bot provider's active flag.
func (s *ProviderService) SetBotProviderActive(ctx context.Context, id int64, active bool) error {
	return s.botRepo.SetBotProviderActive(ctx, id, active, actor.FromContextOrSystem(ctx))
}

// SetDefaultCallProvider marks a voice provider as its type's default.
func (s *ProviderService) SetDefaultCallProvider(ctx context.Context, id int64) error {
	return s.callRepo.SetDefaultCallProvider(ctx, id)
}

// SetDefaultBotProvider marks a bot provider as the family-wide default.
func (s *ProviderService) SetDefaultBotProvider(ctx context.Context, id int64) error {
	return s.botRepo.SetDefaultBotProvider(ctx, id)
}

// DeleteCallProvider soft-deletes a voice provider.
func (s *ProviderService) DeleteCallProvider(ctx context.Context, id int64) error {
	return s.callRepo.SoftDeleteCallProvider(ctx, id, actor.FromContextOrSystem(ctx))
}

// DeleteBotProvider soft-deletes a bot provider.
func (s *ProviderService) DeleteBotProvider(ctx context.Context, id int64) error {
	return s.botRepo.SoftDeleteBotProvider(ctx, id, actor.FromContextOrSystem(ctx))
}

// GetCallProvider loads one voice provider row.
func (s *ProviderService) GetCallProvider(ctx context.Context, id int64) (*model.CallProviderConfig, error) {
	return s.callRepo.GetCallProvider(ctx, id)
}

// GetBotProvider loads one bot provider row.
func (s *ProviderService) GetBotProvider(ctx context.Context, id int64) (*model.BotCallingProviderConfig, error) {
	return s.botRepo.GetBotProvider(ctx, id)
}

// ListCallProviders lists voice provider rows matching the filter.
func (s *ProviderService) ListCallProviders(ctx context.Context, filter storage.ProviderFilter) ([]model.CallProviderConfig, error) {
	return s.callRepo.ListCallProviders(ctx, filter)
}

// ListBotProviders lists bot provider rows matching the filter.
func (s *ProviderService) ListBotProviders(ctx context.Context, filter storage.ProviderFilter) ([]model.BotCallingProviderConfig, error) {
	return s.botRepo.ListBotProviders(ctx, filter)
}
