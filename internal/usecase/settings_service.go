package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"gitlab.com/renewalhq/api/call-provider-service/internal/actor"
	"gitlab.com/renewalhq/api/call-provider-service/internal/apperrors"
	"gitlab.com/renewalhq/api/call-provider-service/internal/model"
	"gitlab.com/renewalhq/api/call-provider-service/internal/storage"
	"gitlab.com/renewalhq/api/call-provider-service/pkg/logger"
)

// SettingsService manages per-provider call-shaping profiles and resolves
// the rules applied to outbound calls.
type SettingsService struct {
	settingsRepo storage.SettingsRepo
	callRepo     storage.CallProviderRepo
}

// NewSettingsService creates a SettingsService.
func NewSettingsService(settingsRepo storage.SettingsRepo, callRepo storage.CallProviderRepo) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
		callRepo:     callRepo,
	}
}

// SettingsUpdate carries the mutable fields of a settings row. Pointer
// fields distinguish "leave unchanged" from explicit zero values.
type SettingsUpdate struct {
	EnableCallIntegration *bool   `json:"enable_call_integration,omitempty"`
	TestModeEnabled       *bool   `json:"test_mode_enabled,omitempty"`
	TestPhoneNumber       *string `json:"test_phone_number,omitempty"`
	AutoRefreshEnabled    *bool   `json:"auto_refresh_enabled,omitempty"`
	ShowEditCaseButton    *bool   `json:"show_edit_case_button,omitempty"`
	EnforceProviderLimits *bool   `json:"enforce_provider_limits,omitempty"`
	DefaultRenewalPeriod  *int    `json:"default_renewal_period,omitempty" validate:"omitempty,gte=1"`
	AutoAssignCases       *bool   `json:"auto_assign_cases,omitempty"`
	DefaultCallDuration   *int    `json:"default_call_duration,omitempty" validate:"omitempty,gte=1"`
	MaxConcurrentCalls    *int    `json:"max_concurrent_calls,omitempty" validate:"omitempty,gte=1"`
	EnableCallRecording   *bool   `json:"enable_call_recording,omitempty"`
	EnableCallAnalytics   *bool   `json:"enable_call_analytics,omitempty"`
}

// GetCallRules resolves the shaping rules for outbound calls. The chain is
// enabled row, then oldest row, then hardcoded defaults; it never fails.
func (s *SettingsService) GetCallRules(ctx context.Context) model.CallRules {
	settings, err := s.settingsRepo.FindEnabledSettings(ctx)
	if err == nil {
		return model.RulesFrom(settings)
	}
	if !apperrors.IsNotFoundError(err) {
		logger.FromContext(ctx).Warn("Failed to load enabled settings, trying fallback", zap.Error(err))
	}

	settings, err = s.settingsRepo.FindFirstSettings(ctx)
	if err == nil {
		return model.RulesFrom(settings)
	}
	if !apperrors.IsNotFoundError(err) {
		logger.FromContext(ctx).Warn("Failed to load fallback settings, using defaults", zap.Error(err))
	}

	return model.DefaultCallRules()
}

// GetSettingsForProvider returns the provider's settings row, creating it
// with defaults on first access.
func (s *SettingsService) GetSettingsForProvider(ctx context.Context, providerID int64) (*model.RenewalSettings, error) {
	settings, err := s.settingsRepo.FindSettingsForProvider(ctx, providerID)
	if err == nil {
		return settings, nil
	}
	if !apperrors.IsNotFoundError(err) {
		return nil, err
	}

	// Confirm the provider exists before creating a row for it.
	if _, err := s.callRepo.GetCallProvider(ctx, providerID); err != nil {
		return nil, err
	}

	settings = defaultSettingsRow(providerID)
	settings.UpdatedBy = actor.FromContextOrSystem(ctx)
	if err := s.settingsRepo.CreateSettings(ctx, settings); err != nil {
		if apperrors.IsDuplicateError(err) {
			// Lost a race with a concurrent first access; reload.
			return s.settingsRepo.FindSettingsForProvider(ctx, providerID)
		}
		return nil, err
	}

	logger.FromContext(ctx).Info("Created settings row for provider",
		zap.Int64("provider_id", providerID))
	return settings, nil
}

// UpdateSettings applies a partial update to a provider's settings row,
// bounded by the provider type's capability entry. Enabling integration on
// one row disables it everywhere else.
func (s *SettingsService) UpdateSettings(ctx context.Context, providerID int64, update SettingsUpdate) (*model.RenewalSettings, error) {
	providerRow, err := s.callRepo.GetCallProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	capability := model.CapabilityFor(providerRow.ProviderType)

	settings, err := s.GetSettingsForProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}

	if update.EnableCallRecording != nil && *update.EnableCallRecording && !capability.SupportsRecording {
		return nil, fmt.Errorf("provider type %q does not support call recording: %w",
			providerRow.ProviderType, apperrors.ErrValidation)
	}
	if update.EnableCallAnalytics != nil && *update.EnableCallAnalytics && !capability.SupportsAnalytics {
		return nil, fmt.Errorf("provider type %q does not support call analytics: %w",
			providerRow.ProviderType, apperrors.ErrValidation)
	}
	if update.DefaultCallDuration != nil && *update.DefaultCallDuration > capability.MaxDurationMinutes {
		return nil, fmt.Errorf("call duration %d exceeds the %d minute limit for provider type %q: %w",
			*update.DefaultCallDuration, capability.MaxDurationMinutes, providerRow.ProviderType, apperrors.ErrValidation)
	}
	if update.MaxConcurrentCalls != nil && *update.MaxConcurrentCalls > capability.MaxConcurrentCalls {
		return nil, fmt.Errorf("concurrent call limit %d exceeds the %d limit for provider type %q: %w",
			*update.MaxConcurrentCalls, capability.MaxConcurrentCalls, providerRow.ProviderType, apperrors.ErrValidation)
	}

	applySettingsUpdate(settings, update)
	settings.UpdatedBy = actor.FromContextOrSystem(ctx)

	if err := s.settingsRepo.UpdateSettings(ctx, settings); err != nil {
		return nil, err
	}

	if settings.EnableCallIntegration {
		if err := s.settingsRepo.DisableIntegrationExcept(ctx, settings.ID); err != nil {
			logger.FromContext(ctx).Error("Failed to disable integration on other settings rows",
				zap.Int64("settings_id", settings.ID), zap.Error(err))
		}
	}

	return settings, nil
}

func applySettingsUpdate(settings *model.RenewalSettings, update SettingsUpdate) {
	if update.EnableCallIntegration != nil {
		settings.EnableCallIntegration = *update.EnableCallIntegration
	}
	if update.TestModeEnabled != nil {
		settings.TestModeEnabled = *update.TestModeEnabled
	}
	if update.TestPhoneNumber != nil {
		settings.TestPhoneNumber = *update.TestPhoneNumber
	}
	if update.AutoRefreshEnabled != nil {
		settings.AutoRefreshEnabled = *update.AutoRefreshEnabled
	}
	if update.ShowEditCaseButton != nil {
		settings.ShowEditCaseButton = *update.ShowEditCaseButton
	}
	if update.EnforceProviderLimits != nil {
		settings.EnforceProviderLimits = *update.EnforceProviderLimits
	}
	if update.DefaultRenewalPeriod != nil {
		settings.DefaultRenewalPeriod = *update.DefaultRenewalPeriod
	}
	if update.AutoAssignCases != nil {
		settings.AutoAssignCases = *update.AutoAssignCases
	}
	if update.DefaultCallDuration != nil {
		settings.DefaultCallDuration = *update.DefaultCallDuration
	}
	if update.MaxConcurrentCalls != nil {
		settings.MaxConcurrentCalls = *update.MaxConcurrentCalls
	}
	if update.EnableCallRecording != nil {
		settings.EnableCallRecording = *update.EnableCallRecording
	}
	if update.EnableCallAnalytics != nil {
		settings.EnableCallAnalytics = *update.EnableCallAnalytics
	}
}

func defaultSettingsRow(providerID int64) *model.RenewalSettings {
	return &model.RenewalSettings{
		ActiveProviderID:      providerID,
		EnableCallIntegration: false,
		AutoRefreshEnabled:    true,
		ShowEditCaseButton:    true,
		EnforceProviderLimits: true,
		DefaultRenewalPeriod:  30,
		DefaultCallDuration:   30,
		MaxConcurrentCalls:    10,
	}
}
