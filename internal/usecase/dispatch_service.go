package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gitlab.com/renewalhq/api/call-provider-service/internal/actor"
	"gitlab.com/renewalhq/api/call-provider-service/internal/apperrors"
	"gitlab.com/renewalhq/api/call-provider-service/internal/events"
	"gitlab.com/renewalhq/api/call-provider-service/internal/model"
	"gitlab.com/renewalhq/api/call-provider-service/internal/observer"
	"gitlab.com/renewalhq/api/call-provider-service/internal/provider"
	"gitlab.com/renewalhq/api/call-provider-service/internal/storage"
	"gitlab.com/renewalhq/api/call-provider-service/pkg/logger"
	"gitlab.com/renewalhq/api/call-provider-service/pkg/utils"
)

// testCallSimulationDelay is how long a simulated test call takes.
const testCallSimulationDelay = 200 * time.Millisecond

// DispatchRequest asks for one outbound call. A nil ProviderID selects the
// default provider.
type DispatchRequest struct {
	ToNumber   string `json:"to_number" validate:"required,e164"`
	ProviderID *int64 `json:"provider_id,omitempty"`
}

// DispatchResult reports a placed call back to the caller.
type DispatchResult struct {
	Success        bool   `json:"success"`
	ProviderCallID string `json:"provider_call_id"`
	Status         string `json:"status"`
	ProviderID     int64  `json:"provider_id"`
	ProviderType   string `json:"provider_type"`
}

// DispatchService places outbound calls through resolved provider adapters
// and records the attempt.
type DispatchService struct {
	callRepo     storage.CallProviderRepo
	botRepo      storage.BotProviderRepo
	logRepo      storage.LogRepo
	callRegistry *provider.CallRegistry
	botRegistry  *provider.BotRegistry
	usage        *UsageService
	settings     *SettingsService
	publisher    events.Publisher
}

// NewDispatchService creates a DispatchService.
func NewDispatchService(
	callRepo storage.CallProviderRepo,
	botRepo storage.BotProviderRepo,
	logRepo storage.LogRepo,
	callRegistry *provider.CallRegistry,
	botRegistry *provider.BotRegistry,
	usage *UsageService,
	settings *SettingsService,
	publisher events.Publisher,
) *DispatchService {
	return &DispatchService{
		callRepo:     callRepo,
		botRepo:      botRepo,
		logRepo:      logRepo,
		callRegistry: callRegistry,
		botRegistry:  botRegistry,
		usage:        usage,
		settings:     settings,
		publisher:    publisher,
	}
}

// MakeCall places an outbound voice call. The provider must pass its quota
// gate before the vendor is contacted; the usage log and counter increment
// happen after the attempt, whatever its outcome.
func (s *DispatchService) MakeCall(ctx context.Context, req DispatchRequest) (*DispatchResult, error) {
	adapter, cfg, err := s.callRegistry.Resolve(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}

	if !cfg.CanMakeCall() {
		observer.IncCallDispatched(model.FamilyCall, cfg.ProviderType, "quota_exceeded")
		return nil, fmt.Errorf("provider %q (id %d) cannot accept calls: %w",
			cfg.Name, cfg.ID, apperrors.ErrQuotaExceeded)
	}

	rules := s.settings.GetCallRules(ctx)

	result, err := adapter.MakeCall(ctx, req.ToNumber, rules)
	if err != nil {
		observer.IncCallDispatched(model.FamilyCall, cfg.ProviderType, "error")
		if usageErr := s.usage.RecordCallUsage(ctx, cfg.ID, false, 0, nil); usageErr != nil {
			logger.FromContext(ctx).Error("Failed to record failed call attempt",
				zap.Int64("provider_id", cfg.ID), zap.Error(usageErr))
		}
		return nil, err
	}

	observer.IncCallDispatched(model.FamilyCall, cfg.ProviderType, "success")
	if usageErr := s.usage.RecordCallUsage(ctx, cfg.ID, true, 0, nil); usageErr != nil {
		logger.FromContext(ctx).Error("Call placed but usage recording failed",
			zap.Int64("provider_id", cfg.ID), zap.Error(usageErr))
	}

	s.publisher.Publish(ctx, events.Event{
		Kind:           events.EventCallDispatched,
		ProviderFamily: model.FamilyCall,
		ProviderID:     cfg.ID,
		ProviderType:   cfg.ProviderType,
		Payload: map[string]interface{}{
			"provider_call_id": result.ProviderCallID,
			"status":           result.Status,
		},
	})

	return &DispatchResult{
		Success:        result.Success,
		ProviderCallID: result.ProviderCallID,
		Status:         result.Status,
		ProviderID:     cfg.ID,
		ProviderType:   cfg.ProviderType,
	}, nil
}

// MakeBotCall places an outbound bot call. Bot vendors do not support
// direct dispatch yet, so this surfaces the adapter's not-implemented error
// after the same resolution and quota gating as voice calls.
func (s *DispatchService) MakeBotCall(ctx context.Context, req DispatchRequest) (*DispatchResult, error) {
	adapter, cfg, err := s.botRegistry.Resolve(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}

	if !cfg.CanMakeCall() {
		observer.IncCallDispatched(model.FamilyBot, cfg.ProviderType, "quota_exceeded")
		return nil, fmt.Errorf("provider %q (id %d) cannot accept calls: %w",
			cfg.Name, cfg.ID, apperrors.ErrQuotaExceeded)
	}

	rules := s.settings.GetCallRules(ctx)

	result, err := adapter.MakeCall(ctx, req.ToNumber, rules)
	if err != nil {
		outcome := "error"
		if apperrors.IsNotImplementedError(err) {
			outcome = "not_implemented"
		}
		observer.IncCallDispatched(model.FamilyBot, cfg.ProviderType, outcome)
		return nil, err
	}

	observer.IncCallDispatched(model.FamilyBot, cfg.ProviderType, "success")
	return &DispatchResult{
		Success:        result.Success,
		ProviderCallID: result.ProviderCallID,
		Status:         result.Status,
		ProviderID:     cfg.ID,
		ProviderType:   cfg.ProviderType,
	}, nil
}

// TestCallProvider places a simulated test call against a voice provider and
// records a test result row. The simulation always succeeds; what it proves
// is that the provider row resolves to a working adapter configuration.
func (s *DispatchService) TestCallProvider(ctx context.Context, providerID int64, testNumber string) (*model.TestResult, error) {
	cfg, err := s.callRepo.GetCallProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if _, err := s.callRegistry.AdapterFor(cfg); err != nil {
		return nil, err
	}

	result := &model.TestResult{
		ProviderFamily: model.FamilyCall,
		ProviderID:     providerID,
		TestNumber:     testNumber,
		Status:         model.TestStatusPending,
		TestedBy:       actor.FromContextOrSystem(ctx),
		TestedAt:       utils.Now(),
	}
	if err := s.logRepo.CreateTestResult(ctx, result); err != nil {
		return nil, err
	}

	start := time.Now()
	time.Sleep(testCallSimulationDelay)

	result.Status = model.TestStatusSuccess
	result.ResponseTime = time.Since(start).Seconds()
	if err := s.logRepo.UpdateTestResult(ctx, result); err != nil {
		logger.FromContext(ctx).Error("Failed to finalize test result",
			zap.Int64("provider_id", providerID), zap.Error(err))
	}

	s.publisher.Publish(ctx, events.Event{
		Kind:           events.EventTestCompleted,
		ProviderFamily: model.FamilyCall,
		ProviderID:     providerID,
		ProviderType:   cfg.ProviderType,
		Payload: map[string]interface{}{
			"status":      result.Status,
			"test_number": testNumber,
		},
	})

	return result, nil
}

// TestBotProvider is the bot-family counterpart of TestCallProvider.
func (s *DispatchService) TestBotProvider(ctx context.Context, providerID int64, testNumber string) (*model.TestResult, error) {
	cfg, err := s.botRepo.GetBotProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if _, err := s.botRegistry.AdapterFor(cfg); err != nil {
		return nil, err
	}

	result := &model.TestResult{
		ProviderFamily: model.FamilyBot,
		ProviderID:     providerID,
		TestNumber:     testNumber,
		Status:         model.TestStatusPending,
		TestedBy:       actor.FromContextOrSystem(ctx),
		TestedAt:       utils.Now(),
	}
	if err := s.logRepo.CreateTestResult(ctx, result); err != nil {
		return nil, err
	}

	start := time.Now()
	time.Sleep(testCallSimulationDelay)

	result.Status = model.TestStatusSuccess
	result.ResponseTime = time.Since(start).Seconds()
	if err := s.logRepo.UpdateTestResult(ctx, result); err != nil {
		logger.FromContext(ctx).Error("Failed to finalize test result",
			zap.Int64("provider_id", providerID), zap.Error(err))
	}

	s.publisher.Publish(ctx, events.Event{
		Kind:           events.EventTestCompleted,
		ProviderFamily: model.FamilyBot,
		ProviderID:     providerID,
		ProviderType:   cfg.ProviderType,
		Payload: map[string]interface{}{
			"status":      result.Status,
			"test_number": testNumber,
		},
	})

	return result, nil
}
