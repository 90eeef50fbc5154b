package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"gitlab.com/renewalhq/api/call-provider-service/internal/actor"
	"gitlab.com/renewalhq/api/call-provider-service/internal/config"
	"gitlab.com/renewalhq/api/call-provider-service/internal/events"
	"gitlab.com/renewalhq/api/call-provider-service/internal/model"
	"gitlab.com/renewalhq/api/call-provider-service/internal/observer"
	"gitlab.com/renewalhq/api/call-provider-service/internal/provider"
	"gitlab.com/renewalhq/api/call-provider-service/internal/storage"
	"gitlab.com/renewalhq/api/call-provider-service/pkg/logger"
	"gitlab.com/renewalhq/api/call-provider-service/pkg/utils"
)

// HealthReport is the outcome of one provider health check, returned to the
// caller regardless of whether persistence succeeded.
type HealthReport struct {
	ProviderFamily string    `json:"provider_family"`
	ProviderID     int64     `json:"provider_id"`
	ProviderType   string    `json:"provider_type"`
	Name           string    `json:"name"`
	Status         string    `json:"status"`
	Healthy        bool      `json:"healthy"`
	Details        string    `json:"details"`
	ResponseTime   float64   `json:"response_time"`
	CanMakeCall    bool      `json:"can_make_call"`
	CheckedAt      time.Time `json:"checked_at"`
}

// BulkHealthReport aggregates checks across both provider families.
type BulkHealthReport struct {
	CallProviders []HealthReport `json:"call_providers"`
	BotProviders  []HealthReport `json:"bot_providers"`
}

// HealthService runs vendor health probes and records their outcomes.
// Checking a provider never fails because the vendor is down; only a missing
// provider row surfaces as an error.
type HealthService struct {
	callRepo     storage.CallProviderRepo
	botRepo      storage.BotProviderRepo
	logRepo      storage.LogRepo
	callRegistry *provider.CallRegistry
	botRegistry  *provider.BotRegistry
	publisher    events.Publisher
	pool         *ants.Pool
}

// NewHealthService builds the service and its bulk-check worker pool.
func NewHealthService(
	callRepo storage.CallProviderRepo,
	botRepo storage.BotProviderRepo,
	logRepo storage.LogRepo,
	callRegistry *provider.CallRegistry,
	botRegistry *provider.BotRegistry,
	publisher events.Publisher,
	poolCfg config.HealthCheckWorkerPoolConfig,
) (*HealthService, error) {
	pool, err := ants.NewPool(poolCfg.PoolSize,
		ants.WithExpiryDuration(poolCfg.ExpiryTime),
		ants.WithNonblocking(false),
		ants.WithMaxBlockingTasks(poolCfg.QueueSize),
		ants.WithPanicHandler(func(r interface{}) {
			logger.Log.Error("Panic recovered in health check worker", zap.Any("panic", r))
		}),
	)
	if err != nil {
		return nil, err
	}

	return &HealthService{
		callRepo:     callRepo,
		botRepo:      botRepo,
		logRepo:      logRepo,
		callRegistry: callRegistry,
		botRegistry:  botRegistry,
		publisher:    publisher,
		pool:         pool,
	}, nil
}

// Stop releases the worker pool.
func (s *HealthService) Stop() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// CheckCallProvider probes one voice provider. The row is loaded regardless
// of active state so operators can diagnose disabled accounts; an inactive
// row is always recorded as disconnected, whatever the probe said.
func (s *HealthService) CheckCallProvider(ctx context.Context, id int64) (*HealthReport, error) {
	cfg, err := s.callRepo.GetCallProvider(ctx, id)
	if err != nil {
		return nil, err
	}

	report := &HealthReport{
		ProviderFamily: model.FamilyCall,
		ProviderID:     cfg.ID,
		ProviderType:   cfg.ProviderType,
		Name:           cfg.Name,
		CheckedAt:      utils.Now(),
	}

	adapter, err := s.callRegistry.AdapterFor(cfg)
	if err != nil {
		// Unknown provider type. No probe ran, so no health log row either.
		report.Status = model.ProviderStatusError
		report.Details = err.Error()
		observer.IncHealthCheck(model.FamilyCall, cfg.ProviderType, "resolution_failed")
		logger.FromContext(ctx).Warn("Health check could not resolve adapter",
			zap.Int64("provider_id", id),
			zap.String("provider_type", cfg.ProviderType),
			zap.Error(err))
		return report, nil
	}

	start := time.Now()
	res := adapter.HealthCheck(ctx)
	elapsed := time.Since(start)

	report.Healthy = res.Healthy()
	report.Details = res.Details
	report.ResponseTime = elapsed.Seconds()
	report.Status = model.ProviderStatusConnected
	if !report.Healthy {
		report.Status = model.ProviderStatusError
	}
	if !cfg.IsActive {
		report.Status = model.ProviderStatusDisconnected
	}

	cfg.Status = report.Status
	report.CanMakeCall = cfg.CanMakeCall()

	observer.ObserveHealthCheckDuration(model.FamilyCall, cfg.ProviderType, elapsed)
	outcome := "connected"
	if !report.Healthy {
		outcome = "unhealthy"
	}
	observer.IncHealthCheck(model.FamilyCall, cfg.ProviderType, outcome)

	if err := s.callRepo.UpdateCallProviderHealth(ctx, id, report.Status, report.CheckedAt); err != nil {
		logger.FromContext(ctx).Error("Failed to persist provider health status",
			zap.Int64("provider_id", id), zap.Error(err))
	}
	s.appendHealthLog(ctx, model.FamilyCall, report)
	s.publishHealthEvent(ctx, report)

	return report, nil
}

// CheckBotProvider probes one bot provider with the same semantics as
// CheckCallProvider.
func (s *HealthService) CheckBotProvider(ctx context.Context, id int64) (*HealthReport, error) {
	cfg, err := s.botRepo.GetBotProvider(ctx, id)
	if err != nil {
		return nil, err
	}

	report := &HealthReport{
		ProviderFamily: model.FamilyBot,
		ProviderID:     cfg.ID,
		ProviderType:   cfg.ProviderType,
		Name:           cfg.Name,
		CheckedAt:      utils.Now(),
	}

	adapter, err := s.botRegistry.AdapterFor(cfg)
	if err != nil {
		report.Status = model.ProviderStatusError
		report.Details = err.Error()
		observer.IncHealthCheck(model.FamilyBot, cfg.ProviderType, "resolution_failed")
		logger.FromContext(ctx).Warn("Health check could not resolve adapter",
			zap.Int64("provider_id", id),
			zap.String("provider_type", cfg.ProviderType),
			zap.Error(err))
		return report, nil
	}

	start := time.Now()
	res := adapter.HealthCheck(ctx)
	elapsed := time.Since(start)

	report.Healthy = res.Healthy()
	report.Details = res.Details
	report.ResponseTime = elapsed.Seconds()
	report.Status = model.ProviderStatusConnected
	if !report.Healthy {
		report.Status = model.ProviderStatusError
	}
	if !cfg.IsActive {
		report.Status = model.ProviderStatusDisconnected
	}

	cfg.Status = report.Status
	report.CanMakeCall = cfg.CanMakeCall()

	observer.ObserveHealthCheckDuration(model.FamilyBot, cfg.ProviderType, elapsed)
	outcome := "connected"
	if !report.Healthy {
		outcome = "unhealthy"
	}
	observer.IncHealthCheck(model.FamilyBot, cfg.ProviderType, outcome)

	if err := s.botRepo.UpdateBotProviderHealth(ctx, id, report.Status, report.CheckedAt); err != nil {
		logger.FromContext(ctx).Error("Failed to persist provider health status",
			zap.Int64("provider_id", id), zap.Error(err))
	}
	s.appendHealthLog(ctx, model.FamilyBot, report)
	s.publishHealthEvent(ctx, report)

	return report, nil
}

// CheckAll probes every active provider in both families through the worker
// pool and collects the reports.
func (s *HealthService) CheckAll(ctx context.Context) (*BulkHealthReport, error) {
	active := true
	callProviders, err := s.callRepo.ListCallProviders(ctx, storage.ProviderFilter{IsActive: &active})
	if err != nil {
		return nil, err
	}
	botProviders, err := s.botRepo.ListBotProviders(ctx, storage.ProviderFilter{IsActive: &active})
	if err != nil {
		return nil, err
	}

	bulk := &BulkHealthReport{
		CallProviders: make([]HealthReport, 0, len(callProviders)),
		BotProviders:  make([]HealthReport, 0, len(botProviders)),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	runCheck := func(task func()) {
		wg.Add(1)
		if err := s.pool.Submit(func() {
			defer wg.Done()
			task()
		}); err != nil {
			// Pool saturated or released; run inline rather than dropping the check.
			logger.FromContext(ctx).Warn("Health check pool submit failed, running inline", zap.Error(err))
			task()
			wg.Done()
		}
	}

	for _, p := range callProviders {
		id := p.ID
		runCheck(func() {
			report, err := s.CheckCallProvider(ctx, id)
			if err != nil {
				logger.FromContext(ctx).Error("Bulk health check failed for call provider",
					zap.Int64("provider_id", id), zap.Error(err))
				return
			}
			mu.Lock()
			bulk.CallProviders = append(bulk.CallProviders, *report)
			mu.Unlock()
		})
	}
	for _, p := range botProviders {
		id := p.ID
		runCheck(func() {
			report, err := s.CheckBotProvider(ctx, id)
			if err != nil {
				logger.FromContext(ctx).Error("Bulk health check failed for bot provider",
					zap.Int64("provider_id", id), zap.Error(err))
				return
			}
			mu.Lock()
			bulk.BotProviders = append(bulk.BotProviders, *report)
			mu.Unlock()
		})
	}

	wg.Wait()
	return bulk, nil
}

func (s *HealthService) appendHealthLog(ctx context.Context, family string, report *HealthReport) {
	errorMessage := ""
	if !report.Healthy {
		errorMessage = report.Details
	}
	entry := &model.HealthLog{
		ProviderFamily: family,
		ProviderID:     report.ProviderID,
		IsHealthy:      report.Healthy,
		ErrorMessage:   errorMessage,
		ResponseTime:   report.ResponseTime,
		TestType:       model.TestTypeHealthCheck,
		CheckedAt:      report.CheckedAt,
		CreatedBy:      actor.FromContextOrSystem(ctx),
	}
	if err := s.logRepo.CreateHealthLog(ctx, entry); err != nil {
		logger.FromContext(ctx).Error("Failed to append health log",
			zap.Int64("provider_id", report.ProviderID), zap.Error(err))
	}
}

func (s *HealthService) publishHealthEvent(ctx context.Context, report *HealthReport) {
	s.publisher.Publish(ctx, events.Event{
		Kind:           events.EventHealthChanged,
		ProviderFamily: report.ProviderFamily,
		ProviderID:     report.ProviderID,
		ProviderType:   report.ProviderType,
		Payload: map[string]interface{}{
			"status":        report.Status,
			"healthy":       report.Healthy,
			"response_time": report.ResponseTime,
		},
		OccurredAt: report.CheckedAt,
	})
}
