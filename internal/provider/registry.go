package provider

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/renewalhq/api/call-provider-service/internal/apperrors"
	"gitlab.com/renewalhq/api/call-provider-service/internal/model"
	"gitlab.com/renewalhq/api/call-provider-service/internal/vault"
)

// CallProviderSource supplies provider rows to the voice registry. Both
// lookups exclude soft-deleted and inactive rows; FindDefaultCallProvider
// returns apperrors.ErrAmbiguousDefault when more than one default exists.
type CallProviderSource interface {
	FindCallProviderByID(ctx context.Context, id int64) (*model.CallProviderConfig, error)
	FindDefaultCallProvider(ctx context.Context) (*model.CallProviderConfig, error)
}

// BotProviderSource supplies provider rows to the bot registry.
type BotProviderSource interface {
	FindBotProviderByID(ctx context.Context, id int64) (*model.BotCallingProviderConfig, error)
	FindDefaultBotProvider(ctx context.Context) (*model.BotCallingProviderConfig, error)
}

// CallRegistry resolves voice provider rows into adapters. The factory
// table is closed at construction; unknown provider types fail with
// apperrors.ErrUnsupportedProvider.
type CallRegistry struct {
	source    CallProviderSource
	factories map[string]func(*model.CallProviderConfig) Adapter
}

// NewCallRegistry wires the static voice adapter factories.
func NewCallRegistry(source CallProviderSource, v *vault.Vault, probeTimeout time.Duration) *CallRegistry {
	return &CallRegistry{
		source: source,
		factories: map[string]func(*model.CallProviderConfig) Adapter{
			model.ProviderTypeTwilio: func(cfg *model.CallProviderConfig) Adapter {
				return NewTwilioAdapter(cfg, v)
			},
			model.ProviderTypeExotel: func(cfg *model.CallProviderConfig) Adapter {
				return NewExotelAdapter(cfg, v, probeTimeout)
			},
			model.ProviderTypeUbona: func(cfg *model.CallProviderConfig) Adapter {
				return NewUbonaAdapter(cfg, v, probeTimeout)
			},
		},
	}
}

// Resolve returns the adapter and config row for an explicit provider ID,
// or for the system default when providerID is nil.
func (r *CallRegistry) Resolve(ctx context.Context, providerID *int64) (Adapter, *model.CallProviderConfig, error) {
	var (
		cfg *model.CallProviderConfig
		err error
	)
	if providerID != nil {
		cfg, err = r.source.FindCallProviderByID(ctx, *providerID)
	} else {
		cfg, err = r.source.FindDefaultCallProvider(ctx)
	}
	if err != nil {
		return nil, nil, err
	}
	adapter, err := r.AdapterFor(cfg)
	if err != nil {
		return nil, nil, err
	}
	return adapter, cfg, nil
}

// AdapterFor builds an adapter for an already-loaded config row.
func (r *CallRegistry) AdapterFor(cfg *model.CallProviderConfig) (Adapter, error) {
	factory, ok := r.factories[cfg.ProviderType]
	if !ok {
		return nil, fmt.Errorf("provider type %q: %w", cfg.ProviderType, apperrors.ErrUnsupportedProvider)
	}
	return factory(cfg), nil
}

// BotRegistry resolves bot provider rows into adapters.
type BotRegistry struct {
	source    BotProviderSource
	factories map[string]func(*model.BotCallingProviderConfig) Adapter
}

// NewBotRegistry wires the static bot adapter factories.
func NewBotRegistry(source BotProviderSource, v *vault.Vault, probeTimeout time.Duration) *BotRegistry {
	return &BotRegistry{
		source: source,
		factories: map[string]func(*model.BotCallingProviderConfig) Adapter{
			model.ProviderTypeUbonaBot: func(cfg *model.BotCallingProviderConfig) Adapter {
				return NewUbonaBotAdapter(cfg, v, probeTimeout)
			},
			model.ProviderTypeHouseOfAgents: func(cfg *model.BotCallingProviderConfig) Adapter {
				return NewHouseOfAgentsAdapter(cfg, v, probeTimeout)
			},
			model.ProviderTypeGnaniBot: func(cfg *model.BotCallingProviderConfig) Adapter {
				return NewGnaniBotAdapter(cfg, v, probeTimeout)
			},
			model.ProviderTypeTwilioBot: func(cfg *model.BotCallingProviderConfig) Adapter {
				return NewTwilioBotAdapter(cfg, v)
			},
		},
	}
}

// Resolve returns the adapter and config row for an explicit provider ID,
// or for the system default when providerID is nil.
func (r *BotRegistry) Resolve(ctx context.Context, providerID *int64) (Adapter, *model.BotCallingProviderConfig, error) {
	var (
		cfg *model.BotCallingProviderConfig
		err error
	)
	if providerID != nil {
		cfg, err = r.source.FindBotProviderByID(ctx, *providerID)
	} else {
		cfg, err = r.source.FindDefaultBotProvider(ctx)
	}
	if err != nil {
		return nil, nil, err
	}
	adapter, err := r.AdapterFor(cfg)
	if err != nil {
		return nil, nil, err
	}
	return adapter, cfg, nil
}

// AdapterFor builds an adapter for an already-loaded config row.
func (r *BotRegistry) AdapterFor(cfg *model.BotCallingProviderConfig) (Adapter, error) {
	factory, ok := r.factories[cfg.ProviderType]
	if !ok {
		return nil, fmt.Errorf("provider type %q: %w", cfg.ProviderType, apperrors.ErrUnsupportedProvider)
	}
	return factory(cfg), nil
}
