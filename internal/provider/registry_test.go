package provider

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/renewalhq/api/call-provider-service/internal/apperrors"
	"gitlab.com/renewalhq/api/call-provider-service/internal/model"
)

type stubCallSource struct {
	byID      map[int64]*model.CallProviderConfig
	def       *model.CallProviderConfig
	defErr    error
	resolveID []int64
}

func (s *stubCallSource) FindCallProviderByID(ctx context.Context, id int64) (*model.CallProviderConfig, error) {
	s.resolveID = append(s.resolveID, id)
	cfg, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("call provider %d: %w", id, apperrors.ErrNotFound)
	}
	return cfg, nil
}

func (s *stubCallSource) FindDefaultCallProvider(ctx context.Context) (*model.CallProviderConfig, error) {
	if s.defErr != nil {
		return nil, s.defErr
	}
	if s.def == nil {
		return nil, fmt.Errorf("default call provider: %w", apperrors.ErrNotFound)
	}
	return s.def, nil
}

func TestCallRegistry_ResolveExplicitID(t *testing.T) {
	v := newTestVault(t)
	cfg := exotelConfig()
	cfg.ID = 42
	source := &stubCallSource{byID: map[int64]*model.CallProviderConfig{42: cfg}}

	reg := NewCallRegistry(source, v, time.Second)
	id := int64(42)
	adapter, got, err := reg.Resolve(context.Background(), &id)

	require.NoError(t, err)
	assert.Equal(t, cfg, got)
	assert.Equal(t, model.ProviderTypeExotel, adapter.ProviderType())
	assert.Equal(t, []int64{42}, source.resolveID)
}

func TestCallRegistry_ResolveMissingID(t *testing.T) {
	v := newTestVault(t)
	source := &stubCallSource{byID: map[int64]*model.CallProviderConfig{}}

	reg := NewCallRegistry(source, v, time.Second)
	id := int64(9999)
	adapter, _, err := reg.Resolve(context.Background(), &id)

	assert.Nil(t, adapter)
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestCallRegistry_ResolveDefault(t *testing.T) {
	v := newTestVault(t)
	def := model.NewCallProvider(func(p *model.CallProviderConfig) {
		p.IsDefault = true
	})
	source := &stubCallSource{def: def}

	reg := NewCallRegistry(source, v, time.Second)
	adapter, got, err := reg.Resolve(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, def, got)
	assert.Equal(t, model.ProviderTypeTwilio, adapter.ProviderType())
}

func TestCallRegistry_AmbiguousDefaultPassesThrough(t *testing.T) {
	v := newTestVault(t)
	source := &stubCallSource{defErr: fmt.Errorf("2 defaults: %w", apperrors.ErrAmbiguousDefault)}

	reg := NewCallRegistry(source, v, time.Second)
	_, _, err := reg.Resolve(context.Background(), nil)

	assert.True(t, apperrors.IsAmbiguousDefaultError(err))
}

func TestCallRegistry_UnsupportedType(t *testing.T) {
	v := newTestVault(t)
	cfg := model.NewCallProvider(func(p *model.CallProviderConfig) {
		p.ID = 7
		p.ProviderType = "carrier_pigeon"
	})
	source := &stubCallSource{byID: map[int64]*model.CallProviderConfig{7: cfg}}

	reg := NewCallRegistry(source, v, time.Second)
	id := int64(7)
	_, _, err := reg.Resolve(context.Background(), &id)

	assert.True(t, apperrors.IsUnsupportedProviderError(err))
	assert.Contains(t, err.Error(), "carrier_pigeon")
}

type stubBotSource struct {
	byID map[int64]*model.BotCallingProviderConfig
	def  *model.BotCallingProviderConfig
}

func (s *stubBotSource) FindBotProviderByID(ctx context.Context, id int64) (*model.BotCallingProviderConfig, error) {
	cfg, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("bot provider %d: %w", id, apperrors.ErrNotFound)
	}
	return cfg, nil
}

func (s *stubBotSource) FindDefaultBotProvider(ctx context.Context) (*model.BotCallingProviderConfig, error) {
	if s.def == nil {
		return nil, fmt.Errorf("default bot provider: %w", apperrors.ErrNotFound)
	}
	return s.def, nil
}

func TestBotRegistry_ResolveAllTypes(t *testing.T) {
	v := newTestVault(t)

	types := []string{
		model.ProviderTypeUbonaBot,
		model.ProviderTypeHouseOfAgents,
		model.ProviderTypeGnaniBot,
		model.ProviderTypeTwilioBot,
	}
	for i, pt := range types {
		cfg := model.NewBotProvider(func(p *model.BotCallingProviderConfig) {
			p.ID = int64(i + 1)
			p.ProviderType = pt
		})
		source := &stubBotSource{byID: map[int64]*model.BotCallingProviderConfig{cfg.ID: cfg}}
		reg := NewBotRegistry(source, v, time.Second)

		adapter, _, err := reg.Resolve(context.Background(), &cfg.ID)
		require.NoError(t, err, pt)
		assert.Equal(t, pt, adapter.ProviderType())
	}
}

func TestBotRegistry_NoDefault(t *testing.T) {
	v := newTestVault(t)
	reg := NewBotRegistry(&stubBotSource{}, v, time.Second)

	_, _, err := reg.Resolve(context.Background(), nil)
	assert.True(t, apperrors.IsNotFoundError(err))
}
