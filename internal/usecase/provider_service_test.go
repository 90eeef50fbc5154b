package usecase

import (
	"context"
	"testing"

	"github.com/fernet/fernet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gitlab.com/renewalhq/api/call-provider-service/internal/apperrors"
	"gitlab.com/renewalhq/api/call-provider-service/internal/model"
	storagemock "gitlab.com/renewalhq/api/call-provider-service/internal/storage/mock"
	"gitlab.com/renewalhq/api/call-provider-service/internal/vault"
	"gitlab.com/renewalhq/api/call-provider-service/pkg/logger"
)

func newFernetVault(t *testing.T) *vault.Vault {
	t.Helper()
	var key fernet.Key
	require.NoError(t, key.Generate())
	v, err := vault.New(key.Encode())
	require.NoError(t, err)
	return v
}

func newProviderFixture(t *testing.T) (*ProviderService, *storagemock.CallProviderRepoMock, *storagemock.BotProviderRepoMock, *vault.Vault) {
	logger.Log = zaptest.NewLogger(t).Named("test")
	callRepo := new(storagemock.CallProviderRepoMock)
	botRepo := new(storagemock.BotProviderRepoMock)
	v := newFernetVault(t)
	return NewProviderService(callRepo, botRepo, v, v), callRepo, botRepo, v
}

func TestCreateCallProvider_EncryptsSecrets(t *testing.T) {
	svc, callRepo, _, v := newProviderFixture(t)

	p := model.NewCallProvider(func(p *model.CallProviderConfig) {
		p.TwilioAuthToken = "plain-token"
	})
	callRepo.On("CreateCallProvider", mock.Anything, mock.MatchedBy(func(stored *model.CallProviderConfig) bool {
		return stored.TwilioAuthToken != "plain-token" &&
			v.Decrypt(stored.TwilioAuthToken) == "plain-token"
	})).Return(nil)

	err := svc.CreateCallProvider(context.Background(), p)

	require.NoError(t, err)
	callRepo.AssertExpectations(t)
}

func TestCreateCallProvider_ValidationFailure(t *testing.T) {
	svc, callRepo, _, _ := newProviderFixture(t)

	p := model.NewCallProvider(func(p *model.CallProviderConfig) {
		p.Name = ""
	})

	err := svc.CreateCallProvider(context.Background(), p)

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	callRepo.AssertNotCalled(t, "CreateCallProvider", mock.Anything, mock.Anything)
}

func TestCreateCallProvider_RejectsUnknownType(t *testing.T) {
	svc, callRepo, _, _ := newProviderFixture(t)

	p := model.NewCallProvider(func(p *model.CallProviderConfig) {
		p.ProviderType = "carrier_pigeon"
	})

	err := svc.CreateCallProvider(context.Background(), p)

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	callRepo.AssertNotCalled(t, "CreateCallProvider", mock.Anything, mock.Anything)
}

func TestUpdateCallProviderCredentials_EncryptsSecretColumns(t *testing.T) {
	svc, callRepo, _, v := newProviderFixture(t)

	callRepo.On("UpdateCallProviderCredentials", mock.Anything, int64(5), mock.MatchedBy(func(updates map[string]interface{}) bool {
		token, ok := updates["exotel_api_token"].(string)
		if !ok || v.Decrypt(token) != "new-token" || token == "new-token" {
			return false
		}
		// Non-secret columns pass through untouched.
		return updates["exotel_subdomain"] == "api.exotel.com"
	}), mock.Anything).Return(nil)

	err := svc.UpdateCallProviderCredentials(context.Background(), 5, map[string]string{
		"exotel_api_token": "new-token",
		"exotel_subdomain": "api.exotel.com",
	})

	require.NoError(t, err)
	callRepo.AssertExpectations(t)
}

func TestUpdateCallProviderCredentials_UnknownColumn(t *testing.T) {
	svc, callRepo, _, _ := newProviderFixture(t)

	err := svc.UpdateCallProviderCredentials(context.Background(), 5, map[string]string{
		"favorite_color": "blue",
	})

	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	callRepo.AssertNotCalled(t, "UpdateCallProviderCredentials", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateCallProviderCredentials_Empty(t *testing.T) {
	svc, _, _, _ := newProviderFixture(t)

	err := svc.UpdateCallProviderCredentials(context.Background(), 5, nil)

	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestUpdateBotProviderCredentials_EncryptsSecretColumns(t *testing.T) {
	svc, _, botRepo, v := newProviderFixture(t)

	botRepo.On("UpdateBotProviderCredentials", mock.Anything, int64(9), mock.MatchedBy(func(updates map[string]interface{}) bool {
		key, ok := updates["gnani_api_key"].(string)
		return ok && v.Decrypt(key) == "gnani-secret"
	}), mock.Anything).Return(nil)

	err := svc.UpdateBotProviderCredentials(context.Background(), 9, map[string]string{
		"gnani_api_key": "gnani-secret",
	})

	require.NoError(t, err)
	botRepo.AssertExpectations(t)
}
