package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shortlinkhq/shortlink/internal/service"
	"github.com/shortlinkhq/shortlink/internal/service/mocks"
)

func TestAuthService_IssueAndAuthenticate(t *testing.T) {
	tokens := mocks.NewTokenStore()
	auth := service.NewAuthService(tokens, "test-secret")

	raw, record, err := auth.IssueToken(context.Background(), "ci-bot")
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	got, err := auth.Authenticate(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)
}

func TestAuthService_Authenticate_RejectsUnknownToken(t *testing.T) {
	tokens := mocks.NewTokenStore()
	auth := service.NewAuthService(tokens, "test-secret")

	_, err := auth.Authenticate(context.Background(), "not-a-real-token")
	require.Error(t, err)
	svcErr, ok := service.AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, service.ErrUnauthorized, svcErr.Code)
}

func TestAuthService_Authenticate_RejectsRevokedToken(t *testing.T) {
	tokens := mocks.NewTokenStore()
	auth := service.NewAuthService(tokens, "test-secret")

	raw, record, err := auth.IssueToken(context.Background(), "ci-bot")
	require.NoError(t, err)
	require.NoError(t, auth.Revoke(context.Background(), record.ID))

	_, err = auth.Authenticate(context.Background(), raw)
	require.Error(t, err)
	svcErr, ok := service.AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, service.ErrUnauthorized, svcErr.Code)
}

func TestAuthService_Authenticate_DifferentSecretRejects(t *testing.T) {
	tokens := mocks.NewTokenStore()
	issuer := service.NewAuthService(tokens, "secret-a")
	verifier := service.NewAuthService(tokens, "secret-b")

	raw, _, err := issuer.IssueToken(context.Background(), "ci-bot")
	require.NoError(t, err)

	_, err = verifier.Authenticate(context.Background(), raw)
	require.Error(t, err)
}
