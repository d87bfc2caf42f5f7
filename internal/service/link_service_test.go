package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shortlinkhq/shortlink/internal/models"
	"github.com/shortlinkhq/shortlink/internal/service"
	"github.com/shortlinkhq/shortlink/internal/service/mocks"
)

func setupLinkService(t *testing.T) (*service.LinkService, *mocks.DomainStore, *mocks.LinkStore) {
	t.Helper()
	domains := mocks.NewDomainStore()
	links := mocks.NewLinkStore()
	cache := mocks.NewCache()

	_, err := domains.Create(context.Background(), &models.NewDomain{Name: "short.test", IsDefault: true})
	require.NoError(t, err)

	return service.NewLinkService(links, domains, cache), domains, links
}

func TestLinkService_Shorten_AutoCode(t *testing.T) {
	svc, _, _ := setupLinkService(t)

	result, err := svc.Shorten(context.Background(), models.ShortenItem{URL: "https://example.com/a"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Code)
	assert.Equal(t, "https://example.com/a", result.LongURL)
}

func TestLinkService_Shorten_CustomCode(t *testing.T) {
	svc, _, _ := setupLinkService(t)
	customCode := "my-code"

	result, err := svc.Shorten(context.Background(), models.ShortenItem{
		URL: "https://example.com/a", CustomCode: &customCode,
	})
	require.NoError(t, err)
	assert.Equal(t, customCode, result.Code)
}

func TestLinkService_Shorten_CustomCodeConflict(t *testing.T) {
	svc, _, _ := setupLinkService(t)
	customCode := "taken"

	_, err := svc.Shorten(context.Background(), models.ShortenItem{URL: "https://example.com/a", CustomCode: &customCode})
	require.NoError(t, err)

	_, err = svc.Shorten(context.Background(), models.ShortenItem{URL: "https://example.com/b", CustomCode: &customCode})
	require.Error(t, err)
	svcErr, ok := service.AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, service.ErrConflict, svcErr.Code)
}

func TestLinkService_Shorten_DedupesNormalizedURL(t *testing.T) {
	svc, _, _ := setupLinkService(t)

	first, err := svc.Shorten(context.Background(), models.ShortenItem{URL: "https://Example.com/a"})
	require.NoError(t, err)

	second, err := svc.Shorten(context.Background(), models.ShortenItem{URL: "https://example.com/a"})
	require.NoError(t, err)

	assert.Equal(t, first.Code, second.Code)
}

func TestLinkService_Shorten_InvalidURL(t *testing.T) {
	svc, _, _ := setupLinkService(t)

	_, err := svc.Shorten(context.Background(), models.ShortenItem{URL: "not a url"})
	require.Error(t, err)
	svcErr, ok := service.AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, service.ErrValidation, svcErr.Code)
}

func TestLinkService_Resolve_NotFound(t *testing.T) {
	svc, _, _ := setupLinkService(t)

	_, err := svc.Resolve(context.Background(), "short.test", "missing")
	require.Error(t, err)
	svcErr, ok := service.AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, service.ErrNotFound, svcErr.Code)
}

func TestLinkService_Resolve_Success(t *testing.T) {
	svc, _, _ := setupLinkService(t)

	result, err := svc.Shorten(context.Background(), models.ShortenItem{URL: "https://example.com/a"})
	require.NoError(t, err)

	link, err := svc.Resolve(context.Background(), "short.test", result.Code)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", link.LongURL)
}

func TestLinkService_Delete_ThenResolveIsGone(t *testing.T) {
	svc, _, links := setupLinkService(t)

	result, err := svc.Shorten(context.Background(), models.ShortenItem{URL: "https://example.com/a"})
	require.NoError(t, err)

	link, err := links.GetByCode(context.Background(), 1, result.Code)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), link.ID))

	_, err = svc.Resolve(context.Background(), "short.test", result.Code)
	require.Error(t, err)
	svcErr, ok := service.AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, service.ErrGone, svcErr.Code)
}
