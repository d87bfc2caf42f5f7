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

func TestDomainService_Create_NormalizesCase(t *testing.T) {
	domains := mocks.NewDomainStore()
	links := mocks.NewLinkStore()
	svc := service.NewDomainService(domains, links)

	d, err := svc.Create(context.Background(), "Example.COM", true, nil)
	require.NoError(t, err)
	assert.Equal(t, "example.com", d.Name)
}

func TestDomainService_Create_DuplicateNameConflicts(t *testing.T) {
	domains := mocks.NewDomainStore()
	links := mocks.NewLinkStore()
	svc := service.NewDomainService(domains, links)

	_, err := svc.Create(context.Background(), "example.com", true, nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "EXAMPLE.COM", false, nil)
	require.Error(t, err)
	svcErr, ok := service.AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, service.ErrConflict, svcErr.Code)
}

func TestDomainService_SetDefault_DemotesPrevious(t *testing.T) {
	domains := mocks.NewDomainStore()
	links := mocks.NewLinkStore()
	svc := service.NewDomainService(domains, links)

	first, err := svc.Create(context.Background(), "a.test", true, nil)
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), "b.test", false, nil)
	require.NoError(t, err)

	require.NoError(t, svc.SetDefault(context.Background(), second.ID))

	refreshedFirst, err := svc.Get(context.Background(), first.ID)
	require.NoError(t, err)
	refreshedSecond, err := svc.Get(context.Background(), second.ID)
	require.NoError(t, err)

	assert.False(t, refreshedFirst.IsDefault)
	assert.True(t, refreshedSecond.IsDefault)
}

func TestDomainService_Delete_RefusesDefaultDomain(t *testing.T) {
	domains := mocks.NewDomainStore()
	links := mocks.NewLinkStore()
	svc := service.NewDomainService(domains, links)

	d, err := svc.Create(context.Background(), "a.test", true, nil)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), d.ID)
	require.Error(t, err)
	svcErr, ok := service.AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, service.ErrConflict, svcErr.Code)
}

func TestDomainService_Delete_RefusesDomainWithActiveLinks(t *testing.T) {
	domains := mocks.NewDomainStore()
	links := mocks.NewLinkStore()
	svc := service.NewDomainService(domains, links)
	linkSvc := service.NewLinkService(links, domains, mocks.NewCache())

	d, err := svc.Create(context.Background(), "a.test", false, nil)
	require.NoError(t, err)

	_, err = linkSvc.Shorten(context.Background(), models.ShortenItem{URL: "https://example.com/a", Domain: &d.Name})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), d.ID)
	require.Error(t, err)
	svcErr, ok := service.AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, service.ErrConflict, svcErr.Code)
}

func TestDomainService_Delete_AllowsDomainAfterLinksDeleted(t *testing.T) {
	domains := mocks.NewDomainStore()
	links := mocks.NewLinkStore()
	svc := service.NewDomainService(domains, links)
	linkSvc := service.NewLinkService(links, domains, mocks.NewCache())

	d, err := svc.Create(context.Background(), "a.test", false, nil)
	require.NoError(t, err)

	result, err := linkSvc.Shorten(context.Background(), models.ShortenItem{URL: "https://example.com/a", Domain: &d.Name})
	require.NoError(t, err)

	link, err := links.GetByCode(context.Background(), d.ID, result.Code)
	require.NoError(t, err)
	require.NoError(t, linkSvc.Delete(context.Background(), link.ID))

	require.NoError(t, svc.Delete(context.Background(), d.ID))
}

func TestDomainService_Patch_ClearsDescription(t *testing.T) {
	domains := mocks.NewDomainStore()
	links := mocks.NewLinkStore()
	svc := service.NewDomainService(domains, links)
	desc := "original"

	d, err := svc.Create(context.Background(), "a.test", true, &desc)
	require.NoError(t, err)

	var nilDesc *string
	updated, err := svc.Patch(context.Background(), d.ID, models.DomainPatch{Description: &nilDesc})
	require.NoError(t, err)
	assert.Nil(t, updated.Description)
}
