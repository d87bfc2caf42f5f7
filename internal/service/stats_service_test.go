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

func TestStatsService_Totals(t *testing.T) {
	links := mocks.NewLinkStore()
	clicks := mocks.NewClickStore()
	svc := service.NewStatsService(links, clicks)

	link, err := links.Create(context.Background(), &models.NewLink{Code: "abc", DomainID: 1})
	require.NoError(t, err)

	ip1, ip2 := "1.1.1.1", "2.2.2.2"
	require.NoError(t, clicks.Record(context.Background(), &models.NewClick{LinkID: link.ID, IP: &ip1}))
	require.NoError(t, clicks.Record(context.Background(), &models.NewClick{LinkID: link.ID, IP: &ip1}))
	require.NoError(t, clicks.Record(context.Background(), &models.NewClick{LinkID: link.ID, IP: &ip2}))

	stats, err := svc.Totals(context.Background(), link.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalClicks)
	assert.EqualValues(t, 2, stats.UniqueClicks)
}

func TestStatsService_Totals_UnknownLinkNotFound(t *testing.T) {
	links := mocks.NewLinkStore()
	clicks := mocks.NewClickStore()
	svc := service.NewStatsService(links, clicks)

	_, err := svc.Totals(context.Background(), 999)
	require.Error(t, err)
	svcErr, ok := service.AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, service.ErrNotFound, svcErr.Code)
}
