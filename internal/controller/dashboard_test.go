package controller

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirepath/admin-console/internal/api"
	"github.com/hirepath/admin-console/internal/models"
)

type dashboardAPIMock struct {
	stats           func(ctx context.Context) (*models.Stats, error)
	paidUsers       func(ctx context.Context) (int, error)
	countries       func(ctx context.Context) ([]string, error)
	states          func(ctx context.Context, country string) ([]string, error)
	usersByLocation func(ctx context.Context, country, state string) (*models.LocationStats, error)
}

func (m *dashboardAPIMock) Stats(ctx context.Context) (*models.Stats, error) { return m.stats(ctx) }
func (m *dashboardAPIMock) PaidUsers(ctx context.Context) (int, error)       { return m.paidUsers(ctx) }
func (m *dashboardAPIMock) Countries(ctx context.Context) ([]string, error)  { return m.countries(ctx) }
func (m *dashboardAPIMock) States(ctx context.Context, country string) ([]string, error) {
	return m.states(ctx, country)
}
func (m *dashboardAPIMock) UsersByLocation(ctx context.Context, country, state string) (*models.LocationStats, error) {
	return m.usersByLocation(ctx, country, state)
}

func healthyDashboardMock() *dashboardAPIMock {
	return &dashboardAPIMock{
		stats: func(context.Context) (*models.Stats, error) {
			return &models.Stats{TotalUsers: 42, TotalStudents: 30, TotalRecruiters: 10}, nil
		},
		paidUsers: func(context.Context) (int, error) { return 7, nil },
		countries: func(context.Context) ([]string, error) { return []string{"India", "UK"}, nil },
		states: func(_ context.Context, country string) ([]string, error) {
			return []string{"Karnataka", "Maharashtra"}, nil
		},
		usersByLocation: func(_ context.Context, country, state string) (*models.LocationStats, error) {
			return &models.LocationStats{Count: 12, Students: 9, Recruiters: 3}, nil
		},
	}
}

func TestDashboardLoad(t *testing.T) {
	c := NewDashboardController(healthyDashboardMock(), nil)
	require.NoError(t, c.Load(context.Background()))

	view := c.View()
	assert.Equal(t, StateLoaded, view.State)
	assert.Equal(t, 42, view.Stats.TotalUsers)
	assert.Equal(t, 7, view.PaidUsers)
	assert.Equal(t, []string{"India", "UK"}, view.Location.Countries)
}

func TestDashboardStatsFailure(t *testing.T) {
	mock := healthyDashboardMock()
	mock.stats = func(context.Context) (*models.Stats, error) {
		return nil, &api.APIError{Status: 500, Message: "boom"}
	}
	c := NewDashboardController(mock, nil)

	require.Error(t, c.Load(context.Background()))
	view := c.View()
	assert.Equal(t, StateErrored, view.State)
	assert.Equal(t, "boom", view.Error)
}

func TestDashboardCountriesFailureDegradesWidgetOnly(t *testing.T) {
	mock := healthyDashboardMock()
	mock.countries = func(context.Context) ([]string, error) {
		return nil, &api.APIError{Message: api.MsgNoResponse}
	}
	c := NewDashboardController(mock, nil)

	require.NoError(t, c.Load(context.Background()))
	view := c.View()
	assert.Equal(t, StateLoaded, view.State)
	assert.Equal(t, api.MsgNoResponse, view.Location.Error)
	assert.Empty(t, view.Location.Countries)
}

func TestDashboardLocationDrillDown(t *testing.T) {
	c := NewDashboardController(healthyDashboardMock(), nil)
	require.NoError(t, c.Load(context.Background()))

	require.NoError(t, c.SelectCountry(context.Background(), "India"))
	view := c.View()
	assert.Equal(t, "India", view.Location.SelectedCountry)
	assert.Equal(t, []string{"Karnataka", "Maharashtra"}, view.Location.States)
	assert.Nil(t, view.Location.Stats)

	require.NoError(t, c.SelectState(context.Background(), "Karnataka"))
	view = c.View()
	require.NotNil(t, view.Location.Stats)
	assert.Equal(t, 12, view.Location.Stats.Count)

	// A country change drops the stale state list and breakdown.
	require.NoError(t, c.SelectCountry(context.Background(), "UK"))
	view = c.View()
	assert.Empty(t, view.Location.SelectedState)
	assert.Nil(t, view.Location.Stats)
}

func TestDashboardSupersededCountryFetchNeverLands(t *testing.T) {
	firstStarted := make(chan struct{})
	release := make(chan struct{})

	mock := healthyDashboardMock()
	var callsMu sync.Mutex
	calls := 0
	mock.states = func(ctx context.Context, country string) ([]string, error) {
		callsMu.Lock()
		calls++
		first := calls == 1
		callsMu.Unlock()
		if first {
			close(firstStarted)
			select {
			case <-ctx.Done():
				return nil, &api.APIError{Message: api.MsgNoResponse}
			case <-release:
			}
			return []string{"Stale"}, nil
		}
		return []string{"Fresh"}, nil
	}

	c := NewDashboardController(mock, nil)
	require.NoError(t, c.Load(context.Background()))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.SelectCountry(context.Background(), "India")
	}()
	<-firstStarted

	require.NoError(t, c.SelectCountry(context.Background(), "UK"))
	close(release)
	wg.Wait()

	view := c.View()
	assert.Equal(t, "UK", view.Location.SelectedCountry)
	assert.Equal(t, []string{"Fresh"}, view.Location.States)
	assert.Empty(t, view.Location.Error)
}
