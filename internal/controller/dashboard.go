package controller

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/hirepath/admin-console/internal/api"
	"github.com/hirepath/admin-console/internal/models"
)

// DashboardAPI is the backend surface the dashboard consumes.
type DashboardAPI interface {
	Stats(ctx context.Context) (*models.Stats, error)
	PaidUsers(ctx context.Context) (int, error)
	Countries(ctx context.Context) ([]string, error)
	States(ctx context.Context, country string) ([]string, error)
	UsersByLocation(ctx context.Context, country, state string) (*models.LocationStats, error)
}

// LocationWidget is the country → state → breakdown drill-down. Each step has
// its own loading flag; selecting a country invalidates the state list and the
// breakdown below it.
type LocationWidget struct {
	Countries []string
	States    []string

	SelectedCountry string
	SelectedState   string

	LoadingStates bool
	LoadingStats  bool
	Error         string

	Stats *models.LocationStats
}

// DashboardView is a consistent snapshot of the dashboard screen.
type DashboardView struct {
	State     State
	Error     string
	Stats     models.Stats
	PaidUsers int
	Location  LocationWidget
}

// DashboardController drives the landing screen: headline stat cards plus the
// location drill-down widget.
type DashboardController struct {
	api    DashboardAPI
	logger *zap.Logger

	mu        sync.Mutex
	state     State
	errMsg    string
	stats     models.Stats
	paidUsers int
	location  LocationWidget

	widgetCancel context.CancelFunc
	widgetGen    int
}

// NewDashboardController builds the controller.
func NewDashboardController(client DashboardAPI, logger *zap.Logger) *DashboardController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardController{api: client, logger: logger, state: StateIdle}
}

// Load fetches the stat cards and the country list. The country list failing
// degrades only the widget, not the whole screen.
func (c *DashboardController) Load(ctx context.Context) error {
	c.mu.Lock()
	c.state = StateLoading
	c.errMsg = ""
	c.mu.Unlock()

	stats, err := c.api.Stats(ctx)
	if err != nil {
		c.mu.Lock()
		c.state = StateErrored
		c.errMsg = err.Error()
		c.mu.Unlock()
		c.logger.Warn("stats fetch failed", zap.Error(err))
		return err
	}

	paid, err := c.api.PaidUsers(ctx)
	if err != nil {
		c.mu.Lock()
		c.state = StateErrored
		c.errMsg = err.Error()
		c.mu.Unlock()
		c.logger.Warn("paid users fetch failed", zap.Error(err))
		return err
	}

	countries, err := c.api.Countries(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateLoaded
	c.stats = *stats
	c.paidUsers = paid
	c.location = LocationWidget{Countries: countries}
	if err != nil {
		c.location.Error = err.Error()
		c.logger.Warn("countries fetch failed", zap.Error(err))
	}
	return nil
}

// Refresh re-runs the full load.
func (c *DashboardController) Refresh(ctx context.Context) error { return c.Load(ctx) }

// SelectCountry loads the state list for a country. The state selection and
// breakdown below it reset; a superseded fetch can never land.
func (c *DashboardController) SelectCountry(ctx context.Context, country string) error {
	c.mu.Lock()
	ctx, gen := c.restartWidgetFetch(ctx)
	c.location.SelectedCountry = country
	c.location.SelectedState = ""
	c.location.States = nil
	c.location.Stats = nil
	c.location.Error = ""
	c.location.LoadingStates = true
	c.mu.Unlock()

	states, err := c.api.States(ctx, country)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.widgetGen {
		return nil
	}
	c.location.LoadingStates = false
	if err != nil {
		c.location.Error = err.Error()
		c.logger.Warn("states fetch failed", zap.String("country", country), zap.Error(err))
		return err
	}
	c.location.States = states
	return nil
}

// SelectState loads the role breakdown for the selected country+state pair.
func (c *DashboardController) SelectState(ctx context.Context, state string) error {
	c.mu.Lock()
	country := c.location.SelectedCountry
	ctx, gen := c.restartWidgetFetch(ctx)
	c.location.SelectedState = state
	c.location.Stats = nil
	c.location.Error = ""
	c.location.LoadingStats = true
	c.mu.Unlock()

	stats, err := c.api.UsersByLocation(ctx, country, state)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.widgetGen {
		return nil
	}
	c.location.LoadingStats = false
	if err != nil {
		c.location.Error = err.Error()
		c.logger.Warn("location stats fetch failed",
			zap.String("country", country), zap.String("state", state), zap.Error(err))
		return err
	}
	c.location.Stats = stats
	return nil
}

// restartWidgetFetch cancels any in-flight widget request and opens a new
// generation. Callers must hold the lock.
func (c *DashboardController) restartWidgetFetch(ctx context.Context) (context.Context, int) {
	if c.widgetCancel != nil {
		c.widgetCancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	c.widgetCancel = cancel
	c.widgetGen++
	return ctx, c.widgetGen
}

// View derives a consistent snapshot for rendering.
func (c *DashboardController) View() DashboardView {
	c.mu.Lock()
	defer c.mu.Unlock()
	view := DashboardView{
		State:     c.state,
		Error:     c.errMsg,
		Stats:     c.stats,
		PaidUsers: c.paidUsers,
		Location:  c.location,
	}
	if c.location.Stats != nil {
		stats := *c.location.Stats
		view.Location.Stats = &stats
	}
	return view
}

var _ DashboardAPI = (*api.Client)(nil)
