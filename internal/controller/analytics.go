package controller

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/hirepath/admin-console/internal/api"
	"github.com/hirepath/admin-console/internal/models"
)

// AnalyticsAPI is the backend surface the analytics screen consumes.
type AnalyticsAPI interface {
	TotalUsers(ctx context.Context) (int, error)
	PayingUsers(ctx context.Context) (int, error)
	DailyActiveUsers(ctx context.Context) (int, error)
	MonthlyActiveUsers(ctx context.Context) (int, error)
	NewUsersToday(ctx context.Context) (int, error)

	AvgCaseStudiesStarted(ctx context.Context) (float64, error)
	AvgCaseStudiesCompleted(ctx context.Context) (float64, error)
	CaseStudyCompletionRate(ctx context.Context) (float64, error)
	AvgTimePerCaseStudy(ctx context.Context) (float64, error)
	FunnelMetrics(ctx context.Context) (*models.FunnelMetrics, error)
}

// MetricGroup is the lifecycle of one fetch group. The two groups load and
// fail independently.
type MetricGroup struct {
	State State
	Error string
}

// AnalyticsView is a consistent snapshot of the analytics screen.
type AnalyticsView struct {
	Engagement     MetricGroup
	EngagementData models.EngagementMetrics
	CaseStudies    MetricGroup
	CaseStudyData  models.CaseStudyMetrics
	Funnel         *models.FunnelMetrics
}

// AnalyticsController drives the analytics screen. Each group issues its
// counters in parallel; one counter failing degrades its group only.
type AnalyticsController struct {
	api    AnalyticsAPI
	logger *zap.Logger

	mu          sync.Mutex
	engagement  MetricGroup
	engData     models.EngagementMetrics
	caseStudies MetricGroup
	caseData    models.CaseStudyMetrics
	funnel      *models.FunnelMetrics
}

// NewAnalyticsController builds the controller.
func NewAnalyticsController(client AnalyticsAPI, logger *zap.Logger) *AnalyticsController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsController{
		api:         client,
		logger:      logger,
		engagement:  MetricGroup{State: StateIdle},
		caseStudies: MetricGroup{State: StateIdle},
	}
}

// Load fetches both metric groups concurrently.
func (c *AnalyticsController) Load(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.LoadEngagement(ctx)
	}()
	go func() {
		defer wg.Done()
		c.LoadCaseStudies(ctx)
	}()
	wg.Wait()
}

// Refresh re-runs both groups.
func (c *AnalyticsController) Refresh(ctx context.Context) { c.Load(ctx) }

// LoadEngagement fetches the five engagement counters in parallel. The first
// failure marks the group errored; successful counters still land.
func (c *AnalyticsController) LoadEngagement(ctx context.Context) error {
	c.mu.Lock()
	c.engagement = MetricGroup{State: StateLoading}
	c.mu.Unlock()

	var data models.EngagementMetrics
	err := fetchAll(ctx,
		intFetch(c.api.TotalUsers, &data.TotalUsers),
		intFetch(c.api.PayingUsers, &data.PayingUsers),
		intFetch(c.api.DailyActiveUsers, &data.DailyActiveUsers),
		intFetch(c.api.MonthlyActiveUsers, &data.MonthlyActiveUsers),
		intFetch(c.api.NewUsersToday, &data.NewUsersToday),
	)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.engData = data
	if err != nil {
		c.engagement = MetricGroup{State: StateErrored, Error: err.Error()}
		c.logger.Warn("engagement metrics fetch failed", zap.Error(err))
		return err
	}
	c.engagement = MetricGroup{State: StateLoaded}
	return nil
}

// LoadCaseStudies fetches the case-study counters and the funnel in parallel.
func (c *AnalyticsController) LoadCaseStudies(ctx context.Context) error {
	c.mu.Lock()
	c.caseStudies = MetricGroup{State: StateLoading}
	c.mu.Unlock()

	var data models.CaseStudyMetrics
	var funnel *models.FunnelMetrics
	err := fetchAll(ctx,
		floatFetch(c.api.AvgCaseStudiesStarted, &data.AvgStartedPerUser),
		floatFetch(c.api.AvgCaseStudiesCompleted, &data.AvgCompletedPerUser),
		floatFetch(c.api.CaseStudyCompletionRate, &data.CompletionRate),
		floatFetch(c.api.AvgTimePerCaseStudy, &data.AvgTimeMinutes),
		func(ctx context.Context) error {
			f, err := c.api.FunnelMetrics(ctx)
			if err != nil {
				return err
			}
			funnel = f
			return nil
		},
	)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.caseData = data
	c.funnel = funnel
	if err != nil {
		c.caseStudies = MetricGroup{State: StateErrored, Error: err.Error()}
		c.logger.Warn("case study metrics fetch failed", zap.Error(err))
		return err
	}
	c.caseStudies = MetricGroup{State: StateLoaded}
	return nil
}

// fetchAll runs every fetch concurrently and returns the first failure.
func fetchAll(ctx context.Context, fetches ...func(context.Context) error) error {
	var wg sync.WaitGroup
	errs := make([]error, len(fetches))
	for i, fetch := range fetches {
		wg.Add(1)
		go func(i int, fetch func(context.Context) error) {
			defer wg.Done()
			errs[i] = fetch(ctx)
		}(i, fetch)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func intFetch(call func(context.Context) (int, error), dst *int) func(context.Context) error {
	return func(ctx context.Context) error {
		v, err := call(ctx)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func floatFetch(call func(context.Context) (float64, error), dst *float64) func(context.Context) error {
	return func(ctx context.Context) error {
		v, err := call(ctx)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

// View derives a consistent snapshot for rendering.
func (c *AnalyticsController) View() AnalyticsView {
	c.mu.Lock()
	defer c.mu.Unlock()
	view := AnalyticsView{
		Engagement:     c.engagement,
		EngagementData: c.engData,
		CaseStudies:    c.caseStudies,
		CaseStudyData:  c.caseData,
	}
	if c.funnel != nil {
		funnel := *c.funnel
		view.Funnel = &funnel
	}
	return view
}

var _ AnalyticsAPI = (*api.Client)(nil)
