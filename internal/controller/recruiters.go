package controller

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/hirepath/admin-console/internal/derive"
	"github.com/hirepath/admin-console/internal/models"
)

// RecruitersAPI is the backend surface the recruiters screen consumes.
type RecruitersAPI interface {
	ListUsers(ctx context.Context) ([]models.UserRecord, error)
}

// RecruitersView is a consistent snapshot of the recruiters screen.
type RecruitersView struct {
	State    State
	Error    string
	Criteria models.FilterCriteria
	Options  derive.Options
	Page     derive.Page
	Summary  models.Summary
	Detail   *models.UserRecord
}

// RecruitersController drives the recruiter list. It shares the bulk account
// fetch with the users screen but projects the recruiter partition, and the
// detail view comes straight from the already-fetched record with no second
// request.
type RecruitersController struct {
	api      RecruitersAPI
	engine   *derive.Engine
	logger   *zap.Logger
	pageSize int

	mu         sync.Mutex
	state      State
	errMsg     string
	recruiters []models.UserRecord
	criteria   models.FilterCriteria
	page       int
	detail     *models.UserRecord
}

// NewRecruitersController builds the controller.
func NewRecruitersController(client RecruitersAPI, engine *derive.Engine, pageSize int, logger *zap.Logger) *RecruitersController {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize < 1 {
		pageSize = 5
	}
	return &RecruitersController{
		api:      client,
		engine:   engine,
		logger:   logger,
		pageSize: pageSize,
		state:    StateIdle,
		criteria: models.NewFilterCriteria(),
		page:     1,
	}
}

// Load fetches the account collection and keeps the recruiter projection.
func (c *RecruitersController) Load(ctx context.Context) error {
	c.mu.Lock()
	c.state = StateLoading
	c.errMsg = ""
	c.mu.Unlock()

	records, err := c.api.ListUsers(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateErrored
		c.errMsg = err.Error()
		c.logger.Warn("recruiters fetch failed", zap.Error(err))
		return err
	}
	c.state = StateLoaded
	c.recruiters = derive.Partition(records, models.RoleRecruiter)
	c.criteria = models.NewFilterCriteria()
	c.page = 1
	c.detail = nil
	return nil
}

// Refresh re-runs the bulk fetch.
func (c *RecruitersController) Refresh(ctx context.Context) error { return c.Load(ctx) }

// SetSearch updates the search term and returns to page one.
func (c *RecruitersController) SetSearch(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.criteria.Search = term
	c.page = 1
}

// SetStatus filters on the derived activity status.
func (c *RecruitersController) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.criteria.Status = status
	c.page = 1
}

// SetCountry narrows the country and resets the dependent filters.
func (c *RecruitersController) SetCountry(country string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.criteria.Country = country
	c.criteria.City = models.FilterAll
	c.criteria.University = models.FilterAll
	c.page = 1
}

// SetCity narrows the city and resets the university filter.
func (c *RecruitersController) SetCity(city string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.criteria.City = city
	c.criteria.University = models.FilterAll
	c.page = 1
}

// NextPage advances within the filtered total.
func (c *RecruitersController) NextPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	filtered := c.engine.Apply(c.recruiters, c.criteria)
	if c.page < derive.Paginate(filtered, 1, c.pageSize).TotalPages {
		c.page++
	}
}

// PrevPage steps back, never below page one.
func (c *RecruitersController) PrevPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page > 1 {
		c.page--
	}
}

// Select opens the detail for one recruiter from the fetched records.
func (c *RecruitersController) Select(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.recruiters {
		if c.recruiters[i].ID == userID {
			record := c.recruiters[i]
			c.detail = &record
			return true
		}
	}
	return false
}

// CloseDetail dismisses the detail view.
func (c *RecruitersController) CloseDetail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detail = nil
}

// View derives a consistent snapshot for rendering.
func (c *RecruitersController) View() RecruitersView {
	c.mu.Lock()
	defer c.mu.Unlock()

	filtered := c.engine.Apply(c.recruiters, c.criteria)
	view := RecruitersView{
		State:    c.state,
		Error:    c.errMsg,
		Criteria: c.criteria,
		Options:  derive.OptionsFor(c.recruiters, c.criteria),
		Page:     derive.Paginate(filtered, c.page, c.pageSize),
		Summary:  c.engine.Summarize(c.recruiters),
	}
	if c.detail != nil {
		record := *c.detail
		view.Detail = &record
	}
	return view
}
