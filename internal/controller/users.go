package controller

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/hirepath/admin-console/internal/api"
	"github.com/hirepath/admin-console/internal/derive"
	"github.com/hirepath/admin-console/internal/models"
	appErrors "github.com/hirepath/admin-console/pkg/errors"
	"github.com/hirepath/admin-console/pkg/export"
)

// UsersAPI is the backend surface the users screen consumes.
type UsersAPI interface {
	ListUsers(ctx context.Context) ([]models.UserRecord, error)
	ScoreRanks(ctx context.Context, rankType string, page, limit int) ([]models.ScoreRank, error)
}

// Detail fetches request the whole rank collection once and pick the row
// client-side, mirroring the backend's coarse ranks endpoint.
const (
	detailRankType = "all"
	detailPageSize = 2000
)

// ScoreDetail is the per-user assessment modal content.
type ScoreDetail struct {
	UserID  string
	Loading bool
	Error   string
	Rank    *models.ScoreRank
}

// UsersView is a consistent snapshot of the users screen.
type UsersView struct {
	State    State
	Error    string
	Criteria models.FilterCriteria
	Options  derive.Options
	Page     derive.Page
	Summary  models.Summary
	Selected []string
	Detail   *ScoreDetail
}

// UsersController drives the student management screen. All account records
// arrive in one bulk fetch; filtering, status derivation, option lists,
// summary counts and pagination happen locally.
type UsersController struct {
	api      UsersAPI
	engine   *derive.Engine
	logger   *zap.Logger
	csv      *export.CSVRenderer
	pdf      *export.PDFRenderer
	pageSize int

	mu       sync.Mutex
	state    State
	errMsg   string
	students []models.UserRecord
	criteria models.FilterCriteria
	page     int
	selected map[string]bool

	detail       *ScoreDetail
	detailCancel context.CancelFunc
	detailGen    int
}

// NewUsersController builds the controller; a nil logger is replaced with a
// no-op one.
func NewUsersController(client UsersAPI, engine *derive.Engine, pageSize int, logger *zap.Logger) *UsersController {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize < 1 {
		pageSize = 5
	}
	return &UsersController{
		api:      client,
		engine:   engine,
		logger:   logger,
		csv:      export.NewCSVRenderer(),
		pdf:      export.NewPDFRenderer(),
		pageSize: pageSize,
		state:    StateIdle,
		criteria: models.NewFilterCriteria(),
		page:     1,
		selected: map[string]bool{},
	}
}

// Load fetches the account collection and keeps the student projection.
// Filters and selection reset; a failure leaves the previous records visible
// behind the errored state.
func (c *UsersController) Load(ctx context.Context) error {
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
		c.logger.Warn("users fetch failed", zap.Error(err))
		return err
	}
	c.state = StateLoaded
	c.students = derive.Partition(records, models.RoleStudent)
	c.criteria = models.NewFilterCriteria()
	c.page = 1
	c.selected = map[string]bool{}
	c.detail = nil
	return nil
}

// Refresh re-runs the bulk fetch.
func (c *UsersController) Refresh(ctx context.Context) error { return c.Load(ctx) }

// SetSearch updates the search term and returns to page one.
func (c *UsersController) SetSearch(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.criteria.Search = term
	c.page = 1
}

// SetStatus filters on the derived activity status.
func (c *UsersController) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.criteria.Status = status
	c.page = 1
}

// SetCountry narrows the country and resets the dependent city and university
// filters, which may no longer be valid options.
func (c *UsersController) SetCountry(country string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.criteria.Country = country
	c.criteria.City = models.FilterAll
	c.criteria.University = models.FilterAll
	c.page = 1
}

// SetCity narrows the city and resets the dependent university filter.
func (c *UsersController) SetCity(city string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.criteria.City = city
	c.criteria.University = models.FilterAll
	c.page = 1
}

// SetUniversity narrows the university filter.
func (c *UsersController) SetUniversity(university string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.criteria.University = university
	c.page = 1
}

// NextPage advances within the filtered total.
func (c *UsersController) NextPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page < c.totalPagesLocked() {
		c.page++
	}
}

// PrevPage steps back, never below page one.
func (c *UsersController) PrevPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page > 1 {
		c.page--
	}
}

func (c *UsersController) totalPagesLocked() int {
	filtered := c.engine.Apply(c.students, c.criteria)
	return derive.Paginate(filtered, 1, c.pageSize).TotalPages
}

// Select opens the score detail for one user. Each selection cancels the
// in-flight fetch of the previous one, so a slow earlier response can never
// overwrite the modal of a newer selection.
func (c *UsersController) Select(ctx context.Context, userID string) error {
	c.mu.Lock()
	if c.detailCancel != nil {
		c.detailCancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	c.detailCancel = cancel
	c.detailGen++
	gen := c.detailGen
	c.detail = &ScoreDetail{UserID: userID, Loading: true}
	c.mu.Unlock()

	ranks, err := c.api.ScoreRanks(ctx, detailRankType, 1, detailPageSize)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.detailGen {
		// A newer selection superseded this fetch.
		return nil
	}
	detail := &ScoreDetail{UserID: userID}
	if err != nil {
		detail.Error = err.Error()
		c.logger.Warn("score detail fetch failed", zap.String("user_id", userID), zap.Error(err))
		c.detail = detail
		return err
	}
	for i := range ranks {
		if ranks[i].UserID == userID {
			detail.Rank = &ranks[i]
			break
		}
	}
	c.detail = detail
	return nil
}

// CloseDetail dismisses the modal and cancels any in-flight detail fetch.
func (c *UsersController) CloseDetail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detailCancel != nil {
		c.detailCancel()
		c.detailCancel = nil
	}
	c.detailGen++
	c.detail = nil
}

// ToggleRow flips one row's membership in the selection set.
func (c *UsersController) ToggleRow(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected[userID] {
		delete(c.selected, userID)
		return
	}
	c.selected[userID] = true
}

// ToggleAll selects every currently filtered row, or clears the selection when
// all of them are already selected.
func (c *UsersController) ToggleAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	filtered := c.engine.Apply(c.students, c.criteria)

	allSelected := len(filtered) > 0
	for _, record := range filtered {
		if !c.selected[record.ID] {
			allSelected = false
			break
		}
	}
	if allSelected {
		c.selected = map[string]bool{}
		return
	}
	for _, record := range filtered {
		c.selected[record.ID] = true
	}
}

// exportRecords picks the selected rows, falling back to the whole filtered
// list when nothing is selected.
func (c *UsersController) exportRecords() []models.UserRecord {
	filtered := c.engine.Apply(c.students, c.criteria)
	if len(c.selected) == 0 {
		return filtered
	}
	out := make([]models.UserRecord, 0, len(c.selected))
	for _, record := range filtered {
		if c.selected[record.ID] {
			out = append(out, record)
		}
	}
	return out
}

// ExportCSV renders the selected-or-filtered rows as CSV bytes.
func (c *UsersController) ExportCSV() ([]byte, error) {
	c.mu.Lock()
	data := export.UserDataset("Students", c.exportRecords(), c.engine.Status)
	c.mu.Unlock()
	return c.csv.Render(data)
}

// ExportPDF renders the selected-or-filtered rows as a PDF document.
func (c *UsersController) ExportPDF() ([]byte, error) {
	c.mu.Lock()
	data := export.UserDataset("Students", c.exportRecords(), c.engine.Status)
	c.mu.Unlock()
	return c.pdf.Render(data)
}

// Block is surfaced in the UI but has no backend endpoint.
func (c *UsersController) Block(string) error { return appErrors.ErrNotImplemented }

// Delete is surfaced in the UI but has no backend endpoint.
func (c *UsersController) Delete(string) error { return appErrors.ErrNotImplemented }

// BulkAction is surfaced in the UI but has no backend endpoint.
func (c *UsersController) BulkAction(string, []string) error { return appErrors.ErrNotImplemented }

// View derives a consistent snapshot for rendering.
func (c *UsersController) View() UsersView {
	c.mu.Lock()
	defer c.mu.Unlock()

	filtered := c.engine.Apply(c.students, c.criteria)
	view := UsersView{
		State:    c.state,
		Error:    c.errMsg,
		Criteria: c.criteria,
		Options:  derive.OptionsFor(c.students, c.criteria),
		Page:     derive.Paginate(filtered, c.page, c.pageSize),
		Summary:  c.engine.Summarize(c.students),
	}
	for id := range c.selected {
		view.Selected = append(view.Selected, id)
	}
	sort.Strings(view.Selected)
	if c.detail != nil {
		detail := *c.detail
		view.Detail = &detail
	}
	return view
}

var _ UsersAPI = (*api.Client)(nil)
