package derive

import (
	"strings"
	"time"

	"github.com/hirepath/admin-console/internal/models"
)

// Engine derives activity status and summary counts from record timestamps.
// The backend's own status field is ignored; only the injected clock and the
// record's createdAt/lastLogin decide. The clock is injected for deterministic
// boundary tests.
type Engine struct {
	now func() time.Time
}

// NewEngine builds an Engine; a nil clock defaults to time.Now.
func NewEngine(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

const (
	newAccountActiveDays = 7
	inactivityDays       = 30
)

// Status classifies one record.
//
// A record that has never logged in counts as active for its first seven full
// days. A record with a login history goes inactive once the gap reaches
// thirty full days.
func (e *Engine) Status(record models.UserRecord) models.ActivityStatus {
	now := e.now()
	if record.LastLogin == nil {
		if daysBetween(record.CreatedAt, now) <= newAccountActiveDays {
			return models.StatusActive
		}
		return models.StatusInactive
	}
	if daysBetween(*record.LastLogin, now) >= inactivityDays {
		return models.StatusInactive
	}
	return models.StatusActive
}

func daysBetween(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}

// Partition projects the records with the given role, preserving order.
func Partition(records []models.UserRecord, role models.Role) []models.UserRecord {
	out := make([]models.UserRecord, 0, len(records))
	for _, record := range records {
		if record.Role == role {
			out = append(out, record)
		}
	}
	return out
}

// Options is the set of selectable location filter values, each in first-seen
// record order with the unconstrained sentinel first.
type Options struct {
	Countries    []string
	Cities       []string
	Universities []string
}

// OptionsFor derives the cascading location options: every country seen in the
// records, the cities of the selected country, and the universities of the
// selected country+city. Records missing a location field never contribute an
// option but are still matched by the "all" sentinel.
func OptionsFor(records []models.UserRecord, criteria models.FilterCriteria) Options {
	opts := Options{
		Countries:    []string{models.FilterAll},
		Cities:       []string{models.FilterAll},
		Universities: []string{models.FilterAll},
	}
	seenCountry := map[string]bool{}
	seenCity := map[string]bool{}
	seenUniversity := map[string]bool{}

	for _, record := range records {
		if record.Location == nil {
			continue
		}
		loc := *record.Location
		if loc.Country != "" && !seenCountry[loc.Country] {
			seenCountry[loc.Country] = true
			opts.Countries = append(opts.Countries, loc.Country)
		}
		if !matchValue(criteria.Country, loc.Country) {
			continue
		}
		if loc.City != "" && !seenCity[loc.City] {
			seenCity[loc.City] = true
			opts.Cities = append(opts.Cities, loc.City)
		}
		if !matchValue(criteria.City, loc.City) {
			continue
		}
		if loc.University != "" && !seenUniversity[loc.University] {
			seenUniversity[loc.University] = true
			opts.Universities = append(opts.Universities, loc.University)
		}
	}
	return opts
}

// Apply filters records by the conjunction of every active criterion. The
// result is a fresh slice; applying the same criteria twice yields the same
// records.
func (e *Engine) Apply(records []models.UserRecord, criteria models.FilterCriteria) []models.UserRecord {
	search := strings.ToLower(strings.TrimSpace(criteria.Search))

	out := make([]models.UserRecord, 0, len(records))
	for _, record := range records {
		if search != "" && !matchSearch(record, search) {
			continue
		}
		if criteria.Status != "" && criteria.Status != models.FilterAll &&
			string(e.Status(record)) != criteria.Status {
			continue
		}
		if !matchLocation(record.Location, criteria) {
			continue
		}
		out = append(out, record)
	}
	return out
}

// matchSearch checks first name, last name and email independently; a term
// never matches across the boundary between two fields.
func matchSearch(record models.UserRecord, search string) bool {
	return strings.Contains(strings.ToLower(record.FirstName), search) ||
		strings.Contains(strings.ToLower(record.LastName), search) ||
		strings.Contains(strings.ToLower(record.Email), search)
}

func matchLocation(loc *models.Location, criteria models.FilterCriteria) bool {
	var country, city, university string
	if loc != nil {
		country, city, university = loc.Country, loc.City, loc.University
	}
	return matchValue(criteria.Country, country) &&
		matchValue(criteria.City, city) &&
		matchValue(criteria.University, university)
}

func matchValue(criterion, value string) bool {
	return criterion == "" || criterion == models.FilterAll || criterion == value
}

// Page is one visible window over a filtered list.
type Page struct {
	Records    []models.UserRecord
	Page       int
	TotalPages int
	Total      int
}

// Paginate slices the filtered records into a 1-indexed page. TotalPages is
// never below one even for an empty list; a page past the end yields an empty
// window, not an error.
func Paginate(records []models.UserRecord, page, size int) Page {
	if size < 1 {
		size = 1
	}
	if page < 1 {
		page = 1
	}

	total := len(records)
	totalPages := (total + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}

	start := (page - 1) * size
	if start >= total {
		return Page{Records: []models.UserRecord{}, Page: page, TotalPages: totalPages, Total: total}
	}
	end := start + size
	if end > total {
		end = total
	}
	return Page{Records: records[start:end], Page: page, TotalPages: totalPages, Total: total}
}

// Summarize computes the stat-card counts over a role partition. The counts
// ignore filters and pagination.
func (e *Engine) Summarize(records []models.UserRecord) models.Summary {
	now := e.now()
	summary := models.Summary{Total: len(records)}

	for _, record := range records {
		reference := record.CreatedAt
		if record.LastLogin != nil {
			reference = *record.LastLogin
		}
		if sameDay(reference, now) {
			summary.ActiveToday++
		}
		// The monthly card counts through the thirtieth day, even though
		// Status already reports inactive there.
		if daysBetween(reference, now) <= inactivityDays {
			summary.ActiveMonthly++
		}
		if sameDay(record.CreatedAt, now) {
			summary.NewToday++
		}
	}
	return summary
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
