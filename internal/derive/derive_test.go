package derive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirepath/admin-console/internal/models"
)

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func daysAgo(days int) time.Time { return testNow.AddDate(0, 0, -days) }

func userAt(id string, role models.Role, createdAt time.Time, lastLogin *time.Time) models.UserRecord {
	return models.UserRecord{
		ID:        id,
		FirstName: id,
		Email:     id + "@example.com",
		Role:      role,
		CreatedAt: createdAt,
		LastLogin: lastLogin,
	}
}

func ptr(t time.Time) *time.Time { return &t }

func TestStatusNewAccountBoundary(t *testing.T) {
	engine := NewEngine(fixedClock)

	tests := []struct {
		name      string
		createdAt time.Time
		want      models.ActivityStatus
	}{
		{"created today", testNow, models.StatusActive},
		{"created seven days ago", daysAgo(7), models.StatusActive},
		{"created eight days ago", daysAgo(8), models.StatusInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := userAt("u", models.RoleStudent, tt.createdAt, nil)
			assert.Equal(t, tt.want, engine.Status(record))
		})
	}
}

func TestStatusLastLoginBoundary(t *testing.T) {
	engine := NewEngine(fixedClock)

	// lastLogin dominates createdAt entirely.
	created := daysAgo(400)

	tests := []struct {
		name      string
		lastLogin time.Time
		want      models.ActivityStatus
	}{
		{"logged in today", testNow, models.StatusActive},
		{"logged in 29 days ago", daysAgo(29), models.StatusActive},
		{"logged in 30 days ago", daysAgo(30), models.StatusInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := userAt("u", models.RoleStudent, created, ptr(tt.lastLogin))
			assert.Equal(t, tt.want, engine.Status(record))
		})
	}
}

func TestStatusIgnoresServerStatusField(t *testing.T) {
	engine := NewEngine(fixedClock)

	record := userAt("u", models.RoleStudent, daysAgo(100), nil)
	record.Status = "active"
	assert.Equal(t, models.StatusInactive, engine.Status(record))
}

func TestPartitionPreservesOrderAndRole(t *testing.T) {
	records := []models.UserRecord{
		userAt("s1", models.RoleStudent, testNow, nil),
		userAt("r1", models.RoleRecruiter, testNow, nil),
		userAt("s2", models.RoleStudent, testNow, nil),
		userAt("a1", models.RoleAdmin, testNow, nil),
	}

	students := Partition(records, models.RoleStudent)
	require.Len(t, students, 2)
	assert.Equal(t, "s1", students[0].ID)
	assert.Equal(t, "s2", students[1].ID)

	assert.Len(t, Partition(records, models.RoleRecruiter), 1)
	assert.Empty(t, Partition(nil, models.RoleStudent))
}

func locatedUser(id, country, city, university string) models.UserRecord {
	u := userAt(id, models.RoleStudent, testNow, nil)
	u.Location = &models.Location{Country: country, City: city, University: university}
	return u
}

func TestOptionsCascade(t *testing.T) {
	records := []models.UserRecord{
		locatedUser("u1", "India", "Bengaluru", "IISc"),
		locatedUser("u2", "India", "Mumbai", "IIT Bombay"),
		locatedUser("u3", "UK", "London", "UCL"),
		locatedUser("u4", "India", "Bengaluru", "PES"),
		userAt("u5", models.RoleStudent, testNow, nil),
	}

	criteria := models.NewFilterCriteria()
	opts := OptionsFor(records, criteria)
	assert.Equal(t, []string{"all", "India", "UK"}, opts.Countries)
	assert.Equal(t, []string{"all", "Bengaluru", "Mumbai", "London"}, opts.Cities)

	criteria.Country = "India"
	opts = OptionsFor(records, criteria)
	assert.Equal(t, []string{"all", "India", "UK"}, opts.Countries)
	assert.Equal(t, []string{"all", "Bengaluru", "Mumbai"}, opts.Cities)
	assert.Equal(t, []string{"all", "IISc", "IIT Bombay", "PES"}, opts.Universities)

	criteria.City = "Bengaluru"
	opts = OptionsFor(records, criteria)
	assert.Equal(t, []string{"all", "IISc", "PES"}, opts.Universities)
}

func TestOptionsSkipEmptyFields(t *testing.T) {
	records := []models.UserRecord{
		locatedUser("u1", "India", "", ""),
		locatedUser("u2", "", "Nowhere", "Ghost U"),
	}

	opts := OptionsFor(records, models.NewFilterCriteria())
	assert.Equal(t, []string{"all", "India"}, opts.Countries)
	// u2 has no country so its city surfaces only under the "all" country.
	assert.Equal(t, []string{"all", "Nowhere"}, opts.Cities)
}

func TestApplySearchMatchesNameAndEmail(t *testing.T) {
	engine := NewEngine(fixedClock)
	ada := userAt("u1", models.RoleStudent, testNow, nil)
	ada.FirstName, ada.LastName, ada.Email = "Ada", "Lovelace", "ada@maths.io"
	grace := userAt("u2", models.RoleStudent, testNow, nil)
	grace.FirstName, grace.Email = "Grace", "grace@navy.mil"
	records := []models.UserRecord{ada, grace}

	criteria := models.NewFilterCriteria()
	criteria.Search = "LOVE"
	require.Len(t, engine.Apply(records, criteria), 1)

	criteria.Search = "navy.mil"
	got := engine.Apply(records, criteria)
	require.Len(t, got, 1)
	assert.Equal(t, "u2", got[0].ID)

	criteria.Search = "  "
	assert.Len(t, engine.Apply(records, criteria), 2)
}

func TestApplySearchDoesNotSpanNameFields(t *testing.T) {
	engine := NewEngine(fixedClock)
	ada := userAt("u1", models.RoleStudent, testNow, nil)
	ada.FirstName, ada.LastName, ada.Email = "Ada", "Lovelace", "ada@maths.io"
	records := []models.UserRecord{ada}

	criteria := models.NewFilterCriteria()
	criteria.Search = "da lo"
	assert.Empty(t, engine.Apply(records, criteria))

	criteria.Search = "ada"
	assert.Len(t, engine.Apply(records, criteria), 1)
}

func TestApplyFiltersOnComputedStatus(t *testing.T) {
	engine := NewEngine(fixedClock)
	records := []models.UserRecord{
		userAt("fresh", models.RoleStudent, daysAgo(2), nil),
		userAt("stale", models.RoleStudent, daysAgo(60), nil),
		userAt("returning", models.RoleStudent, daysAgo(200), ptr(daysAgo(3))),
	}

	criteria := models.NewFilterCriteria()
	criteria.Status = string(models.StatusActive)
	active := engine.Apply(records, criteria)
	require.Len(t, active, 2)
	assert.Equal(t, "fresh", active[0].ID)
	assert.Equal(t, "returning", active[1].ID)

	criteria.Status = string(models.StatusInactive)
	inactive := engine.Apply(records, criteria)
	require.Len(t, inactive, 1)
	assert.Equal(t, "stale", inactive[0].ID)
}

func TestApplyLocationConjunction(t *testing.T) {
	engine := NewEngine(fixedClock)
	records := []models.UserRecord{
		locatedUser("u1", "India", "Bengaluru", "IISc"),
		locatedUser("u2", "India", "Mumbai", "IIT Bombay"),
		locatedUser("u3", "UK", "London", "UCL"),
		userAt("u4", models.RoleStudent, testNow, nil),
	}

	criteria := models.NewFilterCriteria()
	criteria.Country = "India"
	criteria.City = "Mumbai"
	got := engine.Apply(records, criteria)
	require.Len(t, got, 1)
	assert.Equal(t, "u2", got[0].ID)

	// The unconstrained sentinel keeps records with no location at all.
	assert.Len(t, engine.Apply(records, models.NewFilterCriteria()), 4)
}

func TestApplyIsIdempotent(t *testing.T) {
	engine := NewEngine(fixedClock)
	records := []models.UserRecord{
		locatedUser("u1", "India", "Bengaluru", "IISc"),
		locatedUser("u2", "UK", "London", "UCL"),
	}
	criteria := models.NewFilterCriteria()
	criteria.Country = "UK"

	once := engine.Apply(records, criteria)
	twice := engine.Apply(once, criteria)
	assert.Equal(t, once, twice)
}

func TestPaginateBounds(t *testing.T) {
	records := make([]models.UserRecord, 12)
	for i := range records {
		records[i] = userAt(string(rune('a'+i)), models.RoleStudent, testNow, nil)
	}

	page := Paginate(records, 1, 5)
	assert.Len(t, page.Records, 5)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 12, page.Total)

	page = Paginate(records, 3, 5)
	assert.Len(t, page.Records, 2)

	page = Paginate(records, 9, 5)
	assert.Empty(t, page.Records)
	assert.Equal(t, 3, page.TotalPages)
}

func TestPaginateEmptyListStillHasOnePage(t *testing.T) {
	page := Paginate(nil, 1, 5)
	assert.Empty(t, page.Records)
	assert.Equal(t, 1, page.TotalPages)
	assert.Zero(t, page.Total)
}

func TestSummarizeCounts(t *testing.T) {
	engine := NewEngine(fixedClock)
	records := []models.UserRecord{
		userAt("created-today", models.RoleStudent, testNow.Add(-2*time.Hour), nil),
		userAt("recent-login", models.RoleStudent, daysAgo(90), ptr(daysAgo(10))),
		userAt("logged-in-today", models.RoleStudent, daysAgo(90), ptr(testNow.Add(-time.Hour))),
		userAt("edge-monthly", models.RoleStudent, daysAgo(400), ptr(daysAgo(30))),
		userAt("dormant", models.RoleStudent, daysAgo(400), ptr(daysAgo(45))),
	}

	summary := engine.Summarize(records)
	assert.Equal(t, 5, summary.Total)
	assert.Equal(t, 2, summary.ActiveToday)
	// A login exactly thirty days old still counts toward the monthly card.
	assert.Equal(t, 4, summary.ActiveMonthly)
	assert.Equal(t, 1, summary.NewToday)
}
