package mockapi

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hirepath/admin-console/internal/models"
	appErrors "github.com/hirepath/admin-console/pkg/errors"
)

// adminAccount is a console login. Student and recruiter records never carry
// credentials; they exist only as data.
type adminAccount struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash []byte
}

type geo struct {
	country      string
	state        string
	universities []string
}

// Deterministic seed pool so repeated runs produce the same fixture data.
var geoPool = []geo{
	{"India", "Karnataka", []string{"IISc", "PES University"}},
	{"India", "Maharashtra", []string{"IIT Bombay"}},
	{"United Kingdom", "England", []string{"UCL", "Imperial College"}},
	{"United States", "California", []string{"Stanford", "UC Berkeley"}},
	{"United States", "New York", []string{"NYU"}},
	{"Germany", "Bavaria", []string{"TU Munich"}},
}

var firstNames = []string{"Ada", "Grace", "Alan", "Edsger", "Barbara", "Donald", "Leslie", "Radia", "Ken", "Dennis"}
var lastNames = []string{"Lovelace", "Hopper", "Turing", "Dijkstra", "Liskov", "Knuth", "Lamport", "Perlman", "Thompson", "Ritchie"}

// Store holds the seeded fixture data behind a mutex. It stands in for a real
// database so the console can run end to end locally.
type Store struct {
	mu         sync.RWMutex
	users      []models.UserRecord
	ranks      []models.ScoreRank
	admins     map[string]*adminAccount
	paying     map[string]bool
	resetCodes map[string]string
	now        func() time.Time
}

// NewStore seeds n user records plus the given admin credential. The clock is
// injected so tests can pin activity windows.
func NewStore(n int, adminEmail, adminPassword string, now func() time.Time) (*Store, error) {
	if now == nil {
		now = time.Now
	}
	s := &Store{
		admins:     map[string]*adminAccount{},
		paying:     map[string]bool{},
		resetCodes: map[string]string{},
		now:        now,
	}
	if _, err := s.AddAdmin("Root", "Admin", adminEmail, adminPassword); err != nil {
		return nil, err
	}
	s.seed(n)
	return s, nil
}

func (s *Store) seed(n int) {
	rng := rand.New(rand.NewSource(42))
	base := s.now()

	for i := 0; i < n; i++ {
		g := geoPool[rng.Intn(len(geoPool))]
		role := models.RoleStudent
		if rng.Intn(4) == 0 {
			role = models.RoleRecruiter
		}

		createdDaysAgo := rng.Intn(180)
		created := base.AddDate(0, 0, -createdDaysAgo)
		record := models.UserRecord{
			ID:        uuid.NewString(),
			FirstName: firstNames[rng.Intn(len(firstNames))],
			LastName:  lastNames[rng.Intn(len(lastNames))],
			Email:     strings.ToLower(firstNames[rng.Intn(len(firstNames))]) + uuid.NewString()[:8] + "@example.com",
			Role:      role,
			CreatedAt: created,
			UpdatedAt: created,
			Location:  &models.Location{Country: g.country, City: g.state},
		}
		if role == models.RoleStudent {
			record.Location.University = g.universities[rng.Intn(len(g.universities))]
		}
		// Roughly two thirds have logged in since signing up.
		if rng.Intn(3) > 0 {
			gap := rng.Intn(createdDaysAgo + 1)
			login := base.AddDate(0, 0, -gap)
			record.LastLogin = &login
		}
		s.users = append(s.users, record)

		if rng.Intn(5) == 0 {
			s.paying[record.ID] = true
		}

		if role == models.RoleStudent {
			s.ranks = append(s.ranks, models.ScoreRank{
				UserID:               record.ID,
				HireabilityIndex:     40 + rng.Float64()*60,
				ExperienceIndexScore: rng.Float64() * 100,
				SkillIndexScore:      rng.Float64() * 100,
				AwardScore:           rng.Float64() * 10,
				CertificationScore:   rng.Float64() * 10,
				EducationScore:       rng.Float64() * 10,
				WorkScore:            rng.Float64() * 10,
				ProjectScore:         rng.Float64() * 10,
				BaselineScore:        30 + rng.Float64()*40,
				CaseStudiesCompleted: rng.Intn(6),
				AvgCaseStudyTime:     5 + rng.Float64()*40,
				GlobalRank:           i + 1,
				CountryRank:          rng.Intn(50) + 1,
				StateRank:            rng.Intn(20) + 1,
				CityRank:             rng.Intn(10) + 1,
				Country:              g.country,
				State:                g.state,
				City:                 g.state,
			})
		}
	}
}

// AddAdmin registers a console credential.
func (s *Store) AddAdmin(firstName, lastName, email, password string) (*adminAccount, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(email)
	if _, exists := s.admins[key]; exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}
	admin := &adminAccount{
		ID:           uuid.NewString(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        key,
		PasswordHash: hash,
	}
	s.admins[key] = admin
	return admin, nil
}

// Authenticate checks an admin credential.
func (s *Store) Authenticate(email, password string) (*adminAccount, error) {
	s.mu.RLock()
	admin, ok := s.admins[strings.ToLower(email)]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword(admin.PasswordHash, []byte(password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}
	return admin, nil
}

// SetResetCode stores the emailed recovery code for an address.
func (s *Store) SetResetCode(email, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetCodes[strings.ToLower(email)] = code
}

// VerifyResetCode checks the recovery code without consuming it.
func (s *Store) VerifyResetCode(email, code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.resetCodes[strings.ToLower(email)]
	return ok && stored == code
}

// ResetPassword replaces an admin credential and consumes the recovery code.
func (s *Store) ResetPassword(email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(email)
	admin, ok := s.admins[key]
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "no account for email")
	}
	admin.PasswordHash = hash
	delete(s.resetCodes, key)
	return nil
}

// Users returns a copy of every seeded record.
func (s *Store) Users() []models.UserRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.UserRecord, len(s.users))
	copy(out, s.users)
	return out
}

// Ranks returns a copy of the score rank rows.
func (s *Store) Ranks() []models.ScoreRank {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ScoreRank, len(s.ranks))
	copy(out, s.ranks)
	return out
}

// RoleCounts tallies records per role.
func (s *Store) RoleCounts() (total int, byRole map[models.Role]int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byRole = map[models.Role]int{}
	for _, u := range s.users {
		byRole[u.Role]++
	}
	return len(s.users), byRole
}

// PayingCount tallies subscriber records.
func (s *Store) PayingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.paying)
}

// ActiveCounts tallies daily/monthly active and created-today records against
// the injected clock.
func (s *Store) ActiveCounts() (daily, monthly, newToday int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	for _, u := range s.users {
		if u.LastLogin != nil {
			if sameDay(*u.LastLogin, now) {
				daily++
			}
			if now.Sub(*u.LastLogin) < 30*24*time.Hour {
				monthly++
			}
		}
		if sameDay(u.CreatedAt, now) {
			newToday++
		}
	}
	return daily, monthly, newToday
}

// Countries lists the distinct seeded countries in first-seen order.
func (s *Store) Countries() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]bool{}
	var out []string
	for _, u := range s.users {
		if u.Location == nil || u.Location.Country == "" || seen[u.Location.Country] {
			continue
		}
		seen[u.Location.Country] = true
		out = append(out, u.Location.Country)
	}
	return out
}

// States lists the distinct states of a country in first-seen order.
func (s *Store) States(country string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]bool{}
	var out []string
	for _, u := range s.users {
		if u.Location == nil || u.Location.Country != country {
			continue
		}
		if u.Location.City == "" || seen[u.Location.City] {
			continue
		}
		seen[u.Location.City] = true
		out = append(out, u.Location.City)
	}
	return out
}

// UsersByLocation tallies the role split for a country+state pair.
func (s *Store) UsersByLocation(country, state string) models.LocationStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var stats models.LocationStats
	for _, u := range s.users {
		if u.Location == nil || u.Location.Country != country || u.Location.City != state {
			continue
		}
		stats.Count++
		switch u.Role {
		case models.RoleStudent:
			stats.Students++
		case models.RoleRecruiter:
			stats.Recruiters++
		}
	}
	return stats
}

// CaseStudyStats aggregates the seeded rank rows into the analytics shapes.
func (s *Store) CaseStudyStats() (avgStarted, avgCompleted, completionRate, avgTime float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.ranks) == 0 {
		return 0, 0, 0, 0
	}
	var completed, timeTotal float64
	var withCompletion int
	for _, r := range s.ranks {
		completed += float64(r.CaseStudiesCompleted)
		timeTotal += r.AvgCaseStudyTime
		if r.CaseStudiesCompleted > 0 {
			withCompletion++
		}
	}
	n := float64(len(s.ranks))
	avgCompleted = completed / n
	// Every completion implies a start plus roughly one abandoned attempt.
	avgStarted = avgCompleted + 1
	completionRate = float64(withCompletion) / n * 100
	avgTime = timeTotal / n
	return avgStarted, avgCompleted, completionRate, avgTime
}

// Funnel derives the conversion funnel from the seeded population.
func (s *Store) Funnel() models.FunnelMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	signups := len(s.users)
	started := len(s.ranks)
	var completed, caseStarted int
	for _, r := range s.ranks {
		if r.BaselineScore > 0 {
			completed++
		}
		if r.CaseStudiesCompleted > 0 {
			caseStarted++
		}
	}
	funnel := models.FunnelMetrics{
		Signup:              models.FunnelStep{Users: signups},
		AssessmentStarted:   models.FunnelStep{Users: started},
		AssessmentCompleted: models.FunnelStep{Users: completed},
		CaseStudyStarted:    models.FunnelStep{Users: caseStarted},
	}
	if signups > 0 {
		funnel.AssessmentStarted.Conversion = pct(started, signups)
		funnel.AssessmentCompleted.Conversion = pct(completed, signups)
		funnel.CaseStudyStarted.Conversion = pct(caseStarted, signups)
	}
	return funnel
}

func pct(part, whole int) float64 {
	return float64(part) / float64(whole) * 100
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
