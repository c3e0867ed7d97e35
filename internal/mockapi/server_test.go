package mockapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirepath/admin-console/internal/api"
	"github.com/hirepath/admin-console/internal/models"
	"github.com/hirepath/admin-console/internal/session"
	"github.com/hirepath/admin-console/pkg/config"
)

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig(baseURL string) *config.Config {
	cfg := &config.Config{Env: config.EnvDevelopment}
	cfg.API.BaseURL = baseURL
	cfg.API.Timeout = 5 * time.Second
	cfg.MockAPI = config.MockAPIConfig{
		JWTSecret:     "test_secret",
		JWTExpiration: time.Hour,
		AdminEmail:    "admin@hirepath.dev",
		AdminPassword: "changeme123",
		SeedUsers:     25,
	}
	return cfg
}

type memorySession struct {
	token, userID, name string
}

func (s *memorySession) Token() string     { return s.token }
func (s *memorySession) UserID() string    { return s.userID }
func (s *memorySession) AdminName() string { return s.name }
func (s *memorySession) SetCredentials(token, userID, name string) error {
	s.token, s.userID, s.name = token, userID, name
	return nil
}
func (s *memorySession) Clear() error {
	s.token, s.userID, s.name = "", "", ""
	return nil
}

var _ session.Store = (*memorySession)(nil)

// newFixture spins up the server and an api.Client pointed at it.
func newFixture(t *testing.T) (*Server, *api.Client, *memorySession) {
	t.Helper()
	cfg := testConfig("")
	server, err := New(cfg, nil, func() time.Time { return testNow })
	require.NoError(t, err)

	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)

	cfg.API.BaseURL = ts.URL + "/api"
	sess := &memorySession{}
	return server, api.New(cfg, sess, nil), sess
}

func loginFixture(t *testing.T, client *api.Client, sess *memorySession) {
	t.Helper()
	result, err := client.Login(context.Background(), "admin@hirepath.dev", "changeme123")
	require.NoError(t, err)
	require.NoError(t, sess.SetCredentials(result.Token, result.User.ID, result.User.Name))
}

func TestLoginIssuesToken(t *testing.T) {
	_, client, _ := newFixture(t)

	result, err := client.Login(context.Background(), "admin@hirepath.dev", "changeme123")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, models.RoleAdmin, result.User.Role)
	assert.Equal(t, "Root Admin", result.User.Name)

	exp, ok := session.TokenExpiry(result.Token)
	require.True(t, ok)
	assert.True(t, exp.After(testNow))
}

func TestLoginRejectsBadPassword(t *testing.T) {
	_, client, _ := newFixture(t)

	_, err := client.Login(context.Background(), "admin@hirepath.dev", "wrong-password")
	require.Error(t, err)

	apiErr, ok := err.(*api.APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid email or password", apiErr.Message)
	assert.Equal(t, false, apiErr.Payload()["success"])
}

func TestGuardBlocksWithoutToken(t *testing.T) {
	_, client, _ := newFixture(t)

	_, err := client.ListUsers(context.Background())
	require.Error(t, err)
	apiErr := err.(*api.APIError)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestGuardRejectsForgedToken(t *testing.T) {
	_, client, sess := newFixture(t)
	require.NoError(t, sess.SetCredentials("not-a-real-token", "u1", "x"))

	_, err := client.ListUsers(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, err.(*api.APIError).Status)
}

func TestUsersEndpointServesSeededRecords(t *testing.T) {
	server, client, sess := newFixture(t)
	loginFixture(t, client, sess)

	users, err := client.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, len(server.Store().Users()))

	for _, u := range users {
		assert.NotEmpty(t, u.ID)
		assert.Contains(t, []models.Role{models.RoleStudent, models.RoleRecruiter}, u.Role)
		require.NotNil(t, u.Location)
		assert.NotEmpty(t, u.Location.Country)
	}
}

func TestStatsEnvelope(t *testing.T) {
	server, client, sess := newFixture(t)
	loginFixture(t, client, sess)

	stats, err := client.Stats(context.Background())
	require.NoError(t, err)

	total, byRole := server.Store().RoleCounts()
	assert.Equal(t, total, stats.TotalUsers)
	assert.Equal(t, byRole[models.RoleStudent], stats.TotalStudents)
	assert.Equal(t, byRole[models.RoleRecruiter], stats.TotalRecruiters)
}

func TestScoreRanksEnvelopeNestsRank(t *testing.T) {
	server, client, sess := newFixture(t)
	loginFixture(t, client, sess)

	ranks, err := client.ScoreRanks(context.Background(), "all", 1, 2000)
	require.NoError(t, err)
	require.NotEmpty(t, ranks)
	assert.Len(t, ranks, len(server.Store().Ranks()))
	assert.NotEmpty(t, ranks[0].UserID)
	assert.Positive(t, ranks[0].GlobalRank)
}

func TestMetricsEndpointsMatchStore(t *testing.T) {
	server, client, sess := newFixture(t)
	loginFixture(t, client, sess)
	ctx := context.Background()

	total, err := client.TotalUsers(ctx)
	require.NoError(t, err)
	storeTotal, _ := server.Store().RoleCounts()
	assert.Equal(t, storeTotal, total)

	daily, err := client.DailyActiveUsers(ctx)
	require.NoError(t, err)
	storeDaily, _, _ := server.Store().ActiveCounts()
	assert.Equal(t, storeDaily, daily)

	funnel, err := client.FunnelMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, storeTotal, funnel.Signup.Users)
}

func TestLocationDrillDownEndpoints(t *testing.T) {
	_, client, sess := newFixture(t)
	loginFixture(t, client, sess)
	ctx := context.Background()

	countries, err := client.Countries(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, countries)

	states, err := client.States(ctx, countries[0])
	require.NoError(t, err)
	require.NotEmpty(t, states)

	stats, err := client.UsersByLocation(ctx, countries[0], states[0])
	require.NoError(t, err)
	assert.Positive(t, stats.Count)
	assert.Equal(t, stats.Count, stats.Students+stats.Recruiters)
}

func TestPasswordRecoveryFlow(t *testing.T) {
	_, client, _ := newFixture(t)
	ctx := context.Background()

	require.NoError(t, client.ForgotPassword(ctx, "admin@hirepath.dev"))

	err := client.VerifyResetCode(ctx, "admin@hirepath.dev", "000000")
	require.Error(t, err)

	require.NoError(t, client.VerifyResetCode(ctx, "admin@hirepath.dev", fixtureResetCode))
	require.NoError(t, client.ResetPassword(ctx, "admin@hirepath.dev", "brandnewpass"))

	_, err = client.Login(ctx, "admin@hirepath.dev", "changeme123")
	require.Error(t, err)
	result, err := client.Login(ctx, "admin@hirepath.dev", "brandnewpass")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
}

func TestSignupRegistersLoginCapableAdmin(t *testing.T) {
	_, client, _ := newFixture(t)
	ctx := context.Background()

	result, err := client.Signup(ctx, "Ada", "Lovelace", "ada@hirepath.dev", "longenough")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", result.User.Name)

	// Duplicate registration conflicts.
	_, err = client.Signup(ctx, "Ada", "Lovelace", "ada@hirepath.dev", "longenough")
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, err.(*api.APIError).Status)
}

func TestPrometheusScrapeEndpoint(t *testing.T) {
	cfg := testConfig("")
	server, err := New(cfg, nil, func() time.Time { return testNow })
	require.NoError(t, err)

	router := server.Router()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "goroutines_total")
}

func TestErrorBodyShapeForUnknownRoute(t *testing.T) {
	cfg := testConfig("")
	server, err := New(cfg, nil, func() time.Time { return testNow })
	require.NoError(t, err)

	router := server.Router()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["message"])
}
