package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirepath/admin-console/internal/models"
	"github.com/hirepath/admin-console/pkg/config"
)

type stubSession struct {
	token  string
	userID string
	name   string
}

func (s *stubSession) Token() string     { return s.token }
func (s *stubSession) UserID() string    { return s.userID }
func (s *stubSession) AdminName() string { return s.name }
func (s *stubSession) SetCredentials(token, userID, name string) error {
	s.token, s.userID, s.name = token, userID, name
	return nil
}
func (s *stubSession) Clear() error {
	s.token, s.userID, s.name = "", "", ""
	return nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc, sess *stubSession) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := &config.Config{Env: config.EnvDevelopment}
	cfg.API.BaseURL = srv.URL
	cfg.API.Timeout = 5 * time.Second
	return New(cfg, sess, nil), srv
}

func TestDoEncodesGetPayloadIntoQuery(t *testing.T) {
	var gotQuery map[string][]string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"success":true}`))
	}, &stubSession{})

	_, err := client.Do(context.Background(), http.MethodGet, "/admin/user-score/ranks",
		Params{"rankType": "all", "page": 1, "limit": 2000}, nil)
	require.NoError(t, err)

	assert.Equal(t, "all", gotQuery["rankType"][0])
	assert.Equal(t, "1", gotQuery["page"][0])
	assert.Equal(t, "2000", gotQuery["limit"][0])
}

func TestDoSendsJSONBodyForPost(t *testing.T) {
	var gotContentType string
	var gotBody map[string]interface{}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"success":true}`))
	}, &stubSession{})

	_, err := client.Do(context.Background(), http.MethodPost, "/admin/login",
		Params{"email": "a@b.c", "password": "secret"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "a@b.c", gotBody["email"])
	assert.Empty(t, gotBody["token"])
}

func TestDoDecoratesSessionHeaders(t *testing.T) {
	var gotAuth, gotUserID string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUserID = r.Header.Get("user-id")
		w.Write([]byte(`{}`))
	}, &stubSession{token: "tok-123", userID: "uid-9"})

	_, err := client.Do(context.Background(), http.MethodGet, "/admin/users", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "uid-9", gotUserID)
}

func TestDoCallerHeadersOverrideSession(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}, &stubSession{token: "session-token"})

	_, err := client.Do(context.Background(), http.MethodGet, "/admin/users", nil,
		map[string]string{"Authorization": "Bearer explicit"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer explicit", gotAuth)
}

func TestDoOmitsAuthWhenLoggedOut(t *testing.T) {
	var hadAuth bool
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		w.Write([]byte(`{}`))
	}, &stubSession{})

	_, err := client.Do(context.Background(), http.MethodGet, "/admin/users", nil, nil)
	require.NoError(t, err)
	assert.False(t, hadAuth)
}

func TestDoMultipartSetsBoundaryContentType(t *testing.T) {
	var gotContentType string
	var gotField, gotFile string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotField = r.FormValue("kind")
		file, header, err := r.FormFile("document")
		require.NoError(t, err)
		defer file.Close()
		gotFile = header.Filename
		w.Write([]byte(`{"success":true}`))
	}, &stubSession{token: "tok"})

	payload := &MultipartPayload{
		Fields: map[string]string{"kind": "resume"},
		Files:  []MultipartFile{{Field: "document", Filename: "cv.pdf", Content: []byte("%PDF")}},
	}
	_, err := client.Do(context.Background(), http.MethodPost, "/upload", payload, nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(gotContentType, "multipart/form-data; boundary="))
	assert.Equal(t, "resume", gotField)
	assert.Equal(t, "cv.pdf", gotFile)
}

func TestDoServerErrorPreservesBodyAndStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"message":"token expired","code":"AUTH_EXPIRED"}`))
	}, &stubSession{})

	_, err := client.Do(context.Background(), http.MethodGet, "/admin/users", nil, nil)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.True(t, apiErr.IsServerError())
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "token expired", apiErr.Message)

	payload := apiErr.Payload()
	assert.Equal(t, http.StatusUnauthorized, payload["status"])
	assert.Equal(t, "AUTH_EXPIRED", payload["code"])
	assert.Equal(t, false, payload["success"])
}

func TestDoServerErrorKeepsNonJSONBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream gone"))
	}, &stubSession{})

	_, err := client.Do(context.Background(), http.MethodGet, "/admin/stats", nil, nil)
	require.Error(t, err)

	apiErr := err.(*APIError)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream gone", apiErr.Payload()["message"])
}

func TestDoTransportErrorHasExactMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	cfg := &config.Config{Env: config.EnvDevelopment}
	cfg.API.BaseURL = srv.URL
	cfg.API.Timeout = time.Second
	client := New(cfg, &stubSession{}, nil)

	_, err := client.Do(context.Background(), http.MethodGet, "/admin/users", nil, nil)
	require.Error(t, err)

	apiErr := err.(*APIError)
	assert.False(t, apiErr.IsServerError())
	assert.Equal(t, MsgNoResponse, apiErr.Message)

	payload := apiErr.Payload()
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, MsgNoResponse, payload["message"])
	assert.NotContains(t, payload, "status")
}

func TestDoHonoursContextCancellation(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, &stubSession{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Do(ctx, http.MethodGet, "/admin/users", nil, nil)
	require.Error(t, err)
	assert.Equal(t, MsgNoResponse, err.(*APIError).Message)
}

func TestListUsersDecodesCollection(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathUsers, r.URL.Path)
		w.Write([]byte(`{"success":true,"users":[
			{"_id":"u1","firstname":"Ada","lastname":"Lovelace","email":"ada@x.io","role":"student",
			 "createdAt":"2026-08-01T00:00:00Z","updatedAt":"2026-08-01T00:00:00Z",
			 "location":{"country":"UK","city":"London","university":"UCL"}},
			{"_id":"u2","firstname":"Grace","email":"grace@x.io","role":"recruiter",
			 "createdAt":"2026-07-01T00:00:00Z","updatedAt":"2026-07-01T00:00:00Z"}
		]}`))
	}, &stubSession{})

	users, err := client.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Equal(t, "Ada Lovelace", users[0].FullName())
	assert.Equal(t, models.RoleStudent, users[0].Role)
	require.NotNil(t, users[0].Location)
	assert.Equal(t, "UCL", users[0].Location.University)
	assert.Nil(t, users[1].Location)
	assert.Nil(t, users[1].LastLogin)
}

func TestScoreRanksFlattensAndToleratesUserIDShapes(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all", r.URL.Query().Get("rankType"))
		w.Write([]byte(`{"success":true,"students":[
			{"userId":"plain-id","hireabilityIndex":71.5,"baselineScore":60,
			 "rank":{"globalRank":4,"countryRank":2,"stateRank":1,"cityRank":1},
			 "country":"India","state":"Karnataka","city":"Bengaluru"},
			{"userId":{"_id":"nested-id","firstname":"Ada"},"hireabilityIndex":88,
			 "rank":{"globalRank":1,"countryRank":1,"stateRank":1,"cityRank":1}}
		]}`))
	}, &stubSession{})

	ranks, err := client.ScoreRanks(context.Background(), "all", 1, 2000)
	require.NoError(t, err)
	require.Len(t, ranks, 2)

	assert.Equal(t, "plain-id", ranks[0].UserID)
	assert.Equal(t, 4, ranks[0].GlobalRank)
	assert.Equal(t, "Bengaluru", ranks[0].City)
	assert.Equal(t, "nested-id", ranks[1].UserID)
	assert.Equal(t, 88.0, ranks[1].HireabilityIndex)
}

func TestStatsDecodesRoleBreakdown(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"count":42,"stats":[
			{"_id":"student","count":30},{"_id":"recruiter","count":10}]}`))
	}, &stubSession{})

	stats, err := client.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, stats.TotalUsers)
	assert.Equal(t, 30, stats.TotalStudents)
	assert.Equal(t, 10, stats.TotalRecruiters)
}

func TestCaseStudyDecodersAbsorbEnvelopeDrift(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PathAvgCaseStarted:
			w.Write([]byte(`{"success":true,"avgCaseStudiesPerUser":2.4}`))
		case PathAvgCaseCompleted:
			w.Write([]byte(`{"success":true,"data":{"averageCompletedPerUser":1.1}}`))
		case PathCaseCompletion:
			w.Write([]byte(`{"success":true,"data":{"completionRate":45.8}}`))
		case PathAvgCaseTime:
			w.Write([]byte(`{"success":true,"data":[{"avgTimeMinutes":17.2}]}`))
		default:
			http.NotFound(w, r)
		}
	}, &stubSession{})

	ctx := context.Background()

	started, err := client.AvgCaseStudiesStarted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2.4, started)

	completed, err := client.AvgCaseStudiesCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.1, completed)

	rate, err := client.CaseStudyCompletionRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 45.8, rate)

	minutes, err := client.AvgTimePerCaseStudy(ctx)
	require.NoError(t, err)
	assert.Equal(t, 17.2, minutes)
}

func TestLoginRejectsUnsuccessfulEnvelope(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"wrong password"}`))
	}, &stubSession{})

	_, err := client.Login(context.Background(), "a@b.c", "nope")
	require.Error(t, err)
	assert.Equal(t, "wrong password", err.(*APIError).Message)
}

func TestUsersByLocationUnwrapsDataKey(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "India", r.URL.Query().Get("country"))
		assert.Equal(t, "Karnataka", r.URL.Query().Get("state"))
		w.Write([]byte(`{"success":true,"data":{"count":12,"students":9,"recruiters":3}}`))
	}, &stubSession{})

	loc, err := client.UsersByLocation(context.Background(), "India", "Karnataka")
	require.NoError(t, err)
	assert.Equal(t, 12, loc.Count)
	assert.Equal(t, 9, loc.Students)
	assert.Equal(t, 3, loc.Recruiters)
}
