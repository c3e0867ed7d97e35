package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hirepath/admin-console/internal/models"
	appErrors "github.com/hirepath/admin-console/pkg/errors"
)

// The backend's response envelopes drift per endpoint: the collection key is
// sometimes "users", sometimes "students", sometimes a "data" or "stats"
// wrapper, sometimes a top-level counter. Every decoder in this file absorbs
// its endpoint's shape and hands controllers one normalized struct, so no
// screen ever branches on envelope layout.

// LoginResult is the normalized outcome of login and signup.
type LoginResult struct {
	Token string
	User  models.AdminUser
}

type authEnvelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Token   string           `json:"token"`
	User    models.AdminUser `json:"user"`
}

func (c *Client) decodeAuth(raw json.RawMessage) (*LoginResult, error) {
	var env authEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, requestError(err)
	}
	if !env.Success {
		message := env.Message
		if message == "" {
			message = appErrors.ErrInvalidCredentials.Message
		}
		return nil, &APIError{Message: message}
	}
	return &LoginResult{Token: env.Token, User: env.User}, nil
}

// Login authenticates an administrator.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	raw, err := c.Do(ctx, http.MethodPost, PathLogin, Params{"email": email, "password": password}, nil)
	if err != nil {
		return nil, err
	}
	return c.decodeAuth(raw)
}

// Signup registers a new administrator account.
func (c *Client) Signup(ctx context.Context, firstName, lastName, email, password string) (*LoginResult, error) {
	payload := Params{
		"firstname": firstName,
		"lastname":  lastName,
		"email":     email,
		"password":  password,
	}
	raw, err := c.Do(ctx, http.MethodPost, PathSignup, payload, nil)
	if err != nil {
		return nil, err
	}
	return c.decodeAuth(raw)
}

type ackEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (c *Client) postAck(ctx context.Context, path string, payload Params) error {
	raw, err := c.Do(ctx, http.MethodPost, path, payload, nil)
	if err != nil {
		return err
	}
	var env ackEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return requestError(err)
	}
	if !env.Success {
		return &APIError{Message: env.Message}
	}
	return nil
}

// ForgotPassword triggers the reset email for the given address.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.postAck(ctx, PathForgotPassword, Params{"email": email})
}

// VerifyResetCode validates the emailed 6-digit code.
func (c *Client) VerifyResetCode(ctx context.Context, email, code string) error {
	return c.postAck(ctx, PathVerifyResetCode, Params{"email": email, "otp": code})
}

// ResetPassword completes the recovery flow with the new password.
func (c *Client) ResetPassword(ctx context.Context, email, password string) error {
	return c.postAck(ctx, PathResetPassword, Params{"email": email, "password": password})
}

// ListUsers fetches the full account collection.
func (c *Client) ListUsers(ctx context.Context) ([]models.UserRecord, error) {
	raw, err := c.Do(ctx, http.MethodGet, PathUsers, nil, nil)
	if err != nil {
		return nil, err
	}
	var env struct {
		Success bool                `json:"success"`
		Users   []models.UserRecord `json:"users"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, requestError(err)
	}
	if !env.Success {
		return nil, &APIError{Message: "users fetch rejected"}
	}
	return env.Users, nil
}

// scoreRankWire tolerates the backend's two userId encodings (plain string or
// a populated object) and the nested rank sub-object.
type scoreRankWire struct {
	UserID               json.RawMessage `json:"userId"`
	HireabilityIndex     float64         `json:"hireabilityIndex"`
	ExperienceIndexScore float64         `json:"experienceIndexScore"`
	SkillIndexScore      float64         `json:"skillIndexScore"`
	AwardScore           float64         `json:"awardScore"`
	CertificationScore   float64         `json:"certificationScore"`
	EducationScore       float64         `json:"educationScore"`
	WorkScore            float64         `json:"workScore"`
	ProjectScore         float64         `json:"projectScore"`
	BaselineScore        float64         `json:"baselineScore"`
	CaseStudiesCompleted int             `json:"caseStudiesCompleted"`
	AvgCaseStudyTime     float64         `json:"avgCaseStudyTime"`
	Country              string          `json:"country"`
	State                string          `json:"state"`
	City                 string          `json:"city"`
	Rank                 struct {
		GlobalRank  int `json:"globalRank"`
		CountryRank int `json:"countryRank"`
		StateRank   int `json:"stateRank"`
		CityRank    int `json:"cityRank"`
	} `json:"rank"`
}

func (w scoreRankWire) userID() string {
	var id string
	if err := json.Unmarshal(w.UserID, &id); err == nil {
		return id
	}
	var obj struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(w.UserID, &obj); err == nil {
		return obj.ID
	}
	return ""
}

// ScoreRanks fetches the assessment rank collection, flattened into one
// normalized row per user.
func (c *Client) ScoreRanks(ctx context.Context, rankType string, page, limit int) ([]models.ScoreRank, error) {
	params := Params{"rankType": rankType, "page": page, "limit": limit}
	raw, err := c.Do(ctx, http.MethodGet, PathScoreRanks, params, nil)
	if err != nil {
		return nil, err
	}
	var env struct {
		Success  bool            `json:"success"`
		Students []scoreRankWire `json:"students"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, requestError(err)
	}
	if !env.Success {
		return nil, &APIError{Message: "score ranks fetch rejected"}
	}
	ranks := make([]models.ScoreRank, 0, len(env.Students))
	for _, wire := range env.Students {
		ranks = append(ranks, models.ScoreRank{
			UserID:               wire.userID(),
			HireabilityIndex:     wire.HireabilityIndex,
			ExperienceIndexScore: wire.ExperienceIndexScore,
			SkillIndexScore:      wire.SkillIndexScore,
			AwardScore:           wire.AwardScore,
			CertificationScore:   wire.CertificationScore,
			EducationScore:       wire.EducationScore,
			WorkScore:            wire.WorkScore,
			ProjectScore:         wire.ProjectScore,
			BaselineScore:        wire.BaselineScore,
			CaseStudiesCompleted: wire.CaseStudiesCompleted,
			AvgCaseStudyTime:     wire.AvgCaseStudyTime,
			GlobalRank:           wire.Rank.GlobalRank,
			CountryRank:          wire.Rank.CountryRank,
			StateRank:            wire.Rank.StateRank,
			CityRank:             wire.Rank.CityRank,
			Country:              wire.Country,
			State:                wire.State,
			City:                 wire.City,
		})
	}
	return ranks, nil
}

// Stats fetches the dashboard role breakdown. The endpoint reports the grand
// total at the top level and per-role counts in a stats array.
func (c *Client) Stats(ctx context.Context) (*models.Stats, error) {
	raw, err := c.Do(ctx, http.MethodGet, PathStats, nil, nil)
	if err != nil {
		return nil, err
	}
	var env struct {
		Success bool `json:"success"`
		Count   int  `json:"count"`
		Stats   []struct {
			ID    string `json:"_id"`
			Count int    `json:"count"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, requestError(err)
	}
	if !env.Success {
		return nil, &APIError{Message: "stats fetch rejected"}
	}
	stats := &models.Stats{TotalUsers: env.Count}
	for _, entry := range env.Stats {
		switch entry.ID {
		case string(models.RoleStudent):
			stats.TotalStudents = entry.Count
		case string(models.RoleRecruiter):
			stats.TotalRecruiters = entry.Count
		}
	}
	return stats, nil
}

// PaidUsers fetches the subscriber count.
func (c *Client) PaidUsers(ctx context.Context) (int, error) {
	raw, err := c.Do(ctx, http.MethodGet, PathPaidUsers, nil, nil)
	if err != nil {
		return 0, err
	}
	var env struct {
		Success     bool `json:"success"`
		PayingUsers int  `json:"payingUsers"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return 0, requestError(err)
	}
	return env.PayingUsers, nil
}

func (c *Client) fetchCount(ctx context.Context, path string) (int, error) {
	raw, err := c.Do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return 0, err
	}
	var env struct {
		Success bool `json:"success"`
		Count   int  `json:"count"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return 0, requestError(err)
	}
	return env.Count, nil
}

// TotalUsers fetches the total account counter.
func (c *Client) TotalUsers(ctx context.Context) (int, error) {
	return c.fetchCount(ctx, PathTotalUsers)
}

// PayingUsers fetches the paying-user counter.
func (c *Client) PayingUsers(ctx context.Context) (int, error) {
	return c.fetchCount(ctx, PathPayingUsers)
}

// DailyActiveUsers fetches the daily active counter.
func (c *Client) DailyActiveUsers(ctx context.Context) (int, error) {
	return c.fetchCount(ctx, PathDailyActive)
}

// MonthlyActiveUsers fetches the monthly active counter.
func (c *Client) MonthlyActiveUsers(ctx context.Context) (int, error) {
	return c.fetchCount(ctx, PathMonthlyActive)
}

// NewUsersToday fetches the signups-today counter.
func (c *Client) NewUsersToday(ctx context.Context) (int, error) {
	return c.fetchCount(ctx, PathNewToday)
}

// AvgCaseStudiesStarted fetches the average case studies started per user.
func (c *Client) AvgCaseStudiesStarted(ctx context.Context) (float64, error) {
	raw, err := c.Do(ctx, http.MethodGet, PathAvgCaseStarted, nil, nil)
	if err != nil {
		return 0, err
	}
	var env struct {
		Success               bool    `json:"success"`
		AvgCaseStudiesPerUser float64 `json:"avgCaseStudiesPerUser"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return 0, requestError(err)
	}
	return env.AvgCaseStudiesPerUser, nil
}

// AvgCaseStudiesCompleted fetches the average completed per user.
func (c *Client) AvgCaseStudiesCompleted(ctx context.Context) (float64, error) {
	raw, err := c.Do(ctx, http.MethodGet, PathAvgCaseCompleted, nil, nil)
	if err != nil {
		return 0, err
	}
	var env struct {
		Success bool `json:"success"`
		Data    struct {
			AverageCompletedPerUser float64 `json:"averageCompletedPerUser"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return 0, requestError(err)
	}
	return env.Data.AverageCompletedPerUser, nil
}

// CaseStudyCompletionRate fetches the completion percentage.
func (c *Client) CaseStudyCompletionRate(ctx context.Context) (float64, error) {
	raw, err := c.Do(ctx, http.MethodGet, PathCaseCompletion, nil, nil)
	if err != nil {
		return 0, err
	}
	var env struct {
		Success bool `json:"success"`
		Data    struct {
			CompletionRate float64 `json:"completionRate"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return 0, requestError(err)
	}
	return env.Data.CompletionRate, nil
}

// AvgTimePerCaseStudy fetches the average minutes spent per case study. The
// endpoint wraps a single row in an array.
func (c *Client) AvgTimePerCaseStudy(ctx context.Context) (float64, error) {
	raw, err := c.Do(ctx, http.MethodGet, PathAvgCaseTime, nil, nil)
	if err != nil {
		return 0, err
	}
	var env struct {
		Success bool `json:"success"`
		Data    []struct {
			AvgTimeMinutes float64 `json:"avgTimeMinutes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return 0, requestError(err)
	}
	if len(env.Data) == 0 {
		return 0, nil
	}
	return env.Data[0].AvgTimeMinutes, nil
}

// FunnelMetrics fetches the signup-to-case-study conversion funnel.
func (c *Client) FunnelMetrics(ctx context.Context) (*models.FunnelMetrics, error) {
	raw, err := c.Do(ctx, http.MethodGet, PathFunnel, nil, nil)
	if err != nil {
		return nil, err
	}
	var env struct {
		Success bool                 `json:"success"`
		Funnel  models.FunnelMetrics `json:"funnel"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, requestError(err)
	}
	if !env.Success {
		return nil, &APIError{Message: "funnel fetch rejected"}
	}
	return &env.Funnel, nil
}

func (c *Client) fetchStringList(ctx context.Context, path string, params Params) ([]string, error) {
	raw, err := c.Do(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return nil, err
	}
	var env struct {
		Success bool     `json:"success"`
		Data    []string `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, requestError(err)
	}
	return env.Data, nil
}

// Countries fetches the distinct country list for the location widget.
func (c *Client) Countries(ctx context.Context) ([]string, error) {
	return c.fetchStringList(ctx, PathCountries, nil)
}

// States fetches the state list for a country.
func (c *Client) States(ctx context.Context, country string) ([]string, error) {
	return c.fetchStringList(ctx, PathStates, Params{"country": country})
}

// UsersByLocation fetches the role breakdown for a country+state pair.
func (c *Client) UsersByLocation(ctx context.Context, country, state string) (*models.LocationStats, error) {
	raw, err := c.Do(ctx, http.MethodGet, PathUsersByLocation, Params{"country": country, "state": state}, nil)
	if err != nil {
		return nil, err
	}
	var env struct {
		Success bool                 `json:"success"`
		Data    models.LocationStats `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, requestError(err)
	}
	return &env.Data, nil
}
