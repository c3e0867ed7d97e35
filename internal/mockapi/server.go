package mockapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hirepath/admin-console/internal/models"
	"github.com/hirepath/admin-console/pkg/config"
	appErrors "github.com/hirepath/admin-console/pkg/errors"
	"github.com/hirepath/admin-console/pkg/logger"
	"github.com/hirepath/admin-console/pkg/middleware/cors"
	"github.com/hirepath/admin-console/pkg/middleware/requestid"
)

// The fixture always "emails" the same recovery code.
const fixtureResetCode = "123456"

// Server is the local fixture backend. It reproduces the production REST
// contract, envelope quirks included, over seeded in-memory data.
type Server struct {
	cfg     *config.Config
	store   *Store
	issuer  *tokenIssuer
	metrics *metricsCollector
	logger  *zap.Logger
}

// New builds the fixture server. The clock is injected so handler tests can
// pin time-derived counters.
func New(cfg *config.Config, log *zap.Logger, now func() time.Time) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	store, err := NewStore(cfg.MockAPI.SeedUsers, cfg.MockAPI.AdminEmail, cfg.MockAPI.AdminPassword, now)
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:     cfg,
		store:   store,
		issuer:  newTokenIssuer(cfg.MockAPI.JWTSecret, cfg.MockAPI.JWTExpiration, now),
		metrics: newMetricsCollector(),
		logger:  log,
	}, nil
}

// Store exposes the seeded data for test assertions.
func (s *Server) Store() *Store { return s.store }

// Router assembles the gin engine with the middleware chain and route table.
func (s *Server) Router() *gin.Engine {
	if s.cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.Middleware())
	router.Use(logger.GinMiddleware(s.logger))
	router.Use(cors.New(s.cfg.MockAPI.AllowedOrigins))
	router.Use(s.metrics.Middleware())

	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := router.Group("/api")

	admin := api.Group("/admin")
	admin.POST("/login", s.handleLogin)
	admin.POST("/signup", s.handleSignup)
	admin.POST("/forgot-password", s.handleForgotPassword)
	admin.POST("/verify-reset-code", s.handleVerifyResetCode)
	admin.POST("/reset-password", s.handleResetPassword)

	guarded := admin.Group("", authGuard(s.issuer))
	guarded.GET("/users", s.handleUsers)
	guarded.GET("/stats", s.handleStats)
	guarded.GET("/paid-users", s.handlePaidUsers)
	guarded.GET("/user-score/ranks", s.handleScoreRanks)
	guarded.GET("/users-by-location", s.handleUsersByLocation)

	metrics := guarded.Group("/metrics")
	metrics.GET("/total-users", s.handleTotalUsers)
	metrics.GET("/paying-users", s.handlePayingUsers)
	metrics.GET("/daily-active", s.handleDailyActive)
	metrics.GET("/monthly-active", s.handleMonthlyActive)
	metrics.GET("/new-today", s.handleNewToday)
	metrics.GET("/case-studies/avg-started", s.handleAvgStarted)
	metrics.GET("/case-studies/avg-completed", s.handleAvgCompleted)
	metrics.GET("/case-studies/completion-rate", s.handleCompletionRate)
	metrics.GET("/case-studies/avg-time", s.handleAvgTime)
	metrics.GET("/funnel", s.handleFunnel)

	demographics := api.Group("/demographics")
	demographics.GET("/countries", s.handleCountries)
	demographics.GET("/states", s.handleStates)

	return router
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type signupRequest struct {
	FirstName string `json:"firstname" binding:"required"`
	LastName  string `json:"lastname" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
}

func (s *Server) respondAuth(c *gin.Context, admin *adminAccount) {
	token, err := s.issuer.issue(admin)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user": gin.H{
			"id":    admin.ID,
			"name":  admin.FirstName + " " + admin.LastName,
			"email": admin.Email,
			"role":  string(models.RoleAdmin),
		},
	})
}

// fail maps an application error onto the flat rejection envelope.
func (s *Server) fail(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	failJSON(c, appErr.Status, appErr.Message)
}

func (s *Server) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failJSON(c, http.StatusBadRequest, "email and password are required")
		return
	}
	admin, err := s.store.Authenticate(req.Email, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respondAuth(c, admin)
}

func (s *Server) handleSignup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failJSON(c, http.StatusBadRequest, "invalid signup payload")
		return
	}
	admin, err := s.store.AddAdmin(req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respondAuth(c, admin)
}

func (s *Server) handleForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		failJSON(c, http.StatusBadRequest, "a valid email is required")
		return
	}
	s.store.SetResetCode(req.Email, fixtureResetCode)
	s.logger.Info("reset code issued", zap.String("email", req.Email))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "reset code sent"})
}

func (s *Server) handleVerifyResetCode(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		OTP   string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		failJSON(c, http.StatusBadRequest, "email and otp are required")
		return
	}
	if !s.store.VerifyResetCode(req.Email, req.OTP) {
		failJSON(c, http.StatusBadRequest, "invalid or expired code")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "code verified"})
}

func (s *Server) handleResetPassword(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		failJSON(c, http.StatusBadRequest, "email and password are required")
		return
	}
	if err := s.store.ResetPassword(req.Email, req.Password); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "password updated"})
}

func (s *Server) handleUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "users": s.store.Users()})
}

func (s *Server) handleStats(c *gin.Context) {
	total, byRole := s.store.RoleCounts()
	stats := []gin.H{
		{"_id": string(models.RoleStudent), "count": byRole[models.RoleStudent]},
		{"_id": string(models.RoleRecruiter), "count": byRole[models.RoleRecruiter]},
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": total, "stats": stats})
}

func (s *Server) handlePaidUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "payingUsers": s.store.PayingCount()})
}

// scoreRankWire mirrors the production rank envelope with its nested rank
// object.
type scoreRankWire struct {
	UserID               string       `json:"userId"`
	HireabilityIndex     float64      `json:"hireabilityIndex"`
	ExperienceIndexScore float64      `json:"experienceIndexScore"`
	SkillIndexScore      float64      `json:"skillIndexScore"`
	AwardScore           float64      `json:"awardScore"`
	CertificationScore   float64      `json:"certificationScore"`
	EducationScore       float64      `json:"educationScore"`
	WorkScore            float64      `json:"workScore"`
	ProjectScore         float64      `json:"projectScore"`
	BaselineScore        float64      `json:"baselineScore"`
	CaseStudiesCompleted int          `json:"caseStudiesCompleted"`
	AvgCaseStudyTime     float64      `json:"avgCaseStudyTime"`
	Country              string       `json:"country"`
	State                string       `json:"state"`
	City                 string       `json:"city"`
	Rank                 rankPosition `json:"rank"`
}

type rankPosition struct {
	GlobalRank  int `json:"globalRank"`
	CountryRank int `json:"countryRank"`
	StateRank   int `json:"stateRank"`
	CityRank    int `json:"cityRank"`
}

func (s *Server) handleScoreRanks(c *gin.Context) {
	ranks := s.store.Ranks()
	out := make([]scoreRankWire, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, scoreRankWire{
			UserID:               r.UserID,
			HireabilityIndex:     r.HireabilityIndex,
			ExperienceIndexScore: r.ExperienceIndexScore,
			SkillIndexScore:      r.SkillIndexScore,
			AwardScore:           r.AwardScore,
			CertificationScore:   r.CertificationScore,
			EducationScore:       r.EducationScore,
			WorkScore:            r.WorkScore,
			ProjectScore:         r.ProjectScore,
			BaselineScore:        r.BaselineScore,
			CaseStudiesCompleted: r.CaseStudiesCompleted,
			AvgCaseStudyTime:     r.AvgCaseStudyTime,
			Country:              r.Country,
			State:                r.State,
			City:                 r.City,
			Rank: rankPosition{
				GlobalRank:  r.GlobalRank,
				CountryRank: r.CountryRank,
				StateRank:   r.StateRank,
				CityRank:    r.CityRank,
			},
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "students": out})
}

func (s *Server) handleTotalUsers(c *gin.Context) {
	total, _ := s.store.RoleCounts()
	c.JSON(http.StatusOK, gin.H{"success": true, "count": total})
}

func (s *Server) handlePayingUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "count": s.store.PayingCount()})
}

func (s *Server) handleDailyActive(c *gin.Context) {
	daily, _, _ := s.store.ActiveCounts()
	c.JSON(http.StatusOK, gin.H{"success": true, "count": daily})
}

func (s *Server) handleMonthlyActive(c *gin.Context) {
	_, monthly, _ := s.store.ActiveCounts()
	c.JSON(http.StatusOK, gin.H{"success": true, "count": monthly})
}

func (s *Server) handleNewToday(c *gin.Context) {
	_, _, newToday := s.store.ActiveCounts()
	c.JSON(http.StatusOK, gin.H{"success": true, "count": newToday})
}

func (s *Server) handleAvgStarted(c *gin.Context) {
	avgStarted, _, _, _ := s.store.CaseStudyStats()
	c.JSON(http.StatusOK, gin.H{"success": true, "avgCaseStudiesPerUser": avgStarted})
}

func (s *Server) handleAvgCompleted(c *gin.Context) {
	_, avgCompleted, _, _ := s.store.CaseStudyStats()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"averageCompletedPerUser": avgCompleted},
	})
}

func (s *Server) handleCompletionRate(c *gin.Context) {
	_, _, rate, _ := s.store.CaseStudyStats()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"completionRate": rate},
	})
}

func (s *Server) handleAvgTime(c *gin.Context) {
	_, _, _, avgTime := s.store.CaseStudyStats()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    []gin.H{{"avgTimeMinutes": avgTime}},
	})
}

func (s *Server) handleFunnel(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "funnel": s.store.Funnel()})
}

func (s *Server) handleCountries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": s.store.Countries()})
}

func (s *Server) handleStates(c *gin.Context) {
	country := c.Query("country")
	if country == "" {
		failJSON(c, http.StatusBadRequest, "country is required")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": s.store.States(country)})
}

func (s *Server) handleUsersByLocation(c *gin.Context) {
	country := c.Query("country")
	state := c.Query("state")
	if country == "" || state == "" {
		failJSON(c, http.StatusBadRequest, "country and state are required")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": s.store.UsersByLocation(country, state)})
}
