package models

// Stats is the dashboard headline breakdown.
type Stats struct {
	TotalUsers      int
	TotalStudents   int
	TotalRecruiters int
}

// LocationStats is the per country+state breakdown used by the dashboard
// location widget.
type LocationStats struct {
	Count      int `json:"count"`
	Students   int `json:"students"`
	Recruiters int `json:"recruiters"`
}

// EngagementMetrics aggregates the analytics engagement counters.
type EngagementMetrics struct {
	TotalUsers         int
	PayingUsers        int
	DailyActiveUsers   int
	MonthlyActiveUsers int
	NewUsersToday      int
}

// CaseStudyMetrics aggregates per-user case-study behaviour.
type CaseStudyMetrics struct {
	AvgStartedPerUser   float64
	AvgCompletedPerUser float64
	CompletionRate      float64
	AvgTimeMinutes      float64
}

// FunnelStep is one stage of the signup-to-case-study funnel.
type FunnelStep struct {
	Users      int     `json:"users"`
	Conversion float64 `json:"conversion,omitempty"`
}

// FunnelMetrics is the full conversion funnel.
type FunnelMetrics struct {
	Signup              FunnelStep `json:"signup"`
	AssessmentStarted   FunnelStep `json:"assessmentStarted"`
	AssessmentCompleted FunnelStep `json:"assessmentCompleted"`
	CaseStudyStarted    FunnelStep `json:"caseStudyStarted"`
}

// AdminUser identifies the logged-in administrator.
type AdminUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
