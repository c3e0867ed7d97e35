package api

// Fixed path table for every backend endpoint the console consumes.
const (
	PathLogin           = "/admin/login"
	PathSignup          = "/admin/signup"
	PathForgotPassword  = "/admin/forgot-password"
	PathVerifyResetCode = "/admin/verify-reset-code"
	PathResetPassword   = "/admin/reset-password"

	PathUsers      = "/admin/users"
	PathStats      = "/admin/stats"
	PathPaidUsers  = "/admin/paid-users"
	PathScoreRanks = "/admin/user-score/ranks"

	PathTotalUsers    = "/admin/metrics/total-users"
	PathPayingUsers   = "/admin/metrics/paying-users"
	PathDailyActive   = "/admin/metrics/daily-active"
	PathMonthlyActive = "/admin/metrics/monthly-active"
	PathNewToday      = "/admin/metrics/new-today"

	PathAvgCaseStarted   = "/admin/metrics/case-studies/avg-started"
	PathAvgCaseCompleted = "/admin/metrics/case-studies/avg-completed"
	PathCaseCompletion   = "/admin/metrics/case-studies/completion-rate"
	PathAvgCaseTime      = "/admin/metrics/case-studies/avg-time"
	PathFunnel           = "/admin/metrics/funnel"

	PathCountries       = "/demographics/countries"
	PathStates          = "/demographics/states"
	PathUsersByLocation = "/admin/users-by-location"
)
