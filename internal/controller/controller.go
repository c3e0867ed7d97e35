package controller

// State is the lifecycle of a screen. Every screen starts idle, enters
// loading on its first fetch, and settles loaded or errored. Refresh re-enters
// loading; an errored screen stays usable and can be refreshed.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateErrored State = "errored"
)
