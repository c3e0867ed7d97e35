package models

import "time"

// Role classifies a platform account. The set is closed; the role partitions
// the account collection into disjoint projections (students, recruiters,
// admins) over a single underlying store.
type Role string

const (
	RoleStudent   Role = "student"
	RoleRecruiter Role = "recruiter"
	RoleAdmin     Role = "admin"
)

// Location is the optional geo sub-record of an account. Every field is
// independently optional; a record may carry a country without a city.
type Location struct {
	Country    string `json:"country,omitempty"`
	City       string `json:"city,omitempty"`
	University string `json:"university,omitempty"`
}

// UserRecord is one platform account as returned by the backend.
//
// Status is decoded for completeness but never trusted: activity status is
// recomputed from timestamps on the client (see the derive package).
type UserRecord struct {
	ID        string     `json:"_id"`
	FirstName string     `json:"firstname"`
	LastName  string     `json:"lastname,omitempty"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	Status    string     `json:"status,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	Location  *Location  `json:"location,omitempty"`
}

// FullName joins first and last name for display.
func (u UserRecord) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// ActivityStatus is the derived active/inactive classification.
type ActivityStatus string

const (
	StatusActive   ActivityStatus = "active"
	StatusInactive ActivityStatus = "inactive"
)

// FilterAll is the sentinel meaning "no constraint" for a filter dimension.
const FilterAll = "all"

// FilterCriteria is the transient, client-only filter state of a list screen.
// Location filters cascade: country constrains the valid cities, city
// constrains the valid universities.
type FilterCriteria struct {
	Search     string
	Status     string
	Country    string
	City       string
	University string
}

// NewFilterCriteria returns criteria with every dimension unconstrained.
func NewFilterCriteria() FilterCriteria {
	return FilterCriteria{
		Status:     FilterAll,
		Country:    FilterAll,
		City:       FilterAll,
		University: FilterAll,
	}
}

// PageState tracks 1-indexed pagination over a filtered list.
type PageState struct {
	Page     int
	PageSize int
}

// Summary holds the stat-card counts computed over a role partition,
// independent of pagination.
type Summary struct {
	Total         int
	ActiveToday   int
	ActiveMonthly int
	NewToday      int
}
