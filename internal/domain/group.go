package domain

// Schedule is a weekly recurrence: a set of weekdays plus a daily
// time-of-day window during which the owning group's block applies.
//
// The cleared form (empty Days, empty Start and End) is how the UI clears a
// schedule without removing it; it must behave exactly like a nil Schedule.
// Use schedule.IsCleared to test for it.
type Schedule struct {
	Days  []string `json:"days"`
	Start string   `json:"start"` // "HH:MM", 24h; empty when cleared
	End   string   `json:"end"`   // "HH:MM", 24h; empty when cleared
}

// Group is a named, independently toggleable set of blocked domains with an
// optional activation schedule. The ID is backend-assigned and immutable.
// Enabled is the manual master switch; it overrides the schedule.
// A nil Schedule means the group is active whenever it is enabled.
type Group struct {
	ID       string    `json:"id" db:"id"`
	Name     string    `json:"name" db:"name"`
	Enabled  bool      `json:"enabled" db:"enabled"`
	Domains  []string  `json:"domains" db:"-"` // stored in separate table
	Schedule *Schedule `json:"schedule,omitempty" db:"-"`
}

// CreateGroupRequest is the request body for creating a group.
// New groups start enabled.
type CreateGroupRequest struct {
	Name      string   `json:"name"`
	Domains   []string `json:"domains"`
	Days      []string `json:"days"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
}

// UpdateGroupRequest is the request body for renaming or toggling a group.
// Both fields are always sent together; partial single-field update is not
// supported at this layer.
type UpdateGroupRequest struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// UpdateDomainsRequest is the request body for replacing a group's domain
// list. There is no incremental add/remove at this boundary.
type UpdateDomainsRequest struct {
	Domains []string `json:"domains"`
}

// UpdateScheduleRequest is the request body for replacing a group's schedule.
// Sending empty days and empty times clears the schedule.
type UpdateScheduleRequest struct {
	Days      []string `json:"days"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
}
