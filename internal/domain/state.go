package domain

import "time"

// BlockState is the persisted snapshot of the most recently computed active
// blocklist. The scheduler compares freshly computed sets against it so that
// downstream consumers only see a new state when the set actually changed.
type BlockState struct {
	Domains   []string  `json:"domains"`
	UpdatedAt time.Time `json:"updated_at"`
}
