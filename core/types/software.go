package types

import "time"

// Software is a licensable package offered on Data Core nodes
type Software struct {
	// Key is the unique software identifier used by the rate tables
	Key string `json:"key"`

	Name    string `json:"name"`
	Vendor  string `json:"vendor,omitempty"`
	Version string `json:"version,omitempty"`

	// UserAssigned means seats are tied to named users
	UserAssigned bool `json:"user_assigned"`

	// Concurrent means the license pool is shared across sessions
	Concurrent bool `json:"concurrent"`

	// Monitored means usage is metered by the license server
	Monitored bool `json:"monitored"`

	// Package marks bundled distributions
	Package bool `json:"package,omitempty"`

	Comments string `json:"comments,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// SeatCount sums the users of every non-completed project that has this
// software installed. Completed projects no longer consume seats.
func (s *Software) SeatCount(projects []*Project) int {
	total := 0
	for _, p := range projects {
		if p.Status == StatusCompleted {
			continue
		}
		for _, key := range p.SoftwareInstalled {
			if key == s.Key {
				total += p.UserCount()
				break
			}
		}
	}
	return total
}
