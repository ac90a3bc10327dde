package types

import "time"

// GovernanceType categorizes a governance document
type GovernanceType string

const (
	GovIRB          GovernanceType = "irb"
	GovIRBExemption GovernanceType = "irb_exemption"
	GovDUA          GovernanceType = "dua"

	// GovUserAgreement is the Data Core User Agreement. It always defers
	// to other agreements and carries a soft end date.
	GovUserAgreement GovernanceType = "user_agreement"

	GovOnboarding GovernanceType = "onboarding"
)

// GovernanceDoc is a compliance document attached to a project
type GovernanceDoc struct {
	// ID is the internal record identifier
	ID string `json:"id"`

	// DocID is the external document identifier (e.g. IRB protocol number)
	DocID string `json:"doc_id"`

	Type GovernanceType `json:"type"`

	DateIssued time.Time `json:"date_issued"`
	ExpiryDate time.Time `json:"expiry_date"`

	// DefersTo names the governing document this one defers to, if any
	DefersTo string `json:"defers_to,omitempty"`

	// Supersedes names the older document this one replaces, if any.
	// The inverse (superseded-by) is derived by query, never stored.
	Supersedes string `json:"supersedes,omitempty"`

	// ProjectID links the document to its project
	ProjectID string `json:"project_id"`

	// UsersPermitted lists the user IDs the document covers
	UsersPermitted []string `json:"users_permitted,omitempty"`

	// DestroyData records whether data destruction is mandated at expiry
	DestroyData *bool `json:"destroy_data,omitempty"`

	Comments string `json:"comments,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// DaysUntilExpiry returns whole calendar days from today to the expiry
// date. Both sides are truncated to dates first, so the time of day the
// report runs at never shifts the count.
func (d *GovernanceDoc) DaysUntilExpiry(today time.Time) int {
	return daysBetween(today, d.ExpiryDate)
}
