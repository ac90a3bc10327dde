package types

import "time"

// Affiliation is the institution a user belongs to
type Affiliation string

const (
	AffiliationWCM      Affiliation = "wcm"
	AffiliationNYP      Affiliation = "nyp"
	AffiliationRockU    Affiliation = "rocku"
	AffiliationMSKCC    Affiliation = "mskcc"
	AffiliationColumbia Affiliation = "columbia"
	AffiliationOther    Affiliation = "other"
)

// Role is a user's function on their projects
type Role string

const (
	RoleFaculty             Role = "faculty"
	RoleStatistician        Role = "statistician"
	RoleAffiliate           Role = "affiliate"
	RoleResearchCoordinator Role = "research_coordinator"
	RoleStaff               Role = "staff"
	RoleStudent             Role = "student"
	RoleVolunteer           Role = "volunteer"
	RoleExpired             Role = "expired"
	RoleOther               Role = "other"
)

// User is a registered Data Core user
type User struct {
	// CWID is the unique institutional identifier
	CWID string `json:"cwid"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// Email is the primary email address
	Email string `json:"email,omitempty"`

	Affiliation Affiliation `json:"affiliation"`
	Role        Role        `json:"role"`
	Department  string      `json:"department,omitempty"`

	Comments string `json:"comments,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}
