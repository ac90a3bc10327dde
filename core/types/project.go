// Package types defines the domain entities of the Data Core registry.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectStatus is the lifecycle state of a project
type ProjectStatus string

const (
	StatusOnboarding   ProjectStatus = "onboarding"
	StatusRunning      ProjectStatus = "running"
	StatusSuspended    ProjectStatus = "suspended"
	StatusShuttingDown ProjectStatus = "shutting_down"
	StatusCompleted    ProjectStatus = "completed"
	StatusArchived     ProjectStatus = "archived"
)

// EnvType is the environment type of a project
type EnvType string

const (
	EnvThesis    EnvType = "thesis"
	EnvResearch  EnvType = "research"
	EnvClassroom EnvType = "classroom"
)

// StorageClass enumerates the billable storage categories
type StorageClass string

const (
	StoragePrimary    StorageClass = "primary"
	StorageDerivative StorageClass = "derivative"
	StorageDirect     StorageClass = "direct"
	StorageArchival   StorageClass = "archival"
)

// StorageClasses lists all storage classes in billing order
var StorageClasses = []StorageClass{
	StoragePrimary,
	StorageDerivative,
	StorageDirect,
	StorageArchival,
}

// Project is a hosted research environment
type Project struct {
	// ID is the unique project identifier (e.g. "prj0042")
	ID string `json:"id"`

	// Title is the full project title
	Title string `json:"title"`

	// Nickname is a short display name
	Nickname string `json:"nickname,omitempty"`

	// Status is the lifecycle state
	Status ProjectStatus `json:"status"`

	// EnvType is the environment type
	EnvType EnvType `json:"env_type"`

	// Storage quantities in GB, keyed by class. Absent classes bill as zero.
	Storage map[StorageClass]int64 `json:"storage,omitempty"`

	// RequestedCPU is the provisioned CPU count (0 = none requested)
	RequestedCPU int `json:"requested_cpu,omitempty"`

	// RequestedRAMGB is the provisioned RAM in GB (0 = none requested)
	RequestedRAMGB int `json:"requested_ram_gb,omitempty"`

	// PI is the principal investigator's user ID
	PI string `json:"pi,omitempty"`

	// Users are the billable members (user IDs)
	Users []string `json:"users,omitempty"`

	// SoftwareInstalled lists installed software keys
	SoftwareInstalled []string `json:"software_installed,omitempty"`

	// HostNode is the compute node the project is mounted on
	HostNode string `json:"host_node,omitempty"`

	// DatabaseNode is the attached database server, if any
	DatabaseNode string `json:"database_node,omitempty"`

	// ExpectedCompletion is the planned end date
	ExpectedCompletion time.Time `json:"expected_completion,omitempty"`

	// Cached cost fields, refreshed on every invoice run.
	// The BillingRecord is authoritative; these exist for quick listing.
	CachedCosts CostCache `json:"cached_costs"`

	// Comments holds free-form notes
	Comments string `json:"comments,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// CostCache holds the per-line expenses from the most recent invoice run
type CostCache struct {
	UserCost     decimal.Decimal `json:"user_cost"`
	HostCost     decimal.Decimal `json:"host_cost"`
	DBCost       decimal.Decimal `json:"db_cost"`
	SoftwareCost decimal.Decimal `json:"software_cost"`

	// StorageCosts is keyed by storage class
	StorageCosts map[StorageClass]decimal.Decimal `json:"storage_costs,omitempty"`

	// Total is the cached monthly total
	Total decimal.Decimal `json:"total"`
}

// UserCount returns the number of billable users
func (p *Project) UserCount() int {
	return len(p.Users)
}

// StorageGB returns the quantity for a storage class, absent as zero
func (p *Project) StorageGB(class StorageClass) int64 {
	if p.Storage == nil {
		return 0
	}
	return p.Storage[class]
}

// HasDatabase reports whether a database server is attached
func (p *Project) HasDatabase() bool {
	return p.DatabaseNode != ""
}

// DaysToCompletion returns the calendar days remaining until the
// expected completion date
func (p *Project) DaysToCompletion(today time.Time) int {
	return daysBetween(today, p.ExpectedCompletion)
}

// daysBetween counts whole calendar days from one instant's date to
// another's, ignoring the time of day on both sides.
func daysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	f := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
