package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period is a billing period in YYYY-MM form
type Period string

// PeriodOf returns the period containing t
func PeriodOf(t time.Time) Period {
	return Period(t.Format("2006-01"))
}

// String returns the period label
func (p Period) String() string {
	return string(p)
}

// StorageLine itemizes one storage class on an invoice
type StorageLine struct {
	Class      StorageClass    `json:"class"`
	QuantityGB int64           `json:"quantity_gb"`
	RatePerGB  decimal.Decimal `json:"rate_per_gb"`
	Cost       decimal.Decimal `json:"cost"`
}

// SoftwareLine itemizes one installed package on an invoice
type SoftwareLine struct {
	Key      string          `json:"key"`
	Seats    int             `json:"seats"`
	SeatRate decimal.Decimal `json:"seat_rate"`
	Cost     decimal.Decimal `json:"cost"`
}

// BillingRecord is one issued invoice for one project and period.
// Records are immutable once issued and never auto-deleted. Re-running a
// period issues another record; no uniqueness constraint exists on
// (project, period).
type BillingRecord struct {
	// ID is a UUID assigned at issue time
	ID string `json:"id"`

	ProjectID string `json:"project_id"`
	Period    Period `json:"period"`

	// Storage lines, one per storage class
	Storage []StorageLine `json:"storage"`

	// UserCount is the billable user count at issue time
	UserCount int `json:"user_count"`

	// UserCost is the user-band expense
	UserCost decimal.Decimal `json:"user_cost"`

	// Software lines, one per installed package
	Software []SoftwareLine `json:"software,omitempty"`

	// SoftwareCost is the summed software expense
	SoftwareCost decimal.Decimal `json:"software_cost"`

	// ExtraCPU is the CPU count above the baseline
	ExtraCPU int `json:"extra_cpu"`

	// HostCost is the extra-compute expense
	HostCost decimal.Decimal `json:"host_cost"`

	// DBCost is the database hosting expense
	DBCost decimal.Decimal `json:"db_cost"`

	// DBSetupCost is the one-time database setup fee, charged at most
	// once over the project lifetime
	DBSetupCost decimal.Decimal `json:"db_setup_cost"`

	// Multiplier scales the total for partial-month or penalty billing
	Multiplier decimal.Decimal `json:"multiplier"`

	// MonthlyTotal is the sum of all itemized expenses times Multiplier
	MonthlyTotal decimal.Decimal `json:"monthly_total"`

	// SnapshotHash records the rate snapshot the invoice was issued under
	SnapshotHash string `json:"snapshot_hash,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// StorageTotal sums the storage lines
func (r *BillingRecord) StorageTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range r.Storage {
		total = total.Add(line.Cost)
	}
	return total
}

// Subtotal sums every itemized expense before the multiplier
func (r *BillingRecord) Subtotal() decimal.Decimal {
	return r.StorageTotal().
		Add(r.UserCost).
		Add(r.SoftwareCost).
		Add(r.HostCost).
		Add(r.DBCost).
		Add(r.DBSetupCost)
}
