package rates

import (
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"datacore/core/types"
	"datacore/internal/errors"
	"datacore/internal/logging"
)

// ratesFile mirrors the HCL rates document:
//
//	effective = "2026-01-01"
//	user_band { users = 0  cost = 50.00 }
//	storage "primary" { cost_per_gb = 0.10 }
//	software "stata" { cost_per_seat = 25.00 }
//	extra_compute { cpus = 4  cost = 100.00 }
//	database { monthly = 150.00  setup = 300.00 }
type ratesFile struct {
	Effective    string              `hcl:"effective,optional"`
	UserBands    []userBandBlock     `hcl:"user_band,block"`
	Storage      []storageBlock      `hcl:"storage,block"`
	Software     []softwareBlock     `hcl:"software,block"`
	ExtraCompute []extraComputeBlock `hcl:"extra_compute,block"`
	Database     *databaseBlock      `hcl:"database,block"`
}

type userBandBlock struct {
	Users int     `hcl:"users"`
	Cost  float64 `hcl:"cost"`
}

type storageBlock struct {
	Class     string  `hcl:"class,label"`
	CostPerGB float64 `hcl:"cost_per_gb"`
}

type softwareBlock struct {
	Key         string   `hcl:"key,label"`
	CostPerSeat float64  `hcl:"cost_per_seat"`
	StudentCost *float64 `hcl:"cost_per_student"`
}

type extraComputeBlock struct {
	CPUs int     `hcl:"cpus"`
	Cost float64 `hcl:"cost"`
}

type databaseBlock struct {
	Monthly float64 `hcl:"monthly"`
	Setup   float64 `hcl:"setup"`
}

var knownClasses = map[string]types.StorageClass{
	"primary":    types.StoragePrimary,
	"derivative": types.StorageDerivative,
	"direct":     types.StorageDirect,
	"archival":   types.StorageArchival,
}

// LoadHCL parses a rates file and builds a sealed snapshot.
// Unknown storage class labels are skipped with a warning; parse errors
// and duplicate bands are fatal.
func LoadHCL(path string) (*Snapshot, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, errors.Rates("failed to parse rates file", diags)
	}

	var doc ratesFile
	if diags := gohcl.DecodeBody(file.Body, nil, &doc); diags.HasErrors() {
		return nil, errors.Rates("failed to decode rates file", diags)
	}

	tables := Tables{
		Storage:      make(map[types.StorageClass]decimal.Decimal, len(doc.Storage)),
		Software:     make(map[string]SoftwareRate, len(doc.Software)),
		ExtraCompute: make(map[int]decimal.Decimal, len(doc.ExtraCompute)),
	}

	if doc.Effective != "" {
		effective, err := time.Parse("2006-01-02", doc.Effective)
		if err != nil {
			return nil, errors.Rates("invalid effective date", err)
		}
		tables.EffectiveAt = effective
	}

	for _, b := range doc.UserBands {
		tables.UserBands = append(tables.UserBands, UserBand{
			Users: b.Users,
			Cost:  decimal.NewFromFloat(b.Cost),
		})
	}

	for _, b := range doc.Storage {
		class, ok := knownClasses[b.Class]
		if !ok {
			logging.Warn("skipping unknown storage class in rates file",
				zap.String("class", b.Class),
				zap.String("path", path),
			)
			continue
		}
		tables.Storage[class] = decimal.NewFromFloat(b.CostPerGB)
	}

	for _, b := range doc.Software {
		rate := SoftwareRate{SeatCost: decimal.NewFromFloat(b.CostPerSeat)}
		if b.StudentCost != nil {
			rate.StudentCost = decimal.NewFromFloat(*b.StudentCost)
		}
		tables.Software[b.Key] = rate
	}

	for _, b := range doc.ExtraCompute {
		tables.ExtraCompute[b.CPUs] = decimal.NewFromFloat(b.Cost)
	}

	if doc.Database != nil {
		tables.Database = DatabaseRate{
			Monthly: decimal.NewFromFloat(doc.Database.Monthly),
			Setup:   decimal.NewFromFloat(doc.Database.Setup),
		}
	}

	return New(tables)
}
