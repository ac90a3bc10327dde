package billing

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"datacore/core/rates"
	"datacore/core/types"
	"datacore/internal/errors"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testSnapshot(t *testing.T) *rates.Snapshot {
	t.Helper()
	snap, err := rates.New(rates.Tables{
		UserBands: []rates.UserBand{
			{Users: 0, Cost: dec("50")},
			{Users: 1, Cost: dec("150")},
			{Users: 2, Cost: dec("250")},
			{Users: 4, Cost: dec("400")},
		},
		Storage: map[types.StorageClass]decimal.Decimal{
			types.StoragePrimary:    dec("0.10"),
			types.StorageDerivative: dec("0.05"),
			types.StorageDirect:     dec("0.20"),
			types.StorageArchival:   dec("0.02"),
		},
		Software: map[string]rates.SoftwareRate{
			"stata": {SeatCost: dec("25")},
			"sas":   {SeatCost: dec("40"), StudentCost: dec("10")},
		},
		ExtraCompute: map[int]decimal.Decimal{
			2: dec("80"),
			4: dec("160"),
		},
		Database: rates.DatabaseRate{Monthly: dec("100"), Setup: dec("250")},
	})
	if err != nil {
		t.Fatalf("building snapshot: %v", err)
	}
	return snap
}

func runningProject() *types.Project {
	return &types.Project{
		ID:      "prj0001",
		Status:  types.StatusRunning,
		EnvType: types.EnvResearch,
		Storage: map[types.StorageClass]int64{
			types.StoragePrimary:    100,
			types.StorageDerivative: 200,
		},
		Users: []string{"abc1001", "abc1002"},
	}
}

type fakePrior struct {
	charged bool
	err     error
}

func (f *fakePrior) DatabaseSetupCharged(ctx context.Context, projectID string) (bool, error) {
	return f.charged, f.err
}

func mustInvoice(t *testing.T, e *Engine, p *types.Project) *types.BillingRecord {
	t.Helper()
	rec, err := e.Invoice(context.Background(), p, "2026-08", decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("Invoice: %v", err)
	}
	return rec
}

func assertEq(t *testing.T, label string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s = %s, want %s", label, got.String(), want.String())
	}
}

func TestCompletedProjectBillsStorageOnly(t *testing.T) {
	p := runningProject()
	p.Status = types.StatusCompleted
	p.SoftwareInstalled = []string{"stata"}
	p.RequestedCPU = 8
	p.DatabaseNode = "HPDB001"

	e := NewEngine(testSnapshot(t), nil)
	rec := mustInvoice(t, e, p)

	assertEq(t, "UserCost", rec.UserCost, decimal.Zero)
	assertEq(t, "SoftwareCost", rec.SoftwareCost, decimal.Zero)
	assertEq(t, "HostCost", rec.HostCost, decimal.Zero)
	assertEq(t, "DBCost", rec.DBCost, decimal.Zero)
	assertEq(t, "DBSetupCost", rec.DBSetupCost, decimal.Zero)

	// 100*0.10 + 200*0.05 = 20
	assertEq(t, "StorageTotal", rec.StorageTotal(), dec("20"))
	assertEq(t, "MonthlyTotal", rec.MonthlyTotal, dec("20"))
}

func TestUserCostExactBand(t *testing.T) {
	p := runningProject() // 2 users
	e := NewEngine(testSnapshot(t), nil)
	rec := mustInvoice(t, e, p)
	assertEq(t, "UserCost", rec.UserCost, dec("250"))
}

func TestUserCostFallbackExtrapolation(t *testing.T) {
	// 5 users, no exact band. Max band is 4 users at 400, zero band 50:
	// 400 + 50*4 = 600. The fallback is this exact arithmetic, not a
	// sliding scale.
	p := runningProject()
	p.Users = []string{"u1", "u2", "u3", "u4", "u5"}

	e := NewEngine(testSnapshot(t), nil)
	rec := mustInvoice(t, e, p)
	assertEq(t, "UserCost", rec.UserCost, dec("600"))
}

func TestUserCostClassroom(t *testing.T) {
	// One instructor-equivalent position at the one-user band, each
	// remaining seat at the zero band: (6-1)*50 + 150 = 400.
	p := runningProject()
	p.EnvType = types.EnvClassroom
	p.Users = []string{"u1", "u2", "u3", "u4", "u5", "u6"}

	e := NewEngine(testSnapshot(t), nil)
	rec := mustInvoice(t, e, p)
	assertEq(t, "UserCost", rec.UserCost, dec("400"))
}

func TestSoftwareCostPerSeat(t *testing.T) {
	p := runningProject() // 2 users
	p.SoftwareInstalled = []string{"stata", "sas"}

	e := NewEngine(testSnapshot(t), nil)
	rec := mustInvoice(t, e, p)

	// (25 + 40) * 2
	assertEq(t, "SoftwareCost", rec.SoftwareCost, dec("130"))
	if len(rec.Software) != 2 {
		t.Fatalf("expected 2 software lines, got %d", len(rec.Software))
	}
}

func TestSoftwareCostClassroomStudentRate(t *testing.T) {
	p := runningProject()
	p.EnvType = types.EnvClassroom
	p.SoftwareInstalled = []string{"sas"}

	e := NewEngine(testSnapshot(t), nil)
	rec := mustInvoice(t, e, p)

	// sas has a per-student rate of 10: 10 * 2
	assertEq(t, "SoftwareCost", rec.SoftwareCost, dec("20"))
}

func TestSoftwareMissingRateBillsZero(t *testing.T) {
	p := runningProject()
	p.SoftwareInstalled = []string{"stata", "unpriced-package"}

	e := NewEngine(testSnapshot(t), nil)
	rec := mustInvoice(t, e, p)

	// stata contributes 25*2, the unpriced package contributes zero
	// without aborting the sum.
	assertEq(t, "SoftwareCost", rec.SoftwareCost, dec("50"))
}

func TestHostCost(t *testing.T) {
	cases := []struct {
		name      string
		cpu       int
		wantExtra int
		wantCost  string
	}{
		{"below baseline", 2, 0, "0"},
		{"at baseline", 4, 0, "0"},
		{"two extra", 6, 2, "80"},
		{"unlisted extra count", 7, 3, "0"},
		{"four extra", 8, 4, "160"},
	}

	e := NewEngine(testSnapshot(t), nil)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := runningProject()
			p.RequestedCPU = tc.cpu
			rec := mustInvoice(t, e, p)
			if rec.ExtraCPU != tc.wantExtra {
				t.Errorf("ExtraCPU = %d, want %d", rec.ExtraCPU, tc.wantExtra)
			}
			assertEq(t, "HostCost", rec.HostCost, dec(tc.wantCost))
		})
	}
}

func TestDatabaseSetupChargedOnce(t *testing.T) {
	p := runningProject()
	p.DatabaseNode = "HPDB001"

	e := NewEngine(testSnapshot(t), &fakePrior{charged: false})
	rec := mustInvoice(t, e, p)
	assertEq(t, "DBCost", rec.DBCost, dec("100"))
	assertEq(t, "DBSetupCost", rec.DBSetupCost, dec("250"))

	e = NewEngine(testSnapshot(t), &fakePrior{charged: true})
	rec = mustInvoice(t, e, p)
	assertEq(t, "DBCost", rec.DBCost, dec("100"))
	assertEq(t, "DBSetupCost", rec.DBSetupCost, decimal.Zero)
}

func TestPriorChargeLookupFailureAborts(t *testing.T) {
	p := runningProject()
	p.DatabaseNode = "HPDB001"

	e := NewEngine(testSnapshot(t), &fakePrior{err: fmt.Errorf("database closed")})
	_, err := e.Invoice(context.Background(), p, "2026-08", decimal.NewFromInt(1))
	if err == nil {
		t.Fatal("expected error from prior-charge lookup")
	}
	if !errors.IsType(err, errors.TypeBilling) {
		t.Errorf("error type = %v, want billing", err)
	}
}

func TestNoDatabaseNoCharge(t *testing.T) {
	p := runningProject()
	e := NewEngine(testSnapshot(t), &fakePrior{charged: false})
	rec := mustInvoice(t, e, p)
	assertEq(t, "DBCost", rec.DBCost, decimal.Zero)
	assertEq(t, "DBSetupCost", rec.DBSetupCost, decimal.Zero)
}

func TestMultiplierScalesTotal(t *testing.T) {
	p := runningProject()
	e := NewEngine(testSnapshot(t), nil)

	full := mustInvoice(t, e, p)

	half, err := e.Invoice(context.Background(), p, "2026-08", dec("0.5"))
	if err != nil {
		t.Fatalf("Invoice: %v", err)
	}
	assertEq(t, "MonthlyTotal", half.MonthlyTotal, full.MonthlyTotal.Mul(dec("0.5")))
	assertEq(t, "Multiplier", half.Multiplier, dec("0.5"))
}

func TestZeroMultiplierMeansFreePeriod(t *testing.T) {
	// Zero is a real multiplier, not a default sentinel: a fully
	// discounted period totals zero while the lines stay itemized.
	p := runningProject()
	e := NewEngine(testSnapshot(t), nil)

	rec, err := e.Invoice(context.Background(), p, "2026-08", decimal.Zero)
	if err != nil {
		t.Fatalf("Invoice: %v", err)
	}
	assertEq(t, "MonthlyTotal", rec.MonthlyTotal, decimal.Zero)
	assertEq(t, "Multiplier", rec.Multiplier, decimal.Zero)
	assertEq(t, "UserCost", rec.UserCost, dec("250"))
	assertEq(t, "Subtotal", rec.Subtotal(), dec("270"))
}

func TestMonthlyTotalIsItemSum(t *testing.T) {
	p := runningProject()
	p.SoftwareInstalled = []string{"stata"}
	p.RequestedCPU = 6
	p.DatabaseNode = "HPDB001"

	e := NewEngine(testSnapshot(t), nil)
	rec := mustInvoice(t, e, p)

	want := rec.StorageTotal().
		Add(rec.UserCost).
		Add(rec.SoftwareCost).
		Add(rec.HostCost).
		Add(rec.DBCost).
		Add(rec.DBSetupCost)
	assertEq(t, "MonthlyTotal", rec.MonthlyTotal, want)
}

func TestMissingStorageRateBillsZero(t *testing.T) {
	snap, err := rates.New(rates.Tables{
		UserBands: []rates.UserBand{{Users: 0, Cost: dec("50")}},
		Storage: map[types.StorageClass]decimal.Decimal{
			types.StoragePrimary: dec("0.10"),
		},
	})
	if err != nil {
		t.Fatalf("building snapshot: %v", err)
	}

	p := runningProject()
	p.Storage[types.StorageArchival] = 500

	e := NewEngine(snap, nil)
	rec := mustInvoice(t, e, p)

	// Only the primary class has a rate; the run completes with the
	// archival line at zero.
	assertEq(t, "StorageTotal", rec.StorageTotal(), dec("10"))
}

func TestAbsentQuantitiesBillZero(t *testing.T) {
	p := &types.Project{
		ID:      "prj0002",
		Status:  types.StatusRunning,
		EnvType: types.EnvResearch,
		// no storage map, no users, no CPU
	}

	e := NewEngine(testSnapshot(t), nil)
	rec := mustInvoice(t, e, p)

	assertEq(t, "StorageTotal", rec.StorageTotal(), decimal.Zero)
	assertEq(t, "HostCost", rec.HostCost, decimal.Zero)
	// Zero users hits the exact zero band.
	assertEq(t, "UserCost", rec.UserCost, dec("50"))
}

func TestInvoiceWritesCostCache(t *testing.T) {
	p := runningProject()
	e := NewEngine(testSnapshot(t), nil)
	rec := mustInvoice(t, e, p)

	assertEq(t, "cached user cost", p.CachedCosts.UserCost, rec.UserCost)
	assertEq(t, "cached total", p.CachedCosts.Total, rec.MonthlyTotal)
	assertEq(t, "cached primary storage",
		p.CachedCosts.StorageCosts[types.StoragePrimary], dec("10"))
}

func TestRunGrandTotal(t *testing.T) {
	p1 := runningProject()
	p2 := runningProject()
	p2.ID = "prj0002"
	p2.Status = types.StatusCompleted

	e := NewEngine(testSnapshot(t), nil)
	result, err := e.Run(context.Background(), []*types.Project{p1, p2}, "2026-08", decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result.Records))
	}
	want := result.Records[0].MonthlyTotal.Add(result.Records[1].MonthlyTotal)
	assertEq(t, "GrandTotal", result.GrandTotal, want)
}

func TestRecordCarriesSnapshotHash(t *testing.T) {
	snap := testSnapshot(t)
	e := NewEngine(snap, nil)
	rec := mustInvoice(t, e, runningProject())
	if rec.SnapshotHash != snap.ContentHash() {
		t.Errorf("SnapshotHash = %q, want %q", rec.SnapshotHash, snap.ContentHash())
	}
}
