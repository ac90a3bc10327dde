package rates

import (
	"testing"

	"github.com/shopspring/decimal"

	"datacore/core/types"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func baseTables() Tables {
	return Tables{
		UserBands: []UserBand{
			{Users: 2, Cost: dec("250")},
			{Users: 0, Cost: dec("50")},
			{Users: 1, Cost: dec("150")},
		},
		Storage: map[types.StorageClass]decimal.Decimal{
			types.StoragePrimary:  dec("0.10"),
			types.StorageArchival: dec("0.02"),
		},
		Software: map[string]SoftwareRate{
			"stata": {SeatCost: dec("25")},
		},
		ExtraCompute: map[int]decimal.Decimal{2: dec("80")},
		Database:     DatabaseRate{Monthly: dec("100"), Setup: dec("250")},
	}
}

func TestNewRequiresUserBand(t *testing.T) {
	_, err := New(Tables{})
	if err == nil {
		t.Fatal("expected error for empty user bands")
	}
}

func TestNewRejectsDuplicateBand(t *testing.T) {
	tables := baseTables()
	tables.UserBands = append(tables.UserBands, UserBand{Users: 1, Cost: dec("999")})
	_, err := New(tables)
	if err == nil {
		t.Fatal("expected error for duplicate user band")
	}
}

func TestLookups(t *testing.T) {
	s, err := New(baseTables())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if cost, ok := s.UserBandCost(2); !ok || !cost.Equal(dec("250")) {
		t.Errorf("UserBandCost(2) = %s, %v", cost, ok)
	}
	if _, ok := s.UserBandCost(7); ok {
		t.Error("UserBandCost(7) should miss")
	}
	if max := s.MaxBand(); max.Users != 2 {
		t.Errorf("MaxBand().Users = %d, want 2", max.Users)
	}
	if zero := s.ZeroBandCost(); !zero.Equal(dec("50")) {
		t.Errorf("ZeroBandCost = %s, want 50", zero)
	}
	if rate := s.StorageRate(types.StoragePrimary); !rate.Equal(dec("0.10")) {
		t.Errorf("StorageRate(primary) = %s, want 0.10", rate)
	}
	if rate := s.StorageRate(types.StorageDirect); !rate.IsZero() {
		t.Errorf("StorageRate(direct) = %s, want 0", rate)
	}
	if cost := s.ExtraComputeCost(2); !cost.Equal(dec("80")) {
		t.Errorf("ExtraComputeCost(2) = %s, want 80", cost)
	}
	if cost := s.ExtraComputeCost(3); !cost.IsZero() {
		t.Errorf("ExtraComputeCost(3) = %s, want 0", cost)
	}
	if rate, ok := s.SoftwareSeatRate("stata"); !ok || !rate.Equal(dec("25")) {
		t.Errorf("SoftwareSeatRate(stata) = %s, %v", rate, ok)
	}
	if _, ok := s.SoftwareSeatRate("spss"); ok {
		t.Error("SoftwareSeatRate(spss) should miss")
	}
}

func TestContentHashStable(t *testing.T) {
	a, err := New(baseTables())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New(baseTables())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.ContentHash() != b.ContentHash() {
		t.Error("identical tables should hash identically")
	}
	if len(a.ContentHash()) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a.ContentHash()))
	}
}

func TestContentHashOrderIndependent(t *testing.T) {
	reordered := baseTables()
	reordered.UserBands = []UserBand{
		{Users: 1, Cost: dec("150")},
		{Users: 2, Cost: dec("250")},
		{Users: 0, Cost: dec("50")},
	}

	a, err := New(baseTables())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New(reordered)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.ContentHash() != b.ContentHash() {
		t.Error("band supply order must not change the hash")
	}
}

func TestContentHashChangesWithRates(t *testing.T) {
	changed := baseTables()
	changed.Database.Setup = dec("300")

	a, err := New(baseTables())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New(changed)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.ContentHash() == b.ContentHash() {
		t.Error("different rates must hash differently")
	}
}
