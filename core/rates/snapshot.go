// Package rates provides immutable rate snapshots with content hashing.
//
// A Snapshot is a point-in-time capture of every rate table the invoice
// calculator consumes: user bands, storage classes, software seats, extra
// compute, and database hosting. It is built once, injected into the
// calculator, and never mutated, so an invoice run is a pure function of
// its project and its snapshot.
package rates

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"datacore/core/types"
	"datacore/internal/errors"
)

// UserBand prices an exact billable-user count
type UserBand struct {
	Users int
	Cost  decimal.Decimal
}

// SoftwareRate prices one software package
type SoftwareRate struct {
	// SeatCost is the regular per-seat monthly cost
	SeatCost decimal.Decimal

	// StudentCost is the per-student cost used for classroom projects
	StudentCost decimal.Decimal
}

// DatabaseRate prices database hosting
type DatabaseRate struct {
	// Monthly is the flat hosting cost per period
	Monthly decimal.Decimal

	// Setup is the one-time setup fee, charged at most once per project
	Setup decimal.Decimal
}

// Tables is the mutable input to a snapshot. Build one, hand it to New,
// and discard it; the snapshot keeps its own sorted copies.
type Tables struct {
	EffectiveAt  time.Time
	UserBands    []UserBand
	Storage      map[types.StorageClass]decimal.Decimal
	Software     map[string]SoftwareRate
	ExtraCompute map[int]decimal.Decimal
	Database     DatabaseRate
}

// Snapshot is an immutable rate capture. Lookups for absent rows return
// zero instead of failing: a missing rate degrades that line to zero cost
// and the invoice run continues.
type Snapshot struct {
	contentHash string
	effectiveAt time.Time

	userBands    []UserBand // sorted ascending by Users
	storage      map[types.StorageClass]decimal.Decimal
	software     map[string]SoftwareRate
	extraCompute map[int]decimal.Decimal
	database     DatabaseRate
}

// New builds a sealed snapshot from the given tables.
// At least one user band is required; the highest band anchors the
// extrapolation fallback for oversized projects.
func New(t Tables) (*Snapshot, error) {
	if len(t.UserBands) == 0 {
		return nil, errors.New(errors.TypeRates, "at least one user band is required")
	}

	s := &Snapshot{
		effectiveAt:  t.EffectiveAt,
		userBands:    make([]UserBand, len(t.UserBands)),
		storage:      make(map[types.StorageClass]decimal.Decimal, len(t.Storage)),
		software:     make(map[string]SoftwareRate, len(t.Software)),
		extraCompute: make(map[int]decimal.Decimal, len(t.ExtraCompute)),
		database:     t.Database,
	}

	copy(s.userBands, t.UserBands)
	sort.Slice(s.userBands, func(i, j int) bool {
		return s.userBands[i].Users < s.userBands[j].Users
	})
	for i := 1; i < len(s.userBands); i++ {
		if s.userBands[i].Users == s.userBands[i-1].Users {
			return nil, errors.Newf(errors.TypeRates,
				"duplicate user band for %d users", s.userBands[i].Users)
		}
	}

	for class, rate := range t.Storage {
		s.storage[class] = rate
	}
	for key, rate := range t.Software {
		s.software[key] = rate
	}
	for cpus, cost := range t.ExtraCompute {
		s.extraCompute[cpus] = cost
	}

	s.contentHash = s.computeHash()
	return s, nil
}

// ContentHash returns the SHA-256 over all rate entries, independent of
// the order the tables were supplied in.
func (s *Snapshot) ContentHash() string {
	return s.contentHash
}

// EffectiveAt returns when the rates became effective
func (s *Snapshot) EffectiveAt() time.Time {
	return s.effectiveAt
}

// UserBandCost returns the flat cost for an exact user count
func (s *Snapshot) UserBandCost(users int) (decimal.Decimal, bool) {
	for _, b := range s.userBands {
		if b.Users == users {
			return b.Cost, true
		}
	}
	return decimal.Zero, false
}

// MaxBand returns the highest explicitly priced band
func (s *Snapshot) MaxBand() UserBand {
	return s.userBands[len(s.userBands)-1]
}

// ZeroBandCost returns the per-extra-user cost (the zero band), or zero
// when no zero band is configured
func (s *Snapshot) ZeroBandCost() decimal.Decimal {
	cost, _ := s.UserBandCost(0)
	return cost
}

// StorageRate returns the per-GB cost for a storage class, zero when the
// class has no configured rate
func (s *Snapshot) StorageRate(class types.StorageClass) decimal.Decimal {
	return s.storage[class]
}

// SoftwareSeatRate returns the per-seat cost for a software key
func (s *Snapshot) SoftwareSeatRate(key string) (decimal.Decimal, bool) {
	rate, ok := s.software[key]
	return rate.SeatCost, ok
}

// SoftwareStudentRate returns the classroom per-student cost for a key
func (s *Snapshot) SoftwareStudentRate(key string) (decimal.Decimal, bool) {
	rate, ok := s.software[key]
	return rate.StudentCost, ok
}

// ExtraComputeCost returns the flat cost for an exact extra-CPU count.
// No interpolation: an unlisted count costs zero.
func (s *Snapshot) ExtraComputeCost(extraCPU int) decimal.Decimal {
	return s.extraCompute[extraCPU]
}

// Database returns the database hosting rate
func (s *Snapshot) Database() DatabaseRate {
	return s.database
}

func (s *Snapshot) computeHash() string {
	entries := make([]string, 0,
		len(s.userBands)+len(s.storage)+len(s.software)+len(s.extraCompute)+2)

	for _, b := range s.userBands {
		entries = append(entries, fmt.Sprintf("user_band/%d/%s", b.Users, b.Cost.String()))
	}
	for class, rate := range s.storage {
		entries = append(entries, fmt.Sprintf("storage/%s/%s", class, rate.String()))
	}
	for key, rate := range s.software {
		entries = append(entries, fmt.Sprintf("software/%s/%s/%s",
			key, rate.SeatCost.String(), rate.StudentCost.String()))
	}
	for cpus, cost := range s.extraCompute {
		entries = append(entries, fmt.Sprintf("extra_compute/%d/%s", cpus, cost.String()))
	}
	entries = append(entries,
		fmt.Sprintf("database/monthly/%s", s.database.Monthly.String()),
		fmt.Sprintf("database/setup/%s", s.database.Setup.String()),
	)

	sort.Strings(entries)

	h := sha256.New()
	for _, e := range entries {
		h.Write([]byte(e))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
