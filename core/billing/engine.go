// Package billing implements the monthly cost calculator.
//
// The calculator is a function of a project and an injected rate
// snapshot. Missing rate rows never abort an invoice; the affected line
// degrades to zero cost and the run continues. The only fatal condition
// is a project that cannot be found, which the storage layer surfaces
// before the calculator is reached.
package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"datacore/core/rates"
	"datacore/core/types"
	"datacore/internal/errors"
)

// DefaultBaselineCPU is the CPU count included in the base charge
const DefaultBaselineCPU = 4

// PriorCharges answers questions about previously issued invoices.
// The engine uses it to charge the database setup fee at most once per
// project lifetime.
type PriorCharges interface {
	// DatabaseSetupCharged reports whether any issued record for the
	// project carries a nonzero database setup fee
	DatabaseSetupCharged(ctx context.Context, projectID string) (bool, error)
}

// Engine computes invoices against one rate snapshot
type Engine struct {
	rates       *rates.Snapshot
	prior       PriorCharges
	baselineCPU int
	log         *zap.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithBaselineCPU overrides the CPU count included in the base charge
func WithBaselineCPU(n int) Option {
	return func(e *Engine) { e.baselineCPU = n }
}

// WithLogger sets the engine logger
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// NewEngine creates an engine over a sealed snapshot. prior may be nil
// when no invoice history exists yet; the setup fee is then charged as if
// the project had never been billed.
func NewEngine(snapshot *rates.Snapshot, prior PriorCharges, opts ...Option) *Engine {
	e := &Engine{
		rates:       snapshot,
		prior:       prior,
		baselineCPU: DefaultBaselineCPU,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Invoice computes one billing record for a project and period.
// The multiplier scales the total verbatim and may be zero for a fully
// discounted period; callers that accept an optional multiplier supply 1
// when it is absent.
//
// As a caching convenience the computed per-line values are also written
// onto the project's CachedCosts; the returned BillingRecord is the
// authoritative document.
func (e *Engine) Invoice(ctx context.Context, p *types.Project, period types.Period, multiplier decimal.Decimal) (*types.BillingRecord, error) {
	rec := &types.BillingRecord{
		ID:           uuid.NewString(),
		ProjectID:    p.ID,
		Period:       period,
		UserCount:    p.UserCount(),
		Multiplier:   multiplier,
		SnapshotHash: e.rates.ContentHash(),
		CreatedAt:    time.Now().UTC(),
	}

	// Storage bills in every status, completed projects included.
	for _, class := range types.StorageClasses {
		rate := e.rates.StorageRate(class)
		if rate.IsZero() {
			e.log.Debug("no storage rate configured, billing zero",
				zap.String("project", p.ID),
				zap.String("class", string(class)),
			)
		}
		qty := p.StorageGB(class)
		rec.Storage = append(rec.Storage, types.StorageLine{
			Class:      class,
			QuantityGB: qty,
			RatePerGB:  rate,
			Cost:       rate.Mul(decimal.NewFromInt(qty)),
		})
	}

	// Completed projects are charged storage only; every other line is
	// forced to zero regardless of what the project has configured.
	if p.Status != types.StatusCompleted {
		rec.UserCost = e.userCost(p)
		rec.Software, rec.SoftwareCost = e.softwareCost(p)
		rec.ExtraCPU, rec.HostCost = e.hostCost(p)

		if p.HasDatabase() {
			db := e.rates.Database()
			rec.DBCost = db.Monthly

			charged, err := e.setupAlreadyCharged(ctx, p.ID)
			if err != nil {
				return nil, err
			}
			if !charged {
				rec.DBSetupCost = db.Setup
			}
		}
	}

	rec.MonthlyTotal = rec.Subtotal().Mul(multiplier)

	e.cacheCosts(p, rec)

	e.log.Info("invoice computed",
		zap.String("project", p.ID),
		zap.String("period", period.String()),
		zap.String("total", rec.MonthlyTotal.String()),
	)
	return rec, nil
}

// userCost applies the user-band table.
//
// Classrooms bill the one instructor-equivalent position at the one-user
// band and each remaining seat at the zero band. Other projects use the
// exact band for their user count; with no exact band the cost
// extrapolates as maxBandCost + zeroBandCost * maxBandUsers. The
// extrapolation is a deliberate flat approximation, not a sliding scale.
func (e *Engine) userCost(p *types.Project) decimal.Decimal {
	n := p.UserCount()
	zero := e.rates.ZeroBandCost()

	if p.EnvType == types.EnvClassroom {
		instructor, ok := e.rates.UserBandCost(1)
		if !ok {
			e.log.Debug("no instructor band configured, billing zero",
				zap.String("project", p.ID))
		}
		return decimal.NewFromInt(int64(n - 1)).Mul(zero).Add(instructor)
	}

	if cost, ok := e.rates.UserBandCost(n); ok {
		return cost
	}

	max := e.rates.MaxBand()
	e.log.Debug("no exact user band, extrapolating from max band",
		zap.String("project", p.ID),
		zap.Int("users", n),
		zap.Int("max_band", max.Users),
	)
	return max.Cost.Add(zero.Mul(decimal.NewFromInt(int64(max.Users))))
}

// softwareCost sums per-seat charges over the installed packages.
// A package with no configured rate contributes zero without aborting
// the sum. Classroom projects use the per-student rate when one exists.
func (e *Engine) softwareCost(p *types.Project) ([]types.SoftwareLine, decimal.Decimal) {
	n := p.UserCount()
	total := decimal.Zero

	var lines []types.SoftwareLine
	for _, key := range p.SoftwareInstalled {
		rate, ok := e.rates.SoftwareSeatRate(key)
		if !ok {
			e.log.Debug("no seat rate configured, billing zero",
				zap.String("project", p.ID),
				zap.String("software", key),
			)
		}
		if p.EnvType == types.EnvClassroom {
			if student, ok := e.rates.SoftwareStudentRate(key); ok && !student.IsZero() {
				rate = student
			}
		}
		cost := rate.Mul(decimal.NewFromInt(int64(n)))
		lines = append(lines, types.SoftwareLine{
			Key:      key,
			Seats:    n,
			SeatRate: rate,
			Cost:     cost,
		})
		total = total.Add(cost)
	}
	return lines, total
}

// hostCost charges CPUs above the baseline at the exact extra-compute
// rate. An unlisted extra-CPU count costs zero; there is no
// interpolation between listed counts.
func (e *Engine) hostCost(p *types.Project) (int, decimal.Decimal) {
	extra := p.RequestedCPU - e.baselineCPU
	if extra < 0 {
		extra = 0
	}
	if extra == 0 {
		return 0, decimal.Zero
	}
	return extra, e.rates.ExtraComputeCost(extra)
}

func (e *Engine) setupAlreadyCharged(ctx context.Context, projectID string) (bool, error) {
	if e.prior == nil {
		return false, nil
	}
	charged, err := e.prior.DatabaseSetupCharged(ctx, projectID)
	if err != nil {
		return false, errors.Billing("failed to check prior setup charges", err)
	}
	return charged, nil
}

func (e *Engine) cacheCosts(p *types.Project, rec *types.BillingRecord) {
	cache := types.CostCache{
		UserCost:     rec.UserCost,
		HostCost:     rec.HostCost,
		DBCost:       rec.DBCost,
		SoftwareCost: rec.SoftwareCost,
		StorageCosts: make(map[types.StorageClass]decimal.Decimal, len(rec.Storage)),
		Total:        rec.MonthlyTotal,
	}
	for _, line := range rec.Storage {
		cache.StorageCosts[line.Class] = line.Cost
	}
	p.CachedCosts = cache
}
