package billing

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"datacore/core/types"
)

// RunResult is the outcome of an invoice run over a set of projects
type RunResult struct {
	Period  types.Period           `json:"period"`
	Records []*types.BillingRecord `json:"records"`

	// GrandTotal sums every record's monthly total
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// Run invoices every given project for the period. Each project is
// computed independently; a missing rate row degrades that line to zero
// and the run continues. Re-running a period produces a fresh set of
// records, it never updates records from an earlier run.
func (e *Engine) Run(ctx context.Context, projects []*types.Project, period types.Period, multiplier decimal.Decimal) (*RunResult, error) {
	result := &RunResult{
		Period:     period,
		GrandTotal: decimal.Zero,
	}

	for _, p := range projects {
		rec, err := e.Invoice(ctx, p, period, multiplier)
		if err != nil {
			return nil, err
		}
		result.Records = append(result.Records, rec)
		result.GrandTotal = result.GrandTotal.Add(rec.MonthlyTotal)
	}

	e.log.Info("invoice run complete",
		zap.String("period", period.String()),
		zap.Int("projects", len(projects)),
		zap.String("grand_total", result.GrandTotal.String()),
	)
	return result, nil
}
