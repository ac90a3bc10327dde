// Package api - request and response types
package api

import (
	"github.com/shopspring/decimal"

	"datacore/core/billing"
	"datacore/core/governance"
	"datacore/core/types"
)

// ErrorResponse is the envelope for all error replies
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse reports service health
type HealthResponse struct {
	Status string `json:"status"`
}

// VersionResponse reports the build version and active rate snapshot
type VersionResponse struct {
	Version      string `json:"version"`
	SnapshotHash string `json:"snapshot_hash,omitempty"`
}

// BillingRunRequest asks for an invoice run
type BillingRunRequest struct {
	// Period is the billing period (YYYY-MM); defaults to the current month
	Period string `json:"period,omitempty"`

	// ProjectID limits the run to one project; empty runs all projects
	ProjectID string `json:"project_id,omitempty"`

	// Multiplier scales every total; absent means 1, "0" is a free period
	Multiplier string `json:"multiplier,omitempty"`
}

// BillingRunResponse returns the issued records and the grand total
type BillingRunResponse struct {
	Period     string                 `json:"period"`
	Records    []*types.BillingRecord `json:"records"`
	GrandTotal decimal.Decimal        `json:"grand_total"`
}

// FinancesResponse summarizes cached per-project costs
type FinancesResponse struct {
	Projects   []ProjectFinance `json:"projects"`
	GrandTotal decimal.Decimal  `json:"grand_total"`
}

// ProjectFinance is one row of the finances summary
type ProjectFinance struct {
	ProjectID string          `json:"project_id"`
	Nickname  string          `json:"nickname,omitempty"`
	Status    string          `json:"status"`
	Costs     types.CostCache `json:"costs"`
}

// AttentionResponse lists governance documents requiring attention
type AttentionResponse struct {
	Items []governance.AttentionItem `json:"items"`
}

func runResponse(result *billing.RunResult) *BillingRunResponse {
	return &BillingRunResponse{
		Period:     result.Period.String(),
		Records:    result.Records,
		GrandTotal: result.GrandTotal,
	}
}
