// Package governance derives attention status for compliance documents.
package governance

import (
	"sort"
	"time"

	"datacore/core/types"
)

// Status is the traffic-light attention level of a document
type Status string

const (
	// StatusSafe means no attention is required
	StatusSafe Status = "safe"

	// StatusPrimary means expiry is within 90 days
	StatusPrimary Status = "primary"

	// StatusWarning means expiry is within 10 days
	StatusWarning Status = "warning"

	// StatusDanger means the document has expired
	StatusDanger Status = "danger"
)

// Classify derives the attention status of a document. superseded must
// be true when any other document declares itself as superseding this
// one; the inverse relation is derived by query, so the caller supplies
// it (or uses ClassifyAll, which derives it from the document set).
//
// A document that defers to another, is superseded, or is a user
// agreement (which always defers to other agreements and has a soft end
// date) is safe regardless of expiry.
func Classify(doc *types.GovernanceDoc, superseded bool, today time.Time) Status {
	days := doc.DaysUntilExpiry(today)

	switch {
	case days > 90:
		return StatusSafe
	case doc.Type == types.GovUserAgreement:
		return StatusSafe
	case doc.DefersTo != "":
		return StatusSafe
	case superseded:
		return StatusSafe
	case days <= 0:
		return StatusDanger
	case days <= 10:
		return StatusWarning
	case days <= 90:
		return StatusPrimary
	default:
		// Unreachable given the first case; kept as a safety net.
		return StatusDanger
	}
}

// ClassifyAll classifies every document, deriving the superseded-by
// relation from the set's Supersedes references. The result is keyed by
// document ID.
func ClassifyAll(docs []*types.GovernanceDoc, today time.Time) map[string]Status {
	superseded := make(map[string]bool)
	for _, d := range docs {
		if d.Supersedes != "" {
			superseded[d.Supersedes] = true
		}
	}

	statuses := make(map[string]Status, len(docs))
	for _, d := range docs {
		statuses[d.ID] = Classify(d, superseded[d.ID], today)
	}
	return statuses
}

// AttentionItem pairs a document with its derived status
type AttentionItem struct {
	Doc    *types.GovernanceDoc `json:"doc"`
	Status Status               `json:"status"`

	// DaysUntilExpiry is relative to the report date
	DaysUntilExpiry int `json:"days_until_expiry"`
}

// AttentionReport lists the documents that require attention (any
// non-safe status), soonest expiry first.
func AttentionReport(docs []*types.GovernanceDoc, today time.Time) []AttentionItem {
	statuses := ClassifyAll(docs, today)

	var items []AttentionItem
	for _, d := range docs {
		status := statuses[d.ID]
		if status == StatusSafe {
			continue
		}
		items = append(items, AttentionItem{
			Doc:             d,
			Status:          status,
			DaysUntilExpiry: d.DaysUntilExpiry(today),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Doc.ExpiryDate.Before(items[j].Doc.ExpiryDate)
	})
	return items
}
