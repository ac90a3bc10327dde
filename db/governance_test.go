package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"datacore/core/types"
)

func TestGovernanceCreateGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedProject(t, db, "prj0001")
	seedUser(t, db, "abc1001")

	destroy := true
	doc := &types.GovernanceDoc{
		ID:             "gov1",
		DocID:          "IRB-2024-001",
		Type:           types.GovIRB,
		DateIssued:     time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		ExpiryDate:     time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		ProjectID:      "prj0001",
		UsersPermitted: []string{"abc1001"},
		DestroyData:    &destroy,
		Comments:       "annual renewal",
	}

	store := NewGovernanceStore(db)
	require.NoError(t, store.Create(ctx, doc))

	got, err := store.Get(ctx, "gov1")
	require.NoError(t, err)
	require.Equal(t, "IRB-2024-001", got.DocID)
	require.Equal(t, types.GovIRB, got.Type)
	require.Equal(t, "prj0001", got.ProjectID)
	require.Equal(t, []string{"abc1001"}, got.UsersPermitted)
	require.NotNil(t, got.DestroyData)
	require.True(t, *got.DestroyData)
	require.Empty(t, got.DefersTo)
	require.Empty(t, got.Supersedes)
}

func TestGovernanceSupersedesChain(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedProject(t, db, "prj0001")

	store := NewGovernanceStore(db)
	old := &types.GovernanceDoc{
		ID:         "gov-old",
		DocID:      "IRB-2023-001",
		Type:       types.GovIRB,
		DateIssued: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		ExpiryDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ProjectID:  "prj0001",
	}
	require.NoError(t, store.Create(ctx, old))

	renewal := &types.GovernanceDoc{
		ID:         "gov-new",
		DocID:      "IRB-2024-001",
		Type:       types.GovIRB,
		DateIssued: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ExpiryDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Supersedes: "gov-old",
		ProjectID:  "prj0001",
	}
	require.NoError(t, store.Create(ctx, renewal))

	got, err := store.Get(ctx, "gov-new")
	require.NoError(t, err)
	require.Equal(t, "gov-old", got.Supersedes)
}

func TestGovernanceListByProjectOrdersByExpiry(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedProject(t, db, "prj0001")
	seedProject(t, db, "prj0002")

	store := NewGovernanceStore(db)
	mk := func(id, projectID string, expiry time.Time) {
		require.NoError(t, store.Create(ctx, &types.GovernanceDoc{
			ID:         id,
			DocID:      id,
			Type:       types.GovDUA,
			DateIssued: expiry.AddDate(-1, 0, 0),
			ExpiryDate: expiry,
			ProjectID:  projectID,
		}))
	}
	mk("gov-late", "prj0001", time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC))
	mk("gov-early", "prj0001", time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	mk("gov-other", "prj0002", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	docs, err := store.ListByProject(ctx, "prj0001")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, "gov-early", docs[0].ID)
	require.Equal(t, "gov-late", docs[1].ID)

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "gov-other", all[0].ID)
}
