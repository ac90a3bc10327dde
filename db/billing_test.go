package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"datacore/core/types"
)

func sampleRecord(projectID string, period types.Period) *types.BillingRecord {
	return &types.BillingRecord{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Period:    period,
		Storage: []types.StorageLine{
			{Class: types.StoragePrimary, QuantityGB: 100, RatePerGB: dec("0.10"), Cost: dec("10")},
			{Class: types.StorageDerivative, QuantityGB: 0, RatePerGB: dec("0.05"), Cost: dec("0")},
			{Class: types.StorageDirect, QuantityGB: 0, RatePerGB: dec("0.20"), Cost: dec("0")},
			{Class: types.StorageArchival, QuantityGB: 0, RatePerGB: dec("0.02"), Cost: dec("0")},
		},
		UserCount: 2,
		UserCost:  dec("250"),
		Software: []types.SoftwareLine{
			{Key: "stata", Seats: 2, SeatRate: dec("25"), Cost: dec("50")},
		},
		SoftwareCost: dec("50"),
		ExtraCPU:     2,
		HostCost:     dec("80"),
		DBCost:       dec("100"),
		DBSetupCost:  dec("250"),
		Multiplier:   dec("1"),
		MonthlyTotal: dec("740"),
		SnapshotHash: "abc123",
		CreatedAt:    time.Now().UTC(),
	}
}

func TestBillingSaveGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedProject(t, db, "prj0001")

	store := NewBillingStore(db)
	rec := sampleRecord("prj0001", "2026-08")
	require.NoError(t, store.Save(ctx, rec))

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, "prj0001", got.ProjectID)
	require.Equal(t, types.Period("2026-08"), got.Period)
	require.Equal(t, 2, got.UserCount)
	require.True(t, got.UserCost.Equal(dec("250")))
	require.True(t, got.MonthlyTotal.Equal(dec("740")))
	require.Equal(t, "abc123", got.SnapshotHash)

	require.Len(t, got.Storage, 4)
	require.Equal(t, int64(100), got.Storage[0].QuantityGB)
	require.True(t, got.Storage[0].Cost.Equal(dec("10")))

	require.Len(t, got.Software, 1)
	require.Equal(t, "stata", got.Software[0].Key)
	require.True(t, got.Software[0].Cost.Equal(dec("50")))
}

func TestBillingGetMissing(t *testing.T) {
	db := newTestDB(t)
	_, err := NewBillingStore(db).Get(context.Background(), "absent")
	require.Error(t, err)
}

func TestBillingDuplicatePeriodsAccumulate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedProject(t, db, "prj0001")

	store := NewBillingStore(db)
	require.NoError(t, store.Save(ctx, sampleRecord("prj0001", "2026-08")))
	require.NoError(t, store.Save(ctx, sampleRecord("prj0001", "2026-08")))

	records, err := store.ListByProject(ctx, "prj0001")
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestBillingListByPeriod(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedProject(t, db, "prj0001")
	seedProject(t, db, "prj0002")

	store := NewBillingStore(db)
	require.NoError(t, store.Save(ctx, sampleRecord("prj0002", "2026-08")))
	require.NoError(t, store.Save(ctx, sampleRecord("prj0001", "2026-08")))
	require.NoError(t, store.Save(ctx, sampleRecord("prj0001", "2026-07")))

	records, err := store.ListByPeriod(ctx, "2026-08")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "prj0001", records[0].ProjectID)
	require.Equal(t, "prj0002", records[1].ProjectID)
}

func TestDatabaseSetupCharged(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedProject(t, db, "prj0001")
	seedProject(t, db, "prj0002")

	store := NewBillingStore(db)

	charged, err := store.DatabaseSetupCharged(ctx, "prj0001")
	require.NoError(t, err)
	require.False(t, charged)

	// A record with a zero setup fee does not count as charged.
	zeroSetup := sampleRecord("prj0001", "2026-07")
	zeroSetup.DBSetupCost = decimal.Zero
	require.NoError(t, store.Save(ctx, zeroSetup))

	charged, err = store.DatabaseSetupCharged(ctx, "prj0001")
	require.NoError(t, err)
	require.False(t, charged)

	require.NoError(t, store.Save(ctx, sampleRecord("prj0001", "2026-08")))

	charged, err = store.DatabaseSetupCharged(ctx, "prj0001")
	require.NoError(t, err)
	require.True(t, charged)

	// Charges never leak across projects.
	charged, err = store.DatabaseSetupCharged(ctx, "prj0002")
	require.NoError(t, err)
	require.False(t, charged)
}
