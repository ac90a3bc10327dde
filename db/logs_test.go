package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"datacore/core/types"
)

func TestStorageChangeLog(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedProject(t, db, "prj0001")

	store := NewLogStore(db)
	first := &types.StorageChange{
		ProjectID:  "prj0001",
		Class:      types.StoragePrimary,
		AmountGB:   100,
		Ticket:     "INC0012345",
		ChangeDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.AddStorageChange(ctx, first))
	require.NotZero(t, first.ID)

	second := &types.StorageChange{
		ProjectID:  "prj0001",
		Class:      types.StorageArchival,
		AmountGB:   -50,
		ChangeDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.AddStorageChange(ctx, second))

	changes, err := store.StorageChanges(ctx, "prj0001")
	require.NoError(t, err)
	require.Len(t, changes, 2)
	require.Equal(t, types.StorageArchival, changes[0].Class)
	require.Equal(t, int64(-50), changes[0].AmountGB)
	require.Equal(t, "INC0012345", changes[1].Ticket)
}

func TestComputeChangeLog(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedProject(t, db, "prj0001")

	store := NewLogStore(db)
	require.NoError(t, store.AddComputeChange(ctx, &types.ComputeChange{
		ProjectID:  "prj0001",
		NewCPU:     8,
		NewRAMGB:   32,
		ChangeDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}))

	changes, err := store.ComputeChanges(ctx, "prj0001")
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Equal(t, 8, changes[0].NewCPU)
	require.Equal(t, 32, changes[0].NewRAMGB)
}

func TestFileTransferLog(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedProject(t, db, "prj0001")

	store := NewLogStore(db)
	require.NoError(t, store.AddFileTransfer(ctx, &types.FileTransfer{
		ExternalSource: "collaborator sftp",
		DestProject:    "prj0001",
		Method:         "sftp",
		Requester:      "abc1001",
		FileCount:      12,
		DataClass:      types.DataDeidentified,
		ChangeDate:     time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, store.AddFileTransfer(ctx, &types.FileTransfer{
		SourceProject:       "prj0001",
		ExternalDestination: "archive",
		Method:              "physical",
		Requester:           "abc1001",
		FileCount:           3,
		DataClass:           types.DataPHI,
		ChangeDate:          time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}))

	transfers, err := store.FileTransfers(ctx)
	require.NoError(t, err)
	require.Len(t, transfers, 2)
	require.Equal(t, types.DataPHI, transfers[0].DataClass)
	require.Equal(t, "prj0001", transfers[0].SourceProject)
	require.Empty(t, transfers[0].DestProject)
	require.Equal(t, "prj0001", transfers[1].DestProject)
	require.Equal(t, "collaborator sftp", transfers[1].ExternalSource)
}

func TestMigrationLog(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedProject(t, db, "prj0001")
	seedServer(t, db, "HPRP010")
	seedServer(t, db, "HPRP011")

	accessDate := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	store := NewLogStore(db)
	require.NoError(t, store.AddMigration(ctx, &types.MigrationLog{
		ProjectID:       "prj0001",
		NodeOrigin:      "HPRP010",
		NodeDestination: "HPRP011",
		AccessTicket:    "INC0099001",
		AccessDate:      &accessDate,
	}))

	migrations, err := store.Migrations(ctx, "prj0001")
	require.NoError(t, err)
	require.Len(t, migrations, 1)
	require.Equal(t, "HPRP010", migrations[0].NodeOrigin)
	require.Equal(t, "HPRP011", migrations[0].NodeDestination)
	require.NotNil(t, migrations[0].AccessDate)
	require.Nil(t, migrations[0].EnvtDate)
	require.Empty(t, migrations[0].DataTicket)
}
