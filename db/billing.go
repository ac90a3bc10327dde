package db

import (
	"context"
	"database/sql"

	"datacore/core/types"
	"datacore/internal/errors"
)

// BillingStore persists issued billing records. Records are append-only:
// there is no update or delete path, and no uniqueness constraint on
// (project, period), so re-running a period accumulates records.
type BillingStore struct {
	db *DB
}

// NewBillingStore creates a BillingStore
func NewBillingStore(db *DB) *BillingStore {
	return &BillingStore{db: db}
}

// Save inserts an issued record
func (s *BillingStore) Save(ctx context.Context, rec *types.BillingRecord) error {
	byClass := make(map[types.StorageClass]types.StorageLine, len(rec.Storage))
	for _, line := range rec.Storage {
		byClass[line.Class] = line
	}
	primary := byClass[types.StoragePrimary]
	derivative := byClass[types.StorageDerivative]
	direct := byClass[types.StorageDirect]
	archival := byClass[types.StorageArchival]

	softwareLines, err := jsonText(rec.Software)
	if err != nil {
		return errors.Storage("failed to encode software lines", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO billing_records (
			id, project_id, period,
			primary_gb, primary_rate, primary_cost,
			derivative_gb, derivative_rate, derivative_cost,
			direct_gb, direct_rate, direct_cost,
			archival_gb, archival_rate, archival_cost,
			user_count, user_cost, software_lines, software_cost,
			extra_cpu, host_cost, db_cost, db_setup_cost,
			multiplier, monthly_total, snapshot_hash, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID, rec.ProjectID, rec.Period.String(),
		primary.QuantityGB, decText(primary.RatePerGB), decText(primary.Cost),
		derivative.QuantityGB, decText(derivative.RatePerGB), decText(derivative.Cost),
		direct.QuantityGB, decText(direct.RatePerGB), decText(direct.Cost),
		archival.QuantityGB, decText(archival.RatePerGB), decText(archival.Cost),
		rec.UserCount, decText(rec.UserCost), softwareLines, decText(rec.SoftwareCost),
		rec.ExtraCPU, decText(rec.HostCost), decText(rec.DBCost), decText(rec.DBSetupCost),
		decText(rec.Multiplier), decText(rec.MonthlyTotal),
		nullString(rec.SnapshotHash), rec.CreatedAt,
	)
	if err != nil {
		return errors.Storage("failed to save billing record", err)
	}
	return nil
}

// Get loads one record by ID
func (s *BillingStore) Get(ctx context.Context, id string) (*types.BillingRecord, error) {
	row := s.db.QueryRowContext(ctx, selectBilling+` WHERE id = ?`, id)
	rec, err := scanBilling(row)
	if err != nil {
		return nil, notFound(err, "billing record", id)
	}
	return rec, nil
}

// ListByProject returns every record for a project, newest first
func (s *BillingStore) ListByProject(ctx context.Context, projectID string) ([]*types.BillingRecord, error) {
	return s.list(ctx, selectBilling+` WHERE project_id = ? ORDER BY created_at DESC`, projectID)
}

// ListByPeriod returns every record for a period, ordered by project
func (s *BillingStore) ListByPeriod(ctx context.Context, period types.Period) ([]*types.BillingRecord, error) {
	return s.list(ctx, selectBilling+` WHERE period = ? ORDER BY project_id, created_at`, period.String())
}

// DatabaseSetupCharged reports whether any issued record for the project
// carries a nonzero database setup fee. Implements billing.PriorCharges.
func (s *BillingStore) DatabaseSetupCharged(ctx context.Context, projectID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM billing_records
		WHERE project_id = ? AND CAST(db_setup_cost AS REAL) > 0
	`, projectID).Scan(&count)
	if err != nil {
		return false, errors.Storage("failed to query setup charges", err)
	}
	return count > 0, nil
}

const selectBilling = `
	SELECT id, project_id, period,
		primary_gb, primary_rate, primary_cost,
		derivative_gb, derivative_rate, derivative_cost,
		direct_gb, direct_rate, direct_cost,
		archival_gb, archival_rate, archival_cost,
		user_count, user_cost, software_lines, software_cost,
		extra_cpu, host_cost, db_cost, db_setup_cost,
		multiplier, monthly_total, snapshot_hash, created_at
	FROM billing_records`

func (s *BillingStore) list(ctx context.Context, query string, args ...interface{}) ([]*types.BillingRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Storage("failed to list billing records", err)
	}
	defer rows.Close()

	var records []*types.BillingRecord
	for rows.Next() {
		rec, err := scanBilling(rows)
		if err != nil {
			return nil, errors.Storage("failed to scan billing record", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("failed to iterate billing records", err)
	}
	return records, nil
}

func scanBilling(row rowScanner) (*types.BillingRecord, error) {
	var (
		rec                                        types.BillingRecord
		period                                     string
		pGB, dvGB, dGB, aGB                        int64
		pRate, pCost, dvRate, dvCost               sql.NullString
		dRate, dCost, aRate, aCost                 sql.NullString
		userCost, swLines, swCost                  sql.NullString
		hostCost, dbCost, setupCost, mult, total   sql.NullString
		snapshot                                   sql.NullString
	)

	err := row.Scan(
		&rec.ID, &rec.ProjectID, &period,
		&pGB, &pRate, &pCost,
		&dvGB, &dvRate, &dvCost,
		&dGB, &dRate, &dCost,
		&aGB, &aRate, &aCost,
		&rec.UserCount, &userCost, &swLines, &swCost,
		&rec.ExtraCPU, &hostCost, &dbCost, &setupCost,
		&mult, &total, &snapshot, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Period = types.Period(period)
	rec.Storage = []types.StorageLine{
		{Class: types.StoragePrimary, QuantityGB: pGB, RatePerGB: textDec(pRate), Cost: textDec(pCost)},
		{Class: types.StorageDerivative, QuantityGB: dvGB, RatePerGB: textDec(dvRate), Cost: textDec(dvCost)},
		{Class: types.StorageDirect, QuantityGB: dGB, RatePerGB: textDec(dRate), Cost: textDec(dCost)},
		{Class: types.StorageArchival, QuantityGB: aGB, RatePerGB: textDec(aRate), Cost: textDec(aCost)},
	}
	rec.UserCost = textDec(userCost)
	rec.SoftwareCost = textDec(swCost)
	rec.HostCost = textDec(hostCost)
	rec.DBCost = textDec(dbCost)
	rec.DBSetupCost = textDec(setupCost)
	rec.Multiplier = textDec(mult)
	rec.MonthlyTotal = textDec(total)
	rec.SnapshotHash = snapshot.String

	if err := textJSON(swLines, &rec.Software); err != nil {
		return nil, err
	}
	return &rec, nil
}
