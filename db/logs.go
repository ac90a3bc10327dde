package db

import (
	"context"
	"database/sql"

	"datacore/core/types"
	"datacore/internal/errors"
)

// LogStore persists the operational logs: storage and compute changes,
// file transfers, and node migrations. Entries are append-only.
type LogStore struct {
	db *DB
}

// NewLogStore creates a LogStore
func NewLogStore(db *DB) *LogStore {
	return &LogStore{db: db}
}

// AddStorageChange appends a storage change entry
func (s *LogStore) AddStorageChange(ctx context.Context, c *types.StorageChange) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO storage_changes (project_id, class, amount_gb, ticket, change_date, comments)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.ProjectID, string(c.Class), c.AmountGB, nullString(c.Ticket), c.ChangeDate, nullString(c.Comments))
	if err != nil {
		return errors.Storage("failed to add storage change", err)
	}
	c.ID, _ = res.LastInsertId()
	return nil
}

// StorageChanges returns a project's storage change history, newest first
func (s *LogStore) StorageChanges(ctx context.Context, projectID string) ([]*types.StorageChange, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, class, amount_gb, ticket, change_date, comments
		FROM storage_changes WHERE project_id = ? ORDER BY change_date DESC, id DESC
	`, projectID)
	if err != nil {
		return nil, errors.Storage("failed to list storage changes", err)
	}
	defer rows.Close()

	var changes []*types.StorageChange
	for rows.Next() {
		var (
			c                types.StorageChange
			ticket, comments sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.Class, &c.AmountGB, &ticket, &c.ChangeDate, &comments); err != nil {
			return nil, errors.Storage("failed to scan storage change", err)
		}
		c.Ticket = ticket.String
		c.Comments = comments.String
		changes = append(changes, &c)
	}
	return changes, rows.Err()
}

// AddComputeChange appends a compute change entry
func (s *LogStore) AddComputeChange(ctx context.Context, c *types.ComputeChange) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO compute_changes (project_id, new_cpu, new_ram_gb, ticket, change_date, comments)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.ProjectID, c.NewCPU, c.NewRAMGB, nullString(c.Ticket), c.ChangeDate, nullString(c.Comments))
	if err != nil {
		return errors.Storage("failed to add compute change", err)
	}
	c.ID, _ = res.LastInsertId()
	return nil
}

// ComputeChanges returns a project's compute change history, newest first
func (s *LogStore) ComputeChanges(ctx context.Context, projectID string) ([]*types.ComputeChange, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, new_cpu, new_ram_gb, ticket, change_date, comments
		FROM compute_changes WHERE project_id = ? ORDER BY change_date DESC, id DESC
	`, projectID)
	if err != nil {
		return nil, errors.Storage("failed to list compute changes", err)
	}
	defer rows.Close()

	var changes []*types.ComputeChange
	for rows.Next() {
		var (
			c                types.ComputeChange
			ticket, comments sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.NewCPU, &c.NewRAMGB, &ticket, &c.ChangeDate, &comments); err != nil {
			return nil, errors.Storage("failed to scan compute change", err)
		}
		c.Ticket = ticket.String
		c.Comments = comments.String
		changes = append(changes, &c)
	}
	return changes, rows.Err()
}

// AddFileTransfer appends a file transfer entry
func (s *LogStore) AddFileTransfer(ctx context.Context, t *types.FileTransfer) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO file_transfers (
			source_project, external_source, dest_project, external_destination,
			method, requester, file_count, filenames, data_class, ticket, change_date, comments
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		nullString(t.SourceProject), nullString(t.ExternalSource),
		nullString(t.DestProject), nullString(t.ExternalDestination),
		t.Method, t.Requester, t.FileCount, nullString(t.Filenames),
		string(t.DataClass), nullString(t.Ticket), t.ChangeDate, nullString(t.Comments),
	)
	if err != nil {
		return errors.Storage("failed to add file transfer", err)
	}
	t.ID, _ = res.LastInsertId()
	return nil
}

// FileTransfers returns all transfers, newest first
func (s *LogStore) FileTransfers(ctx context.Context) ([]*types.FileTransfer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_project, external_source, dest_project, external_destination,
			method, requester, file_count, filenames, data_class, ticket, change_date, comments
		FROM file_transfers ORDER BY change_date DESC, id DESC
	`)
	if err != nil {
		return nil, errors.Storage("failed to list file transfers", err)
	}
	defer rows.Close()

	var transfers []*types.FileTransfer
	for rows.Next() {
		var (
			t                              types.FileTransfer
			src, extSrc, dest, extDest     sql.NullString
			filenames, ticket, comments    sql.NullString
		)
		if err := rows.Scan(&t.ID, &src, &extSrc, &dest, &extDest,
			&t.Method, &t.Requester, &t.FileCount, &filenames,
			&t.DataClass, &ticket, &t.ChangeDate, &comments); err != nil {
			return nil, errors.Storage("failed to scan file transfer", err)
		}
		t.SourceProject = src.String
		t.ExternalSource = extSrc.String
		t.DestProject = dest.String
		t.ExternalDestination = extDest.String
		t.Filenames = filenames.String
		t.Ticket = ticket.String
		t.Comments = comments.String
		transfers = append(transfers, &t)
	}
	return transfers, rows.Err()
}

// AddMigration appends a migration entry
func (s *LogStore) AddMigration(ctx context.Context, m *types.MigrationLog) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO migration_logs (
			project_id, node_origin, node_destination,
			access_ticket, access_date, envt_ticket, envt_date,
			data_ticket, data_date, comments
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		m.ProjectID, nullString(m.NodeOrigin), m.NodeDestination,
		nullString(m.AccessTicket), m.AccessDate,
		nullString(m.EnvtTicket), m.EnvtDate,
		nullString(m.DataTicket), m.DataDate,
		nullString(m.Comments),
	)
	if err != nil {
		return errors.Storage("failed to add migration", err)
	}
	m.ID, _ = res.LastInsertId()
	return nil
}

// Migrations returns a project's migrations, newest first
func (s *LogStore) Migrations(ctx context.Context, projectID string) ([]*types.MigrationLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, node_origin, node_destination,
			access_ticket, access_date, envt_ticket, envt_date,
			data_ticket, data_date, comments, created_at
		FROM migration_logs WHERE project_id = ? ORDER BY created_at DESC, id DESC
	`, projectID)
	if err != nil {
		return nil, errors.Storage("failed to list migrations", err)
	}
	defer rows.Close()

	var migrations []*types.MigrationLog
	for rows.Next() {
		var (
			m                                    types.MigrationLog
			origin, accessT, envtT, dataT, notes sql.NullString
			accessD, envtD, dataD                sql.NullTime
		)
		if err := rows.Scan(&m.ID, &m.ProjectID, &origin, &m.NodeDestination,
			&accessT, &accessD, &envtT, &envtD,
			&dataT, &dataD, &notes, &m.CreatedAt); err != nil {
			return nil, errors.Storage("failed to scan migration", err)
		}
		m.NodeOrigin = origin.String
		m.AccessTicket = accessT.String
		m.EnvtTicket = envtT.String
		m.DataTicket = dataT.String
		m.Comments = notes.String
		if accessD.Valid {
			t := accessD.Time
			m.AccessDate = &t
		}
		if envtD.Valid {
			t := envtD.Time
			m.EnvtDate = &t
		}
		if dataD.Valid {
			t := dataD.Time
			m.DataDate = &t
		}
		migrations = append(migrations, &m)
	}
	return migrations, rows.Err()
}
