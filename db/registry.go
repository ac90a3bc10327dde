package db

import (
	"context"
	"database/sql"
	"time"

	"datacore/core/types"
	"datacore/internal/errors"
)

// RegistryStore persists the reference entities: users, servers, and
// software packages.
type RegistryStore struct {
	db *DB
}

// NewRegistryStore creates a RegistryStore
func NewRegistryStore(db *DB) *RegistryStore {
	return &RegistryStore{db: db}
}

// PutUser inserts or replaces a user
func (s *RegistryStore) PutUser(ctx context.Context, u *types.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (cwid, first_name, last_name, email, affiliation, role, department, comments, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(cwid) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			email = excluded.email,
			affiliation = excluded.affiliation,
			role = excluded.role,
			department = excluded.department,
			comments = excluded.comments,
			updated_at = excluded.updated_at
	`,
		u.CWID, u.FirstName, u.LastName, nullString(u.Email),
		string(u.Affiliation), string(u.Role), nullString(u.Department),
		nullString(u.Comments), u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return errors.Storage("failed to put user", err)
	}
	return nil
}

// GetUser loads a user by CWID
func (s *RegistryStore) GetUser(ctx context.Context, cwid string) (*types.User, error) {
	var (
		u                          types.User
		email, department, comment sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT cwid, first_name, last_name, email, affiliation, role, department, comments, created_at, updated_at
		FROM users WHERE cwid = ?
	`, cwid).Scan(
		&u.CWID, &u.FirstName, &u.LastName, &email,
		&u.Affiliation, &u.Role, &department, &comment,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err, "user", cwid)
	}
	u.Email = email.String
	u.Department = department.String
	u.Comments = comment.String
	return &u, nil
}

// ListUsers returns all users ordered by CWID
func (s *RegistryStore) ListUsers(ctx context.Context) ([]*types.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cwid, first_name, last_name, email, affiliation, role, department, comments, created_at, updated_at
		FROM users ORDER BY cwid
	`)
	if err != nil {
		return nil, errors.Storage("failed to list users", err)
	}
	defer rows.Close()

	var users []*types.User
	for rows.Next() {
		var (
			u                          types.User
			email, department, comment sql.NullString
		)
		if err := rows.Scan(
			&u.CWID, &u.FirstName, &u.LastName, &email,
			&u.Affiliation, &u.Role, &department, &comment,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, errors.Storage("failed to scan user", err)
		}
		u.Email = email.String
		u.Department = department.String
		u.Comments = comment.String
		users = append(users, &u)
	}
	return users, rows.Err()
}

// PutServer inserts or replaces a server
func (s *RegistryStore) PutServer(ctx context.Context, srv *types.Server) error {
	now := time.Now().UTC()
	if srv.CreatedAt.IsZero() {
		srv.CreatedAt = now
	}
	srv.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO servers (node, status, function, machine_type, vm_size, operating_system,
			name_address, ip_address, processor_num, ram_gb, disk_storage_gb, other_storage_gb,
			connection_date, comments, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(node) DO UPDATE SET
			status = excluded.status,
			function = excluded.function,
			machine_type = excluded.machine_type,
			vm_size = excluded.vm_size,
			operating_system = excluded.operating_system,
			name_address = excluded.name_address,
			ip_address = excluded.ip_address,
			processor_num = excluded.processor_num,
			ram_gb = excluded.ram_gb,
			disk_storage_gb = excluded.disk_storage_gb,
			other_storage_gb = excluded.other_storage_gb,
			connection_date = excluded.connection_date,
			comments = excluded.comments,
			updated_at = excluded.updated_at
	`,
		srv.Node, string(srv.Status), string(srv.Function), string(srv.MachineType),
		string(srv.VMSize), nullString(srv.OperatingSystem), nullString(srv.NameAddress),
		nullString(srv.IPAddress), srv.ProcessorNum, srv.RAMGB, srv.DiskStorageGB,
		srv.OtherStorageGB, srv.ConnectionDate, nullString(srv.Comments),
		srv.CreatedAt, srv.UpdatedAt,
	)
	if err != nil {
		return errors.Storage("failed to put server", err)
	}
	return nil
}

// GetServer loads a server by node name
func (s *RegistryStore) GetServer(ctx context.Context, node string) (*types.Server, error) {
	var (
		srv                      types.Server
		os, addr, ip, comments   sql.NullString
		connectionDate           sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT node, status, function, machine_type, vm_size, operating_system,
			name_address, ip_address, processor_num, ram_gb, disk_storage_gb, other_storage_gb,
			connection_date, comments, created_at, updated_at
		FROM servers WHERE node = ?
	`, node).Scan(
		&srv.Node, &srv.Status, &srv.Function, &srv.MachineType, &srv.VMSize,
		&os, &addr, &ip, &srv.ProcessorNum, &srv.RAMGB, &srv.DiskStorageGB,
		&srv.OtherStorageGB, &connectionDate, &comments,
		&srv.CreatedAt, &srv.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err, "server", node)
	}
	srv.OperatingSystem = os.String
	srv.NameAddress = addr.String
	srv.IPAddress = ip.String
	srv.Comments = comments.String
	if connectionDate.Valid {
		srv.ConnectionDate = connectionDate.Time
	}
	return &srv, nil
}

// PutSoftware inserts or replaces a software package
func (s *RegistryStore) PutSoftware(ctx context.Context, sw *types.Software) error {
	now := time.Now().UTC()
	if sw.CreatedAt.IsZero() {
		sw.CreatedAt = now
	}
	sw.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO software (key, name, vendor, version, user_assigned, concurrent, monitored, package, comments, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			name = excluded.name,
			vendor = excluded.vendor,
			version = excluded.version,
			user_assigned = excluded.user_assigned,
			concurrent = excluded.concurrent,
			monitored = excluded.monitored,
			package = excluded.package,
			comments = excluded.comments,
			updated_at = excluded.updated_at
	`,
		sw.Key, sw.Name, nullString(sw.Vendor), nullString(sw.Version),
		sw.UserAssigned, sw.Concurrent, sw.Monitored, sw.Package,
		nullString(sw.Comments), sw.CreatedAt, sw.UpdatedAt,
	)
	if err != nil {
		return errors.Storage("failed to put software", err)
	}
	return nil
}

// GetSoftware loads a package by key
func (s *RegistryStore) GetSoftware(ctx context.Context, key string) (*types.Software, error) {
	var (
		sw                        types.Software
		vendor, version, comments sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT key, name, vendor, version, user_assigned, concurrent, monitored, package, comments, created_at, updated_at
		FROM software WHERE key = ?
	`, key).Scan(
		&sw.Key, &sw.Name, &vendor, &version,
		&sw.UserAssigned, &sw.Concurrent, &sw.Monitored, &sw.Package,
		&comments, &sw.CreatedAt, &sw.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err, "software", key)
	}
	sw.Vendor = vendor.String
	sw.Version = version.String
	sw.Comments = comments.String
	return &sw, nil
}
