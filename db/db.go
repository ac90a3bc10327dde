// Package db provides SQLite persistence for the Data Core registry:
// projects, users, servers, software, governance documents, billing
// records, and the operational logs.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New opens a SQLite database at the given path
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// Migrate creates the schema if it does not exist
func (db *DB) Migrate() error {
	schema := `
CREATE TABLE IF NOT EXISTS users (
    cwid TEXT PRIMARY KEY,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    email TEXT,
    affiliation TEXT NOT NULL,
    role TEXT NOT NULL,
    department TEXT,
    comments TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS servers (
    node TEXT PRIMARY KEY,
    status TEXT NOT NULL,
    function TEXT NOT NULL,
    machine_type TEXT NOT NULL,
    vm_size TEXT NOT NULL,
    operating_system TEXT,
    name_address TEXT,
    ip_address TEXT,
    processor_num INTEGER NOT NULL DEFAULT 0,
    ram_gb INTEGER NOT NULL DEFAULT 0,
    disk_storage_gb INTEGER NOT NULL DEFAULT 0,
    other_storage_gb INTEGER NOT NULL DEFAULT 0,
    connection_date TIMESTAMP,
    comments TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS software (
    key TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    vendor TEXT,
    version TEXT,
    user_assigned INTEGER NOT NULL DEFAULT 0,
    concurrent INTEGER NOT NULL DEFAULT 0,
    monitored INTEGER NOT NULL DEFAULT 0,
    package INTEGER NOT NULL DEFAULT 0,
    comments TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    nickname TEXT,
    status TEXT NOT NULL,
    env_type TEXT NOT NULL,
    primary_gb INTEGER NOT NULL DEFAULT 0,
    derivative_gb INTEGER NOT NULL DEFAULT 0,
    direct_gb INTEGER NOT NULL DEFAULT 0,
    archival_gb INTEGER NOT NULL DEFAULT 0,
    requested_cpu INTEGER NOT NULL DEFAULT 0,
    requested_ram_gb INTEGER NOT NULL DEFAULT 0,
    pi TEXT,
    host_node TEXT REFERENCES servers(node),
    database_node TEXT REFERENCES servers(node),
    expected_completion TIMESTAMP,
    user_cost TEXT,
    host_cost TEXT,
    db_cost TEXT,
    software_cost TEXT,
    storage_costs TEXT,
    total_cost TEXT,
    comments TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS project_users (
    project_id TEXT NOT NULL REFERENCES projects(id),
    cwid TEXT NOT NULL REFERENCES users(cwid),
    PRIMARY KEY (project_id, cwid)
);

CREATE TABLE IF NOT EXISTS project_software (
    project_id TEXT NOT NULL REFERENCES projects(id),
    software_key TEXT NOT NULL REFERENCES software(key),
    PRIMARY KEY (project_id, software_key)
);

-- No uniqueness constraint on (project_id, period): re-running a period
-- issues another record.
CREATE TABLE IF NOT EXISTS billing_records (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL REFERENCES projects(id),
    period TEXT NOT NULL,
    primary_gb INTEGER NOT NULL DEFAULT 0,
    primary_rate TEXT NOT NULL DEFAULT '0',
    primary_cost TEXT NOT NULL DEFAULT '0',
    derivative_gb INTEGER NOT NULL DEFAULT 0,
    derivative_rate TEXT NOT NULL DEFAULT '0',
    derivative_cost TEXT NOT NULL DEFAULT '0',
    direct_gb INTEGER NOT NULL DEFAULT 0,
    direct_rate TEXT NOT NULL DEFAULT '0',
    direct_cost TEXT NOT NULL DEFAULT '0',
    archival_gb INTEGER NOT NULL DEFAULT 0,
    archival_rate TEXT NOT NULL DEFAULT '0',
    archival_cost TEXT NOT NULL DEFAULT '0',
    user_count INTEGER NOT NULL DEFAULT 0,
    user_cost TEXT NOT NULL DEFAULT '0',
    software_lines TEXT,
    software_cost TEXT NOT NULL DEFAULT '0',
    extra_cpu INTEGER NOT NULL DEFAULT 0,
    host_cost TEXT NOT NULL DEFAULT '0',
    db_cost TEXT NOT NULL DEFAULT '0',
    db_setup_cost TEXT NOT NULL DEFAULT '0',
    multiplier TEXT NOT NULL DEFAULT '1',
    monthly_total TEXT NOT NULL DEFAULT '0',
    snapshot_hash TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_billing_project ON billing_records(project_id);
CREATE INDEX IF NOT EXISTS idx_billing_period ON billing_records(period);

CREATE TABLE IF NOT EXISTS governance_docs (
    id TEXT PRIMARY KEY,
    doc_id TEXT NOT NULL,
    type TEXT NOT NULL,
    date_issued TIMESTAMP NOT NULL,
    expiry_date TIMESTAMP NOT NULL,
    defers_to TEXT REFERENCES governance_docs(id),
    supersedes TEXT REFERENCES governance_docs(id),
    project_id TEXT NOT NULL REFERENCES projects(id),
    destroy_data INTEGER,
    comments TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_gov_project ON governance_docs(project_id);

CREATE TABLE IF NOT EXISTS governance_users (
    doc_id TEXT NOT NULL REFERENCES governance_docs(id),
    cwid TEXT NOT NULL REFERENCES users(cwid),
    PRIMARY KEY (doc_id, cwid)
);

CREATE TABLE IF NOT EXISTS storage_changes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id TEXT NOT NULL REFERENCES projects(id),
    class TEXT NOT NULL,
    amount_gb INTEGER NOT NULL,
    ticket TEXT,
    change_date TIMESTAMP NOT NULL,
    comments TEXT
);

CREATE TABLE IF NOT EXISTS compute_changes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id TEXT NOT NULL REFERENCES projects(id),
    new_cpu INTEGER,
    new_ram_gb INTEGER,
    ticket TEXT,
    change_date TIMESTAMP NOT NULL,
    comments TEXT
);

CREATE TABLE IF NOT EXISTS file_transfers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    source_project TEXT REFERENCES projects(id),
    external_source TEXT,
    dest_project TEXT REFERENCES projects(id),
    external_destination TEXT,
    method TEXT NOT NULL,
    requester TEXT NOT NULL,
    file_count INTEGER NOT NULL DEFAULT 0,
    filenames TEXT,
    data_class TEXT NOT NULL,
    ticket TEXT,
    change_date TIMESTAMP NOT NULL,
    comments TEXT
);

CREATE TABLE IF NOT EXISTS migration_logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id TEXT NOT NULL REFERENCES projects(id),
    node_origin TEXT REFERENCES servers(node),
    node_destination TEXT NOT NULL REFERENCES servers(node),
    access_ticket TEXT,
    access_date TIMESTAMP,
    envt_ticket TEXT,
    envt_date TIMESTAMP,
    data_ticket TEXT,
    data_date TIMESTAMP,
    comments TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
