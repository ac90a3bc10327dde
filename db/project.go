package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"datacore/core/types"
	"datacore/internal/errors"
)

// ProjectStore persists projects and their user/software memberships
type ProjectStore struct {
	db *DB
}

// NewProjectStore creates a ProjectStore
func NewProjectStore(db *DB) *ProjectStore {
	return &ProjectStore{db: db}
}

// Create inserts a project with its memberships
func (s *ProjectStore) Create(ctx context.Context, p *types.Project) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Storage("failed to begin transaction", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err = tx.ExecContext(ctx, `
		INSERT INTO projects (
			id, title, nickname, status, env_type,
			primary_gb, derivative_gb, direct_gb, archival_gb,
			requested_cpu, requested_ram_gb, pi, host_node, database_node,
			expected_completion, comments, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID, p.Title, p.Nickname, string(p.Status), string(p.EnvType),
		p.StorageGB(types.StoragePrimary), p.StorageGB(types.StorageDerivative),
		p.StorageGB(types.StorageDirect), p.StorageGB(types.StorageArchival),
		p.RequestedCPU, p.RequestedRAMGB, nullString(p.PI),
		nullString(p.HostNode), nullString(p.DatabaseNode),
		p.ExpectedCompletion, nullString(p.Comments), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isConstraintViolation(err) {
			return errors.Input("project already exists or references unknown records")
		}
		return errors.Storage("failed to create project", err)
	}

	if err := replaceMembers(ctx, tx, p); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Storage("failed to commit", err)
	}
	return nil
}

// Update rewrites a project's fields and memberships
func (s *ProjectStore) Update(ctx context.Context, p *types.Project) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Storage("failed to begin transaction", err)
	}
	defer tx.Rollback()

	p.UpdatedAt = time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		UPDATE projects SET
			title = ?, nickname = ?, status = ?, env_type = ?,
			primary_gb = ?, derivative_gb = ?, direct_gb = ?, archival_gb = ?,
			requested_cpu = ?, requested_ram_gb = ?, pi = ?,
			host_node = ?, database_node = ?, expected_completion = ?,
			comments = ?, updated_at = ?
		WHERE id = ?
	`,
		p.Title, p.Nickname, string(p.Status), string(p.EnvType),
		p.StorageGB(types.StoragePrimary), p.StorageGB(types.StorageDerivative),
		p.StorageGB(types.StorageDirect), p.StorageGB(types.StorageArchival),
		p.RequestedCPU, p.RequestedRAMGB, nullString(p.PI),
		nullString(p.HostNode), nullString(p.DatabaseNode), p.ExpectedCompletion,
		nullString(p.Comments), p.UpdatedAt, p.ID,
	)
	if err != nil {
		return errors.Storage("failed to update project", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NotFound("project", p.ID)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM project_users WHERE project_id = ?`, p.ID); err != nil {
		return errors.Storage("failed to clear project users", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM project_software WHERE project_id = ?`, p.ID); err != nil {
		return errors.Storage("failed to clear project software", err)
	}
	if err := replaceMembers(ctx, tx, p); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Storage("failed to commit", err)
	}
	return nil
}

// UpdateCachedCosts writes the calculator's dual-write cost cache.
// The billing record remains the authoritative document.
func (s *ProjectStore) UpdateCachedCosts(ctx context.Context, p *types.Project) error {
	storageCosts, err := jsonText(p.CachedCosts.StorageCosts)
	if err != nil {
		return errors.Storage("failed to encode storage costs", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE projects SET
			user_cost = ?, host_cost = ?, db_cost = ?, software_cost = ?,
			storage_costs = ?, total_cost = ?, updated_at = ?
		WHERE id = ?
	`,
		decText(p.CachedCosts.UserCost), decText(p.CachedCosts.HostCost),
		decText(p.CachedCosts.DBCost), decText(p.CachedCosts.SoftwareCost),
		storageCosts, decText(p.CachedCosts.Total), time.Now().UTC(), p.ID,
	)
	if err != nil {
		return errors.Storage("failed to update cached costs", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NotFound("project", p.ID)
	}
	return nil
}

// Get loads a project with its memberships
func (s *ProjectStore) Get(ctx context.Context, id string) (*types.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, nickname, status, env_type,
			primary_gb, derivative_gb, direct_gb, archival_gb,
			requested_cpu, requested_ram_gb, pi, host_node, database_node,
			expected_completion, user_cost, host_cost, db_cost, software_cost,
			storage_costs, total_cost, comments, created_at, updated_at
		FROM projects WHERE id = ?
	`, id)

	p, err := scanProject(row)
	if err != nil {
		return nil, notFound(err, "project", id)
	}

	if err := s.loadMembers(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns all projects ordered by ID, memberships included
func (s *ProjectStore) List(ctx context.Context) ([]*types.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, nickname, status, env_type,
			primary_gb, derivative_gb, direct_gb, archival_gb,
			requested_cpu, requested_ram_gb, pi, host_node, database_node,
			expected_completion, user_cost, host_cost, db_cost, software_cost,
			storage_costs, total_cost, comments, created_at, updated_at
		FROM projects ORDER BY id
	`)
	if err != nil {
		return nil, errors.Storage("failed to list projects", err)
	}
	defer rows.Close()

	var projects []*types.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, errors.Storage("failed to scan project", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("failed to iterate projects", err)
	}

	for _, p := range projects {
		if err := s.loadMembers(ctx, p); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (*types.Project, error) {
	var (
		p                                     types.Project
		nickname, pi, host, dbNode, comments  sql.NullString
		userCost, hostCost, dbCost, swCost    sql.NullString
		storageCosts, totalCost               sql.NullString
		primary, derivative, direct, archival int64
		expected                              sql.NullTime
	)

	err := row.Scan(
		&p.ID, &p.Title, &nickname, &p.Status, &p.EnvType,
		&primary, &derivative, &direct, &archival,
		&p.RequestedCPU, &p.RequestedRAMGB, &pi, &host, &dbNode,
		&expected, &userCost, &hostCost, &dbCost, &swCost,
		&storageCosts, &totalCost, &comments, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Nickname = nickname.String
	p.PI = pi.String
	p.HostNode = host.String
	p.DatabaseNode = dbNode.String
	p.Comments = comments.String
	if expected.Valid {
		p.ExpectedCompletion = expected.Time
	}

	p.Storage = map[types.StorageClass]int64{}
	if primary != 0 {
		p.Storage[types.StoragePrimary] = primary
	}
	if derivative != 0 {
		p.Storage[types.StorageDerivative] = derivative
	}
	if direct != 0 {
		p.Storage[types.StorageDirect] = direct
	}
	if archival != 0 {
		p.Storage[types.StorageArchival] = archival
	}

	p.CachedCosts = types.CostCache{
		UserCost:     textDec(userCost),
		HostCost:     textDec(hostCost),
		DBCost:       textDec(dbCost),
		SoftwareCost: textDec(swCost),
		Total:        textDec(totalCost),
	}
	if err := textJSON(storageCosts, &p.CachedCosts.StorageCosts); err != nil {
		return nil, fmt.Errorf("failed to decode storage costs: %w", err)
	}

	return &p, nil
}

func (s *ProjectStore) loadMembers(ctx context.Context, p *types.Project) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cwid FROM project_users WHERE project_id = ? ORDER BY cwid`, p.ID)
	if err != nil {
		return errors.Storage("failed to load project users", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cwid string
		if err := rows.Scan(&cwid); err != nil {
			return errors.Storage("failed to scan project user", err)
		}
		p.Users = append(p.Users, cwid)
	}
	if err := rows.Err(); err != nil {
		return errors.Storage("failed to iterate project users", err)
	}

	swRows, err := s.db.QueryContext(ctx,
		`SELECT software_key FROM project_software WHERE project_id = ? ORDER BY software_key`, p.ID)
	if err != nil {
		return errors.Storage("failed to load project software", err)
	}
	defer swRows.Close()
	for swRows.Next() {
		var key string
		if err := swRows.Scan(&key); err != nil {
			return errors.Storage("failed to scan project software", err)
		}
		p.SoftwareInstalled = append(p.SoftwareInstalled, key)
	}
	return swRows.Err()
}

func replaceMembers(ctx context.Context, tx *sql.Tx, p *types.Project) error {
	for _, cwid := range p.Users {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO project_users (project_id, cwid) VALUES (?, ?)`,
			p.ID, cwid); err != nil {
			return errors.Storage("failed to add project user", err)
		}
	}
	for _, key := range p.SoftwareInstalled {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO project_software (project_id, software_key) VALUES (?, ?)`,
			p.ID, key); err != nil {
			return errors.Storage("failed to add project software", err)
		}
	}
	return nil
}
