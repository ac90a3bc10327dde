package db

import (
	"context"
	"database/sql"
	"time"

	"datacore/core/types"
	"datacore/internal/errors"
)

// GovernanceStore persists governance documents
type GovernanceStore struct {
	db *DB
}

// NewGovernanceStore creates a GovernanceStore
func NewGovernanceStore(db *DB) *GovernanceStore {
	return &GovernanceStore{db: db}
}

// Create inserts a document
func (s *GovernanceStore) Create(ctx context.Context, doc *types.GovernanceDoc) error {
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	var destroy interface{}
	if doc.DestroyData != nil {
		destroy = *doc.DestroyData
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Storage("failed to begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO governance_docs (
			id, doc_id, type, date_issued, expiry_date,
			defers_to, supersedes, project_id, destroy_data, comments,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		doc.ID, doc.DocID, string(doc.Type), doc.DateIssued, doc.ExpiryDate,
		nullString(doc.DefersTo), nullString(doc.Supersedes),
		doc.ProjectID, destroy, nullString(doc.Comments),
		doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return errors.Storage("failed to create governance doc", err)
	}

	for _, cwid := range doc.UsersPermitted {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO governance_users (doc_id, cwid) VALUES (?, ?)`,
			doc.ID, cwid); err != nil {
			return errors.Storage("failed to add permitted user", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Storage("failed to commit", err)
	}
	return nil
}

// Get loads one document by internal ID
func (s *GovernanceStore) Get(ctx context.Context, id string) (*types.GovernanceDoc, error) {
	row := s.db.QueryRowContext(ctx, selectGovernance+` WHERE id = ?`, id)
	doc, err := scanGovernance(row)
	if err != nil {
		return nil, notFound(err, "governance doc", id)
	}
	if err := s.loadPermitted(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// List returns all documents ordered by expiry date
func (s *GovernanceStore) List(ctx context.Context) ([]*types.GovernanceDoc, error) {
	return s.list(ctx, selectGovernance+` ORDER BY expiry_date`)
}

// ListByProject returns a project's documents ordered by expiry date
func (s *GovernanceStore) ListByProject(ctx context.Context, projectID string) ([]*types.GovernanceDoc, error) {
	return s.list(ctx, selectGovernance+` WHERE project_id = ? ORDER BY expiry_date`, projectID)
}

const selectGovernance = `
	SELECT id, doc_id, type, date_issued, expiry_date,
		defers_to, supersedes, project_id, destroy_data, comments,
		created_at, updated_at
	FROM governance_docs`

func (s *GovernanceStore) list(ctx context.Context, query string, args ...interface{}) ([]*types.GovernanceDoc, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Storage("failed to list governance docs", err)
	}
	defer rows.Close()

	var docs []*types.GovernanceDoc
	for rows.Next() {
		doc, err := scanGovernance(rows)
		if err != nil {
			return nil, errors.Storage("failed to scan governance doc", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("failed to iterate governance docs", err)
	}

	for _, doc := range docs {
		if err := s.loadPermitted(ctx, doc); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func scanGovernance(row rowScanner) (*types.GovernanceDoc, error) {
	var (
		doc                          types.GovernanceDoc
		defersTo, supersedes         sql.NullString
		destroyData                  sql.NullBool
		comments                     sql.NullString
	)

	err := row.Scan(
		&doc.ID, &doc.DocID, &doc.Type, &doc.DateIssued, &doc.ExpiryDate,
		&defersTo, &supersedes, &doc.ProjectID, &destroyData, &comments,
		&doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.DefersTo = defersTo.String
	doc.Supersedes = supersedes.String
	doc.Comments = comments.String
	if destroyData.Valid {
		v := destroyData.Bool
		doc.DestroyData = &v
	}
	return &doc, nil
}

func (s *GovernanceStore) loadPermitted(ctx context.Context, doc *types.GovernanceDoc) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cwid FROM governance_users WHERE doc_id = ? ORDER BY cwid`, doc.ID)
	if err != nil {
		return errors.Storage("failed to load permitted users", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cwid string
		if err := rows.Scan(&cwid); err != nil {
			return errors.Storage("failed to scan permitted user", err)
		}
		doc.UsersPermitted = append(doc.UsersPermitted, cwid)
	}
	return rows.Err()
}
