// Package sqlite provides a SQLite-backed proposal repository.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/cristianoliveira/proposal-tracker/internal/domain"
	"github.com/cristianoliveira/proposal-tracker/internal/logging"
	"github.com/cristianoliveira/proposal-tracker/internal/storage/record"
)

const driverName = "sqlite"

var _ domain.ProposalRepository = (*SQLiteStorage)(nil)

// SQLiteStorage implements domain.ProposalRepository on a local SQLite file.
type SQLiteStorage struct {
	db  *sql.DB
	loc *time.Location
}

// NewSQLiteStorage opens (creating and migrating if needed) the database at
// dbPath. Dates are read back in loc.
func NewSQLiteStorage(dbPath string, loc *time.Location) (*SQLiteStorage, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, ErrEmptyPath
	}
	if loc == nil {
		loc = time.Local
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite storage: create db directory: %w", err)
	}
	if err := Migrate(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite storage: open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite storage: set busy timeout: %w", err)
	}

	return &SQLiteStorage{db: db, loc: loc}, nil
}

// Close closes the underlying SQLite connection.
func (s *SQLiteStorage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks the database file is usable.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// List returns every proposal in the requested order.
func (s *SQLiteStorage) List(ctx context.Context, order domain.ListOrder) ([]domain.Proposal, error) {
	column, err := record.OrderColumn(order)
	if err != nil {
		return nil, fmt.Errorf("sqlite storage: list: %w", err)
	}
	direction := "ASC"
	if order.Descending {
		direction = "DESC"
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s %s, id",
		strings.Join(record.Columns, ", "), record.Table, column, direction)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlite storage: list: %w", err)
	}
	defer rows.Close()

	var proposals []domain.Proposal
	for rows.Next() {
		p, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite storage: list: %w", err)
	}
	logging.Debug("sqlite storage: listed proposals", "count", len(proposals))
	return proposals, nil
}

func (s *SQLiteStorage) scan(rows *sql.Rows) (domain.Proposal, error) {
	var (
		r                                      record.Record
		value                                  string
		sentVia, lastFollowUp, expected, notes sql.NullString
	)
	err := rows.Scan(&r.ID, &r.ClientName, &r.SentDate, &value, &r.Status,
		&sentVia, &lastFollowUp, &expected, &notes, &r.Archived)
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("sqlite storage: scan proposal: %w", err)
	}
	if r.Value, err = decimal.NewFromString(value); err != nil {
		return domain.Proposal{}, fmt.Errorf("sqlite storage: proposal %s: value: %w", r.ID, err)
	}
	r.SentVia = nullable(sentVia)
	r.LastFollowUp = nullable(lastFollowUp)
	r.ExpectedReturnDate = nullable(expected)
	r.Notes = nullable(notes)

	p, err := r.Proposal(s.loc)
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("sqlite storage: %w", err)
	}
	return p, nil
}

// Insert stores a new proposal and returns its generated ID.
func (s *SQLiteStorage) Insert(ctx context.Context, p domain.Proposal) (string, error) {
	if err := p.Validate(); err != nil {
		return "", fmt.Errorf("sqlite storage: insert: %w", err)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	r := record.FromProposal(p)

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(record.Columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		record.Table, strings.Join(record.Columns, ", "), placeholders)
	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.ClientName, r.SentDate, r.Value.String(), r.Status,
		r.SentVia, r.LastFollowUp, r.ExpectedReturnDate, r.Notes, r.Archived)
	if err != nil {
		return "", fmt.Errorf("sqlite storage: insert: %w", err)
	}
	return p.ID, nil
}

// Update applies a patch to a single proposal.
func (s *SQLiteStorage) Update(ctx context.Context, id string, patch domain.Patch) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("sqlite storage: update: %w: empty id", domain.ErrProposalNotFound)
	}
	n, err := s.update(ctx, []string{id}, patch)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("sqlite storage: update: %w: id %s", domain.ErrProposalNotFound, id)
	}
	return nil
}

// UpdateMany applies the same patch to every listed proposal. Unknown ids
// are skipped.
func (s *SQLiteStorage) UpdateMany(ctx context.Context, ids []string, patch domain.Patch) error {
	if len(ids) == 0 {
		return fmt.Errorf("sqlite storage: update many: %w", domain.ErrEmptySelection)
	}
	_, err := s.update(ctx, ids, patch)
	return err
}

func (s *SQLiteStorage) update(ctx context.Context, ids []string, patch domain.Patch) (int64, error) {
	if err := patch.Validate(); err != nil {
		return 0, fmt.Errorf("sqlite storage: update: %w", err)
	}

	fields := record.TextValues(record.Fields(patch))
	sets := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+len(ids))
	for _, f := range fields {
		sets = append(sets, f.Column+" = ?")
		if d, ok := f.Value.(decimal.Decimal); ok {
			f.Value = d.String()
		}
		args = append(args, f.Value)
	}
	for _, id := range ids {
		args = append(args, id)
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id IN (%s)",
		record.Table, strings.Join(sets, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", "))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("sqlite storage: update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite storage: update: %w", err)
	}
	logging.Debug("sqlite storage: updated proposals", "requested", len(ids), "affected", n)
	return n, nil
}

// Delete removes a proposal.
func (s *SQLiteStorage) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+record.Table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("sqlite storage: delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite storage: delete: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("sqlite storage: delete: %w: id %s", domain.ErrProposalNotFound, id)
	}
	return nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
