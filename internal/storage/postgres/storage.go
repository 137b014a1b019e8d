package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/cristianoliveira/proposal-tracker/internal/domain"
	"github.com/cristianoliveira/proposal-tracker/internal/storage/record"
)

var _ domain.ProposalRepository = (*Storage)(nil)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const selectColumns = `id::text, client_name, sent_date, value::text, status,
	sent_via, last_follow_up, expected_return_date, notes, archived`

// Storage implements domain.ProposalRepository on PostgreSQL.
type Storage struct {
	pool *pgxpool.Pool
	db   DBTX
	loc  *time.Location
}

// Open migrates the database at dsn and connects a pool to it.
func Open(ctx context.Context, dsn string, loc *time.Location) (*Storage, error) {
	if err := Migrate(dsn); err != nil {
		return nil, err
	}
	pool, err := Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return New(pool, loc), nil
}

// New wraps an existing pool. Dates are read back in loc.
func New(pool *pgxpool.Pool, loc *time.Location) *Storage {
	if loc == nil {
		loc = time.Local
	}
	return &Storage{pool: pool, db: pool, loc: loc}
}

// Close releases the pool.
func (s *Storage) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Ping checks the server is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// List returns every proposal in the requested order.
func (s *Storage) List(ctx context.Context, order domain.ListOrder) ([]domain.Proposal, error) {
	column, err := record.OrderColumn(order)
	if err != nil {
		return nil, fmt.Errorf("postgres storage: list: %w", err)
	}
	direction := "ASC"
	if order.Descending {
		direction = "DESC"
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s %s, id",
		selectColumns, record.Table, column, direction)
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres storage: list: %w", err)
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
		return nil, fmt.Errorf("postgres storage: list: %w", err)
	}
	return proposals, nil
}

func (s *Storage) scan(row pgx.Row) (domain.Proposal, error) {
	var (
		p                      domain.Proposal
		value                  string
		status                 string
		sentVia, notes         *string
		lastFollowUp, expected *time.Time
	)
	err := row.Scan(&p.ID, &p.ClientName, &p.SentDate, &value, &status,
		&sentVia, &lastFollowUp, &expected, &notes, &p.Archived)
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("postgres storage: scan proposal: %w", err)
	}
	if p.Value, err = decimal.NewFromString(value); err != nil {
		return domain.Proposal{}, fmt.Errorf("postgres storage: proposal %s: value: %w", p.ID, err)
	}

	p.Status = domain.Status(status)
	p.SentDate = p.SentDate.In(s.loc)
	if sentVia != nil {
		p.SentVia = *sentVia
	}
	if notes != nil {
		p.Notes = *notes
	}
	if lastFollowUp != nil {
		p.LastFollowUp = lastFollowUp.In(s.loc)
	}
	if expected != nil {
		local := expected.In(s.loc)
		p.ExpectedReturnDate = &local
	}
	return p, nil
}

// Insert stores a new proposal and returns its generated ID.
func (s *Storage) Insert(ctx context.Context, p domain.Proposal) (string, error) {
	if err := p.Validate(); err != nil {
		return "", fmt.Errorf("postgres storage: insert: %w", err)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	var sentVia, notes *string
	if p.SentVia != "" {
		sentVia = &p.SentVia
	}
	if p.Notes != "" {
		notes = &p.Notes
	}
	var lastFollowUp *time.Time
	if !p.LastFollowUp.IsZero() {
		lastFollowUp = &p.LastFollowUp
	}

	var id string
	err := s.db.QueryRow(ctx, `INSERT INTO proposals
		(id, client_name, sent_date, value, status, sent_via, last_follow_up, expected_return_date, notes, archived)
		VALUES ($1::uuid, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10)
		RETURNING id::text`,
		p.ID, p.ClientName, p.SentDate, p.Value.String(), p.Status.String(),
		sentVia, lastFollowUp, p.ExpectedReturnDate, notes, p.Archived,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("postgres storage: insert: %w", err)
	}
	return id, nil
}

// Update applies a patch to a single proposal.
func (s *Storage) Update(ctx context.Context, id string, patch domain.Patch) error {
	n, err := s.update(ctx, []string{id}, patch)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("postgres storage: update: %w: id %s", domain.ErrProposalNotFound, id)
	}
	return nil
}

// UpdateMany applies the same patch to every listed proposal in one
// statement. Unknown ids are skipped.
func (s *Storage) UpdateMany(ctx context.Context, ids []string, patch domain.Patch) error {
	if len(ids) == 0 {
		return fmt.Errorf("postgres storage: update many: %w", domain.ErrEmptySelection)
	}
	_, err := s.update(ctx, ids, patch)
	return err
}

func (s *Storage) update(ctx context.Context, ids []string, patch domain.Patch) (int64, error) {
	if err := patch.Validate(); err != nil {
		return 0, fmt.Errorf("postgres storage: update: %w", err)
	}

	fields := record.Fields(patch)
	sets := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for i, f := range fields {
		cast := ""
		if d, ok := f.Value.(decimal.Decimal); ok {
			f.Value = d.String()
			cast = "::numeric"
		}
		sets = append(sets, fmt.Sprintf("%s = $%d%s", f.Column, i+1, cast))
		args = append(args, f.Value)
	}
	args = append(args, ids)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id::text = ANY($%d::text[])",
		record.Table, strings.Join(sets, ", "), len(args))
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("postgres storage: update: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Delete removes a proposal.
func (s *Storage) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM proposals WHERE id::text = $1", id)
	if err != nil {
		return fmt.Errorf("postgres storage: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres storage: delete: %w: id %s", domain.ErrProposalNotFound, id)
	}
	return nil
}
