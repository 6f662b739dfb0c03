package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"tableflip.dev/journal/pkg/entry"
	"tableflip.dev/journal/pkg/store/migrations"
)

// Dialect names a database/sql driver and the quirks we care about.
type Dialect struct {
	Name   string
	Driver string
	Goose  string
	// Numbered placeholders ($1, $2) instead of ?.
	Numbered bool
}

var (
	SQLite   = Dialect{Name: "sqlite", Driver: "sqlite", Goose: "sqlite3"}
	Postgres = Dialect{Name: "postgres", Driver: "pgx", Goose: "postgres", Numbered: true}
)

// Rebind rewrites ? placeholders for dialects that number them.
func (d Dialect) Rebind(query string) string {
	if !d.Numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQL keeps entries in a single table keyed by namespace, user and id.
type SQL struct {
	db      *sql.DB
	dialect Dialect
	opts    options
	hub     *hub

	mu     sync.Mutex
	closed bool
	stop   context.CancelFunc
}

var _ Adapter = (*SQL)(nil)

// OpenSQL connects, migrates the schema and returns the store.
func OpenSQL(ctx context.Context, d Dialect, dsn string, opts ...Option) (*SQL, error) {
	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: db open error: %w", err)
	}
	if d.Name == SQLite.Name {
		// sqlite allows one writer; a single connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: db ping error: %w", err)
	}
	s := NewSQL(db, d, opts...)
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("store: migration error: %w", err)
	}
	return s, nil
}

// NewSQL wraps an open database. The schema is assumed to be in place.
func NewSQL(db *sql.DB, d Dialect, opts ...Option) *SQL {
	s := &SQL{db: db, dialect: d, opts: newOptions(opts)}
	s.hub = newHub(s.List, s.opts.log)
	if s.opts.poll > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		s.stop = cancel
		go s.hub.poll(ctx, s.opts.poll)
	}
	return s
}

var gooseMu sync.Mutex

// gooseUp is a seam for tests.
var gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
	return goose.UpContext(ctx, db, dir)
}

// Migrate applies the embedded migrations.
func (s *SQL) Migrate(ctx context.Context) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(s.dialect.Goose); err != nil {
		return err
	}
	return gooseUp(ctx, s.db, ".")
}

func (s *SQL) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *SQL) Create(ctx context.Context, userID string, e *entry.Entry) (string, error) {
	ids, err := s.Batch(ctx, userID, []Op{CreateOp(e)})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

func (s *SQL) Patch(ctx context.Context, userID, id string, p entry.Patch) error {
	_, err := s.Batch(ctx, userID, []Op{PatchOp(id, p)})
	return err
}

func (s *SQL) Remove(ctx context.Context, userID, id string) error {
	_, err := s.Batch(ctx, userID, []Op{DeleteOp(id)})
	return err
}

func (s *SQL) Batch(ctx context.Context, userID string, ops []Op) ([]string, error) {
	if err := ValidateUser(userID); err != nil {
		return nil, err
	}
	if err := validateOps(ops); err != nil {
		return nil, err
	}
	if s.isClosed() {
		return nil, ErrClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var ids []string
	for i, op := range ops {
		switch op.Kind {
		case OpCreate:
			id, err := s.insert(ctx, tx, userID, op.Entry)
			if err != nil {
				return nil, fmt.Errorf("op %d: %w", i, err)
			}
			ids = append(ids, id)
		case OpPatch:
			if err := s.update(ctx, tx, userID, op.ID, op.Patch); err != nil {
				return nil, fmt.Errorf("op %d: %w", i, err)
			}
		case OpDelete:
			if err := s.delete(ctx, tx, userID, op.ID); err != nil {
				return nil, fmt.Errorf("op %d: %w", i, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit: %w", err)
	}

	s.hub.publish(ctx, userID)
	return ids, nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func (s *SQL) insert(ctx context.Context, tx *sql.Tx, userID string, e *entry.Entry) (string, error) {
	id := s.opts.newID()
	created := entry.Now(s.opts.clock)
	query := s.dialect.Rebind(`INSERT INTO entries (id, namespace, user_id, type, content, status, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := tx.ExecContext(ctx, query,
		id, s.opts.namespace, userID, string(e.Type), e.Content,
		nullable(string(e.Status)), nullable(string(e.Date)), created.UnixMicro())
	if err != nil {
		return "", fmt.Errorf("store: insert entry: %w", err)
	}
	return id, nil
}

func (s *SQL) update(ctx context.Context, tx *sql.Tx, userID, id string, p entry.Patch) error {
	var (
		sets []string
		args []any
	)
	if p.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *p.Content)
	}
	if p.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*p.Status))
	}
	if p.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, string(*p.Date))
	}
	// Status and date only exist on tasks.
	if p.Status != nil || p.Date != nil {
		var typ string
		err := tx.QueryRowContext(ctx, s.dialect.Rebind(`SELECT type FROM entries WHERE namespace = ? AND user_id = ? AND id = ?`),
			s.opts.namespace, userID, id).Scan(&typ)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		case err != nil:
			return fmt.Errorf("store: read entry type: %w", err)
		case typ != string(entry.TypeTask):
			return fmt.Errorf("%w: %s is a %s, notes carry no status or date", ErrInvalidEntry, id, typ)
		}
	}
	query := "UPDATE entries SET " + strings.Join(sets, ", ") + " WHERE namespace = ? AND user_id = ? AND id = ?"
	args = append(args, s.opts.namespace, userID, id)
	res, err := tx.ExecContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("store: update entry: %w", err)
	}
	return expectOne(res, id)
}

func (s *SQL) delete(ctx context.Context, tx *sql.Tx, userID, id string) error {
	query := s.dialect.Rebind(`DELETE FROM entries WHERE namespace = ? AND user_id = ? AND id = ?`)
	res, err := tx.ExecContext(ctx, query, s.opts.namespace, userID, id)
	if err != nil {
		return fmt.Errorf("store: delete entry: %w", err)
	}
	return expectOne(res, id)
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	default:
		return fmt.Errorf("store: unexpected rows affected: %d", n)
	}
}

func (s *SQL) List(ctx context.Context, userID string, f Filter) ([]*entry.Entry, error) {
	if err := ValidateUser(userID); err != nil {
		return nil, err
	}
	if s.isClosed() {
		return nil, ErrClosed
	}
	query := `SELECT id, type, content, status, date, created_at FROM entries WHERE namespace = ? AND user_id = ?`
	args := []any{s.opts.namespace, userID}
	if f.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(f.Type))
	}
	if f.Date != "" {
		query += ` AND date = ?`
		args = append(args, string(f.Date))
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("store: select entries: %w", err)
	}
	defer rows.Close()

	result := make([]*entry.Entry, 0)
	for rows.Next() {
		var (
			e            entry.Entry
			typ          string
			status, date sql.NullString
			created      int64
		)
		if err := rows.Scan(&e.ID, &typ, &e.Content, &status, &date, &created); err != nil {
			return nil, fmt.Errorf("store: scan entry: %w", err)
		}
		e.Type = entry.Type(typ)
		e.Status = entry.Status(status.String)
		e.Date = entry.Day(date.String)
		e.CreatedAt = entry.Timestamp{Time: time.UnixMicro(created).UTC()}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *SQL) Subscribe(ctx context.Context, userID string, f Filter, onChange func([]*entry.Entry)) (Unsubscribe, error) {
	if err := ValidateUser(userID); err != nil {
		return nil, err
	}
	return s.hub.subscribe(ctx, userID, f, onChange)
}

func (s *SQL) Observe(userID string, o RoundObserver) Unsubscribe {
	return s.hub.observe(userID, o)
}

func (s *SQL) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if s.stop != nil {
		s.stop()
	}
	s.hub.close()
	if err := s.db.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		return err
	}
	return nil
}
