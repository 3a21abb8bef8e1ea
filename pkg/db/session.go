// Package db provides a minimal SQL-execution wrapper around a single
// PostgreSQL connection. It exists to exercise the reuse pool under load:
// a Session is an expensive-to-construct resource whose connection string
// doubles as its pool key, so sessions for different databases never get
// substituted for each other.
package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ajitpratap0/reuse/pkg/errors"
	"github.com/ajitpratap0/reuse/pkg/reuse"
)

// resetTimeout bounds the DISCARD ALL round trip issued when a session is
// recycled.
const resetTimeout = 5 * time.Second

// Session wraps one live PostgreSQL connection. It satisfies reuse.Reusable
// so sessions can be pooled and recycled instead of reconnecting per use,
// and io.Closer so the pool closes the connection when it drops a session.
type Session struct {
	dsn  string
	conn *pgx.Conn
}

var _ reuse.Reusable = (*Session)(nil)

// Open establishes a new session for the given connection string.
func Open(ctx context.Context, dsn string) (*Session, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to connect").
			WithDetail("dsn", dsn)
	}
	return &Session{dsn: dsn, conn: conn}, nil
}

// Factory adapts Open to the pool's factory signature. The returned factory
// uses the initializer key as the connection string, bounded by ctx.
func Factory(ctx context.Context) reuse.Factory[*Session] {
	return func(key string) (*Session, error) {
		return Open(ctx, key)
	}
}

// Key returns the session's connection string, which is its pool key.
func (s *Session) Key() string {
	return s.dsn
}

// Reset discards all session state on the server (prepared statements,
// temporary tables, session variables) so the connection is safe to hand to
// a different caller.
func (s *Session) Reset() error {
	ctx, cancel := context.WithTimeout(context.Background(), resetTimeout)
	defer cancel()

	if _, err := s.conn.Exec(ctx, "DISCARD ALL"); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to reset session").
			WithDetail("dsn", s.dsn)
	}
	return nil
}

// ResetInBackground returns true: DISCARD ALL is a server round trip, so
// recycling is deferred to the pool's cleaning worker instead of stalling
// the releasing caller.
func (s *Session) ResetInBackground() bool {
	return true
}

// Exec runs a statement that returns no rows and reports the number of rows
// affected.
func (s *Session) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := s.conn.Exec(ctx, sql, args...)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeQuery, "exec failed")
	}
	return tag.RowsAffected(), nil
}

// Query runs a query and materializes all result rows. The harness only
// needs small result sets, so no streaming interface is exposed.
func (s *Session) Query(ctx context.Context, sql string, args ...any) ([][]any, error) {
	rows, err := s.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "query failed")
	}
	defer rows.Close()

	var out [][]any
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeQuery, "failed to read row")
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "row iteration failed")
	}
	return out, nil
}

// Ping verifies the connection is still alive.
func (s *Session) Ping(ctx context.Context) error {
	if err := s.conn.Ping(ctx); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "ping failed")
	}
	return nil
}

// Close terminates the underlying connection. The pool calls Close when it
// drops a session on capacity overflow or shutdown.
func (s *Session) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), resetTimeout)
	defer cancel()
	return s.conn.Close(ctx)
}
