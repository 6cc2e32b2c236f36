package query

import (
	"context"
	"database/sql"
	"io"
	"log/slog"

	"github.com/roach88/bundle/internal/querysql"
)

// Queryer executes SQL and returns rows. Satisfied by *store.Store and *sql.DB.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Session binds a Queryer to a compiler, a logger and an ID source.
// A Session is safe for concurrent use when its Queryer is.
type Session struct {
	db       Queryer
	compiler *querysql.SQLCompiler
	logger   *slog.Logger
	ids      IDGenerator
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger. A nil logger discards output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l == nil {
			l = slog.New(slog.NewTextHandler(io.Discard, nil))
		}
		s.logger = l
	}
}

// WithDialect sets the placeholder style of compiled SQL.
//
// Default: querysql.DialectQuestion
func WithDialect(d querysql.Dialect) Option {
	return func(s *Session) {
		s.compiler = &querysql.SQLCompiler{Dialect: d}
	}
}

// WithIDGenerator sets the source of query execution IDs.
//
// Default: UUIDv7Generator
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Session) {
		if g != nil {
			s.ids = g
		}
	}
}

// NewSession creates a Session executing against db.
func NewSession(db Queryer, opts ...Option) *Session {
	s := &Session{
		db:       db,
		compiler: querysql.NewSQLCompiler(),
		logger:   slog.Default(),
		ids:      UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Query starts a query selecting targets, in order.
func (s *Session) Query(targets ...Target) *Query {
	return &Query{
		session: s,
		targets: append([]Target(nil), targets...),
	}
}

// Dialect returns the placeholder style the session compiles to.
func (s *Session) Dialect() querysql.Dialect {
	return s.compiler.Dialect
}
