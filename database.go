package insight

import (
	"context"
	"database/sql"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// TracedDB wraps a sql.DB so that every statement runs inside a CLIENT
// span named after the statement verb (see SpanNameForStatement). The
// wrapper is transparent: results and errors of the underlying call are
// returned unchanged.
type TracedDB struct {
	db     *sql.DB
	tracer trace.Tracer
	dbName string
	system string
}

// WrapDB wraps a sql.DB with tracing. system identifies the database
// vendor ("postgresql", "mysql", ...) and prefixes all span names.
func WrapDB(db *sql.DB, system, dbName string) *TracedDB {
	return &TracedDB{
		db:     db,
		tracer: otel.Tracer("insight/database"),
		dbName: dbName,
		system: system,
	}
}

// WrapDBWithTracer wraps a sql.DB using a specific tracer, typically
// Provider.Tracer().
func WrapDBWithTracer(db *sql.DB, tracer trace.Tracer, system, dbName string) *TracedDB {
	return &TracedDB{
		db:     db,
		tracer: tracer,
		dbName: dbName,
		system: system,
	}
}

// DB returns the underlying sql.DB.
func (t *TracedDB) DB() *sql.DB {
	return t.db
}

func (t *TracedDB) statementAttributes(query string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.DBSystemKey.String(t.system),
		attribute.String("component", t.system),
		attribute.String("db.type", "sql"),
		semconv.DBStatement(truncateQuery(query)),
	}
	if t.dbName != "" {
		attrs = append(attrs, semconv.DBName(t.dbName))
	}
	return attrs
}

// startStatementSpan opens the CLIENT span for one statement.
func (t *TracedDB) startStatementSpan(ctx context.Context, query, method string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanNameForStatement(t.system, query),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(t.statementAttributes(query)...),
		trace.WithAttributes(attribute.String("db.method", method)),
	)
}

// Query executes a query and traces it.
func (t *TracedDB) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	ctx, span := t.startStatementSpan(ctx, query, "query")
	defer span.End()

	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return rows, err
}

// QueryRow executes a query expected to return at most one row and traces it.
func (t *TracedDB) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	ctx, span := t.startStatementSpan(ctx, query, "query_row")
	defer span.End()

	return t.db.QueryRowContext(ctx, query, args...)
}

// Exec executes a statement and traces it.
func (t *TracedDB) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	ctx, span := t.startStatementSpan(ctx, query, "exec")
	defer span.End()

	result, err := t.db.ExecContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else if result != nil {
		if rowsAffected, err := result.RowsAffected(); err == nil {
			span.SetAttributes(attribute.Int64("db.rows_affected", rowsAffected))
		}
	}
	return result, err
}

// Prepare creates a traced prepared statement.
func (t *TracedDB) Prepare(ctx context.Context, query string) (*TracedStmt, error) {
	ctx, span := t.startStatementSpan(ctx, query, "prepare")
	defer span.End()

	stmt, err := t.db.PrepareContext(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return &TracedStmt{
		stmt:   stmt,
		tracer: t.tracer,
		query:  query,
		db:     t,
	}, nil
}

// Begin starts a traced transaction. The transaction span stays open until
// Commit or Rollback closes it.
func (t *TracedDB) Begin(ctx context.Context) (*TracedTx, error) {
	ctx, span := t.tracer.Start(ctx, t.system+".TRANSACTION",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.DBSystemKey.String(t.system),
			attribute.String("component", t.system),
		),
	)

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return nil, err
	}

	return &TracedTx{
		tx:   tx,
		span: span,
		db:   t,
	}, nil
}

// Ping verifies the database connection under a span.
func (t *TracedDB) Ping(ctx context.Context) error {
	ctx, span := t.tracer.Start(ctx, t.system+".PING",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(semconv.DBSystemKey.String(t.system)),
	)
	defer span.End()

	err := t.db.PingContext(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// Close closes the database connection.
func (t *TracedDB) Close() error {
	return t.db.Close()
}

// TracedStmt is a traced prepared statement.
type TracedStmt struct {
	stmt   *sql.Stmt
	tracer trace.Tracer
	query  string
	db     *TracedDB
}

// Query executes the prepared statement with tracing.
func (s *TracedStmt) Query(ctx context.Context, args ...interface{}) (*sql.Rows, error) {
	ctx, span := s.db.startStatementSpan(ctx, s.query, "stmt.query")
	defer span.End()

	rows, err := s.stmt.QueryContext(ctx, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return rows, err
}

// Exec executes the prepared statement with tracing.
func (s *TracedStmt) Exec(ctx context.Context, args ...interface{}) (sql.Result, error) {
	ctx, span := s.db.startStatementSpan(ctx, s.query, "stmt.exec")
	defer span.End()

	result, err := s.stmt.ExecContext(ctx, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

// Close closes the prepared statement.
func (s *TracedStmt) Close() error {
	return s.stmt.Close()
}

// TracedTx is a traced transaction.
type TracedTx struct {
	tx   *sql.Tx
	span trace.Span
	db   *TracedDB
}

// Query executes a query within the transaction.
func (t *TracedTx) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	ctx, span := t.db.startStatementSpan(ctx, query, "tx.query")
	defer span.End()

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return rows, err
}

// Exec executes a statement within the transaction.
func (t *TracedTx) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	ctx, span := t.db.startStatementSpan(ctx, query, "tx.exec")
	defer span.End()

	result, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

// Commit commits the transaction and closes the transaction span.
func (t *TracedTx) Commit() error {
	t.span.SetAttributes(attribute.String("db.transaction.status", "commit"))
	err := t.tx.Commit()
	if err != nil {
		t.span.RecordError(err)
		t.span.SetStatus(codes.Error, err.Error())
	}
	t.span.End()
	return err
}

// Rollback rolls back the transaction and closes the transaction span.
func (t *TracedTx) Rollback() error {
	t.span.SetAttributes(attribute.String("db.transaction.status", "rollback"))
	err := t.tx.Rollback()
	if err != nil {
		t.span.RecordError(err)
		t.span.SetStatus(codes.Error, err.Error())
	}
	t.span.End()
	return err
}

// truncateQuery limits statement length recorded on spans.
const maxQueryLength = 2048

func truncateQuery(query string) string {
	if len(query) <= maxQueryLength {
		return query
	}
	return query[:maxQueryLength] + "..."
}
