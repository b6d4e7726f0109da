package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxIface interface untuk abstraction database
type PgxIface interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresConfig holds the connection settings for the postgres backend.
type PostgresConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
	Table    string
}

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresStore keeps every record as one row (pk, sk, attrs jsonb).
type PostgresStore struct {
	db    PgxIface
	table string
}

// InitPostgres membuat koneksi database pool dan memastikan tabel ada
func InitPostgres(ctx context.Context, config PostgresConfig) (*PostgresStore, error) {
	connStr := fmt.Sprintf("user=%s password=%s dbname=%s sslmode=disable host=%s port=%s",
		config.User, config.Password, config.Name, config.Host, config.Port)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	poolConfig.MaxConns = config.MaxConns
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute
	poolConfig.ConnConfig.ConnectTimeout = 5 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database failed: %w", err)
	}

	store, err := NewPostgresStore(pool, config.Table)
	if err != nil {
		pool.Close()
		return nil, err
	}

	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

// NewPostgresStore wraps an existing pool (or any PgxIface).
func NewPostgresStore(db PgxIface, table string) (*PostgresStore, error) {
	if table == "" {
		table = "hotel_booking"
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &PostgresStore{db: db, table: table}, nil
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			pk    TEXT  NOT NULL,
			sk    TEXT  NOT NULL,
			attrs JSONB NOT NULL DEFAULT '{}'::jsonb,
			PRIMARY KEY (pk, sk)
		)
	`, s.table)

	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key Key) (*Item, error) {
	query := fmt.Sprintf(`SELECT attrs FROM %s WHERE pk = $1 AND sk = $2`, s.table)

	var attrs map[string]any
	err := s.db.QueryRow(ctx, query, key.PK, key.SK).Scan(&attrs)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}

	return &Item{PK: key.PK, SK: key.SK, Attrs: attrs}, nil
}

func (s *PostgresStore) Put(ctx context.Context, item Item) error {
	if _, err := s.db.Exec(ctx, s.upsertSQL(), item.PK, item.SK, item.Attrs); err != nil {
		return fmt.Errorf("put %s: %w", item.Key(), err)
	}
	return nil
}

func (s *PostgresStore) Query(ctx context.Context, pk string) ([]Item, error) {
	query := fmt.Sprintf(`SELECT sk, attrs FROM %s WHERE pk = $1 ORDER BY sk`, s.table)

	rows, err := s.db.Query(ctx, query, pk)
	if err != nil {
		return nil, fmt.Errorf("query partition %s: %w", pk, err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item := Item{PK: pk}
		if err := rows.Scan(&item.SK, &item.Attrs); err != nil {
			return nil, fmt.Errorf("scan partition %s row: %w", pk, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate partition %s: %w", pk, err)
	}

	return items, nil
}

func (s *PostgresStore) Increment(ctx context.Context, key Key, field string, delta int64) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET attrs = jsonb_set(attrs, ARRAY[$3::text], to_jsonb(COALESCE((attrs->>$3)::bigint, 0) + $4::bigint))
		WHERE pk = $1 AND sk = $2
		RETURNING (attrs->>$3)::bigint
	`, s.table)

	var next int64
	err := s.db.QueryRow(ctx, query, key.PK, key.SK, field, delta).Scan(&next)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("increment %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("increment %s.%s: %w", key, field, err)
	}
	return next, nil
}

func (s *PostgresStore) Delete(ctx context.Context, key Key) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE pk = $1 AND sk = $2`, s.table)

	if _, err := s.db.Exec(ctx, query, key.PK, key.SK); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Transact runs every op in one transaction. Conditional ops are single
// guarded statements, the row lock they take serializes concurrent writers.
func (s *PostgresStore) Transact(ctx context.Context, ops []Op) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	for i, op := range ops {
		var tag pgconn.CommandTag
		switch op.Kind {
		case OpPut:
			if op.MustExist || op.Expect != nil {
				query, args := s.guarded(`UPDATE %s SET attrs = $3 WHERE pk = $1 AND sk = $2`, op, op.Item.Attrs)
				tag, err = tx.Exec(ctx, query, args...)
			} else {
				tag, err = tx.Exec(ctx, s.upsertSQL(), op.Item.PK, op.Item.SK, op.Item.Attrs)
			}
		case OpDelete:
			query, args := s.guarded(`DELETE FROM %s WHERE pk = $1 AND sk = $2`, op)
			tag, err = tx.Exec(ctx, query, args...)
		case OpIncrement:
			tag, err = s.execIncrement(ctx, tx, op)
		default:
			err = fmt.Errorf("unknown op kind %q", op.Kind)
		}
		if err != nil {
			return fmt.Errorf("op %d on %s: %w", i, op.Key, err)
		}
		if tag.RowsAffected() == 0 && (op.MustExist || op.Expect != nil || op.Kind == OpIncrement) {
			err = s.explain(ctx, tx, i, op)
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// guarded formats a statement over (pk, sk, extra...) and appends the
// expected-value clause when the op carries one.
func (s *PostgresStore) guarded(format string, op Op, extra ...any) (string, []any) {
	query := fmt.Sprintf(format, s.table)
	args := append([]any{op.Key.PK, op.Key.SK}, extra...)
	if op.Expect != nil {
		query += fmt.Sprintf(" AND COALESCE((attrs->>$%d)::bigint, 0) = $%d::bigint", len(args)+1, len(args)+2)
		args = append(args, op.Expect.Field, op.Expect.Value)
	}
	return query, args
}

// explain reads the row an op could not touch and reports which condition failed.
func (s *PostgresStore) explain(ctx context.Context, tx pgx.Tx, index int, op Op) error {
	query := fmt.Sprintf(`SELECT attrs FROM %s WHERE pk = $1 AND sk = $2`, s.table)

	var attrs map[string]any
	exists := true
	err := tx.QueryRow(ctx, query, op.Key.PK, op.Key.SK).Scan(&attrs)
	if errors.Is(err, pgx.ErrNoRows) {
		exists = false
	} else if err != nil {
		return fmt.Errorf("op %d on %s: read current row: %w", index, op.Key, err)
	}

	if condErr := checkOp(index, op, attrs, exists); condErr != nil {
		return condErr
	}
	return &ConditionError{Index: index, Key: op.Key, Kind: ConditionMissing, Reason: "record does not exist"}
}

func (s *PostgresStore) execIncrement(ctx context.Context, tx pgx.Tx, op Op) (pgconn.CommandTag, error) {
	minValue := int64(-1 << 62)
	maxField := ""
	if op.Bounds != nil {
		minValue = op.Bounds.Min
		maxField = op.Bounds.MaxField
	}

	next := `jsonb_set(attrs, ARRAY[$3::text], to_jsonb(COALESCE((attrs->>$3)::bigint, 0) + $4::bigint))`
	args := []any{op.Field, op.Delta, minValue, maxField}
	if op.Bump != "" {
		next = fmt.Sprintf(`jsonb_set(%s, ARRAY[$7::text], to_jsonb(COALESCE((attrs->>$7)::bigint, 0) + 1))`, next)
		args = append(args, op.Bump)
	}

	format := `
		UPDATE %s
		SET attrs = ` + next + `
		WHERE pk = $1 AND sk = $2
		  AND COALESCE((attrs->>$3)::bigint, 0) + $4::bigint >= $5::bigint
		  AND ($6::text = '' OR COALESCE((attrs->>$3)::bigint, 0) + $4::bigint <= COALESCE((attrs->>$6)::bigint, 0))`

	query, all := s.guarded(format, op, args...)
	return tx.Exec(ctx, query, all...)
}

func (s *PostgresStore) upsertSQL() string {
	return fmt.Sprintf(`
		INSERT INTO %s (pk, sk, attrs) VALUES ($1, $2, $3)
		ON CONFLICT (pk, sk) DO UPDATE SET attrs = EXCLUDED.attrs
	`, s.table)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.db.Close()
}
