package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xin0nix/road-n-roll/internal/config"
)

// Store is what callers program against; the pgx-backed Database is the
// production implementation, tests use a fake.
type Store interface {
	Insert(ctx context.Context, table string, fields RowFields) error
	Rows(ctx context.Context, q Query) ([]RowFields, error)
	Exec(ctx context.Context, q Query) (int64, error)
}

var _ Store = (*Database)(nil)

// Database talks to Postgres through a pgx connection pool.
type Database struct {
	pool    *pgxpool.Pool
	builder QueryBuilder
	log     *zap.Logger
}

// Connect opens the pool and verifies the connection.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*Database, error) {
	dsn := fmt.Sprintf("user=%s password=%s host=%s port=%d dbname=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping %s@%s:%d/%s: %w", cfg.User, cfg.Host, cfg.Port, cfg.Name, err)
	}

	log.Info("connected to database",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("name", cfg.Name),
	)

	return &Database{pool: pool, log: log}, nil
}

// Close releases the pool.
func (d *Database) Close() {
	d.pool.Close()
}

// Insert writes one row.
func (d *Database) Insert(ctx context.Context, table string, fields RowFields) error {
	q := d.builder.Insert(table, fields)
	_, err := d.Exec(ctx, q)
	return err
}

// Rows runs a query and returns every row as a column map.
func (d *Database) Rows(ctx context.Context, q Query) ([]RowFields, error) {
	d.logQuery(q)

	rows, err := d.pool.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	descriptions := rows.FieldDescriptions()
	var result []RowFields

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		row := make(RowFields, len(values))
		for i, value := range values {
			field, err := convertValue(value)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", descriptions[i].Name, err)
			}
			row[descriptions[i].Name] = field
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

// Exec runs a statement and returns the number of affected rows.
func (d *Database) Exec(ctx context.Context, q Query) (int64, error) {
	d.logQuery(q)

	tag, err := d.pool.Exec(ctx, q.SQL, q.Args...)
	if err != nil {
		return 0, fmt.Errorf("exec: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (d *Database) logQuery(q Query) {
	if ce := d.log.Check(zap.DebugLevel, "running query"); ce != nil {
		args := make([]string, 0, len(q.Args))
		for _, a := range q.Args {
			args = append(args, Stringify(a))
		}
		ce.Write(zap.String("sql", q.SQL), zap.Strings("args", args))
	}
}

// convertValue maps pgx scan values onto the Field set.
func convertValue(value any) (Field, error) {
	switch v := value.(type) {
	case nil, string, uuid.UUID, int16, int32, int64, float32:
		return v, nil
	case [16]byte:
		return uuid.UUID(v), nil
	case float64:
		return float32(v), nil
	}
	return nil, fmt.Errorf("unsupported value type %T", value)
}
