package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	dbcommon "cafe-api/internal/infrastructure/database/common"
)

// PostgreSQL SQLSTATE codes
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS coffees (
  id BIGSERIAL PRIMARY KEY,
  name VARCHAR(255) NOT NULL,
  price DOUBLE PRECISION NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS coffee_sold (
  id BIGSERIAL PRIMARY KEY,
  coffee_id BIGINT NOT NULL UNIQUE REFERENCES coffees (id),
  sold_cnt BIGINT NOT NULL DEFAULT 0
)`,
}

// Options describes how to reach the PostgreSQL server
type Options struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	Pool     dbcommon.PoolConfig
}

// DSN renders the lib/pq connection string
func (o Options) DSN() string {
	sslMode := o.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		o.Host, o.Port, o.User, o.Password, o.Database, sslMode)
}

// Connect opens the pool and creates the tables when missing
func Connect(ctx context.Context, opts Options) (*sql.DB, error) {
	db, err := dbcommon.Open(ctx, "postgres", opts.DSN(), opts.Pool)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates the coffees and coffee_sold tables
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return dbcommon.WrapDBError(err, "migrate schema")
		}
	}
	return nil
}

func pqErrorCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pqErrorCode(err) == codeUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pqErrorCode(err) == codeForeignKeyViolation
}
