package mysql

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"strconv"

	driver "github.com/go-sql-driver/mysql"

	dbcommon "cafe-api/internal/infrastructure/database/common"
)

// MySQL server error numbers
const (
	errDuplicateEntry      = 1062
	errRowIsReferenced     = 1451
	errNoReferencedRow     = 1452
	errRowIsReferencedLong = 1217
	errNoReferencedRowLong = 1216
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS coffees (
  id BIGINT NOT NULL AUTO_INCREMENT,
  name VARCHAR(255) NOT NULL,
  price DOUBLE NOT NULL,
  PRIMARY KEY (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS coffee_sold (
  id BIGINT NOT NULL AUTO_INCREMENT,
  coffee_id BIGINT NOT NULL,
  sold_cnt BIGINT NOT NULL DEFAULT 0,
  PRIMARY KEY (id),
  UNIQUE KEY uq_coffee_sold_coffee_id (coffee_id),
  CONSTRAINT fk_coffee_sold_coffee FOREIGN KEY (coffee_id) REFERENCES coffees (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Options describes how to reach the MySQL server
type Options struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Pool     dbcommon.PoolConfig
}

// DSN renders the driver connection string
func (o Options) DSN() string {
	cfg := driver.NewConfig()
	cfg.User = o.User
	cfg.Passwd = o.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
	cfg.DBName = o.Database
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// Connect opens the pool and creates the tables when missing
func Connect(ctx context.Context, opts Options) (*sql.DB, error) {
	db, err := dbcommon.Open(ctx, "mysql", opts.DSN(), opts.Pool)
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

func mysqlErrorNumber(err error) uint16 {
	var myErr *driver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number
	}
	return 0
}

func isDuplicateEntry(err error) bool {
	return mysqlErrorNumber(err) == errDuplicateEntry
}

func isForeignKeyViolation(err error) bool {
	switch mysqlErrorNumber(err) {
	case errRowIsReferenced, errNoReferencedRow, errRowIsReferencedLong, errNoReferencedRowLong:
		return true
	}
	return false
}
