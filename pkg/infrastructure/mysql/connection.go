package mysql

import (
	"context"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const errDuplicateEntry = 1062

type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects to MySQL. The DSN is amended so that timestamps are scanned into time.Time
// and migration files with several statements can run.
func Open(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	mysqlCfg, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "parse mysql dsn")
	}
	mysqlCfg.ParseTime = true
	mysqlCfg.MultiStatements = true
	mysqlCfg.Loc = time.UTC

	db, err := sqlx.ConnectContext(ctx, "mysql", mysqlCfg.FormatDSN())
	if err != nil {
		return nil, errors.Wrap(err, "connect to mysql")
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return db, nil
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == errDuplicateEntry
}
