package main

import (
	"context"
	"fmt"

	"github.com/3FramesLab/recon-kg-engine/pkg/config"
	"github.com/3FramesLab/recon-kg-engine/pkg/executor"
	"github.com/3FramesLab/recon-kg-engine/pkg/executor/dialect/mysql"
	"github.com/3FramesLab/recon-kg-engine/pkg/executor/dialect/oracle"
	"github.com/3FramesLab/recon-kg-engine/pkg/executor/dialect/postgres"
	"github.com/3FramesLab/recon-kg-engine/pkg/executor/dialect/sqlserver"
	"github.com/3FramesLab/recon-kg-engine/pkg/retry"
)

// openConnection dials db and returns an executor.Connection for its
// declared dialect, retrying transient dial failures (a bounced pool,
// a database still coming up) with retry's jittered backoff before
// giving up. The caller owns the returned Connection and must Close it.
func openConnection(ctx context.Context, db config.DBConfig) (executor.Connection, error) {
	dialFn, err := dialerFor(db.Type)
	if err != nil {
		return nil, err
	}
	return retry.DoWithResult(ctx, retry.DefaultConfig(), func() (executor.Connection, error) {
		return dialFn(ctx, db)
	})
}

type dialFunc func(ctx context.Context, db config.DBConfig) (executor.Connection, error)

func dialerFor(dialect string) (dialFunc, error) {
	switch dialect {
	case config.DialectPostgreSQL:
		return func(ctx context.Context, db config.DBConfig) (executor.Connection, error) {
			dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s", db.Username, db.Password, db.Host, db.Port, db.Database)
			return postgres.New(ctx, dsn)
		}, nil
	case config.DialectMySQL:
		return func(_ context.Context, db config.DBConfig) (executor.Connection, error) {
			dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", db.Username, db.Password, db.Host, db.Port, db.Database)
			return mysql.New(dsn)
		}, nil
	case config.DialectSQLServer:
		return func(_ context.Context, db config.DBConfig) (executor.Connection, error) {
			dsn := fmt.Sprintf("server=%s;port=%d;user id=%s;password=%s;database=%s", db.Host, db.Port, db.Username, db.Password, db.Database)
			return sqlserver.New(dsn)
		}, nil
	case config.DialectOracle:
		return func(_ context.Context, db config.DBConfig) (executor.Connection, error) {
			dsn := fmt.Sprintf(`user="%s" password="%s" connectString="%s:%d/%s"`, db.Username, db.Password, db.Host, db.Port, db.ServiceName)
			return oracle.New(dsn)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported database dialect %q", dialect)
	}
}
