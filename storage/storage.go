// Package storage opens the kv backend selected by the configuration.
package storage

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/schoolportal/core"
	"github.com/trezcool/schoolportal/storage/database"
	"github.com/trezcool/schoolportal/storage/kv"
	"github.com/trezcool/schoolportal/storage/kv/dummykv"
	"github.com/trezcool/schoolportal/storage/kv/filekv"
	"github.com/trezcool/schoolportal/storage/kv/rediskv"
	"github.com/trezcool/schoolportal/storage/kv/sqlkv"
)

// OpenBackend opens the backend named by conf.Storage.Backend.
// The postgres backend creates the database if needed and runs the migrations.
func OpenBackend(ctx context.Context, conf *core.Config) (kv.Backend, error) {
	switch conf.Storage.Backend {
	case core.BackendMemory:
		return dummykv.New(), nil

	case core.BackendFile:
		return filekv.Open(conf.Storage.Dir, conf.Storage.Quota)

	case core.BackendSQLite:
		return sqlkv.OpenSQLite(ctx, conf.SQLite.DSN)

	case core.BackendPostgres:
		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return nil, errors.Wrap(err, "creating database")
		}
		db, err := database.Open(ctx, conf)
		if err != nil {
			return nil, err
		}
		if err = database.Migrate(db.DB); err != nil {
			_ = db.Close()
			return nil, err
		}
		return sqlkv.New(db), nil

	case core.BackendRedis:
		return rediskv.Open(ctx, &redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		}, conf.Redis.Prefix)

	default:
		return nil, errors.Errorf("unknown storage backend %q", conf.Storage.Backend)
	}
}

// OpenKV opens the configured backend behind a kv.Adapter logging to logger.
func OpenKV(ctx context.Context, conf *core.Config, logger core.Logger) (*kv.Adapter, error) {
	backend, err := OpenBackend(ctx, conf)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s backend", conf.Storage.Backend)
	}
	adapter, err := kv.NewAdapter(backend, logger, conf.Storage.Timeout)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	return adapter, nil
}
