package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/trezcool/goose"

	"github.com/trezcool/schoolportal/core"
	"github.com/trezcool/schoolportal/fs"
)

var gooseRunFunc = goose.RunFS // mockable

func (cli *commandLine) migrate(ctx context.Context, args []string) error {
	if cli.conf.Storage.Backend != core.BackendPostgres {
		return errors.Errorf("migrations only apply to the %s backend (configured: %s)", core.BackendPostgres, cli.conf.Storage.Backend)
	}
	db, err := cli.openDB(ctx)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	return gooseRunFunc(args[0], db, appfs.FS, "migrations", args[1:]...)
}
