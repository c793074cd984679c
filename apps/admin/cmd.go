package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/schoolportal/core"
	"github.com/trezcool/schoolportal/core/content"
	identitysvc "github.com/trezcool/schoolportal/services/identity"
	"github.com/trezcool/schoolportal/storage"
	"github.com/trezcool/schoolportal/storage/database"
	"github.com/trezcool/schoolportal/storage/kv"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf   *core.Config
	logger core.Logger
	out    io.Writer

	// opened on first use
	openDB func(ctx context.Context) (*sql.DB, error)
	openKV func(ctx context.Context) (*kv.Adapter, error)

	closers []io.Closer
}

func newCommandLine(conf *core.Config, logger core.Logger, out io.Writer) *commandLine {
	cli := &commandLine{conf: conf, logger: logger, out: out}
	cli.openDB = func(ctx context.Context) (*sql.DB, error) {
		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return nil, err
		}
		db, err := database.Open(ctx, conf)
		if err != nil {
			return nil, err
		}
		cli.closers = append(cli.closers, db)
		return db.DB, nil
	}
	cli.openKV = func(ctx context.Context) (*kv.Adapter, error) {
		adapter, err := storage.OpenKV(ctx, conf, logger)
		if err != nil {
			return nil, err
		}
		cli.closers = append(cli.closers, adapter)
		return adapter, nil
	}
	return cli
}

func (cli *commandLine) close() {
	for _, c := range cli.closers {
		if err := c.Close(); err != nil {
			cli.logger.Error("Failed to close", err)
		}
	}
	cli.closers = nil
}

// run executes the command named by args[1:]; args[0] is the program name.
func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	if len(args) > 0 {
		args = args[1:]
	}
	root.SetArgs(args)
	return root.Execute()
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "School portal administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	root.SetOut(cli.out)
	root.AddCommand(cli.migrateCmd(), cli.seedCmd(), cli.hashPasswordCmd(), cli.kvCmd())
	return root
}

func (cli *commandLine) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a goose command (up, down, status, ...) against the postgres database",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Help()
				return errHelp
			}
			return cli.migrate(cmd.Context(), args)
		},
	}
}

func (cli *commandLine) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Replace every collection by the seed data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cli.seed(cmd.Context())
		},
	}
}

func (cli *commandLine) hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Print the bcrypt hash of a password, for AUTH_ADMINPASSWORDHASH",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprint(cli.out, "Enter password:")
			pwd, err := readPasswordFunc(int(syscall.Stdin))
			fmt.Fprintln(cli.out)
			if err != nil {
				return err
			}
			if len(pwd) == 0 {
				_ = cmd.Help()
				return errHelp
			}
			hash, err := identitysvc.HashPassword(string(pwd))
			if err != nil {
				return err
			}
			fmt.Fprintln(cli.out, string(hash))
			return nil
		},
	}
}

func (cli *commandLine) kvCmd() *cobra.Command {
	kvCmd := &cobra.Command{
		Use:   "kv",
		Short: "Inspect the configured key-value storage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	kvCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the stored keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cli.listEntries(cmd.Context())
		},
	})
	return kvCmd
}

func (cli *commandLine) seed(ctx context.Context) error {
	adapter, err := cli.openKV(ctx)
	if err != nil {
		return err
	}
	store, err := content.NewStore(adapter, cli.logger, content.WithSeed(true))
	if err != nil {
		return err
	}
	if err = store.Reset(); err != nil {
		return err
	}

	st := store.Stats()
	fmt.Fprintf(cli.out, "seeded %d news, %d events, %d polls, %d announcements\n",
		st.News, st.Events, st.Polls, st.Announcements)
	return nil
}

func (cli *commandLine) listEntries(ctx context.Context) error {
	adapter, err := cli.openKV(ctx)
	if err != nil {
		return err
	}
	entries, err := adapter.Entries(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tSIZE\tUPDATED")
	for _, e := range entries {
		updated := "-"
		if !e.UpdatedAt.IsZero() {
			updated = e.UpdatedAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", e.Key, e.Size, updated)
	}
	return w.Flush()
}
