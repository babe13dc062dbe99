// Package cli implements frotactl, the command-line companion of the
// back-office: mask previews, document validation, entity listings and
// CSV imports through the same core service the web server uses.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/JonMunkholm/frota/internal/config"
	"github.com/JonMunkholm/frota/internal/core"
	"github.com/JonMunkholm/frota/internal/logging"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// ErrInvalid is returned by validate for values that fail the check, so
// the process exits with status 1.
var ErrInvalid = errors.New("invalid value")

// Store is the database access the commands need. *core.Service
// implements it.
type Store interface {
	List(ctx context.Context, key string, opts core.ListOptions) ([]core.Record, error)
	Migrate(ctx context.Context) error
	Import(ctx context.Context, key string, r io.Reader, opts core.ImportOptions) (*core.ImportResult, error)
}

// StoreOpener connects to the database. The returned func releases it.
type StoreOpener func(ctx context.Context) (Store, func(), error)

// options holds the persistent flags shared by every command.
type options struct {
	output   string
	company  string
	logLevel string
	open     StoreOpener
}

// NewRootCmd builds the frotactl command tree. open is called only by
// the commands that need the database.
func NewRootCmd(open StoreOpener) *cobra.Command {
	opts := &options{open: open}

	root := &cobra.Command{
		Use:           "frotactl",
		Short:         "Command-line tools for the fleet back-office",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupWriter(cmd.ErrOrStderr(), opts.logLevel, "text")
		},
	}

	root.PersistentFlags().StringVarP(&opts.output, "output", "o", FormatTable, "Output format (table, json, yaml, csv)")
	root.PersistentFlags().StringVar(&opts.company, "company", os.Getenv("FROTA_COMPANY"), "Company UUID for company-scoped entities (env FROTA_COMPANY)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newMaskCmd(),
		newValidateCmd(),
		newEntitiesCmd(opts),
		newListCmd(opts),
		newMigrateCmd(opts),
		newImportCmd(opts),
	)
	return root
}

// Execute runs frotactl against the configured database and returns the
// process exit code.
func Execute(ctx context.Context) int {
	root := NewRootCmd(OpenDatabase)
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, ErrInvalid) {
			fmt.Fprintln(root.ErrOrStderr(), "Error:", userError(err))
		}
		return 1
	}
	return 0
}

// userError prefers the mapped user message for known failures.
func userError(err error) string {
	if core.IsUserFacing(err) {
		return core.FormatUserError(err)
	}
	return err.Error()
}

// OpenDatabase loads the configuration from the environment and opens a
// connection pool sized by it.
func OpenDatabase(ctx context.Context) (Store, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConns = 2
	poolCfg.MinConns = 0
	poolCfg.MaxConnLifetime = cfg.Database.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	service := core.NewService(pool,
		core.WithImportLimiter(core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime)),
	)
	store := timeoutStore{
		Store:         service,
		timeout:       cfg.Database.QueryTimeout,
		importTimeout: cfg.Import.Timeout,
		maxImportSize: cfg.Import.MaxFileSize,
	}
	return store, pool.Close, nil
}

// timeoutStore bounds every call by the configured query timeout, and
// imports by the import timeout and file size limit.
type timeoutStore struct {
	Store
	timeout       time.Duration
	importTimeout time.Duration
	maxImportSize int64
}

func (s timeoutStore) List(ctx context.Context, key string, opts core.ListOptions) ([]core.Record, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.Store.List(ctx, key, opts)
}

func (s timeoutStore) Migrate(ctx context.Context) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.Store.Migrate(ctx)
}

func (s timeoutStore) Import(ctx context.Context, key string, r io.Reader, opts core.ImportOptions) (*core.ImportResult, error) {
	if s.importTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.importTimeout)
		defer cancel()
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = s.maxImportSize
	}
	return s.Store.Import(ctx, key, r, opts)
}

func (s timeoutStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// withStore opens the store for the duration of fn.
func (o *options) withStore(ctx context.Context, fn func(Store) error) error {
	if o.open == nil {
		return errors.New("no database configured")
	}
	store, release, err := o.open(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn(store)
}
