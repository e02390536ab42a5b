// Command dbupdate brings a database up to the latest version found in a
// directory of db-vNNNN.sql update scripts.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/hsdatabase/schema"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	// Drivers selectable with --driver
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(cfg, os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

type app struct {
	cfg    Config
	logOut io.Writer
	logger *zap.Logger
}

func newRootCmd(cfg Config, logOut io.Writer) *cobra.Command {
	a := &app{cfg: cfg, logOut: logOut}

	rootCmd := &cobra.Command{
		Use:          "dbupdate",
		Short:        "Apply versioned SQL update scripts to a database",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.logger = newLogger(a.cfg.Dev, a.logOut)
			if a.cfg.DSN == "" {
				return fmt.Errorf("no data source name given, set --dsn or DBUPDATE_DSN")
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	a.cfg.bindFlags(rootCmd)

	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Apply every pending update script",
		Args:  cobra.NoArgs,
		RunE:  a.runUpdate,
	}
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version recorded in the database",
		Args:  cobra.NoArgs,
		RunE:  a.runVersion,
	}
	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "List the update scripts which would be applied",
		Args:  cobra.NoArgs,
		RunE:  a.runPlan,
	}
	forceCmd := &cobra.Command{
		Use:   "force <version>",
		Short: "Record a version without running any script",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runForce,
	}

	rootCmd.AddCommand(updateCmd, versionCmd, planCmd, forceCmd)
	return rootCmd
}

// open connects to the configured database and builds a Migrator bound to
// ctx.
func (a *app) open(ctx context.Context) (*sql.DB, *schema.Migrator, error) {
	options, err := a.cfg.migratorOptions()
	if err != nil {
		return nil, nil, err
	}
	options = append(options,
		schema.WithContext(ctx),
		schema.WithLogger(zap.NewStdLog(a.logger)),
	)

	db, err := sql.Open(a.cfg.Driver, a.cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s database: %w", a.cfg.Driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("connect to %s database: %w", a.cfg.Driver, err)
	}

	m := schema.NewMigrator(options...)
	return db, &m, nil
}

func (a *app) source() schema.ScriptSource {
	return schema.DirectorySource(a.cfg.ScriptsDir)
}

func (a *app) runUpdate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Timeout)
	defer cancel()

	db, m, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := m.Update(db, a.source(), a.cfg.ResourcePath)
	if err != nil {
		a.logger.Error("Database update failed", append(errorFields(err), zap.Int("current_version", version))...)
		return err
	}
	a.logger.Info("Database up to date", zap.Int("version", version))
	fmt.Fprintf(cmd.OutOrStdout(), "database at version %d\n", version)
	return nil
}

func (a *app) runVersion(cmd *cobra.Command, args []string) error {
	db, m, err := a.open(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := m.Version(db)
	if err != nil {
		a.logger.Error("Reading database version failed", errorFields(err)...)
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), version)
	return nil
}

func (a *app) runPlan(cmd *cobra.Command, args []string) error {
	db, m, err := a.open(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close()

	plan, err := m.Plan(db, a.source(), a.cfg.ResourcePath)
	if err != nil {
		a.logger.Error("Planning database update failed", errorFields(err)...)
		return err
	}

	out := cmd.OutOrStdout()
	for _, script := range plan {
		fmt.Fprintf(out, "%d\t%s\t%s\t%d\n", script.Version, script.Name, script.MD5(), script.StatementCount)
	}
	a.logger.Info("Pending update scripts", zap.Int("count", len(plan)))
	return nil
}

func (a *app) runForce(cmd *cobra.Command, args []string) error {
	version, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", args[0], err)
	}

	db, m, err := a.open(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := m.ForceVersion(db, version); err != nil {
		a.logger.Error("Forcing database version failed", append(errorFields(err), zap.Int("version", version))...)
		return err
	}
	a.logger.Warn("Database version forced", zap.Int("version", version))
	return nil
}
