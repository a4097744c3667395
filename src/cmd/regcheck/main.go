// Package main provides the regcheck CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"regcheck/src/config"
	"regcheck/src/logger"
	"regcheck/src/store"

	_ "regcheck/src/buildkite"
	_ "regcheck/src/githubactions"
)

// errBuildShouldFail is returned after a verdict that fails the build has been
// printed. main turns it into exit status 2.
var errBuildShouldFail = errors.New("regressions detected")

// quietAnnotation marks commands whose stdout belongs to something else, so
// logging is switched off.
const quietAnnotation = "quiet"

// flagBindings maps config keys to the flag that overrides them. Flags are
// bound only on commands that define them.
var flagBindings = map[string]string{
	"log.level":                 "log-level",
	"log.format":                "log-format",
	"store.driver":              "store-driver",
	"store.path":                "store-path",
	"store.dsn":                 "store-dsn",
	"broker.brokers":            "brokers",
	"history.depth":             "depth",
	"checks.pmd":                "pmd",
	"checks.findbugs":           "findbugs",
	"checks.checkstyle":         "checkstyle",
	"checks.coverage":           "coverage",
	"checks.coverage_threshold": "coverage-threshold",
	"checks.coverage_tolerance": "coverage-tolerance",
}

// app holds what PersistentPreRunE prepares for the subcommands.
type app struct {
	cfgFile string
	cfg     *config.Config
	log     logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "regcheck",
		Short: "regcheck - fail builds whose quality regressed",
		Long: `regcheck compares a build's static-analysis warning counts and code
coverage with the latest successful earlier build of the same project, and
fails the build when it got worse.

Builds come either from a CI provider URL (Buildkite, GitHub Actions) or from
report files recorded with 'regcheck record'. History is kept in a local
SQLite file by default, or in Postgres.

Agents run in this process unless broker.brokers (REDPANDA_BROKERS) is set, in
which case requests go through Redpanda to 'regcheck agent' workers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default .regcheck.yaml in the working or home directory)")
	pf.String("log-level", "info", "log level: debug, info, error")
	pf.String("log-format", "console", "log format: console or json")
	pf.String("store-driver", config.DriverSQLite, "history store: memory, sqlite or postgres")
	pf.String("store-path", "regcheck.db", "sqlite database file")
	pf.String("store-dsn", "", "postgres connection string")
	pf.String("brokers", "", "comma-separated Redpanda seed brokers")
	pf.Int("depth", 50, "earlier builds fetched from a CI provider, and stored builds read per query")

	root.AddCommand(
		newEvaluateCmd(a),
		newRecordCmd(a),
		newHistoryCmd(a),
		newProjectsCmd(a),
		newViewCmd(a),
		newAgentCmd(a),
		newMCPCmd(a),
	)
	return root
}

// init loads the configuration with this command's flags layered on top.
func (a *app) init(cmd *cobra.Command) error {
	v, err := config.NewViper(a.cfgFile)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd); err != nil {
		return err
	}

	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	a.cfg = cfg

	if cmd.Annotations[quietAnnotation] == "true" {
		a.log = logger.NewSilentLogger()
	} else {
		a.log = logger.New(logger.Options{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
			Output: cmd.ErrOrStderr(),
		})
	}
	return nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for key, name := range flagBindings {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return nil
}

// addCheckFlags registers the per-run check selection flags.
func addCheckFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Bool("pmd", true, "compare PMD warning counts")
	f.Bool("findbugs", true, "compare FindBugs/SpotBugs warning counts")
	f.Bool("checkstyle", true, "compare Checkstyle warning counts")
	f.Bool("coverage", true, "compare line and branch coverage")
	f.Float64("coverage-threshold", 85, "coverage above this percentage never fails the build")
	f.Float64("coverage-tolerance", 0, "coverage drops up to this many points count as unchanged")
}

// openDurableStore opens the store for commands that read what earlier
// commands saved, which the memory driver cannot serve.
func (a *app) openDurableStore(ctx context.Context) (store.Store, error) {
	if a.cfg.Store.Driver == config.DriverMemory {
		return nil, fmt.Errorf("store.driver %q keeps no builds between commands; use %q or %q",
			config.DriverMemory, config.DriverSQLite, config.DriverPostgres)
	}
	return a.openStore(ctx)
}

func (a *app) openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, a.cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", a.cfg.Store.Driver, err)
	}
	return st, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	switch {
	case err == nil:
	case errors.Is(err, errBuildShouldFail):
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
