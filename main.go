// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ariebrainware/hospital-core/config"
	"github.com/ariebrainware/hospital-core/dbcheck"
	"github.com/ariebrainware/hospital-core/identifier"
	"github.com/ariebrainware/hospital-core/model"
	"github.com/ariebrainware/hospital-core/registry"
	"github.com/ariebrainware/hospital-core/seed"
	"github.com/ariebrainware/hospital-core/util"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// errCheckFailed makes the check command exit non-zero after it has already
// reported the cause.
var errCheckFailed = errors.New("database check failed")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(dbcheck.ExitFailure)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "hospital-core",
		Short:        "Hospital records bootstrap and identifier tooling",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(columnsCmd())
	rootCmd.AddCommand(nextIDCmd())
	return rootCmd
}

// app holds what every command needs once configuration is loaded.
type app struct {
	cfg     *config.Config
	db      *gorm.DB
	log     zerolog.Logger
	gen     *identifier.Generator
	metrics *prometheus.Registry
}

func setup(cmd *cobra.Command, migrate bool) (*app, error) {
	cfg := config.LoadConfig()
	logger := util.SetupLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := config.ConnectDatabase()
	if err != nil {
		return nil, identifier.Unavailable("connect database", err)
	}

	if migrate {
		if err := db.AutoMigrate(model.AllModels()...); err != nil {
			return nil, identifier.Unavailable("migrate", err)
		}
		util.SetAuditLoggerDB(db)
	}

	metrics := prometheus.NewRegistry()
	gen := identifier.NewGenerator(db,
		identifier.WithCounter(newCounter(cfg, logger)),
		identifier.WithLocation(loc),
		identifier.WithMetrics(identifier.NewMetrics(metrics)),
		identifier.WithLogger(logger.With().Str("component", "identifier").Logger()),
	)

	return &app{cfg: cfg, db: db, log: logger, gen: gen, metrics: metrics}, nil
}

func newCounter(cfg *config.Config, logger zerolog.Logger) identifier.Counter {
	if cfg.IdentifierCounter != "redis" {
		return identifier.TableCounter{}
	}
	client, err := config.ConnectRedis()
	if err != nil || client == nil {
		logger.Warn().Err(err).Msg("redis counter unavailable, using table counter")
		return identifier.TableCounter{}
	}
	return identifier.NewRedisCounter(client)
}

// logIssued reports the identifiers issued during the command.
func (a *app) logIssued() {
	families, err := a.metrics.Gather()
	if err != nil {
		a.log.Warn().Err(err).Msg("failed to gather metrics")
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			kind := ""
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "kind" {
					kind = lp.GetValue()
				}
			}
			a.log.Info().Str("metric", mf.GetName()).Str("kind", kind).Float64("value", m.GetCounter().GetValue()).Msg("identifier metrics")
		}
	}
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create reference and demo records that do not exist yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, true)
			if err != nil {
				return err
			}
			password, _ := cmd.Flags().GetString("password")

			runID := uuid.NewString()
			reg := registry.New(a.db, a.gen,
				registry.WithRunID(runID),
				registry.WithPatientCache(util.NewPatientIDCache(a.cfg.PatientCacheSize)),
				registry.WithLogger(a.log.With().Str("component", "registry").Logger()),
			)

			report, err := seed.Run(cmd.Context(), a.db, reg,
				seed.WithPassword(password),
				seed.WithLogger(a.log.With().Str("component", "seed").Logger()),
			)
			if err != nil {
				a.log.Error().Err(err).Str("run_id", runID).Msg("seed failed")
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "seed run %s\n", report.RunID)
			for _, kind := range seed.Kinds {
				fmt.Fprintf(out, "  %-10s created=%d existing=%d\n", kind, report.Created[kind], report.Existing[kind])
			}
			a.logIssued()
			return nil
		},
	}
	cmd.Flags().String("password", seed.DefaultPassword, "password given to seeded users")
	return cmd
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the database is reachable and count patients",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			util.SetupLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())

			db, err := config.ConnectDatabase()
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", identifier.Unavailable("connect database", err))
				return errCheckFailed
			}

			status := dbcheck.Check(cmd.Context(), db)
			if status.ExitCode() != dbcheck.ExitOK {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", status.Err)
				return errCheckFailed
			}
			fmt.Fprintf(cmd.OutOrStdout(), "connected to %s: %d patients (%s)\n", status.Dialect, status.Patients, status.Latency.Round(time.Millisecond))
			return nil
		},
	}
}

func columnsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "columns <table>",
		Short: "List the columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, false)
			if err != nil {
				return err
			}
			cols, err := dbcheck.Columns(a.db, args[0])
			if err != nil {
				return err
			}
			return dbcheck.WriteColumns(cmd.OutOrStdout(), cols)
		},
	}
}

func nextIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next-id <mrn|queue> [YYYY-MM-DD]",
		Short: "Show the identifier the next registration would receive",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scheme, err := identifier.SchemeFor(identifier.Kind(args[0]))
			if err != nil {
				return err
			}

			// read-only: a missing schema is reported, not created
			a, err := setup(cmd, false)
			if err != nil {
				return err
			}
			loc, _ := a.cfg.Location()

			var day string
			if len(args) == 2 {
				day = args[1]
			}
			return printNextID(cmd.Context(), cmd.OutOrStdout(), a.gen, scheme, day, loc)
		},
	}
}

// printNextID writes the identifier the next registration on day (YYYY-MM-DD,
// empty for today) would receive.
func printNextID(ctx context.Context, out io.Writer, gen *identifier.Generator, scheme identifier.Scheme, day string, loc *time.Location) error {
	var date time.Time
	if day != "" {
		var err error
		date, err = time.ParseInLocation("2006-01-02", day, loc)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", day, err)
		}
	}

	id, err := gen.Peek(ctx, scheme, date)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, id)
	return nil
}
