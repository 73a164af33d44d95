package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	scraperadapter "github.com/ericfisherdev/vpsmonitor/internal/adapter/driven/scraper"
	sqliteadapter "github.com/ericfisherdev/vpsmonitor/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/vpsmonitor/internal/application"
	"github.com/ericfisherdev/vpsmonitor/internal/config"
)

// app carries what every subcommand needs once configuration is loaded.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "vpsmonitor",
		Short: "Monitor VPS accounts by scraping their account page with a stored session cookie",
		Long: `vpsmonitor keeps a list of VPS accounts, scrapes each account's page on a
schedule, and records expiry date, IP, location, creation date and cookie health.
Without a subcommand it runs the API server and scheduler.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = cfg.NewLogger(os.Stderr)
			slog.SetDefault(a.logger)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}

	cmd.AddCommand(
		newServeCmd(a),
		newListCmd(a),
		newRefreshCmd(a),
		newScrapeCmd(a),
	)

	return cmd
}

// openStore opens and migrates the database. The caller must close the DB.
func (a *app) openStore(ctx context.Context) (*sqliteadapter.DB, *sqliteadapter.AccountRepo, error) {
	db, err := sqliteadapter.NewDB(ctx, a.cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	if !a.cfg.HasSecretKey() {
		a.logger.Warn("VPSMON_SECRET_KEY not set, cookies are stored in plaintext")
	}

	return db, sqliteadapter.NewAccountRepo(db, a.cfg.SecretKey), nil
}

func (a *app) newScraper() *scraperadapter.Client {
	return scraperadapter.NewClient(scraperadapter.Options{
		TargetURL:        a.cfg.TargetURL,
		SourceZone:       a.cfg.SourceZone,
		DisplayZone:      a.cfg.DisplayZone,
		Timeout:          a.cfg.ScrapeTimeout,
		CloudflareBypass: a.cfg.CloudflareBypass,
	})
}

// withRefreshService opens the store, wires a RefreshService, and runs fn.
func (a *app) withRefreshService(ctx context.Context, fn func(*application.RefreshService) error) error {
	db, store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			a.logger.Error("error closing database", "error", closeErr)
		}
	}()

	svc := application.NewRefreshService(store, a.newScraper(), a.logger)
	return fn(svc)
}
