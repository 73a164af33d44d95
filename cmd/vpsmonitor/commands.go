package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/vpsmonitor/internal/application"
	"github.com/ericfisherdev/vpsmonitor/internal/domain/model"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored accounts without scraping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			accounts, err := store.ListAll(cmd.Context())
			if err != nil {
				return err
			}
			renderAccounts(cmd.OutOrStdout(), accounts, a.cfg.DisplayZone)
			return nil
		},
	}
}

func newRefreshCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh [id]",
		Short: "Scrape one account, or every account when no id is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id int64
			if len(args) == 1 {
				parsed, err := parseAccountID(args[0])
				if err != nil {
					return err
				}
				id = parsed
			}

			return a.withRefreshService(cmd.Context(), func(svc *application.RefreshService) error {
				var accounts []model.Account
				if id != 0 {
					acct, err := svc.RefreshOne(cmd.Context(), id)
					if err != nil {
						return err
					}
					accounts = []model.Account{*acct}
				} else {
					refreshed, err := svc.RefreshAll(cmd.Context())
					if err != nil {
						return err
					}
					accounts = refreshed
				}
				renderAccounts(cmd.OutOrStdout(), accounts, a.cfg.DisplayZone)
				return nil
			})
		},
	}
}

func newScrapeCmd(a *app) *cobra.Command {
	var cookie string

	cmd := &cobra.Command{
		Use:   "scrape --cookie <cookie>",
		Short: "Scrape the account page once with a cookie and print what was extracted",
		Long: `Runs a single scrape without touching the database. Useful to check whether a
cookie is still accepted or whether the remote page layout changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cookie = strings.TrimSpace(cookie)
			if cookie == "" {
				return fmt.Errorf("--cookie must not be empty")
			}
			out := a.newScraper().Scrape(cmd.Context(), cookie)
			renderOutcome(cmd.OutOrStdout(), out, a.cfg.DisplayZone)
			return nil
		},
	}
	cmd.Flags().StringVar(&cookie, "cookie", "", "Session cookie header value, e.g. PHPSESSID=... (required)")
	_ = cmd.MarkFlagRequired("cookie")

	return cmd
}

func parseAccountID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid account id %q", s)
	}
	return id, nil
}
