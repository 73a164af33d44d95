// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/vpsmonitor/internal/domain/model"
	"github.com/ericfisherdev/vpsmonitor/internal/domain/port/driven"
)

// RefreshService turns scrape outcomes into store mutations. Refreshes are
// serialized: a batch and a single-account refresh never run at the same time,
// and a batch visits accounts one after another.
type RefreshService struct {
	store   driven.AccountStore
	scraper driven.Scraper
	logger  *slog.Logger
	mu      sync.Mutex
}

// NewRefreshService creates a new RefreshService. A nil logger uses slog.Default().
func NewRefreshService(store driven.AccountStore, scraper driven.Scraper, logger *slog.Logger) *RefreshService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshService{
		store:   store,
		scraper: scraper,
		logger:  logger,
	}
}

// RefreshOne scrapes the account's page and records the outcome, returning the
// stored record afterwards. An Invalid outcome is not an error; only store
// failures and a missing account (driven.ErrAccountNotFound) are.
func (s *RefreshService) RefreshOne(ctx context.Context, id int64) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.refreshOne(ctx, id)
}

// RefreshAll refreshes every account in store order. A failure for one account
// is logged and that account is left out of the result, so the result may be
// shorter than the account list. The returned error is non-nil only when the
// account list cannot be loaded (the result is then nil) or ctx is canceled
// mid-batch (the accounts refreshed so far are returned with ctx.Err()).
func (s *RefreshService) RefreshAll(ctx context.Context) ([]model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	refreshed := make([]model.Account, 0, len(accounts))
	for _, acct := range accounts {
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}

		updated, err := s.refreshOne(ctx, acct.ID)
		if err != nil {
			s.logger.Error("refresh failed", "account_id", acct.ID, "name", acct.Name, "error", err)
			continue
		}
		refreshed = append(refreshed, *updated)
	}

	s.logger.Info("refresh cycle complete",
		"accounts", len(accounts),
		"refreshed", len(refreshed),
	)
	return refreshed, nil
}

func (s *RefreshService) refreshOne(ctx context.Context, id int64) (*model.Account, error) {
	acct, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load account %d: %w", id, err)
	}
	if acct == nil {
		return nil, fmt.Errorf("account %d: %w", id, driven.ErrAccountNotFound)
	}

	outcome := s.scraper.Scrape(ctx, acct.Cookie)

	if outcome.Healthy() {
		if err := s.store.ApplyScrapeSuccess(ctx, id, outcome.Snapshot()); err != nil {
			return nil, fmt.Errorf("record scrape for account %d: %w", id, err)
		}
	} else {
		s.logger.Warn("scrape unhealthy",
			"account_id", id,
			"name", acct.Name,
			"diagnostic", outcome.Diagnostic,
		)
		if err := s.store.ApplyScrapeFailure(ctx, id, outcome.ObservedAt); err != nil {
			return nil, fmt.Errorf("record scrape failure for account %d: %w", id, err)
		}
	}

	updated, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload account %d: %w", id, err)
	}
	if updated == nil {
		return nil, fmt.Errorf("account %d: %w", id, driven.ErrAccountNotFound)
	}

	s.logger.Debug("account refreshed",
		"account_id", id,
		"cookie_status", updated.CookieStatus,
	)
	return updated, nil
}
