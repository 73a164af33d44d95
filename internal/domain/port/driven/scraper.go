package driven

import (
	"context"

	"github.com/ericfisherdev/vpsmonitor/internal/domain/model"
)

// Scraper fetches the remote account page with a session cookie and classifies
// the result. Transport, extraction, and date failures are reported through the
// returned outcome, never as an error.
type Scraper interface {
	Scrape(ctx context.Context, cookie string) model.ScrapeOutcome
}
