// Package scraper implements the Scraper port against the VPS account page.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/ericfisherdev/vpsmonitor/internal/domain/model"
	"github.com/ericfisherdev/vpsmonitor/internal/domain/port/driven"
)

// DefaultTargetURL is the account page scraped for every VPS.
const DefaultTargetURL = "https://hax.co.id/vps-info"

// Row labels on the account page. Changing any of these on the remote side makes
// every scrape come back Invalid with DiagnosticMissingData.
const (
	LabelValidUntil   = "Valid until"
	LabelIPv6         = "IPv6"
	LabelLocation     = "Location"
	LabelCreationDate = "VPS Creation Date"
)

// Diagnostics attached to Invalid outcomes.
const (
	DiagnosticMissingData = "required data missing"
	DiagnosticDateFormat  = "unexpected date format"
)

// browserHeaders mimic a top-level Chrome navigation. The remote service blocks
// or serves different content to clients that do not look like a browser.
var browserHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/141.0.0.0 Safari/537.36",
	"Referer":                   "https://hax.co.id/",
	"Sec-Ch-Ua":                 `"Google Chrome";v="141", "Chromium";v="141", "Not=A?Brand";v="99"`,
	"Sec-Ch-Ua-Mobile":          "?0",
	"Sec-Ch-Ua-Platform":        `"Windows"`,
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "same-origin",
	"Sec-Fetch-User":            "?1",
	"Upgrade-Insecure-Requests": "1",
}

// Compile-time interface satisfaction check.
var _ driven.Scraper = (*Client)(nil)

// Options configures a Client. Zero values fall back to DefaultTargetURL and UTC.
type Options struct {
	TargetURL        string
	SourceZone       *time.Location // Zone the remote page renders dates in.
	DisplayZone      *time.Location // Zone outcomes are expressed in.
	Timeout          time.Duration  // 0 leaves the HTTP client without a timeout.
	CloudflareBypass bool
}

// Client scrapes the account page with a single GET per call. It never retries.
type Client struct {
	http      *resty.Client
	targetURL string
	source    *time.Location
	display   *time.Location
	now       func() time.Time
}

// NewClient creates a Client with the browser header set applied to every request.
func NewClient(opts Options) *Client {
	client := resty.New()
	client.SetHeaders(browserHeaders)
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	targetURL := opts.TargetURL
	if targetURL == "" {
		targetURL = DefaultTargetURL
	}

	return &Client{
		http:      client,
		targetURL: targetURL,
		source:    zoneOrUTC(opts.SourceZone),
		display:   zoneOrUTC(opts.DisplayZone),
		now:       time.Now,
	}
}

// Scrape fetches the account page with cookie and extracts the account facts.
// Every failure is reported as an Invalid outcome; ObservedAt is always set.
func (c *Client) Scrape(ctx context.Context, cookie string) model.ScrapeOutcome {
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Cookie", cookie).
		Get(c.targetURL)

	observedAt := c.now().In(c.display)

	if err != nil {
		return invalidOutcome(observedAt, fmt.Sprintf("request failed: %v", err))
	}
	if !res.IsSuccess() {
		return invalidOutcome(observedAt, fmt.Sprintf("request failed with status %d", res.StatusCode()))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return invalidOutcome(observedAt, fmt.Sprintf("parse page: %v", err))
	}

	return c.parsePage(doc, observedAt)
}

// parsePage turns a loaded account page into an outcome. A page without the
// expected rows is what the remote serves for an expired cookie (a 200 login
// page), so missing data is classified Invalid like any other failure.
func (c *Client) parsePage(doc *goquery.Document, observedAt time.Time) model.ScrapeOutcome {
	validUntilText, _ := ExtractValue(doc, LabelValidUntil)
	ip, _ := ExtractValue(doc, LabelIPv6)
	location, _ := ExtractValue(doc, LabelLocation)
	creationText, _ := ExtractValue(doc, LabelCreationDate)

	if validUntilText == "" || ip == "" || location == "" || creationText == "" {
		return invalidOutcome(observedAt, DiagnosticMissingData)
	}

	validUntil, okValid := ParseToCanonical(validUntilText, c.source, c.display)
	creationDate, okCreation := ParseToCanonical(creationText, c.source, c.display)
	if !okValid || !okCreation {
		outcome := invalidOutcome(observedAt, DiagnosticDateFormat)
		outcome.IP = ip
		outcome.Location = location
		return outcome
	}

	return model.ScrapeOutcome{
		ValidUntil:   &validUntil,
		IP:           ip,
		Location:     location,
		CreationDate: &creationDate,
		Status:       model.CookieStatusNormal,
		ObservedAt:   observedAt,
	}
}

func invalidOutcome(observedAt time.Time, diagnostic string) model.ScrapeOutcome {
	return model.ScrapeOutcome{
		Status:     model.CookieStatusInvalid,
		ObservedAt: observedAt,
		Diagnostic: diagnostic,
	}
}

func zoneOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
