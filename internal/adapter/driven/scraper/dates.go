package scraper

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// zoneNoise matches timezone abbreviations the remote page appends to dates.
// They are dropped because the page always renders in its own regional zone.
var zoneNoise = regexp.MustCompile(`(?i)(WIB|UTC\+?7)`)

// meridiem matches am/pm in any letter case. Go's PM layout token only accepts
// "PM" or "pm", so the text is uppercased before the layouts see it.
var meridiem = regexp.MustCompile(`(?i)\b(am|pm)\b`)

// dateLayouts are tried in order against the cleaned text; the first match wins.
var dateLayouts = []string{
	"January 2, 2006 15:04",
	"January 2, 2006 3:04 PM",
	"January 2, 2006",
	"02 Jan 2006 15:04",
	"02 Jan 2006 3:04 PM",
	"02 Jan 2006",
	"2 January 2006 15:04",
	"2 January 2006 3:04 PM",
	"2 Jan 2006 15:04",
	"2 Jan 2006 3:04 PM",
	"2 January 2006",
	"2 Jan 2006",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseToCanonical parses a human-readable date rendered by the remote page.
// The wall-clock value is read in source and the result is returned in display.
// It returns false when the text is empty after cleaning or nothing parses it.
func ParseToCanonical(raw string, source, display *time.Location) (time.Time, bool) {
	cleaned := collapseSpace(zoneNoise.ReplaceAllString(collapseSpace(raw), ""))
	cleaned = meridiem.ReplaceAllStringFunc(cleaned, strings.ToUpper)
	if cleaned == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, cleaned, source); err == nil {
			return t.In(display), true
		}
	}

	// Last resort: a general-purpose parser, still anchored to the source zone.
	if t, err := dateparse.ParseIn(cleaned, source); err == nil {
		return t.In(display), true
	}

	return time.Time{}, false
}
