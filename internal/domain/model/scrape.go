package model

import "time"

// ScrapeOutcome is the result of one scrape attempt. It is never persisted directly;
// the refresh service turns it into a Snapshot or a failure mark.
//
// A Normal outcome carries all four fields. An Invalid outcome carries a Diagnostic
// and may still carry IP and Location when only date parsing failed.
type ScrapeOutcome struct {
	ValidUntil   *time.Time
	IP           string
	Location     string
	CreationDate *time.Time
	Status       CookieStatus
	ObservedAt   time.Time
	Diagnostic   string
}

// Healthy reports whether the outcome is a complete, successful scrape.
func (o ScrapeOutcome) Healthy() bool {
	return o.Status == CookieStatusNormal
}

// Snapshot converts the outcome into the data written to the store on success.
func (o ScrapeOutcome) Snapshot() Snapshot {
	return Snapshot{
		ValidUntil:   o.ValidUntil,
		IP:           o.IP,
		Location:     o.Location,
		CreationDate: o.CreationDate,
		ObservedAt:   o.ObservedAt,
	}
}
