package main

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ericfisherdev/vpsmonitor/internal/domain/model"
	"github.com/ericfisherdev/vpsmonitor/internal/mask"
)

// dash stands in for absent values in tables.
const dash = "-"

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// renderAccounts prints accounts as a table with the same masking as the API.
func renderAccounts(w io.Writer, accounts []model.Account, display *time.Location) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Name", "Ops", "Cookie", "IP", "Location", "Valid Until", "Created", "Status", "Updated"})

	rows := make([]table.Row, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, table.Row{
			a.ID,
			a.Name,
			a.Ops,
			mask.Cookie(a.Cookie),
			orDash(mask.IP(a.IP)),
			orDash(a.Location),
			formatInstant(a.ValidUntil, display),
			formatInstant(a.CreationDate, display),
			string(a.CookieStatus),
			formatInstant(a.UpdateTime, display),
		})
	}
	t.AppendRows(rows)
	t.AppendFooter(table.Row{"", "", "", "", "", "", "", "", "Total", len(accounts)})
	t.Render()
}

// renderOutcome prints a single scrape attempt as label/value rows.
func renderOutcome(w io.Writer, out model.ScrapeOutcome, display *time.Location) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"Status", string(out.Status)},
		{"Diagnostic", orDash(out.Diagnostic)},
		{"Valid Until", formatInstant(out.ValidUntil, display)},
		{"IP", orDash(mask.IP(out.IP))},
		{"Location", orDash(out.Location)},
		{"Created", formatInstant(out.CreationDate, display)},
		{"Observed At", formatInstant(&out.ObservedAt, display)},
	})
	t.Render()
}

func formatInstant(t *time.Time, display *time.Location) string {
	if t == nil || t.IsZero() {
		return dash
	}
	return t.In(display).Format("2006-01-02 15:04 MST")
}

func orDash(s string) string {
	if s == "" {
		return dash
	}
	return s
}
