// Package viewer is the entry point used by front ends: add identifiers to a
// caller-owned list, query one of them, and turn the result into something
// displayable. It holds no UI state.
package viewer

import (
	"time"

	"epss-viewer/internal/cve"
	"epss-viewer/internal/display"
	"epss-viewer/internal/epss"
)

const (
	MsgInvalidCVE  = "Invalid CVE format. Please try again."
	MsgInvalidDate = "Invalid date. Use the YYYY-MM-DD format."
	MsgNoSelection = "Please select a CVE from the list."

	dateLayout = "2006-01-02"
)

// Fetcher looks up the score of one identifier on one date.
type Fetcher interface {
	Fetch(cveID, date string) epss.Result
}

// Viewer wires the validator, the score client and the interpreter together.
type Viewer struct {
	client Fetcher
}

// New returns a Viewer backed by client.
func New(client Fetcher) *Viewer {
	return &Viewer{client: client}
}

// AddIdentifier validates text and appends it to ids.
func (v *Viewer) AddIdentifier(ids []string, text string) ([]string, bool) {
	return cve.Add(ids, text)
}

// QueryScore fetches the score of id on date. Invalid input never reaches
// the network and comes back as epss.InvalidQuery.
func (v *Viewer) QueryScore(id, date string) epss.Result {
	if !cve.IsValid(id) {
		return epss.InvalidQuery{Message: MsgInvalidCVE}
	}
	if !ValidDate(date) {
		return epss.InvalidQuery{Message: MsgInvalidDate}
	}
	return v.client.Fetch(id, date)
}

// BuildDisplay interprets a query result.
func (v *Viewer) BuildDisplay(r epss.Result) (display.Payload, error) {
	return display.Interpret(r)
}

// Calculate queries ids[selected] and interprets the result. A negative or
// out of range selection yields a MsgNoSelection error.
func (v *Viewer) Calculate(ids []string, selected int, date string) (display.Payload, error) {
	if selected < 0 || selected >= len(ids) {
		return display.Payload{}, &display.Error{Kind: display.KindSelection, Message: MsgNoSelection}
	}
	return v.BuildDisplay(v.QueryScore(ids[selected], date))
}

// Today formats now as YYYY-MM-DD in its own location.
func Today(now time.Time) string {
	return now.Format(dateLayout)
}

// ValidDate reports whether date is a calendar date in YYYY-MM-DD form.
func ValidDate(date string) bool {
	t, err := time.Parse(dateLayout, date)
	return err == nil && t.Format(dateLayout) == date
}
