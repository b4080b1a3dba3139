// Package display turns an EPSS lookup result into text and curve data ready
// to be drawn by a terminal, HTTP or GUI front end.
package display

import (
	"fmt"

	"epss-viewer/internal/epss"
)

// Caller-facing messages for results that cannot be displayed.
const (
	MsgNoData       = "No data available or invalid API response."
	MsgFetchPrefix  = "Error fetching data: "
	MsgParseFailure = "Error processing API response."
)

// Kind classifies a display error.
type Kind string

const (
	KindNoData    Kind = "no_data"
	KindTransport Kind = "transport"
	KindMalformed Kind = "malformed"
	KindSelection Kind = "no_selection"
	KindInvalid   Kind = "invalid_query"
)

// Error is returned by Interpret for every non-success result.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Payload is everything a front end needs to show a score.
type Payload struct {
	Score          float64 `json:"score"`
	Percentile     float64 `json:"percentile"`
	ScoreText      string  `json:"scoreText"`
	PercentileText string  `json:"percentileText"`
	Summary        string  `json:"summary"`
	// Marker is the x position of the vertical score line on Curve.
	Marker   float64 `json:"marker"`
	Maturity string  `json:"maturity"`
	Date     string  `json:"date,omitempty"`
	Curve    []Point `json:"curve"`
}

// Interpret builds a Payload from a Success, or an *Error for every other
// result.
func Interpret(r epss.Result) (Payload, error) {
	switch v := r.(type) {
	case epss.Success:
		return fromSuccess(v), nil
	case epss.NoData:
		return Payload{}, &Error{Kind: KindNoData, Message: MsgNoData}
	case epss.TransportError:
		msg := v.Message
		if msg == "" {
			msg = "request failed"
		}
		return Payload{}, &Error{Kind: KindTransport, Message: MsgFetchPrefix + msg}
	case epss.InvalidQuery:
		msg := v.Message
		if msg == "" {
			msg = "Invalid query."
		}
		return Payload{}, &Error{Kind: KindInvalid, Message: msg}
	default:
		return Payload{}, &Error{Kind: KindMalformed, Message: MsgParseFailure}
	}
}

func fromSuccess(s epss.Success) Payload {
	scoreText := fmt.Sprintf("%.4f", s.Score)
	percentileText := fmt.Sprintf("%.2f", s.Percentile*100)
	code := epss.EPSSToExploitMaturity(s.Score)
	return Payload{
		Score:          s.Score,
		Percentile:     s.Percentile,
		ScoreText:      scoreText,
		PercentileText: percentileText,
		Summary:        fmt.Sprintf("EPSS Score: %s    Percentile: %s", scoreText, percentileText),
		Marker:         s.Score,
		Maturity:       fmt.Sprintf("%s (%s)", epss.MaturityLabel(code), code),
		Date:           s.Date,
		Curve:          Curve(),
	}
}
