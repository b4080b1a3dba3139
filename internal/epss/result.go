package epss

// Result is the outcome of a single score lookup. It is one of Success,
// NoData, TransportError, MalformedResponse or InvalidQuery.
type Result interface {
	isResult()
}

// Success carries the score and percentile of the first returned record.
type Success struct {
	Score      float64
	Percentile float64
	// Date is the score date reported by the API, if any.
	Date string
}

// NoData means the request succeeded but no record matched.
type NoData struct{}

// TransportError covers connection failures, timeouts and non-2xx statuses.
type TransportError struct {
	Message string
}

// MalformedResponse means the record was present but a field was missing or
// not numeric.
type MalformedResponse struct {
	Message string
}

// InvalidQuery means the identifier or date was rejected before any request
// was made.
type InvalidQuery struct {
	Message string
}

func (Success) isResult()           {}
func (NoData) isResult()            {}
func (TransportError) isResult()    {}
func (MalformedResponse) isResult() {}
func (InvalidQuery) isResult()      {}
