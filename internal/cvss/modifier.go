package cvss

import (
	"strings"
)

// MetricsOptions defines the values to apply to the vector. Empty fields are
// left untouched.
type MetricsOptions struct {
	E, RL, RC                      string
	CR, IR, AR                     string
	MAV, MAC, MPR, MUI, MC, MI, MA string
	// Smart skips modified metrics that would be more severe than the base.
	Smart bool
}

// v3Order is the metric order of a CVSS v3 vector string.
var v3Order = []string{
	"AV", "AC", "PR", "UI", "S", "C", "I", "A",
	"E", "RL", "RC",
	"CR", "IR", "AR", "MAV", "MAC", "MPR", "MUI", "MS", "MC", "MI", "MA",
}

// severityRank orders the values of each base metric from least to most
// severe. Modified metrics are ranked against the base metric they replace.
var severityRank = map[string]string{
	"AV": "PLAN",
	"AC": "HL",
	"PR": "HLN",
	"UI": "RN",
	"C":  "NLH",
	"I":  "NLH",
	"A":  "NLH",
}

// v3Vector is a parsed CVSS v3 vector keeping its version prefix.
type v3Vector struct {
	prefix  string
	metrics map[string]string
}

func parseV3(vector string) v3Vector {
	v := v3Vector{metrics: make(map[string]string)}
	parts := strings.Split(vector, "/")
	if len(parts) > 0 && strings.HasPrefix(parts[0], "CVSS:") {
		v.prefix, parts = parts[0], parts[1:]
	}
	for _, part := range parts {
		if k, val, ok := strings.Cut(part, ":"); ok {
			v.metrics[k] = val
		}
	}
	return v
}

// String renders the vector in canonical metric order.
func (v v3Vector) String() string {
	var sb strings.Builder
	sb.WriteString(v.prefix)
	for _, k := range v3Order {
		if val, ok := v.metrics[k]; ok {
			sb.WriteString("/" + k + ":" + val)
		}
	}
	return sb.String()
}

// exceedsBase reports whether setting the modified metric key to val would
// describe a more severe vulnerability than the base metric allows.
func (v v3Vector) exceedsBase(key, val string) bool {
	baseKey, ok := strings.CutPrefix(key, "M")
	if !ok {
		return false
	}
	rank, ok := severityRank[baseKey]
	if !ok {
		return false
	}
	baseVal, ok := v.metrics[baseKey]
	if !ok {
		return false
	}
	b, m := strings.Index(rank, baseVal), strings.Index(rank, val)
	return b >= 0 && m >= 0 && m > b
}

func (o MetricsOptions) pairs() [][2]string {
	return [][2]string{
		{"E", o.E}, {"RL", o.RL}, {"RC", o.RC},
		{"CR", o.CR}, {"IR", o.IR}, {"AR", o.AR},
		{"MAV", o.MAV}, {"MAC", o.MAC}, {"MPR", o.MPR}, {"MUI", o.MUI},
		{"MC", o.MC}, {"MI", o.MI}, {"MA", o.MA},
	}
}

// ApplyMetrics sets the given options on a v3 vector, replacing metrics the
// vector already carries. Other versions are returned unchanged.
// See https://www.first.org/cvss/v3-1/specification-document#Environmental-Metrics
func ApplyMetrics(baseVector string, opts MetricsOptions) (string, error) {
	version, err := GetCVSSVersion(baseVector)
	if err != nil {
		return "", err
	}
	if version != Version30 && version != Version31 {
		return baseVector, nil
	}

	v := parseV3(baseVector)
	for _, p := range opts.pairs() {
		key, val := p[0], strings.ToUpper(p[1])
		if val == "" {
			continue
		}
		// X (Not Defined) never raises severity, so smart mode lets it through.
		if opts.Smart && val != "X" && v.exceedsBase(key, val) {
			continue
		}
		v.metrics[key] = val
	}
	return v.String(), nil
}
