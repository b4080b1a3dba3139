package epss

// Score bands used to derive CVSS v3 Exploit Code Maturity from EPSS.
const (
	ThresholdUnproven   = 0.05
	ThresholdPoC        = 0.20
	ThresholdFunctional = 0.50
)

var maturityLabels = map[string]string{
	"X": "Not Defined",
	"U": "Unproven",
	"P": "Proof-of-Concept",
	"F": "Functional",
	"H": "High",
}

// EPSSToExploitMaturity maps an EPSS score (0-1) to CVSS v3 Exploit Code Maturity (U, P, F, H).
func EPSSToExploitMaturity(score float64) string {
	switch {
	case score < 0:
		return "X"
	case score < ThresholdUnproven:
		return "U"
	case score < ThresholdPoC:
		return "P"
	case score < ThresholdFunctional:
		return "F"
	default:
		return "H"
	}
}

// MaturityLabel returns the long name of an Exploit Code Maturity value.
func MaturityLabel(code string) string {
	if l, ok := maturityLabels[code]; ok {
		return l
	}
	return maturityLabels["X"]
}
