package cvss

import (
	dbTypes "github.com/aquasecurity/trivy-db/pkg/types"

	"epss-viewer/internal/epss"
)

// Contextual is a vector re-scored with an EPSS-derived Exploit Code Maturity.
type Contextual struct {
	Vector             string           `json:"vector"`
	Version            string           `json:"version"`
	BaseScore          float64          `json:"baseScore"`
	TemporalScore      float64          `json:"temporalScore"`
	TemporalRating     string           `json:"temporalRating"`
	EnvironmentalScore float64          `json:"environmentalScore"`
	Severity           dbTypes.Severity `json:"-"`
	SeverityName       string           `json:"severity"`
}

// Contextualize applies opts to baseVector, setting E from epssScore unless
// opts.E is already set, and scores the result.
func Contextualize(baseVector string, epssScore float64, opts MetricsOptions) (Contextual, error) {
	if opts.E == "" {
		opts.E = epss.EPSSToExploitMaturity(epssScore)
	}
	vector, err := ApplyMetrics(baseVector, opts)
	if err != nil {
		return Contextual{}, err
	}
	version, err := GetCVSSVersion(vector)
	if err != nil {
		return Contextual{}, err
	}
	base, temporal, env, err := CalculateScores(vector)
	if err != nil {
		return Contextual{}, err
	}
	sev := Severity(env)
	return Contextual{
		Vector:             vector,
		Version:            version,
		BaseScore:          base,
		TemporalScore:      temporal,
		TemporalRating:     CalculateSeverityRating(temporal),
		EnvironmentalScore: env,
		Severity:           sev,
		SeverityName:       sev.String(),
	}, nil
}
