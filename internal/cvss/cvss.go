// Package cvss scores CVSS vectors and re-scores v3 vectors with contextual
// (temporal and environmental) metrics.
package cvss

import (
	"fmt"
	"strings"

	dbTypes "github.com/aquasecurity/trivy-db/pkg/types"
	gocvss20 "github.com/pandatix/go-cvss/20"
	gocvss30 "github.com/pandatix/go-cvss/30"
	gocvss31 "github.com/pandatix/go-cvss/31"
	gocvss40 "github.com/pandatix/go-cvss/40"
)

const (
	Version20 = "CVSS 2.0"
	Version30 = "CVSS 3.0"
	Version31 = "CVSS 3.1"
	Version40 = "CVSS 4.0"
)

// GetCVSSVersion determines the CVSS version of vector and validates it.
func GetCVSSVersion(vector string) (string, error) {
	switch {
	case strings.HasPrefix(vector, "CVSS:4.0"):
		if _, err := gocvss40.ParseVector(vector); err != nil {
			return "", fmt.Errorf("invalid CVSS 4.0 vector: %w", err)
		}
		return Version40, nil
	case strings.HasPrefix(vector, "CVSS:3.1"):
		if _, err := gocvss31.ParseVector(vector); err != nil {
			return "", fmt.Errorf("invalid CVSS 3.1 vector: %w", err)
		}
		return Version31, nil
	case strings.HasPrefix(vector, "CVSS:3.0"):
		if _, err := gocvss30.ParseVector(vector); err != nil {
			return "", fmt.Errorf("invalid CVSS 3.0 vector: %w", err)
		}
		return Version30, nil
	default:
		if _, err := gocvss20.ParseVector(vector); err != nil {
			return "", fmt.Errorf("unknown or invalid vector format: %w", err)
		}
		return Version20, nil
	}
}

// CalculateScores returns the base, temporal and environmental scores of vector.
// CVSS 4.0 has a single score, returned in all three positions.
func CalculateScores(vector string) (float64, float64, float64, error) {
	version, err := GetCVSSVersion(vector)
	if err != nil {
		return 0, 0, 0, err
	}

	switch version {
	case Version40:
		c, _ := gocvss40.ParseVector(vector)
		return c.Score(), c.Score(), c.Score(), nil
	case Version31:
		c, _ := gocvss31.ParseVector(vector)
		return c.BaseScore(), c.TemporalScore(), c.EnvironmentalScore(), nil
	case Version30:
		c, _ := gocvss30.ParseVector(vector)
		return c.BaseScore(), c.TemporalScore(), c.EnvironmentalScore(), nil
	default:
		c, _ := gocvss20.ParseVector(vector)
		return c.BaseScore(), c.TemporalScore(), c.EnvironmentalScore(), nil
	}
}

// CalculateSeverityRating returns the qualitative rating of a CVSS score.
func CalculateSeverityRating(score float64) string {
	switch {
	case score == 0:
		return "NONE"
	case score >= 0.1 && score <= 3.9:
		return "LOW"
	case score >= 4.0 && score <= 6.9:
		return "MEDIUM"
	case score >= 7.0 && score <= 8.9:
		return "HIGH"
	case score >= 9.0 && score <= 10.0:
		return "CRITICAL"
	}
	return "UNKNOWN"
}

// Severity maps a CVSS score onto the Trivy severity scale. NONE has no
// Trivy counterpart and maps to SeverityUnknown.
func Severity(score float64) dbTypes.Severity {
	s, err := dbTypes.NewSeverity(CalculateSeverityRating(score))
	if err != nil {
		return dbTypes.SeverityUnknown
	}
	return s
}
