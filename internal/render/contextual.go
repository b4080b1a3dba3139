package render

import (
	"fmt"
	"io"
	"strings"

	"epss-viewer/internal/cvss"
)

// Contextual prints a vector re-scored with the EPSS-derived exploit maturity.
func (r *Renderer) Contextual(c cvss.Contextual) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", r.paint(colorBold, "Contextual "+c.Version))
	fmt.Fprintf(&b, "Vector:        %s\n", c.Vector)
	fmt.Fprintf(&b, "Base:          %.1f\n", c.BaseScore)
	fmt.Fprintf(&b, "Temporal:      %.1f (%s)\n", c.TemporalScore, c.TemporalRating)
	fmt.Fprintf(&b, "Environmental: %.1f (%s)\n", c.EnvironmentalScore, c.SeverityName)
	_, err := io.WriteString(r.Out, b.String())
	return err
}
