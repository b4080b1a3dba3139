package display

import "math"

// The reference curve is a fixed bell shape; the score is marked on it,
// it does not reshape it.
const (
	CurvePoints = 500
	CurveCenter = 0.5
	CurveSpread = 0.1
)

// Point is one sample of the reference curve.
type Point struct {
	X       float64 `json:"x"`
	Density float64 `json:"density"`
}

// Density is the unnormalized Gaussian exp(-(x-0.5)^2 / (2*0.1^2)).
func Density(x float64) float64 {
	d := x - CurveCenter
	return math.Exp(-(d * d) / (2 * CurveSpread * CurveSpread))
}

// Curve samples Density at CurvePoints evenly spaced x values over [0,1].
func Curve() []Point {
	pts := make([]Point, CurvePoints)
	step := 1.0 / float64(CurvePoints-1)
	for i := range pts {
		x := float64(i) * step
		if i == CurvePoints-1 {
			x = 1
		}
		pts[i] = Point{X: x, Density: Density(x)}
	}
	return pts
}
