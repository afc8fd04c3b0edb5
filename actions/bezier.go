package actions

import "math"

// Vector2D is a point on screen.
type Vector2D struct {
	X, Y float64
}

// Add returns the vector sum of v and o.
func (v Vector2D) Add(o Vector2D) Vector2D {
	return Vector2D{X: v.X + o.X, Y: v.Y + o.Y}
}

// Mul returns v scaled by s.
func (v Vector2D) Mul(s float64) Vector2D {
	return Vector2D{X: v.X * s, Y: v.Y * s}
}

// Dist returns the Euclidean distance between v and o.
func (v Vector2D) Dist(o Vector2D) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// Pixel truncates v to integer screen coordinates.
func (v Vector2D) Pixel() (int, int) {
	return int(v.X), int(v.Y)
}

// CubicBezier evaluates B(t) = (1-t)³P0 + 3(1-t)²tP1 + 3(1-t)t²P2 + t³P3.
func CubicBezier(p0, p1, p2, p3 Vector2D, t float64) Vector2D {
	omt := 1.0 - t
	omt2 := omt * omt
	omt3 := omt2 * omt
	t2 := t * t
	t3 := t2 * t

	return p0.Mul(omt3).Add(p1.Mul(3 * omt2 * t)).Add(p2.Mul(3 * omt * t2)).Add(p3.Mul(t3))
}

// BezierPath samples the curve at steps+1 evenly spaced values of t,
// so the first point is exactly p0 and the last exactly p3.
func BezierPath(p0, p1, p2, p3 Vector2D, steps int) []Vector2D {
	if steps < 1 {
		return []Vector2D{p3}
	}
	ts := bezierSamples(steps)
	path := make([]Vector2D, len(ts))
	for i, t := range ts {
		path[i] = CubicBezier(p0, p1, p2, p3, t)
	}
	path[0], path[steps] = p0, p3
	return path
}

// bezierSamples returns t = i/steps for i in [0, steps].
func bezierSamples(steps int) []float64 {
	ts := make([]float64, steps+1)
	for i := range ts {
		ts[i] = float64(i) / float64(steps)
	}
	return ts
}
