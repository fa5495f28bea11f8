package geom

import (
	"fmt"
	"math"
)

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 1e-9

// Point is a 2D point or vector.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) String() string { return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y) }

func (p Point) Add(q Point) Point     { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point     { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }
func (p Point) Dot(q Point) float64   { return p.X*q.X + p.Y*q.Y }
func (p Point) Len() float64          { return math.Hypot(p.X, p.Y) }
func (p Point) Dist(q Point) float64  { return q.Sub(p).Len() }
func (p Point) IsZero() bool          { return p.Len() < Epsilon }
func (p Point) Perp() Point           { return Point{-p.Y, p.X} }
func (p Point) Lerp(q Point, t float64) Point {
	return p.Add(q.Sub(p).Scale(t))
}

// AngleTo returns the angle of the line from p to q, measured with atan2.
// Coincident points yield 0.
func (p Point) AngleTo(q Point) float64 {
	d := q.Sub(p)
	if d.IsZero() {
		return 0
	}
	return math.Atan2(d.Y, d.X)
}

// Unit returns p scaled to length 1. The zero vector is returned unchanged.
func (p Point) Unit() Point {
	l := p.Len()
	if l < Epsilon {
		return Point{}
	}
	return p.Scale(1 / l)
}

// Polar returns a vector of length r pointing at angle theta.
func Polar(r, theta float64) Point {
	return Point{r * math.Cos(theta), r * math.Sin(theta)}
}

// ProjectOntoLine returns the orthogonal projection of p onto the infinite
// line through a and b, and the signed distance of that projection from a
// along a→b. A degenerate line (a == b) projects everything onto a.
func ProjectOntoLine(p, a, b Point) (Point, float64) {
	dir := b.Sub(a)
	l := dir.Len()
	if l < Epsilon {
		return a, 0
	}
	along := p.Sub(a).Dot(dir) / l
	return a.Add(dir.Scale(along / l)), along
}

// RejectFrom returns the component of v perpendicular to dir. If dir is zero,
// v is returned unchanged.
func RejectFrom(v, dir Point) Point {
	u := dir.Unit()
	if u.IsZero() {
		return v
	}
	return v.Sub(u.Scale(v.Dot(u)))
}

// AngleAt returns the interior angle a-pivot-b in radians, in [0, π].
// It returns ok=false when either arm has zero length.
func AngleAt(a, pivot, b Point) (float64, bool) {
	u := a.Sub(pivot)
	v := b.Sub(pivot)
	lu, lv := u.Len(), v.Len()
	if lu < Epsilon || lv < Epsilon {
		return 0, false
	}
	c := u.Dot(v) / (lu * lv)
	return math.Acos(Clamp(c, -1, 1)), true
}

// Chord returns the third side of a triangle with sides a and b enclosing
// angle theta (radians), by the law of cosines.
func Chord(a, b, theta float64) float64 {
	c2 := a*a + b*b - 2*a*b*math.Cos(theta)
	if c2 < 0 {
		return 0
	}
	return math.Sqrt(c2)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }
