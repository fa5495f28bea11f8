// Package geom provides 2D point arithmetic for the sketch solver.
//
// All functions are pure and operate on the [Point] value type. Angles are in
// radians unless a function name says otherwise.
//
//	a := geom.Pt(0, 0)
//	b := geom.Pt(3, 4)
//	a.Dist(b)       // 5
//	a.AngleTo(b)    // atan2(4, 3)
//	b.Sub(a).Unit() // (0.6, 0.8)
package geom
