// SPDX-License-Identifier: EPL-2.0

package utils

// CubicInterpolate evaluates the Catmull-Rom spline through y0..y3 at x,
// the fractional position between y1 (x=0) and y2 (x=1).
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	slope1 := (y2 - y0) * 0.5
	slope2 := (y3 - y1) * 0.5
	delta := y2 - y1

	c := slope1
	b := 3*delta - 2*slope1 - slope2
	a := slope1 + slope2 - 2*delta

	return ((a*x+b)*x+c)*x + y1
}

// LinearInterpolate blends y1 and y2 at fractional position x.
func LinearInterpolate(y1, y2, x float32) float32 {
	return y1 + (y2-y1)*x
}
