package core

// Lerp linearly blends u (t = 0) and v (t = 1)
func Lerp(t float32, u, v Vec3) Vec3 {
	return u.Scale(1 - t).Add(v.Scale(t))
}

// Quadratic evaluates the quadratic Bezier curve with control points a, b, c
func Quadratic(t float32, a, b, c Vec3) Vec3 {
	s := 1 - t
	return a.Scale(s * s).
		Add(b.Scale(2 * s * t)).
		Add(c.Scale(t * t))
}

// Cubic evaluates the cubic Bezier curve with control points a, b, c, d
func Cubic(t float32, a, b, c, d Vec3) Vec3 {
	s := 1 - t
	return a.Scale(s * s * s).
		Add(b.Scale(3 * s * s * t)).
		Add(c.Scale(3 * s * t * t)).
		Add(d.Scale(t * t * t))
}
