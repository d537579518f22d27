package math

// Vec4 is a 4-component vector, typically a homogeneous position.
type Vec4 [4]float32

// Point returns the homogeneous point (v, 1).
func Point(v Vec3) Vec4 {
	return Vec4{v.X, v.Y, v.Z, 1}
}

// XYZ returns the first three components.
func (v Vec4) XYZ() Vec3 {
	return Vec3{v[0], v[1], v[2]}
}

// PerspectiveDivide returns xyz/w. A zero w leaves the components unscaled.
func (v Vec4) PerspectiveDivide() Vec3 {
	if v[3] == 0 || v[3] == 1 {
		return v.XYZ()
	}
	return Vec3{v[0] / v[3], v[1] / v[3], v[2] / v[3]}
}
