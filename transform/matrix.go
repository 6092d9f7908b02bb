package transform

import "math"

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// V3 is a convenience function to create a Vec3.
func V3(x, y, z float32) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 { return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z} }

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 { return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z} }

// Mul returns v scaled by s.
func (v Vec3) Mul(s float32) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Neg returns -v.
func (v Vec3) Neg() Vec3 { return Vec3{-v.X, -v.Y, -v.Z} }

// Dot returns the dot product of v and w.
func (v Vec3) Dot(w Vec3) float32 { return v.X*w.X + v.Y*w.Y + v.Z*w.Z }

// Cross returns the cross product of v and w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		X: v.Y*w.Z - v.Z*w.Y,
		Y: v.Z*w.X - v.X*w.Z,
		Z: v.X*w.Y - v.Y*w.X,
	}
}

// Len returns the length of v.
func (v Vec3) Len() float32 {
	return float32(math.Sqrt(float64(v.Dot(v))))
}

// Normalize returns v scaled to unit length. The zero vector is returned
// unchanged.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return v.Mul(1 / l)
}

// Vec4 is a homogeneous 4D vector.
type Vec4 struct {
	X, Y, Z, W float32
}

// V4 is a convenience function to create a Vec4.
func V4(x, y, z, w float32) Vec4 { return Vec4{X: x, Y: y, Z: z, W: w} }

// XYZ drops the w component.
func (v Vec4) XYZ() Vec3 { return Vec3{v.X, v.Y, v.Z} }

// Add returns v + w.
func (v Vec4) Add(w Vec4) Vec4 { return Vec4{v.X + w.X, v.Y + w.Y, v.Z + w.Z, v.W + w.W} }

// Mul returns v scaled by s.
func (v Vec4) Mul(s float32) Vec4 { return Vec4{v.X * s, v.Y * s, v.Z * s, v.W * s} }

// MulVec returns the component-wise product of v and w.
func (v Vec4) MulVec(w Vec4) Vec4 { return Vec4{v.X * w.X, v.Y * w.Y, v.Z * w.Z, v.W * w.W} }

// Dot returns the 4D dot product of v and w.
func (v Vec4) Dot(w Vec4) float32 { return v.X*w.X + v.Y*w.Y + v.Z*w.Z + v.W*w.W }

// Lerp interpolates between v (t=0) and w (t=1).
func (v Vec4) Lerp(w Vec4, t float32) Vec4 {
	return Vec4{
		X: v.X + (w.X-v.X)*t,
		Y: v.Y + (w.Y-v.Y)*t,
		Z: v.Z + (w.Z-v.Z)*t,
		W: v.W + (w.W-v.W)*t,
	}
}

// Array returns the components as an array.
func (v Vec4) Array() [4]float32 { return [4]float32{v.X, v.Y, v.Z, v.W} }

// Mat4 is a column-major 4x4 matrix: element (row, col) is m[col*4+row].
type Mat4 [16]float32

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// At returns element (row, col).
func (m Mat4) At(row, col int) float32 { return m[col*4+row] }

// Mul returns m * o, so o is applied first.
func (m Mat4) Mul(o Mat4) Mat4 {
	var out Mat4
	for col := range 4 {
		for row := range 4 {
			out[col*4+row] = m[row]*o[col*4] +
				m[4+row]*o[col*4+1] +
				m[8+row]*o[col*4+2] +
				m[12+row]*o[col*4+3]
		}
	}
	return out
}

// Transform returns m * v.
func (m Mat4) Transform(v Vec4) Vec4 {
	return Vec4{
		X: m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		Y: m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		Z: m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		W: m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// TransformDir applies the upper 3x3 part of m to v.
func (m Mat4) TransformDir(v Vec3) Vec3 {
	return Vec3{
		X: m[0]*v.X + m[4]*v.Y + m[8]*v.Z,
		Y: m[1]*v.X + m[5]*v.Y + m[9]*v.Z,
		Z: m[2]*v.X + m[6]*v.Y + m[10]*v.Z,
	}
}

// TransformPlane multiplies the plane equation, as a row vector, by m. With
// m the inverse of a transform M, a point p on the input plane maps to M*p on
// the result.
func (m Mat4) TransformPlane(plane Vec4) Vec4 {
	return Vec4{
		X: plane.X*m[0] + plane.Y*m[1] + plane.Z*m[2] + plane.W*m[3],
		Y: plane.X*m[4] + plane.Y*m[5] + plane.Z*m[6] + plane.W*m[7],
		Z: plane.X*m[8] + plane.Y*m[9] + plane.Z*m[10] + plane.W*m[11],
		W: plane.X*m[12] + plane.Y*m[13] + plane.Z*m[14] + plane.W*m[15],
	}
}

// Transpose returns the transpose of m.
func (m Mat4) Transpose() Mat4 {
	var out Mat4
	for col := range 4 {
		for row := range 4 {
			out[row*4+col] = m[col*4+row]
		}
	}
	return out
}

// Inverse returns the inverse of m. It returns false if m is singular.
func (m Mat4) Inverse() (Mat4, bool) {
	var inv Mat4
	inv[0] = m[5]*m[10]*m[15] - m[5]*m[11]*m[14] - m[9]*m[6]*m[15] + m[9]*m[7]*m[14] + m[13]*m[6]*m[11] - m[13]*m[7]*m[10]
	inv[4] = -m[4]*m[10]*m[15] + m[4]*m[11]*m[14] + m[8]*m[6]*m[15] - m[8]*m[7]*m[14] - m[12]*m[6]*m[11] + m[12]*m[7]*m[10]
	inv[8] = m[4]*m[9]*m[15] - m[4]*m[11]*m[13] - m[8]*m[5]*m[15] + m[8]*m[7]*m[13] + m[12]*m[5]*m[11] - m[12]*m[7]*m[9]
	inv[12] = -m[4]*m[9]*m[14] + m[4]*m[10]*m[13] + m[8]*m[5]*m[14] - m[8]*m[6]*m[13] - m[12]*m[5]*m[10] + m[12]*m[6]*m[9]
	inv[1] = -m[1]*m[10]*m[15] + m[1]*m[11]*m[14] + m[9]*m[2]*m[15] - m[9]*m[3]*m[14] - m[13]*m[2]*m[11] + m[13]*m[3]*m[10]
	inv[5] = m[0]*m[10]*m[15] - m[0]*m[11]*m[14] - m[8]*m[2]*m[15] + m[8]*m[3]*m[14] + m[12]*m[2]*m[11] - m[12]*m[3]*m[10]
	inv[9] = -m[0]*m[9]*m[15] + m[0]*m[11]*m[13] + m[8]*m[1]*m[15] - m[8]*m[3]*m[13] - m[12]*m[1]*m[11] + m[12]*m[3]*m[9]
	inv[13] = m[0]*m[9]*m[14] - m[0]*m[10]*m[13] - m[8]*m[1]*m[14] + m[8]*m[2]*m[13] + m[12]*m[1]*m[10] - m[12]*m[2]*m[9]
	inv[2] = m[1]*m[6]*m[15] - m[1]*m[7]*m[14] - m[5]*m[2]*m[15] + m[5]*m[3]*m[14] + m[13]*m[2]*m[7] - m[13]*m[3]*m[6]
	inv[6] = -m[0]*m[6]*m[15] + m[0]*m[7]*m[14] + m[4]*m[2]*m[15] - m[4]*m[3]*m[14] - m[12]*m[2]*m[7] + m[12]*m[3]*m[6]
	inv[10] = m[0]*m[5]*m[15] - m[0]*m[7]*m[13] - m[4]*m[1]*m[15] + m[4]*m[3]*m[13] + m[12]*m[1]*m[7] - m[12]*m[3]*m[5]
	inv[14] = -m[0]*m[5]*m[14] + m[0]*m[6]*m[13] + m[4]*m[1]*m[14] - m[4]*m[2]*m[13] - m[12]*m[1]*m[6] + m[12]*m[2]*m[5]
	inv[3] = -m[1]*m[6]*m[11] + m[1]*m[7]*m[10] + m[5]*m[2]*m[11] - m[5]*m[3]*m[10] - m[9]*m[2]*m[7] + m[9]*m[3]*m[6]
	inv[7] = m[0]*m[6]*m[11] - m[0]*m[7]*m[10] - m[4]*m[2]*m[11] + m[4]*m[3]*m[10] + m[8]*m[2]*m[7] - m[8]*m[3]*m[6]
	inv[11] = -m[0]*m[5]*m[11] + m[0]*m[7]*m[9] + m[4]*m[1]*m[11] - m[4]*m[3]*m[9] - m[8]*m[1]*m[7] + m[8]*m[3]*m[5]
	inv[15] = m[0]*m[5]*m[10] - m[0]*m[6]*m[9] - m[4]*m[1]*m[10] + m[4]*m[2]*m[9] + m[8]*m[1]*m[6] - m[8]*m[2]*m[5]

	det := m[0]*inv[0] + m[1]*inv[4] + m[2]*inv[8] + m[3]*inv[12]
	if det == 0 {
		return Mat4{}, false
	}
	det = 1 / det
	for i := range inv {
		inv[i] *= det
	}
	return inv, true
}

// Translate creates a translation matrix.
func Translate(x, y, z float32) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = x, y, z
	return m
}

// Scale creates a scaling matrix.
func Scale(x, y, z float32) Mat4 {
	m := Identity()
	m[0], m[5], m[10] = x, y, z
	return m
}

// Rotate creates a rotation of angle radians around axis, counterclockwise
// when looking down the axis towards the origin.
func Rotate(angle float32, axis Vec3) Mat4 {
	a := axis.Normalize()
	c := float32(math.Cos(float64(angle)))
	s := float32(math.Sin(float64(angle)))
	t := 1 - c
	return Mat4{
		t*a.X*a.X + c, t*a.X*a.Y + s*a.Z, t*a.X*a.Z - s*a.Y, 0,
		t*a.X*a.Y - s*a.Z, t*a.Y*a.Y + c, t*a.Y*a.Z + s*a.X, 0,
		t*a.X*a.Z + s*a.Y, t*a.Y*a.Z - s*a.X, t*a.Z*a.Z + c, 0,
		0, 0, 0, 1,
	}
}

// Frustum creates a perspective projection for the view volume bounded by
// the given clip planes at the near distance.
func Frustum(left, right, bottom, top, near, far float32) Mat4 {
	rl, tb, fn := right-left, top-bottom, far-near
	return Mat4{
		2 * near / rl, 0, 0, 0,
		0, 2 * near / tb, 0, 0,
		(right + left) / rl, (top + bottom) / tb, -(far + near) / fn, -1,
		0, 0, -2 * far * near / fn, 0,
	}
}

// Perspective creates a symmetric perspective projection. fovY is the
// vertical field of view in radians.
func Perspective(fovY, aspect, near, far float32) Mat4 {
	top := near * float32(math.Tan(float64(fovY)/2))
	right := top * aspect
	return Frustum(-right, right, -top, top, near, far)
}

// Ortho creates an orthographic projection.
func Ortho(left, right, bottom, top, near, far float32) Mat4 {
	rl, tb, fn := right-left, top-bottom, far-near
	return Mat4{
		2 / rl, 0, 0, 0,
		0, 2 / tb, 0, 0,
		0, 0, -2 / fn, 0,
		-(right + left) / rl, -(top + bottom) / tb, -(far + near) / fn, 1,
	}
}

// LookAt creates a viewing matrix with the eye at eye looking at center.
func LookAt(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)
	return Mat4{
		s.X, u.X, -f.X, 0,
		s.Y, u.Y, -f.Y, 0,
		s.Z, u.Z, -f.Z, 0,
		-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1,
	}
}
