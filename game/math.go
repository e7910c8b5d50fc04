package game

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// RotateYaw rotates a local movement vector around the vertical axis. Yaw is in
// degrees, increasing counter-clockwise when seen from above.
func RotateYaw(v mgl32.Vec3, yaw float32) mgl32.Vec3 {
	rad := mgl32.DegToRad(yaw)
	sin, cos := math32.Sin(rad), math32.Cos(rad)
	return mgl32.Vec3{
		v[0]*cos - v[1]*sin,
		v[0]*sin + v[1]*cos,
		v[2],
	}
}

// RotatePitchYaw applies the full 3D rotation used by swimming and flying
// actors: pitch around the lateral axis first, then yaw around the vertical.
func RotatePitchYaw(v mgl32.Vec3, pitch, yaw float32) mgl32.Vec3 {
	rad := mgl32.DegToRad(pitch)
	sin, cos := math32.Sin(rad), math32.Cos(rad)
	pitched := mgl32.Vec3{
		v[0],
		v[1]*cos - v[2]*sin,
		v[1]*sin + v[2]*cos,
	}
	return RotateYaw(pitched, yaw)
}

// ProjectOntoPlane removes the component of v along the plane normal n.
// n must be normalized.
func ProjectOntoPlane(v, n mgl32.Vec3) mgl32.Vec3 {
	return v.Sub(n.Mul(v.Dot(n)))
}

// ProjectOntoLine keeps only the component of v along dir. dir must be
// normalized.
func ProjectOntoLine(v, dir mgl32.Vec3) mgl32.Vec3 {
	return dir.Mul(v.Dot(dir))
}

// AngleBetweenDeg returns the unsigned angle between two vectors in degrees.
// Zero-length inputs yield zero.
func AngleBetweenDeg(a, b mgl32.Vec3) float32 {
	la, lb := a.Len(), b.Len()
	if la <= 1e-7 || lb <= 1e-7 {
		return 0
	}
	cos := ClampFloat(a.Dot(b)/(la*lb), -1, 1)
	return mgl32.RadToDeg(math32.Acos(cos))
}

// Lerp interpolates between two positions.
func Lerp(from, to mgl32.Vec3, t float32) mgl32.Vec3 {
	return from.Add(to.Sub(from).Mul(t))
}

// ClampFloat clamps v into [min, max].
func ClampFloat(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// IsWalkableNormal reports whether a contact normal is flat enough to stand
// on. minDot is the cosine of the steepest walkable slope.
func IsWalkableNormal(n mgl32.Vec3, minDot float32) bool {
	return n[2] > minDot
}

// Float32ApproxEq determines whether two floating point numbers are close enough
// to each other by a threshold of 1e-5.
func Float32ApproxEq(a, b float32) bool {
	return math32.Abs(a-b) <= 1e-5
}

// Vec3ApproxZero reports whether every component of v is negligible.
func Vec3ApproxZero(v mgl32.Vec3) bool {
	return v.LenSqr() < 1e-10
}

// HorizontalLenSqr returns the squared length of the horizontal part of v.
func HorizontalLenSqr(v mgl32.Vec3) float32 {
	return v[0]*v[0] + v[1]*v[1]
}
