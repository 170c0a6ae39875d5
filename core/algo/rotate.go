package algo

import (
	"math"

	"github.com/huangsam/deadreck/schema"
	"github.com/skelterjohn/go.matrix"
)

// RotationOrder names the Euler composition used by RotationMatrix.
const RotationOrder = "ZYX"

// DefaultGravity is the gravity vector subtracted in the world frame, in m/s².
var DefaultGravity = schema.Vec3{X: 0, Y: 0, Z: 9.8}

// GravityVector returns a world-frame gravity vector with the given magnitude on Z.
func GravityVector(magnitude float64) schema.Vec3 {
	return schema.Vec3{Z: magnitude}
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// RotationMatrix builds the 3x3 body-to-world matrix Rz(yaw) · Ry(roll) · Rx(pitch).
// Angles are in degrees and are not normalized.
func RotationMatrix(pitchDeg, rollDeg, yawDeg float64) *matrix.DenseMatrix {
	a, b, c := degToRad(yawDeg), degToRad(rollDeg), degToRad(pitchDeg)
	sa, ca := math.Sincos(a)
	sb, cb := math.Sincos(b)
	sc, cc := math.Sincos(c)

	rz := matrix.MakeDenseMatrixStacked([][]float64{
		{ca, -sa, 0},
		{sa, ca, 0},
		{0, 0, 1},
	})
	ry := matrix.MakeDenseMatrixStacked([][]float64{
		{cb, 0, sb},
		{0, 1, 0},
		{-sb, 0, cb},
	})
	rx := matrix.MakeDenseMatrixStacked([][]float64{
		{1, 0, 0},
		{0, cc, -sc},
		{0, sc, cc},
	})
	return matrix.Product(rz, matrix.Product(ry, rx))
}

// Rotate applies a 3x3 matrix to a vector.
func Rotate(r *matrix.DenseMatrix, v schema.Vec3) schema.Vec3 {
	col := matrix.MakeDenseMatrix([]float64{v.X, v.Y, v.Z}, 3, 1)
	out := matrix.Product(r, col)
	return schema.Vec3{X: out.Get(0, 0), Y: out.Get(1, 0), Z: out.Get(2, 0)}
}

// RotateAndDegravitize expresses a body-frame acceleration in the world frame
// and removes gravity from it.
func RotateAndDegravitize(body schema.Vec3, pitchDeg, rollDeg, yawDeg float64, gravity schema.Vec3) schema.Vec3 {
	return Rotate(RotationMatrix(pitchDeg, rollDeg, yawDeg), body).Sub(gravity)
}
