package algo

import (
	"math"
	"testing"

	"github.com/huangsam/deadreck/schema"
	"github.com/stretchr/testify/assert"
)

const tolerance = 1e-9

func assertVec(t *testing.T, expected, actual schema.Vec3) {
	t.Helper()
	assert.InDelta(t, expected.X, actual.X, tolerance, "x")
	assert.InDelta(t, expected.Y, actual.Y, tolerance, "y")
	assert.InDelta(t, expected.Z, actual.Z, tolerance, "z")
}

func TestRotateAndDegravitizeZeroAngles(t *testing.T) {
	body := schema.Vec3{X: 1.5, Y: -2, Z: 9.8}
	got := RotateAndDegravitize(body, 0, 0, 0, DefaultGravity)
	assert.Equal(t, schema.Vec3{X: 1.5, Y: -2, Z: 0}, got)
}

func TestRotateAndDegravitizeSingleAxis(t *testing.T) {
	tests := []struct {
		name             string
		pitch, roll, yaw float64
		body             schema.Vec3
		expected         schema.Vec3
	}{
		{
			name:     "yaw 90 turns x into y",
			yaw:      90,
			body:     schema.Vec3{X: 1},
			expected: schema.Vec3{Y: 1},
		},
		{
			name:     "roll 90 turns z into x",
			roll:     90,
			body:     schema.Vec3{Z: 1},
			expected: schema.Vec3{X: 1},
		},
		{
			name:     "pitch 90 turns y into z",
			pitch:    90,
			body:     schema.Vec3{Y: 1},
			expected: schema.Vec3{Z: 1},
		},
		{
			name:     "full turn is identity",
			yaw:      360,
			body:     schema.Vec3{X: 1, Y: 2, Z: 3},
			expected: schema.Vec3{X: 1, Y: 2, Z: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RotateAndDegravitize(tt.body, tt.pitch, tt.roll, tt.yaw, schema.Vec3{})
			assertVec(t, tt.expected, got)
		})
	}
}

func TestRotationOrderIsYawRollPitch(t *testing.T) {
	// pitch first: Y goes to Z, then yaw leaves Z alone.
	got := RotateAndDegravitize(schema.Vec3{Y: 1}, 90, 0, 90, schema.Vec3{})
	assertVec(t, schema.Vec3{Z: 1}, got)

	// yaw applied last: X rolled onto -Z stays on -Z.
	got = RotateAndDegravitize(schema.Vec3{X: 1}, 0, 90, 90, schema.Vec3{})
	assertVec(t, schema.Vec3{Z: -1}, got)
}

// mulVec multiplies a row-major 3x3 matrix by a vector.
func mulVec(m [3][3]float64, v schema.Vec3) schema.Vec3 {
	in := [3]float64{v.X, v.Y, v.Z}
	var out [3]float64
	for i := range 3 {
		for k := range 3 {
			out[i] += m[i][k] * in[k]
		}
	}
	return schema.Vec3{X: out[0], Y: out[1], Z: out[2]}
}

func mulMat(a, b [3][3]float64) [3][3]float64 {
	var out [3][3]float64
	for i := range 3 {
		for j := range 3 {
			for k := range 3 {
				out[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return out
}

func TestRotationMixedAngles(t *testing.T) {
	const pitch, roll, yaw = 30.0, 45.0, 60.0
	body := schema.Vec3{X: 1, Y: 2, Z: 3}

	got := RotateAndDegravitize(body, pitch, roll, yaw, DefaultGravity)
	assertVec(t, schema.Vec3{X: 1.424703540406897, Y: 2.9317605328457597, Z: -7.962882692912617}, got)

	sx, cx := math.Sincos(pitch * math.Pi / 180)
	sy, cy := math.Sincos(roll * math.Pi / 180)
	sz, cz := math.Sincos(yaw * math.Pi / 180)
	rx := [3][3]float64{{1, 0, 0}, {0, cx, -sx}, {0, sx, cx}}
	ry := [3][3]float64{{cy, 0, sy}, {0, 1, 0}, {-sy, 0, cy}}
	rz := [3][3]float64{{cz, -sz, 0}, {sz, cz, 0}, {0, 0, 1}}

	zyx := mulVec(mulMat(rz, mulMat(ry, rx)), body).Sub(DefaultGravity)
	assertVec(t, zyx, got)

	// Rz·Rx·Ry lands elsewhere, so the order is observable here.
	zxy := mulVec(mulMat(rz, mulMat(rx, ry)), body).Sub(DefaultGravity)
	assert.Greater(t, zxy.Sub(got).Norm(), 0.1)

	m := RotationMatrix(pitch, roll, yaw)
	want := mulMat(rz, mulMat(ry, rx))
	for i := range 3 {
		for j := range 3 {
			assert.InDelta(t, want[i][j], m.Get(i, j), tolerance, "r[%d][%d]", i, j)
		}
	}
}

func TestRotationPreservesNorm(t *testing.T) {
	body := schema.Vec3{X: 0.3, Y: -1.2, Z: 9.1}
	got := RotateAndDegravitize(body, 17, -33, 251, schema.Vec3{})
	assert.InDelta(t, body.Norm(), got.Norm(), tolerance)
}

func TestGravityVector(t *testing.T) {
	assert.Equal(t, DefaultGravity, GravityVector(9.8))
	assert.Equal(t, "ZYX", RotationOrder)
}
