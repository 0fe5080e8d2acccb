package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Near reports whether every component of a and b differs by at most tol.
// Unlike mgl64's relative comparison it behaves the same around zero.
func Near(a, b mgl64.Vec3, tol float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}
