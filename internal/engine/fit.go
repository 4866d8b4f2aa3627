package engine

import "github.com/piwi3910/CratePack/internal/model"

// epsilon absorbs float rounding when comparing extents.
const epsilon = 1e-9

// Orientation is an axis permutation of a box's extents. Entry i names the
// source component (0=x, 1=y, 2=z) that ends up on output axis i.
type Orientation [3]int

// Orientations lists every permutation in precedence order. Ties between
// orientations always resolve to the earlier entry.
var Orientations = [6]Orientation{
	{0, 1, 2}, // (x,y,z)
	{0, 2, 1}, // (x,z,y)
	{1, 0, 2}, // (y,x,z)
	{1, 2, 0}, // (y,z,x)
	{2, 0, 1}, // (z,x,y)
	{2, 1, 0}, // (z,y,x)
}

// Apply permutes v.
func (o Orientation) Apply(v model.Vec3) model.Vec3 {
	c := [3]float64{v.X, v.Y, v.Z}
	return model.Vec3{X: c[o[0]], Y: c[o[1]], Z: c[o[2]]}
}

// AllowedOrientations returns the orientations reachable from the identity
// using the generators in mask. One generator adds its single swap; any two
// swaps generate the full permutation group.
func AllowedOrientations(mask model.RotationMask) []Orientation {
	switch {
	case mask.Count() >= 2:
		return Orientations[:]
	case mask.Has(model.RotateX):
		return []Orientation{Orientations[0], Orientations[1]}
	case mask.Has(model.RotateZ):
		return []Orientation{Orientations[0], Orientations[2]}
	case mask.Has(model.RotateY):
		return []Orientation{Orientations[0], Orientations[5]}
	default:
		return Orientations[:1]
	}
}

// fitsIn reports whether oriented extents fit componentwise in s.
func fitsIn(size model.Vec3, s model.Space) bool {
	return size.X <= s.W+epsilon && size.Y <= s.H+epsilon && size.Z <= s.D+epsilon
}

// FirstFit returns the first allowed orientation of size that fits in s.
func FirstFit(size model.Vec3, s model.Space, mask model.RotationMask) (model.Vec3, bool) {
	for _, o := range AllowedOrientations(mask) {
		oriented := o.Apply(size)
		if fitsIn(oriented, s) {
			return oriented, true
		}
	}
	return model.Vec3{}, false
}

// Fits returns every distinct allowed orientation of size that fits in s,
// in precedence order.
func Fits(size model.Vec3, s model.Space, mask model.RotationMask) []model.Vec3 {
	var out []model.Vec3
	for _, o := range AllowedOrientations(mask) {
		oriented := o.Apply(size)
		if !fitsIn(oriented, s) {
			continue
		}
		dup := false
		for _, prev := range out {
			if prev == oriented {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, oriented)
		}
	}
	return out
}
