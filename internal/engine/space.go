package engine

import "github.com/piwi3910/CratePack/internal/model"

// SpaceManager owns the free regions of one bin.
type SpaceManager interface {
	// Spaces returns the current free spaces. The slice must not be modified.
	Spaces() []model.Space
	// Place puts a box with the given oriented extents at the origin of
	// space index and returns that origin.
	Place(index int, size model.Vec3) model.Vec3
}

// BSPSpaces is a guillotine free-space list. Spaces never overlap, so no
// pruning is needed.
type BSPSpaces struct {
	free []model.Space
	flat bool
}

// NewBSPSpaces starts with bounds as the only free space. A flat manager
// never opens the space in front of a placed box, which packs a single layer.
func NewBSPSpaces(bounds model.Space, flat bool) *BSPSpaces {
	return &BSPSpaces{free: []model.Space{bounds}, flat: flat}
}

func (m *BSPSpaces) Spaces() []model.Space {
	return m.free
}

func (m *BSPSpaces) Place(index int, size model.Vec3) model.Vec3 {
	s := m.free[index]
	m.free = append(m.free[:index], m.free[index+1:]...)

	right := model.Space{X: s.X + size.X, Y: s.Y, Z: s.Z, W: s.W - size.X, H: s.H, D: s.D}
	top := model.Space{X: s.X, Y: s.Y + size.Y, Z: s.Z, W: size.X, H: s.H - size.Y, D: s.D}
	front := model.Space{X: s.X, Y: s.Y, Z: s.Z + size.Z, W: size.X, H: size.Y, D: s.D - size.Z}

	m.add(right)
	m.add(top)
	if !m.flat {
		m.add(front)
	}
	return s.Origin()
}

func (m *BSPSpaces) add(s model.Space) {
	if usable(s) {
		m.free = append(m.free, s)
	}
}

// EMSSpaces keeps empty maximal spaces. Spaces may overlap; every
// pruneInterval placements the list is cleaned of contained spaces.
type EMSSpaces struct {
	free          []model.Space
	pruneInterval int
	sincePrune    int
}

// NewEMSSpaces starts with bounds as the only free space. A pruneInterval
// of zero or less disables periodic pruning.
func NewEMSSpaces(bounds model.Space, pruneInterval int) *EMSSpaces {
	return &EMSSpaces{free: []model.Space{bounds}, pruneInterval: pruneInterval}
}

func (m *EMSSpaces) Spaces() []model.Space {
	return m.free
}

func (m *EMSSpaces) Place(index int, size model.Vec3) model.Vec3 {
	s := m.free[index]
	placed := model.Placement{Position: s.Origin(), Size: size}

	last := len(m.free) - 1
	m.free[index] = m.free[last]
	m.free = m.free[:last]

	// Maximal residuals of the chosen space
	for _, r := range []model.Space{
		{X: s.X + size.X, Y: s.Y, Z: s.Z, W: s.W - size.X, H: s.H, D: s.D},
		{X: s.X, Y: s.Y + size.Y, Z: s.Z, W: s.W, H: s.H - size.Y, D: s.D},
		{X: s.X, Y: s.Y, Z: s.Z + size.Z, W: s.W, H: s.H, D: s.D - size.Z},
	} {
		if usable(r) {
			m.free = append(m.free, r)
		}
	}

	// Every space is examined once; fragments are appended after the scan
	kept := make([]model.Space, 0, len(m.free))
	var fragments []model.Space
	for _, sp := range m.free {
		if placed.Intersects(sp) {
			fragments = appendFragments(fragments, placed, sp)
			continue
		}
		kept = append(kept, sp)
	}
	m.free = append(kept, fragments...)

	m.sincePrune++
	if m.pruneInterval > 0 && m.sincePrune >= m.pruneInterval {
		m.Prune()
		m.sincePrune = 0
	}
	return s.Origin()
}

// Prune drops degenerate spaces and spaces contained in another space. Of
// several identical spaces only the earliest is kept.
func (m *EMSSpaces) Prune() {
	valid := make([]model.Space, 0, len(m.free))
	for _, s := range m.free {
		if usable(s) {
			valid = append(valid, s)
		}
	}

	out := make([]model.Space, 0, len(valid))
	for i, s := range valid {
		wrapped := false
		for j, o := range valid {
			if i == j || !o.Contains(s) {
				continue
			}
			if o == s && j > i {
				continue
			}
			wrapped = true
			break
		}
		if !wrapped {
			out = append(out, s)
		}
	}
	m.free = out
}

// appendFragments splits sp around the placed box into up to six pieces,
// one per side of the box, each clipped to sp.
func appendFragments(dst []model.Space, p model.Placement, sp model.Space) []model.Space {
	px, py, pz := p.Position.X, p.Position.Y, p.Position.Z
	pr, pt, pf := px+p.Size.X, py+p.Size.Y, pz+p.Size.Z

	if pr < sp.X+sp.W {
		dst = append(dst, model.Space{X: pr, Y: sp.Y, Z: sp.Z, W: sp.X + sp.W - pr, H: sp.H, D: sp.D})
	}
	if px > sp.X {
		dst = append(dst, model.Space{X: sp.X, Y: sp.Y, Z: sp.Z, W: px - sp.X, H: sp.H, D: sp.D})
	}
	if pt < sp.Y+sp.H {
		dst = append(dst, model.Space{X: sp.X, Y: pt, Z: sp.Z, W: sp.W, H: sp.Y + sp.H - pt, D: sp.D})
	}
	if py > sp.Y {
		dst = append(dst, model.Space{X: sp.X, Y: sp.Y, Z: sp.Z, W: sp.W, H: py - sp.Y, D: sp.D})
	}
	if pf < sp.Z+sp.D {
		dst = append(dst, model.Space{X: sp.X, Y: sp.Y, Z: pf, W: sp.W, H: sp.H, D: sp.Z + sp.D - pf})
	}
	if pz > sp.Z {
		dst = append(dst, model.Space{X: sp.X, Y: sp.Y, Z: sp.Z, W: sp.W, H: sp.H, D: pz - sp.Z})
	}
	return dst
}

// usable rejects spaces with an extent at or below rounding noise.
func usable(s model.Space) bool {
	return s.W > epsilon && s.H > epsilon && s.D > epsilon
}
