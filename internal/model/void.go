package model

import (
	"sort"

	"github.com/google/uuid"
)

// Void is a usable empty region left in a packed bin.
type Void struct {
	ID       string `json:"id"`
	BinIndex int    `json:"bin_index"`
	Space    Space  `json:"space"`
}

// Volume returns the void volume.
func (v Void) Volume() float64 {
	return v.Space.Volume()
}

// MinVoidFraction is the minimum extent of a void, relative to the matching
// bin extent, for it to be reported as reusable.
const MinVoidFraction = 0.1

// DetectVoids reports the free spaces of a bin that are large enough to
// reuse. Each extent must be at least MinVoidFraction of the bin extent.
// Spaces contained in a larger reported void are dropped, so overlapping
// maximal spaces collapse to their largest representatives.
func DetectVoids(br BinResult) []Void {
	minW := br.Size.X * MinVoidFraction
	minH := br.Size.Y * MinVoidFraction
	minD := br.Size.Z * MinVoidFraction

	var candidates []Space
	for _, s := range br.FreeSpaces {
		if s.W >= minW && s.H >= minH && s.D >= minD {
			candidates = append(candidates, s)
		}
	}

	// Largest first so containment checks only look backwards
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Volume() > candidates[j].Volume()
	})

	var voids []Void
	for _, s := range candidates {
		contained := false
		for _, v := range voids {
			if v.Space.Contains(s) {
				contained = true
				break
			}
		}
		if contained {
			continue
		}
		voids = append(voids, Void{
			ID:       uuid.New().String()[:8],
			BinIndex: br.Index,
			Space:    s,
		})
	}
	return voids
}

// DetectAllVoids finds voids across all bins in a packing result.
func DetectAllVoids(result PackResult) []Void {
	var all []Void
	for _, b := range result.Bins {
		all = append(all, DetectVoids(b)...)
	}
	return all
}

// TotalVoidVolume returns the summed volume of the voids. Overlapping voids
// are counted once each, so this is an upper bound on reusable volume.
func TotalVoidVolume(voids []Void) float64 {
	var total float64
	for _, v := range voids {
		total += v.Volume()
	}
	return total
}
