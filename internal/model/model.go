package model

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// Axis identifies one of the three bin dimensions.
type Axis string

const (
	AxisX Axis = "x" // Width
	AxisY Axis = "y" // Height
	AxisZ Axis = "z" // Depth
)

// ParseAxis converts a user supplied axis name. It returns false for
// anything other than x, y or z.
func ParseAxis(s string) (Axis, bool) {
	switch Axis(strings.ToLower(strings.TrimSpace(s))) {
	case AxisX:
		return AxisX, true
	case AxisY:
		return AxisY, true
	case AxisZ:
		return AxisZ, true
	default:
		return "", false
	}
}

// Vec3 is a position or an extent in bin units.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Volume treats the vector as extents.
func (v Vec3) Volume() float64 {
	return v.X * v.Y * v.Z
}

// Longest returns the largest component.
func (v Vec3) Longest() float64 {
	return math.Max(v.X, math.Max(v.Y, v.Z))
}

// Get returns the component along a.
func (v Vec3) Get(a Axis) float64 {
	switch a {
	case AxisX:
		return v.X
	case AxisZ:
		return v.Z
	default:
		return v.Y
	}
}

// With returns a copy of v with the component along a replaced.
func (v Vec3) With(a Axis, val float64) Vec3 {
	switch a {
	case AxisX:
		v.X = val
	case AxisZ:
		v.Z = val
	default:
		v.Y = val
	}
	return v
}

// Box is an item to be packed. Size holds the extents in the box's
// original orientation.
type Box struct {
	ID     int     `json:"id"`
	Label  string  `json:"label,omitempty"`
	Size   Vec3    `json:"size"`
	Weight float64 `json:"weight"`
}

func NewBox(id int, label string, w, h, d, weight float64) Box {
	return Box{
		ID:     id,
		Label:  label,
		Size:   Vec3{X: w, Y: h, Z: d},
		Weight: weight,
	}
}

// Volume returns the box volume.
func (b Box) Volume() float64 {
	return b.Size.Volume()
}

// Item is a line of a packing list: a box shape requested Quantity times.
type Item struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Depth    float64 `json:"depth"`
	Weight   float64 `json:"weight"`
	Quantity int     `json:"quantity"`
}

func NewItem(label string, w, h, d float64, qty int) Item {
	return Item{
		ID:       uuid.New().String()[:8],
		Label:    label,
		Width:    w,
		Height:   h,
		Depth:    d,
		Quantity: qty,
	}
}

// ExpandItems turns packing list lines into individual boxes with
// sequential ids starting at 1.
func ExpandItems(items []Item) []Box {
	var boxes []Box
	id := 1
	for _, it := range items {
		for i := 0; i < it.Quantity; i++ {
			boxes = append(boxes, NewBox(id, it.Label, it.Width, it.Height, it.Depth, it.Weight))
			id++
		}
	}
	return boxes
}

// Space is an axis-aligned free region inside a bin.
type Space struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
	H float64 `json:"h"`
	D float64 `json:"d"`
}

// Volume returns the space volume.
func (s Space) Volume() float64 {
	return s.W * s.H * s.D
}

// Valid reports whether every extent is positive.
func (s Space) Valid() bool {
	return s.W > 0 && s.H > 0 && s.D > 0
}

// Contains reports whether o lies entirely inside s.
func (s Space) Contains(o Space) bool {
	return o.X >= s.X && o.Y >= s.Y && o.Z >= s.Z &&
		o.X+o.W <= s.X+s.W &&
		o.Y+o.H <= s.Y+s.H &&
		o.Z+o.D <= s.Z+s.D
}

// Origin returns the minimum corner.
func (s Space) Origin() Vec3 {
	return Vec3{X: s.X, Y: s.Y, Z: s.Z}
}

// Extents returns (W, H, D) as a vector.
func (s Space) Extents() Vec3 {
	return Vec3{X: s.W, Y: s.H, Z: s.D}
}

// Placement is a box fixed inside a bin. Size is the oriented extent.
type Placement struct {
	BoxID    int     `json:"box_id"`
	Label    string  `json:"label,omitempty"`
	Position Vec3    `json:"position"`
	Size     Vec3    `json:"size"`
	Weight   float64 `json:"weight"`
}

// Volume returns the placed box volume.
func (p Placement) Volume() float64 {
	return p.Size.Volume()
}

// Max returns the far edge of the placement along a.
func (p Placement) Max(a Axis) float64 {
	return p.Position.Get(a) + p.Size.Get(a)
}

// Overlaps reports whether two placements share interior volume.
// Touching faces do not count.
func (p Placement) Overlaps(o Placement) bool {
	return p.Position.X < o.Position.X+o.Size.X &&
		p.Position.Y < o.Position.Y+o.Size.Y &&
		p.Position.Z < o.Position.Z+o.Size.Z &&
		p.Position.X+p.Size.X > o.Position.X &&
		p.Position.Y+p.Size.Y > o.Position.Y &&
		p.Position.Z+p.Size.Z > o.Position.Z
}

// Intersects reports whether the placement shares interior volume with s.
func (p Placement) Intersects(s Space) bool {
	return p.Position.X < s.X+s.W &&
		p.Position.Y < s.Y+s.H &&
		p.Position.Z < s.Z+s.D &&
		p.Position.X+p.Size.X > s.X &&
		p.Position.Y+p.Size.Y > s.Y &&
		p.Position.Z+p.Size.Z > s.Z
}

// BinResult is one packed bin.
type BinResult struct {
	Index      int         `json:"index"`
	Size       Vec3        `json:"size"`
	MaxWeight  float64     `json:"max_weight,omitempty"`
	Weight     float64     `json:"weight"`
	Placements []Placement `json:"placements"`
	FreeSpaces []Space     `json:"free_spaces,omitempty"`
}

// UsedVolume returns the volume taken by placed boxes.
func (br BinResult) UsedVolume() float64 {
	var total float64
	for _, p := range br.Placements {
		total += p.Volume()
	}
	return total
}

// Volume returns the bin volume.
func (br BinResult) Volume() float64 {
	return br.Size.Volume()
}

// Fill returns the volume usage percentage.
func (br BinResult) Fill() float64 {
	v := br.Volume()
	if v == 0 {
		return 0
	}
	return (br.UsedVolume() / v) * 100.0
}

// PackResult holds the full solution for one ordering.
type PackResult struct {
	Bins     []BinResult `json:"bins"`
	Unplaced []Box       `json:"unplaced,omitempty"`
}

// TotalFill returns overall volume usage percentage.
func (pr PackResult) TotalFill() float64 {
	var used, total float64
	for _, b := range pr.Bins {
		used += b.UsedVolume()
		total += b.Volume()
	}
	if total == 0 {
		return 0
	}
	return (used / total) * 100.0
}

// PlacedCount returns the number of boxes placed across all bins.
func (pr PackResult) PlacedCount() int {
	n := 0
	for _, b := range pr.Bins {
		n += len(b.Placements)
	}
	return n
}

// Container is the bin template every new bin is created from.
type Container struct {
	Label     string  `json:"label"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Depth     float64 `json:"depth"`
	MaxWeight float64 `json:"max_weight"` // 0 = unlimited
}

func NewContainer(label string, w, h, d float64) Container {
	return Container{Label: label, Width: w, Height: h, Depth: d}
}

// Size returns the container extents.
func (c Container) Size() Vec3 {
	return Vec3{X: c.Width, Y: c.Height, Z: c.Depth}
}

// Volume returns the container volume.
func (c Container) Volume() float64 {
	return c.Width * c.Height * c.Depth
}

// Project ties everything together for save/load.
type Project struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Items     []Item      `json:"items"`
	Container Container   `json:"container"`
	Settings  Settings    `json:"settings"`
	Result    *PackResult `json:"result,omitempty"`
}

func NewProject() Project {
	return Project{
		ID:        uuid.New().String(),
		Name:      "Untitled",
		Items:     []Item{},
		Container: NewContainer("Default", 100, 100, 100),
		Settings:  DefaultSettings(),
	}
}
