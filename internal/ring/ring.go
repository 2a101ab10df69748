// Package ring holds the geometry and palette of habit activity rings.
package ring

import "math"

// Stroke widths of the three ring layouts.
const (
	MainStroke  = 22.0
	WeekStroke  = 3.5
	MonthStroke = 3.0

	// Only the first MaxRings habits are drawn on a day.
	MaxRings = 3
)

// Geometry describes one progress ring as an SVG-style dashed circle.
type Geometry struct {
	Size          float64
	Stroke        float64
	Radius        float64
	Circumference float64
	// Drawn is the progress actually painted. A full ring is drawn as 99.99
	// so the arc never closes into an invisible zero-length dash.
	Drawn  float64
	Offset float64
}

// Compute returns the ring geometry for progress (a percentage).
func Compute(size, stroke, progress float64) Geometry {
	if math.IsNaN(progress) || progress < 0 {
		progress = 0
	}
	if progress >= 100 {
		progress = 99.99
	}
	r := (size - stroke) / 2
	c := 2 * math.Pi * r
	return Geometry{
		Size:          size,
		Stroke:        stroke,
		Radius:        r,
		Circumference: c,
		Drawn:         progress,
		Offset:        c - progress/100*c,
	}
}

// Fraction is the painted share of the ring in [0, 1).
func (g Geometry) Fraction() float64 {
	return g.Drawn / 100
}

// WeekSizes returns the nested ring sizes for a week strip day. The selected
// day is drawn slightly larger with a thicker stroke.
func WeekSizes(selected bool, n int) (sizes []float64, stroke float64) {
	size := 40.0
	stroke = WeekStroke
	if selected {
		size = 44
		stroke += 0.5
	}
	n = min(n, MaxRings)
	for i := range n {
		sizes = append(sizes, size-float64(i)*(stroke*2+2))
	}
	return sizes, stroke
}

// MonthSizes returns the nested ring sizes for a month calendar cell.
func MonthSizes(n int) []float64 {
	n = min(n, MaxRings)
	sizes := make([]float64, n)
	for i := range n {
		sizes[i] = 36 - float64(i)*8
	}
	return sizes
}

// Stop is one gradient stop.
type Stop struct {
	Offset string
	Color  string
}

// Colors is a palette entry: a two-stop gradient and a solid fill.
type Colors struct {
	Stops []Stop
	Solid string
}

// DefaultColor is used for unknown palette keys.
const DefaultColor = "orange"

var palette = map[string]Colors{
	"red":    gradient("#fecaca", "#fca5a5"),
	"orange": gradient("#fed7aa", "#fdba74"),
	"amber":  gradient("#fde68a", "#fcd34d"),
	"green":  gradient("#bbf7d0", "#86efac"),
	"sky":    gradient("#bae6fd", "#7dd3fc"),
	"indigo": gradient("#c7d2fe", "#a5b4fc"),
	"purple": gradient("#e9d5ff", "#d8b4fe"),
	"pink":   gradient("#fbcfe8", "#f9a8d4"),
}

// PaletteKeys lists the palette in display order.
var PaletteKeys = []string{"red", "orange", "amber", "green", "sky", "indigo", "purple", "pink"}

func gradient(from, to string) Colors {
	return Colors{
		Stops: []Stop{{Offset: "0%", Color: from}, {Offset: "100%", Color: to}},
		Solid: to,
	}
}

// Palette returns the colours for key, falling back to DefaultColor.
func Palette(key string) Colors {
	if c, ok := palette[key]; ok {
		return c
	}
	return palette[DefaultColor]
}

// Known reports whether key is a palette colour.
func Known(key string) bool {
	_, ok := palette[key]
	return ok
}
