package scene

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Measurer reports the advance width of a text run in document units.
type Measurer interface {
	TextWidth(s string, size float64, style Style) float64
}

// Approx estimates widths from the rune count. It needs no font data and is
// what layouts use when no backend measurer is supplied.
type Approx struct{}

func (Approx) TextWidth(s string, size float64, style Style) float64 {
	factor := 0.55
	switch style {
	case Bold:
		factor = 0.6
	case Italic:
		factor = 0.52
	}
	return float64(utf8.RuneCountInString(s)) * size * factor
}

// Vertical text extent relative to the baseline, as fractions of the size.
const (
	ascent  = 0.8
	descent = 0.25
)

const ellipsis = "…"

// Fit shortens s with a trailing ellipsis until it is no wider than maxW.
func Fit(m Measurer, s string, size float64, style Style, maxW float64) string {
	if m.TextWidth(s, size, style) <= maxW {
		return s
	}
	runes := []rune(strings.TrimSpace(s))
	for n := len(runes) - 1; n > 0; n-- {
		cand := strings.TrimRight(string(runes[:n]), " ") + ellipsis
		if m.TextWidth(cand, size, style) <= maxW {
			return cand
		}
	}
	return ellipsis
}

// Bounds is an axis-aligned box.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Empty reports whether nothing was added to b.
func (b Bounds) Empty() bool { return b.MinX > b.MaxX }

func emptyBounds() Bounds {
	return Bounds{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
}

func (b *Bounds) add(x, y float64) {
	b.MinX = math.Min(b.MinX, x)
	b.MinY = math.Min(b.MinY, y)
	b.MaxX = math.Max(b.MaxX, x)
	b.MaxY = math.Max(b.MaxY, y)
}

// Extent returns the box covering every op on p. Text is measured with m.
func Extent(p Page, m Measurer) Bounds {
	if m == nil {
		m = Approx{}
	}
	b := emptyBounds()
	for _, op := range p.Ops {
		switch o := op.(type) {
		case Rect:
			hw := o.StrokeWidth / 2
			b.add(o.X-hw, o.Y-hw)
			b.add(o.X+o.W+hw, o.Y+o.H+hw)
		case Path:
			addPath(&b, o)
		case Text:
			w := m.TextWidth(o.S, o.Size, o.Style)
			x := o.X
			switch o.Align {
			case Center:
				x -= w / 2
			case Right:
				x -= w
			}
			b.add(x, o.Y-ascent*o.Size)
			b.add(x+w, o.Y+descent*o.Size)
		case Image:
			b.add(o.X, o.Y)
			b.add(o.X+o.W, o.Y+o.H)
		}
	}
	return b
}

func addPath(b *Bounds, p Path) {
	hw := p.StrokeWidth / 2
	var cur, start Point
	for _, s := range p.Segments {
		switch s.Kind {
		case MoveTo:
			cur, start = Point{s.X, s.Y}, Point{s.X, s.Y}
		case LineTo:
			cur = Point{s.X, s.Y}
		case ArcTo:
			addArc(b, cur, Point{s.X, s.Y}, math.Max(s.RX, s.RY), hw)
			cur = Point{s.X, s.Y}
		case Close:
			cur = start
			continue
		}
		b.add(cur.X-hw, cur.Y-hw)
		b.add(cur.X+hw, cur.Y+hw)
	}
}

// addArc covers the full circles around both candidate arc centers, which
// always contains the arc itself.
func addArc(b *Bounds, from, to Point, r, pad float64) {
	dx, dy := to.X-from.X, to.Y-from.Y
	d := math.Hypot(dx, dy)
	if d == 0 {
		return
	}
	r = math.Max(r, d/2)
	h := math.Sqrt(math.Max(r*r-d*d/4, 0))
	mx, my := (from.X+to.X)/2, (from.Y+to.Y)/2
	px, py := -dy/d, dx/d
	for _, sign := range []float64{1, -1} {
		cx, cy := mx+sign*h*px, my+sign*h*py
		b.add(cx-r-pad, cy-r-pad)
		b.add(cx+r+pad, cy+r+pad)
	}
}
