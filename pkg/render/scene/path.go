package scene

import "math"

// SegmentKind identifies a path command.
type SegmentKind int

const (
	MoveTo SegmentKind = iota
	LineTo
	ArcTo
	Close
)

// Segment is one path command. Arc fields follow SVG semantics: Sweep true
// means clockwise on screen, Large picks the longer of the two arcs.
type Segment struct {
	Kind         SegmentKind
	X, Y         float64
	RX, RY       float64
	Large, Sweep bool
}

// PathBuilder accumulates segments.
type PathBuilder struct {
	segs []Segment
	last Point
}

func (b *PathBuilder) MoveTo(x, y float64) *PathBuilder {
	b.segs = append(b.segs, Segment{Kind: MoveTo, X: x, Y: y})
	b.last = Point{x, y}
	return b
}

func (b *PathBuilder) LineTo(x, y float64) *PathBuilder {
	b.segs = append(b.segs, Segment{Kind: LineTo, X: x, Y: y})
	b.last = Point{x, y}
	return b
}

// ArcTo adds an elliptical arc from the current point to (x, y).
func (b *PathBuilder) ArcTo(rx, ry float64, large, sweep bool, x, y float64) *PathBuilder {
	b.segs = append(b.segs, Segment{Kind: ArcTo, X: x, Y: y, RX: rx, RY: ry, Large: large, Sweep: sweep})
	b.last = Point{x, y}
	return b
}

func (b *PathBuilder) Close() *PathBuilder {
	b.segs = append(b.segs, Segment{Kind: Close})
	return b
}

// Segments returns the accumulated segments.
func (b *PathBuilder) Segments() []Segment { return b.segs }

// Polyline returns the segments of an open line through pts.
func Polyline(pts ...Point) []Segment {
	var b PathBuilder
	for i, p := range pts {
		if i == 0 {
			b.MoveTo(p.X, p.Y)
		} else {
			b.LineTo(p.X, p.Y)
		}
	}
	return b.Segments()
}

// Line is a convenience for a stroked two-point path.
func Line(x1, y1, x2, y2 float64, c Color, width float64) Path {
	return Path{Segments: Polyline(Point{x1, y1}, Point{x2, y2}), Stroke: c, StrokeWidth: width}
}

// PolarPoint returns the point at angle deg (0° = 3 o'clock, growing
// clockwise on screen) on a circle of radius r around (cx, cy).
func PolarPoint(cx, cy, r, deg float64) Point {
	rad := deg * math.Pi / 180
	return Point{cx + r*math.Cos(rad), cy + r*math.Sin(rad)}
}
