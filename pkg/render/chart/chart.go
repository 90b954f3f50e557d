// Package chart computes dashboard chart geometry.
//
// Every function is a pure mapping from counts and a bounding box to scene
// ops. Nothing here depends on the tree or table layouts.
package chart

import (
	"fmt"
	"math"

	"github.com/matzehuels/kinreport/pkg/render/scene"
	"github.com/matzehuels/kinreport/pkg/stats"
)

// StartAngle is the donut's starting direction (12 o'clock), in degrees.
const StartAngle = -90.0

// Donut describes a ring chart showing one fraction.
type Donut struct {
	CX, CY, R float64
	Thickness float64
	// Percent is the filled fraction in [0,1].
	Percent float64
	Color   scene.Color
	Track   scene.Color
	// LabelSize is the font size of the centered percentage. Zero hides it.
	LabelSize float64
}

// Arc is the computed filled arc of a donut.
type Arc struct {
	Start, End scene.Point
	Large      bool
	// Full is set when the ring is completely filled; it is then drawn as
	// two half arcs.
	Full bool
	// Empty is set when nothing is filled.
	Empty bool
}

// Arc computes the filled arc: clockwise from StartAngle by Percent·360°.
func (d Donut) Arc() Arc {
	p := d.Percent
	if math.IsNaN(p) || p <= 0 {
		return Arc{Empty: true}
	}
	start := scene.PolarPoint(d.CX, d.CY, d.R, StartAngle)
	if p >= 1 {
		return Arc{Start: start, End: start, Large: true, Full: true}
	}
	end := scene.PolarPoint(d.CX, d.CY, d.R, StartAngle+360*p)
	return Arc{Start: start, End: end, Large: p > 0.5}
}

// Ops draws the track ring, the filled arc and the optional label.
func (d Donut) Ops() []scene.Op {
	var ops []scene.Op
	if d.Track != "" {
		ops = append(ops, scene.Path{Segments: circle(d.CX, d.CY, d.R), Stroke: d.Track, StrokeWidth: d.Thickness})
	}
	a := d.Arc()
	switch {
	case a.Empty:
	case a.Full:
		ops = append(ops, scene.Path{Segments: circle(d.CX, d.CY, d.R), Stroke: d.Color, StrokeWidth: d.Thickness})
	default:
		var b scene.PathBuilder
		b.MoveTo(a.Start.X, a.Start.Y).ArcTo(d.R, d.R, a.Large, true, a.End.X, a.End.Y)
		ops = append(ops, scene.Path{Segments: b.Segments(), Stroke: d.Color, StrokeWidth: d.Thickness})
	}
	if d.LabelSize > 0 {
		ops = append(ops, scene.Text{
			X: d.CX, Y: d.CY + d.LabelSize*0.35,
			S:    FormatPercent(d.Percent),
			Size: d.LabelSize, Style: scene.Bold, Align: scene.Center, Color: scene.ColorTitle,
		})
	}
	return ops
}

// circle returns a full circle as two half arcs starting at 12 o'clock.
func circle(cx, cy, r float64) []scene.Segment {
	top := scene.PolarPoint(cx, cy, r, StartAngle)
	bottom := scene.PolarPoint(cx, cy, r, StartAngle+180)
	var b scene.PathBuilder
	b.MoveTo(top.X, top.Y).
		ArcTo(r, r, false, true, bottom.X, bottom.Y).
		ArcTo(r, r, false, true, top.X, top.Y).
		Close()
	return b.Segments()
}

// FormatPercent renders p in [0,1] as a whole percentage.
func FormatPercent(p float64) string {
	if math.IsNaN(p) || p < 0 {
		p = 0
	}
	return fmt.Sprintf("%.0f%%", math.Min(p, 1)*100)
}

// DefaultMinBarHeight keeps zero bars visible.
const DefaultMinBarHeight = 1.0

// Bars describes a vertical bar chart. Bars share the width evenly with Gap
// between them and grow upwards from Y+H.
type Bars struct {
	X, Y, W, H   float64
	Gap          float64
	MinBarHeight float64
	Buckets      []stats.Bucket
	Colors       []scene.Color
	LabelSize    float64
}

// Bar is one computed bar.
type Bar struct {
	X, Y, W, H float64
	Label      string
	Count      int
}

// Layout computes bar rectangles. h = count/max·H, floored to MinBarHeight;
// a non-positive max is treated as 1.
func (c Bars) Layout() []Bar {
	n := len(c.Buckets)
	if n == 0 {
		return nil
	}
	minH := c.MinBarHeight
	if minH <= 0 {
		minH = DefaultMinBarHeight
	}
	maxV := 0
	for _, b := range c.Buckets {
		maxV = max(maxV, b.Count)
	}
	if maxV <= 0 {
		maxV = 1
	}
	bw := (c.W - c.Gap*float64(n-1)) / float64(n)
	base := c.Y + c.H
	out := make([]Bar, n)
	for i, b := range c.Buckets {
		h := float64(b.Count) / float64(maxV) * c.H
		if h < minH {
			h = minH
		}
		out[i] = Bar{
			X: c.X + float64(i)*(bw+c.Gap), Y: base - h, W: bw, H: h,
			Label: b.Label, Count: b.Count,
		}
	}
	return out
}

// Ops draws the bars with value labels above and bucket labels below.
func (c Bars) Ops() []scene.Op {
	var ops []scene.Op
	base := c.Y + c.H
	for i, b := range c.Layout() {
		color := scene.Color("#007BFF")
		if len(c.Colors) > 0 {
			color = c.Colors[i%len(c.Colors)]
		}
		ops = append(ops, scene.Rect{X: b.X, Y: b.Y, W: b.W, H: b.H, Fill: color})
		if c.LabelSize > 0 {
			cx := b.X + b.W/2
			ops = append(ops,
				scene.Text{X: cx, Y: b.Y - c.LabelSize*0.4, S: fmt.Sprint(b.Count), Size: c.LabelSize, Style: scene.Bold, Align: scene.Center, Color: scene.ColorTitle},
				scene.Text{X: cx, Y: base + c.LabelSize*1.3, S: b.Label, Size: c.LabelSize, Align: scene.Center, Color: scene.ColorText},
			)
		}
	}
	return ops
}

// Area describes a filled line chart over bucket counts.
type Area struct {
	X, W float64
	// Base is the baseline Y; the chart rises H above it.
	Base, H     float64
	Buckets     []stats.Bucket
	Color       scene.Color
	FillOpacity float64
	LabelSize   float64
}

// Points returns x_i = X + i·W/(n−1), y_i = Base − v_i/max·H. A single point
// sits at the horizontal center; a non-positive max is treated as 1.
func (a Area) Points() []scene.Point {
	n := len(a.Buckets)
	if n == 0 {
		return nil
	}
	maxV := 0
	for _, b := range a.Buckets {
		maxV = max(maxV, b.Count)
	}
	if maxV <= 0 {
		maxV = 1
	}
	pts := make([]scene.Point, n)
	for i, b := range a.Buckets {
		x := a.X + a.W/2
		if n > 1 {
			x = a.X + float64(i)*a.W/float64(n-1)
		}
		pts[i] = scene.Point{X: x, Y: a.Base - float64(b.Count)/float64(maxV)*a.H}
	}
	return pts
}

// Ops draws the filled polygon first, then the stroke at full opacity.
func (a Area) Ops() []scene.Op {
	pts := a.Points()
	if len(pts) == 0 {
		return nil
	}
	opacity := a.FillOpacity
	if opacity <= 0 || opacity > 1 {
		opacity = 0.3
	}

	var fill scene.PathBuilder
	fill.MoveTo(pts[0].X, a.Base)
	for _, p := range pts {
		fill.LineTo(p.X, p.Y)
	}
	fill.LineTo(pts[len(pts)-1].X, a.Base).Close()

	ops := []scene.Op{
		scene.Path{Segments: fill.Segments(), Fill: a.Color, FillOpacity: opacity},
		scene.Path{Segments: scene.Polyline(pts...), Stroke: a.Color, StrokeWidth: 0.8, RoundCap: true},
	}
	if a.LabelSize > 0 {
		for i, p := range pts {
			ops = append(ops, scene.Text{
				X: p.X, Y: a.Base + a.LabelSize*1.3,
				S: a.Buckets[i].Label, Size: a.LabelSize, Align: scene.Center, Color: scene.ColorText,
			})
		}
	}
	return ops
}
