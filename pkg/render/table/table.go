// Package table lays out fixed-row-height tables for report pages.
//
// Column widths are fractions of the table width. Rows are emitted top to
// bottom while their bottom edge stays at or above Spec.MaxY; the rest are
// dropped and only reported through Result.Drawn. Splitting a long list over
// several pages is the caller's job (see [Capacity] and [Chunk]).
package table

import (
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/kinreport/pkg/kin"
	"github.com/matzehuels/kinreport/pkg/render/scene"
)

// Column describes one table column.
type Column struct {
	Title string
	Frac  float64
	Align scene.Align
}

// Spec is the input to Layout.
type Spec struct {
	X, Y, Width float64
	Columns     []Column
	Rows        [][]string
	Header      bool

	RowHeight float64
	// MaxY is the lowest allowed row bottom. Zero means unbounded.
	MaxY     float64
	FontSize float64
	Padding  float64
	// Placeholder replaces blank cells. Defaults to kin.NA.
	Placeholder string
	Measurer    scene.Measurer

	HeaderFill scene.Color
	HeaderText scene.Color
	Stripe     scene.Color
	Border     scene.Color
}

// Result is a laid-out table.
type Result struct {
	Ops []scene.Op
	// Drawn is the number of body rows that fit.
	Drawn int
	// Bottom is the Y coordinate below the last emitted row.
	Bottom float64
}

// Truncated returns how many of the spec's rows were dropped.
func (r Result) Truncated(s Spec) int { return len(s.Rows) - r.Drawn }

func (s *Spec) setDefaults() {
	if s.RowHeight <= 0 {
		s.RowHeight = 8
	}
	if s.FontSize <= 0 {
		s.FontSize = 3.5
	}
	if s.Padding <= 0 {
		s.Padding = 2
	}
	if s.Placeholder == "" {
		s.Placeholder = kin.NA
	}
	if s.Measurer == nil {
		s.Measurer = scene.Approx{}
	}
	if s.HeaderFill == "" {
		s.HeaderFill = "#2C3E50"
	}
	if s.HeaderText == "" {
		s.HeaderText = scene.ColorWhite
	}
	if s.Border == "" {
		s.Border = scene.ColorRule
	}
}

// Validate checks the column set.
func (s Spec) Validate() error {
	if len(s.Columns) == 0 {
		return fmt.Errorf("table needs at least one column")
	}
	if s.Width <= 0 {
		return fmt.Errorf("table width must be positive, got %v", s.Width)
	}
	sum := 0.0
	for i, c := range s.Columns {
		if c.Frac <= 0 {
			return fmt.Errorf("column %d: fraction must be positive", i)
		}
		sum += c.Frac
	}
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("column fractions sum to %v, want 1", sum)
	}
	return nil
}

// Edges returns the X coordinate of every column boundary, len(Columns)+1
// values from X to X+Width.
func (s Spec) Edges() []float64 {
	edges := make([]float64, 0, len(s.Columns)+1)
	x := s.X
	edges = append(edges, x)
	for i, c := range s.Columns {
		x += c.Frac * s.Width
		if i == len(s.Columns)-1 {
			x = s.X + s.Width
		}
		edges = append(edges, x)
	}
	return edges
}

// Layout computes the table. It returns an error only for an invalid spec.
func Layout(s Spec) (Result, error) {
	if err := s.Validate(); err != nil {
		return Result{}, err
	}
	s.setDefaults()
	edges := s.Edges()

	var res Result
	y := s.Y
	fits := func() bool { return s.MaxY <= 0 || y+s.RowHeight <= s.MaxY }

	if s.Header && fits() {
		res.Ops = append(res.Ops, scene.Rect{X: s.X, Y: y, W: s.Width, H: s.RowHeight, Fill: s.HeaderFill})
		for i, c := range s.Columns {
			res.Ops = append(res.Ops, s.cell(edges[i], edges[i+1], y, c.Title, c.Align, scene.Bold, s.HeaderText))
		}
		y += s.RowHeight
	}

	for ri, row := range s.Rows {
		if !fits() {
			break
		}
		if s.Stripe != "" && ri%2 == 1 {
			res.Ops = append(res.Ops, scene.Rect{X: s.X, Y: y, W: s.Width, H: s.RowHeight, Fill: s.Stripe})
		}
		for i, c := range s.Columns {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			if strings.TrimSpace(v) == "" {
				v = s.Placeholder
			}
			res.Ops = append(res.Ops, s.cell(edges[i], edges[i+1], y, v, c.Align, scene.Regular, scene.ColorText))
		}
		res.Ops = append(res.Ops, scene.Line(s.X, y+s.RowHeight, s.X+s.Width, y+s.RowHeight, s.Border, 0.2))
		y += s.RowHeight
		res.Drawn++
	}
	res.Bottom = y
	return res, nil
}

func (s Spec) cell(x0, x1, y float64, v string, align scene.Align, style scene.Style, c scene.Color) scene.Text {
	inner := x1 - x0 - 2*s.Padding
	t := scene.Text{
		Y:     y + s.RowHeight/2 + s.FontSize*0.35,
		S:     scene.Fit(s.Measurer, v, s.FontSize, style, inner),
		Size:  s.FontSize,
		Style: style,
		Align: align,
		Color: c,
	}
	switch align {
	case scene.Center:
		t.X = (x0 + x1) / 2
	case scene.Right:
		t.X = x1 - s.Padding
	default:
		t.X = x0 + s.Padding
	}
	return t
}

// Capacity returns how many body rows fit between top and maxY, after an
// optional header row.
func Capacity(top, maxY, rowHeight float64, header bool) int {
	if rowHeight <= 0 {
		return 0
	}
	if header {
		top += rowHeight
	}
	n := int(math.Floor((maxY - top + 1e-9) / rowHeight))
	return max(n, 0)
}

// Chunk splits rows into pages of at most n rows. An empty input yields no
// chunks; n < 1 is treated as 1.
func Chunk[T any](rows []T, n int) [][]T {
	n = max(n, 1)
	var out [][]T
	for len(rows) > 0 {
		k := min(n, len(rows))
		out = append(out, rows[:k])
		rows = rows[k:]
	}
	return out
}
