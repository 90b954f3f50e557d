// Package tree lays out the family-tree image.
//
// Each non-empty [group.Layer] becomes one horizontal tier: a caption, then
// a centered row of rounded boxes. Boxes below the first tier get a short
// vertical trunk connector pointing at the tier above; connectors do not
// route to a specific parent. A two-column color legend and a footer close
// the image.
//
// Width is fixed; height depends on the number of tiers. [Layout] computes
// every coordinate without drawing, and [ResolveHeight] returns the exact
// canvas height for a set of layers so a backend can allocate the final
// surface once.
package tree

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/matzehuels/kinreport/pkg/group"
	"github.com/matzehuels/kinreport/pkg/relation"
	"github.com/matzehuels/kinreport/pkg/render/scene"
)

// Geometry, in pixels.
const (
	Width          = 900.0
	Margin         = 30.0
	Header         = 80.0
	NodeWidth      = 180.0
	NodeHeight     = 60.0
	HSpacing       = 30.0
	VSpacing       = 80.0
	CaptionOffset  = 25.0
	BorderWidth    = 3.0
	CornerRadius   = 8.0
	ConnectorWidth = 2.0
	NodePadding    = 10.0

	LegendBox    = 18.0
	LegendRow    = 28.0
	LegendStroke = 4.0
	LegendCols   = 2
)

// DefaultSource is printed in the footer.
const DefaultSource = "ARBOL GENEALOGICO"

// FooterDateLayout renders dates the way es-ES locales do (d/m/yyyy).
const FooterDateLayout = "2/1/2006"

// Node is the computed box for one person.
type Node struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Label    string            `json:"label"`
	Category relation.Category `json:"category"`
	Layer    int               `json:"layer"`
	X        float64           `json:"x"`
	Y        float64           `json:"y"`
	W        float64           `json:"width"`
	H        float64           `json:"height"`
	Color    string            `json:"color"`
}

func (n Node) CenterX() float64 { return n.X + n.W/2 }
func (n Node) CenterY() float64 { return n.Y + n.H/2 }
func (n Node) Top() float64     { return n.Y }
func (n Node) Bottom() float64  { return n.Y + n.H }

// Trunk returns the connector from the top-center of the box up to half the
// vertical spacing above it. ok is false for nodes in the first tier.
func (n Node) Trunk() (x, y1, y2 float64, ok bool) {
	if n.Layer == 0 {
		return 0, 0, 0, false
	}
	return n.CenterX(), n.Top(), n.Top() - VSpacing/2, true
}

// Options configures Layout.
type Options struct {
	// Name is the principal's name shown in the title.
	Name string
	// Source is the footer attribution. Defaults to DefaultSource.
	Source string
	// Now stamps the footer date. Defaults to time.Now.
	Now time.Time
	// Measurer fits names into boxes. Defaults to scene.Approx.
	Measurer scene.Measurer
	// AutoWidth widens the canvas when a tier is wider than Width.
	AutoWidth bool
}

func (o *Options) setDefaults() {
	if o.Source == "" {
		o.Source = DefaultSource
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if o.Measurer == nil {
		o.Measurer = scene.Approx{}
	}
}

// Result is a computed tree layout.
type Result struct {
	Width   float64
	Height  float64
	Nodes   []Node
	Layers  []LayerInfo
	Page    scene.Page
	FooterY float64
}

// LayerInfo summarizes one drawn tier.
type LayerInfo struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Y     float64 `json:"y"`
}

// Node returns the node with the given person ID.
func (r Result) Node(id string) (Node, bool) {
	for _, n := range r.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Document wraps the page in a single-page document.
func (r Result) Document(title string) scene.Document {
	return scene.Document{Title: title, Unit: scene.UnitPx, Pages: []scene.Page{r.Page}}
}

// BlockWidth is the width of a row of n boxes.
func BlockWidth(n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(n)*NodeWidth + float64(n-1)*HSpacing
}

// StartX is the left edge of a centered row of n boxes.
func StartX(canvasWidth float64, n int) float64 {
	return (canvasWidth - BlockWidth(n)) / 2
}

// CanvasWidth returns Width, or the width needed by the widest tier when
// autoWidth is set.
func CanvasWidth(layers []group.Layer, autoWidth bool) float64 {
	w := Width
	if !autoWidth {
		return w
	}
	for _, l := range layers {
		w = math.Max(w, BlockWidth(len(l.People))+2*Margin)
	}
	return w
}

// Layout computes the tree image for layers.
func Layout(layers []group.Layer, opts Options) Result {
	opts.setDefaults()
	m := opts.Measurer
	w := CanvasWidth(layers, opts.AutoWidth)

	var ops []scene.Op
	ops = append(ops,
		scene.Text{X: w / 2, Y: Margin + 20, S: scene.Fit(m, "Árbol Genealógico: "+opts.Name, 24, scene.Bold, w-2*Margin), Size: 24, Style: scene.Bold, Align: scene.Center, Color: scene.ColorTitle},
		scene.Line(Margin, Margin+Header-10, w-Margin, Margin+Header-10, scene.ColorRule, 1),
	)

	res := Result{Width: w}
	y := Margin + Header
	li := -1
	for _, layer := range layers {
		n := len(layer.People)
		if n == 0 {
			continue
		}
		li++
		ops = append(ops, scene.Text{
			X: Margin, Y: y + 15,
			S:    fmt.Sprintf("%s (%d)", layer.Name(), n),
			Size: 14, Style: scene.Italic, Color: scene.ColorSecondary,
		})
		y += CaptionOffset
		layerY := y
		res.Layers = append(res.Layers, LayerInfo{Name: layer.Name(), Count: n, Y: layerY})

		x := StartX(w, n)
		var tier []Node
		for _, p := range layer.People {
			node := Node{
				ID: p.ID, Name: p.DisplayName(), Label: p.Relation,
				Category: layer.Category, Layer: li,
				X: x, Y: layerY, W: NodeWidth, H: NodeHeight,
				Color: layer.Category.Color(),
			}
			tier = append(tier, node)
			ops = append(ops, nodeOps(node, m)...)
			x += NodeWidth + HSpacing
		}
		for _, node := range tier {
			if cx, y1, y2, ok := node.Trunk(); ok {
				ln := scene.Line(cx, y1, cx, y2, scene.Color(node.Color), ConnectorWidth)
				ln.RoundCap = true
				ops = append(ops, ln)
			}
		}
		res.Nodes = append(res.Nodes, tier...)
		y = layerY + NodeHeight + VSpacing
	}

	legendOps, legendBottom := legend(y)
	ops = append(ops, legendOps...)

	footerY := legendBottom + 20 + Margin/2
	ops = append(ops,
		scene.Text{X: Margin, Y: footerY, S: "Fuente: " + opts.Source, Size: 14, Color: scene.ColorSecondary},
		scene.Text{X: w - Margin, Y: footerY, S: "Generado el: " + opts.Now.Format(FooterDateLayout), Size: 14, Align: scene.Right, Color: scene.ColorSecondary},
	)

	res.FooterY = footerY
	res.Height = footerY + Margin
	bg := scene.Rect{W: w, H: res.Height, Fill: scene.ColorWhite}
	res.Page = scene.Page{Width: w, Height: res.Height, Ops: append([]scene.Op{bg}, ops...)}
	return res
}

func nodeOps(n Node, m scene.Measurer) []scene.Op {
	inner := n.W - 2*NodePadding
	ops := []scene.Op{
		scene.Rect{X: n.X, Y: n.Y, W: n.W, H: n.H, Radius: CornerRadius, Fill: scene.ColorWhite, Stroke: scene.Color(n.Color), StrokeWidth: BorderWidth},
		scene.Text{
			X: n.CenterX(), Y: n.CenterY() - 8,
			S:    scene.Fit(m, n.Name, 14, scene.Bold, inner),
			Size: 14, Style: scene.Bold, Align: scene.Center, Color: scene.ColorText,
		},
	}
	if label := strings.TrimSpace(n.Label); label != "" && !strings.EqualFold(label, "principal") {
		ops = append(ops, scene.Text{
			X: n.CenterX(), Y: n.CenterY() + 14,
			S:    scene.Fit(m, "("+label+")", 12, scene.Italic, inner),
			Size: 12, Style: scene.Italic, Align: scene.Center, Color: scene.Color(n.Color),
		})
	}
	return ops
}

// legend draws the color key below the last tier. y is the cursor after the
// last tier's spacing. It returns the ops and the lowest item baseline.
func legend(y float64) ([]scene.Op, float64) {
	y -= VSpacing / 2
	y += 20

	ops := []scene.Op{scene.Text{
		X: Margin, Y: y + 10, S: "Leyenda de Parentesco:",
		Size: 18, Style: scene.Bold, Color: scene.ColorTitle,
	}}
	base := y + 20
	colWidth := Width/LegendCols - Margin
	bottom := base
	for i, c := range relation.LegendOrder() {
		col, row := i%LegendCols, i/LegendCols
		ix := Margin + float64(col)*colWidth
		iy := base + float64(row+1)*LegendRow
		ops = append(ops,
			scene.Rect{X: ix, Y: iy - LegendBox/2, W: LegendBox, H: LegendBox, Fill: scene.ColorWhite, Stroke: scene.Color(c.Color()), StrokeWidth: LegendStroke},
			scene.Text{X: ix + LegendBox + 10, Y: iy + 5, S: c.String(), Size: 14, Color: scene.ColorText},
		)
		bottom = math.Max(bottom, iy+5)
	}
	return ops, bottom
}

// ResolveHeight returns the canvas height Layout produces for layers,
// without laying anything out.
func ResolveHeight(layers []group.Layer) float64 {
	n := 0
	for _, l := range layers {
		if len(l.People) > 0 {
			n++
		}
	}
	y := Margin + Header + float64(n)*(CaptionOffset+NodeHeight+VSpacing)
	y = y - VSpacing/2 + 20
	rows := (relation.NumCategories + LegendCols - 1) / LegendCols
	legendBottom := y + 20 + float64(rows)*LegendRow + 5
	footerY := legendBottom + 20 + Margin/2
	return footerY + Margin
}
