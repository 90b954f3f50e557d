// Package scene is a backend-neutral display list.
//
// Layout packages emit [Op] values into [Page]s of a [Document]. Nothing is
// drawn while laying out; a backend implementing [Surface] receives the ops
// later through [Replay]. Because the display list is plain data, its extent
// can be measured with [Bounds] before any canvas is allocated.
//
// Coordinates have their origin at the top-left corner with Y growing
// downwards. [Document.Unit] gives the size of one coordinate unit in
// millimetres, so the same list can target pixels (tree image) or
// millimetres (A4 reports).
package scene

import "image"

// Common units, in millimetres per coordinate unit.
const (
	UnitMM = 1.0
	// UnitPx is one CSS pixel at 96 dpi.
	UnitPx = 25.4 / 96
)

// Color is a #RRGGBB or #RRGGBBAA string. The empty color draws nothing.
type Color string

// Palette shared by the documents.
const (
	ColorWhite     Color = "#FFFFFF"
	ColorTitle     Color = "#333333"
	ColorText      Color = "#444444"
	ColorSecondary Color = "#999999"
	ColorRule      Color = "#CCCCCC"
	ColorStripe    Color = "#F4F6F8"
)

// Style selects a font face.
type Style int

const (
	Regular Style = iota
	Bold
	Italic
)

// Align is the horizontal anchor of a text run.
type Align int

const (
	Left Align = iota
	Center
	Right
)

// Point is a 2-D coordinate.
type Point struct{ X, Y float64 }

// Op is one drawing instruction.
type Op interface {
	isOp()
}

// Rect is a rectangle with optional rounded corners. Fill and stroke are
// each skipped when their color is empty.
type Rect struct {
	X, Y, W, H  float64
	Radius      float64
	Fill        Color
	Stroke      Color
	StrokeWidth float64
}

// Path is an outline built from segments.
type Path struct {
	Segments    []Segment
	Fill        Color
	FillOpacity float64 // 0 means opaque
	Stroke      Color
	StrokeWidth float64
	RoundCap    bool
}

// Text is a single line anchored at its baseline.
type Text struct {
	X, Y  float64
	S     string
	Size  float64
	Style Style
	Align Align
	Color Color
}

// Image places a raster image into the box at X, Y with size W×H.
type Image struct {
	X, Y, W, H float64
	Img        image.Image
}

func (Rect) isOp()  {}
func (Path) isOp()  {}
func (Text) isOp()  {}
func (Image) isOp() {}

// Page is one fixed-size drawing area.
type Page struct {
	Width, Height float64
	Ops           []Op
}

// Add appends ops to the page.
func (p *Page) Add(ops ...Op) { p.Ops = append(p.Ops, ops...) }

// Document is an ordered list of pages sharing one unit.
type Document struct {
	Title string
	Unit  float64
	Pages []Page
}

// NewPage appends an empty page and returns it for drawing.
func (d *Document) NewPage(w, h float64) *Page {
	d.Pages = append(d.Pages, Page{Width: w, Height: h})
	return &d.Pages[len(d.Pages)-1]
}
