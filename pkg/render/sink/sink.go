// Package sink draws scene documents with github.com/tdewolff/canvas and
// encodes them as PDF or PNG.
//
// [Canvas] implements [scene.Surface]. Scene coordinates are multiplied by
// the document unit so every canvas is sized in millimetres; text sizes are
// converted to points when faces are created.
package sink

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/matzehuels/kinreport/pkg/render/scene"
)

// Canvas collects one canvas per page.
type Canvas struct {
	FontMeasurer

	pages []*canvas.Canvas
	cur   *canvas.Canvas
	ctx   *canvas.Context
}

var _ scene.Surface = (*Canvas)(nil)

// NewCanvas returns an empty surface for documents in unit.
func NewCanvas(unit float64, f *Fonts) *Canvas {
	return &Canvas{FontMeasurer: FontMeasurer{Fonts: f, Unit: unit}}
}

func (c *Canvas) mm(v float64) float64 { return v * c.Unit }

func (c *Canvas) BeginPage(w, h float64) error {
	if c.cur != nil {
		return fmt.Errorf("page already open")
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("invalid page size %vx%v", w, h)
	}
	c.cur = canvas.New(c.mm(w), c.mm(h))
	c.ctx = canvas.NewContext(c.cur)
	c.ctx.SetCoordSystem(canvas.CartesianIV)
	return nil
}

func (c *Canvas) EndPage() error {
	if c.cur == nil {
		return fmt.Errorf("no page open")
	}
	c.pages = append(c.pages, c.cur)
	c.cur, c.ctx = nil, nil
	return nil
}

// Pages returns the number of finished pages.
func (c *Canvas) Pages() int { return len(c.pages) }

func (c *Canvas) setPaint(fill scene.Color, opacity float64, stroke scene.Color, width float64) {
	c.ctx.SetFillColor(parseColor(fill, opacity))
	if stroke == "" || width <= 0 {
		c.ctx.SetStrokeColor(color.RGBA{})
		c.ctx.SetStrokeWidth(0)
		return
	}
	c.ctx.SetStrokeColor(parseColor(stroke, 1))
	c.ctx.SetStrokeWidth(c.mm(width))
}

func (c *Canvas) DrawRect(r scene.Rect) {
	c.setPaint(r.Fill, 1, r.Stroke, r.StrokeWidth)
	c.ctx.SetStrokeCapper(canvas.ButtCap)
	var p *canvas.Path
	if r.Radius > 0 {
		p = canvas.RoundedRectangle(c.mm(r.W), c.mm(r.H), c.mm(r.Radius))
	} else {
		p = canvas.Rectangle(c.mm(r.W), c.mm(r.H))
	}
	c.ctx.DrawPath(c.mm(r.X), c.mm(r.Y), p)
}

func (c *Canvas) DrawPath(sp scene.Path) {
	if len(sp.Segments) == 0 {
		return
	}
	c.setPaint(sp.Fill, sp.FillOpacity, sp.Stroke, sp.StrokeWidth)
	if sp.RoundCap {
		c.ctx.SetStrokeCapper(canvas.RoundCap)
	} else {
		c.ctx.SetStrokeCapper(canvas.ButtCap)
	}
	p := &canvas.Path{}
	for _, s := range sp.Segments {
		switch s.Kind {
		case scene.MoveTo:
			p.MoveTo(c.mm(s.X), c.mm(s.Y))
		case scene.LineTo:
			p.LineTo(c.mm(s.X), c.mm(s.Y))
		case scene.ArcTo:
			p.ArcTo(c.mm(s.RX), c.mm(s.RY), 0, s.Large, s.Sweep, c.mm(s.X), c.mm(s.Y))
		case scene.Close:
			p.Close()
		}
	}
	c.ctx.DrawPath(0, 0, p)
}

func (c *Canvas) DrawText(t scene.Text) {
	if t.S == "" || t.Size <= 0 {
		return
	}
	face := c.Fonts.Face(c.mm(t.Size), parseColor(t.Color, 1), t.Style)
	align := canvas.Left
	switch t.Align {
	case scene.Center:
		align = canvas.Center
	case scene.Right:
		align = canvas.Right
	}
	c.ctx.DrawText(c.mm(t.X), c.mm(t.Y), canvas.NewTextLine(face, t.S, align))
}

func (c *Canvas) DrawImage(im scene.Image) {
	if im.Img == nil || im.W <= 0 {
		return
	}
	dpmm := float64(im.Img.Bounds().Dx()) / c.mm(im.W)
	if dpmm <= 0 {
		return
	}
	c.ctx.DrawImage(c.mm(im.X), c.mm(im.Y), im.Img, canvas.DPMM(dpmm))
}

// WritePDF writes every page as one PDF document.
func (c *Canvas) WritePDF(w io.Writer, title string) error {
	if len(c.pages) == 0 {
		return fmt.Errorf("nothing to write")
	}
	first := c.pages[0]
	writer := pdf.New(w, first.W, first.H, nil)
	writer.SetInfo(title, "", "", "", "kinreport")
	for i, pg := range c.pages {
		if i > 0 {
			writer.NewPage(pg.W, pg.H)
		}
		pg.RenderTo(writer)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// Rasterize renders page i at pixelsPerUnit pixels per scene unit.
func (c *Canvas) Rasterize(i int, pixelsPerUnit float64) (image.Image, error) {
	if i < 0 || i >= len(c.pages) {
		return nil, fmt.Errorf("page %d out of range (%d pages)", i, len(c.pages))
	}
	if pixelsPerUnit <= 0 {
		pixelsPerUnit = 1
	}
	res := canvas.DPMM(pixelsPerUnit / c.Unit)
	return rasterizer.Draw(c.pages[i], res, canvas.DefaultColorSpace), nil
}

// WritePNG encodes the single page as PNG. Multi-page documents are
// rejected.
func (c *Canvas) WritePNG(w io.Writer, pixelsPerUnit float64) error {
	if len(c.pages) != 1 {
		return fmt.Errorf("png needs exactly one page, have %d", len(c.pages))
	}
	img, err := c.Rasterize(0, pixelsPerUnit)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// parseColor turns a #RRGGBB color into a premultiplied RGBA with the given
// opacity. Empty colors are fully transparent; opacity 0 means opaque.
func parseColor(c scene.Color, opacity float64) color.RGBA {
	if c == "" {
		return color.RGBA{}
	}
	base := canvas.Hex(string(c))
	if opacity <= 0 || opacity >= 1 {
		return base
	}
	return color.RGBA{
		R: uint8(float64(base.R) * opacity),
		G: uint8(float64(base.G) * opacity),
		B: uint8(float64(base.B) * opacity),
		A: uint8(float64(base.A) * opacity),
	}
}

// Draw replays doc onto a fresh canvas surface.
func Draw(doc scene.Document, f *Fonts) (*Canvas, error) {
	unit := doc.Unit
	if unit <= 0 {
		unit = scene.UnitMM
	}
	c := NewCanvas(unit, f)
	if err := scene.Replay(doc, c); err != nil {
		return nil, err
	}
	return c, nil
}

// PDF renders doc to PDF bytes.
func PDF(doc scene.Document, f *Fonts) ([]byte, error) {
	c, err := Draw(doc, f)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := c.WritePDF(&buf, doc.Title); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PNG renders a single-page doc to PNG bytes.
func PNG(doc scene.Document, f *Fonts, pixelsPerUnit float64) ([]byte, error) {
	c, err := Draw(doc, f)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := c.WritePNG(&buf, pixelsPerUnit); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Image rasterizes the first page of doc, for embedding into another
// document.
func Image(doc scene.Document, f *Fonts, pixelsPerUnit float64) (image.Image, error) {
	c, err := Draw(doc, f)
	if err != nil {
		return nil, err
	}
	return c.Rasterize(0, pixelsPerUnit)
}
