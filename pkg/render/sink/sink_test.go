package sink

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/matzehuels/kinreport/pkg/render/scene"
)

func loadFonts(t *testing.T) *Fonts {
	t.Helper()
	f, err := LoadFonts()
	if err != nil {
		t.Fatalf("LoadFonts: %v", err)
	}
	return f
}

func sample(unit float64, pages int) scene.Document {
	doc := scene.Document{Title: "test", Unit: unit}
	for i := 0; i < pages; i++ {
		pg := doc.NewPage(200, 100)
		var arc scene.PathBuilder
		arc.MoveTo(100, 20).ArcTo(30, 30, true, true, 130, 50)
		pg.Add(
			scene.Rect{W: 200, H: 100, Fill: scene.ColorWhite},
			scene.Rect{X: 10, Y: 10, W: 50, H: 30, Radius: 4, Fill: "#FFC107", Stroke: "#333333", StrokeWidth: 1},
			scene.Path{Segments: arc.Segments(), Stroke: "#28A745", StrokeWidth: 3, RoundCap: true},
			scene.Path{Segments: scene.Polyline(scene.Point{X: 10, Y: 90}, scene.Point{X: 60, Y: 60}, scene.Point{X: 110, Y: 90}), Fill: "#17A2B8", FillOpacity: 0.3},
			scene.Text{X: 100, Y: 80, S: "Árbol Genealógico", Size: 8, Style: scene.Bold, Align: scene.Center, Color: scene.ColorTitle},
			scene.Image{X: 150, Y: 10, W: 20, H: 20, Img: image.NewRGBA(image.Rect(0, 0, 40, 40))},
		)
	}
	return doc
}

func TestPNG(t *testing.T) {
	data, err := PNG(sample(scene.UnitPx, 1), loadFonts(t), 1)
	if err != nil {
		t.Fatalf("PNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	if abs(b.Dx()-200) > 1 || abs(b.Dy()-100) > 1 {
		t.Errorf("png is %dx%d, want about 200x100", b.Dx(), b.Dy())
	}
}

func TestPNGRejectsMultiPage(t *testing.T) {
	if _, err := PNG(sample(scene.UnitPx, 2), loadFonts(t), 1); err == nil {
		t.Error("expected an error for a two-page png")
	}
}

func TestPDF(t *testing.T) {
	data, err := PDF(sample(scene.UnitMM, 3), loadFonts(t))
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output does not look like a pdf: %q", data[:min(8, len(data))])
	}
}

func TestDrawEmptyDocument(t *testing.T) {
	if _, err := Draw(scene.Document{}, loadFonts(t)); err == nil {
		t.Error("expected an error for a document without pages")
	}
}

func TestPageBalance(t *testing.T) {
	c := NewCanvas(scene.UnitMM, loadFonts(t))
	if err := c.EndPage(); err == nil {
		t.Error("EndPage without BeginPage should fail")
	}
	if err := c.BeginPage(10, 10); err != nil {
		t.Fatal(err)
	}
	if err := c.BeginPage(10, 10); err == nil {
		t.Error("nested BeginPage should fail")
	}
	if err := c.EndPage(); err != nil || c.Pages() != 1 {
		t.Errorf("EndPage: %v, pages=%d", err, c.Pages())
	}
}

func TestFontMeasurer(t *testing.T) {
	m := FontMeasurer{Fonts: loadFonts(t), Unit: scene.UnitMM}
	wide := m.TextWidth("MMMM", 5, scene.Regular)
	narrow := m.TextWidth("iiii", 5, scene.Regular)
	if wide <= narrow || narrow <= 0 {
		t.Errorf("widths: M=%v i=%v", wide, narrow)
	}
	if m.TextWidth("", 5, scene.Bold) != 0 {
		t.Error("empty string should measure 0")
	}
	if double := m.TextWidth("MMMM", 10, scene.Regular); double < 1.9*wide || double > 2.1*wide {
		t.Errorf("width should scale with size: %v vs %v", double, wide)
	}

	px := FontMeasurer{Fonts: m.Fonts, Unit: scene.UnitPx}
	if got := px.TextWidth("MMMM", 5, scene.Regular); got < 0.99*wide || got > 1.01*wide {
		t.Errorf("width in px units = %v, want %v", got, wide)
	}
}

func TestParseColor(t *testing.T) {
	if c := parseColor("", 1); c.A != 0 {
		t.Errorf("empty color = %v", c)
	}
	if c := parseColor("#FF0000", 0); c.R != 255 || c.A != 255 {
		t.Errorf("opaque red = %v", c)
	}
	if c := parseColor("#FF0000", 0.5); c.A != 127 || c.R != 127 {
		t.Errorf("half red = %v", c)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
