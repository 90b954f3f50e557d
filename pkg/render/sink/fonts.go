package sink

import (
	"fmt"
	"image/color"

	"github.com/tdewolff/canvas"

	"github.com/matzehuels/kinreport/pkg/fonts"
	"github.com/matzehuels/kinreport/pkg/render/scene"
)

// ptPerMM converts millimetres to typographic points.
const ptPerMM = 72 / 25.4

// Fonts is a loaded font family. A FontFamily is not safe for concurrent
// use, so each render loads its own.
type Fonts struct {
	family *canvas.FontFamily
}

// LoadFonts loads the embedded regular, bold and italic faces.
func LoadFonts() (*Fonts, error) {
	family := canvas.NewFontFamily(fonts.FontFamily)
	for _, s := range []scene.Style{scene.Regular, scene.Bold, scene.Italic} {
		if err := family.LoadFont(fonts.TTF(s), 0, canvasStyle(s)); err != nil {
			return nil, fmt.Errorf("load %s face: %w", styleName(s), err)
		}
	}
	return &Fonts{family: family}, nil
}

// Face returns a face of sizeMM millimetres.
func (f *Fonts) Face(sizeMM float64, col color.Color, s scene.Style) *canvas.FontFace {
	return f.family.Face(sizeMM*ptPerMM, col, canvasStyle(s), canvas.FontNormal)
}

func canvasStyle(s scene.Style) canvas.FontStyle {
	switch s {
	case scene.Bold:
		return canvas.FontBold
	case scene.Italic:
		return canvas.FontRegular | canvas.FontItalic
	}
	return canvas.FontRegular
}

func styleName(s scene.Style) string {
	switch s {
	case scene.Bold:
		return "bold"
	case scene.Italic:
		return "italic"
	}
	return "regular"
}

// FontMeasurer measures text with the embedded fonts. Unit is the scene's
// millimetres per unit.
type FontMeasurer struct {
	Fonts *Fonts
	Unit  float64
}

// NewMeasurer loads fonts and returns a measurer for documents in unit.
func NewMeasurer(unit float64) (FontMeasurer, error) {
	f, err := LoadFonts()
	if err != nil {
		return FontMeasurer{}, err
	}
	return FontMeasurer{Fonts: f, Unit: unit}, nil
}

func (m FontMeasurer) TextWidth(s string, size float64, style scene.Style) float64 {
	if s == "" || m.Unit <= 0 {
		return 0
	}
	face := m.Fonts.Face(size*m.Unit, canvas.Black, style)
	return face.TextWidth(s) / m.Unit
}
