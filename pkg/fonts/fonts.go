// Package fonts provides the embedded font files used by the PNG and PDF
// backends.
//
// The faces are the Go fonts from golang.org/x/image, compiled into the
// binary so rendering never depends on fonts installed on the host.
package fonts

import (
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/matzehuels/kinreport/pkg/render/scene"
)

// FontFamily is the family name registered with the drawing backend.
const FontFamily = "Go"

// FallbackFontFamily is used where a renderer resolves fonts by name, such
// as Graphviz.
const FallbackFontFamily = "Helvetica,Arial,sans-serif"

// RegularTTF returns the regular face.
func RegularTTF() []byte { return goregular.TTF }

// BoldTTF returns the bold face.
func BoldTTF() []byte { return gobold.TTF }

// ItalicTTF returns the italic face.
func ItalicTTF() []byte { return goitalic.TTF }

// TTF returns the face for a scene style.
func TTF(s scene.Style) []byte {
	switch s {
	case scene.Bold:
		return BoldTTF()
	case scene.Italic:
		return ItalicTTF()
	}
	return RegularTTF()
}
