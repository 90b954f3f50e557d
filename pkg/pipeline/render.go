package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/kinreport/pkg/render/nodelink"
	"github.com/matzehuels/kinreport/pkg/render/sink"
	"github.com/matzehuels/kinreport/pkg/render/tree"
)

// RenderFromLayout encodes a computed layout in opts.Format.
func RenderFromLayout(ctx context.Context, l Layout, opts Options, fonts *sink.Fonts) ([]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Kind == KindNodelink {
		return renderNodelink(ctx, l.DOT, opts.Format)
	}

	switch opts.Format {
	case FormatJSON:
		if l.Export == nil {
			return nil, fmt.Errorf("%s layout has no JSON export", opts.Kind)
		}
		return tree.MarshalExport(*l.Export)
	case FormatPDF, FormatPNG:
	default:
		return nil, fmt.Errorf("unsupported %s format: %s", opts.Kind, opts.Format)
	}

	if fonts == nil {
		f, err := sink.LoadFonts()
		if err != nil {
			return nil, fmt.Errorf("load fonts: %w", err)
		}
		fonts = f
	}
	if opts.Format == FormatPNG {
		return sink.PNG(l.Document, fonts, opts.Scale)
	}
	return sink.PDF(l.Document, fonts)
}

func renderNodelink(ctx context.Context, dot, format string) ([]byte, error) {
	if dot == "" {
		return nil, fmt.Errorf("nodelink layout missing DOT source")
	}
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return nodelink.RenderSVG(ctx, dot)
	}
	return nil, fmt.Errorf("unsupported nodelink format: %s", format)
}
