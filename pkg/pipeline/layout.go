package pipeline

import (
	"fmt"

	"github.com/matzehuels/kinreport/pkg/group"
	"github.com/matzehuels/kinreport/pkg/kin"
	"github.com/matzehuels/kinreport/pkg/render/nodelink"
	"github.com/matzehuels/kinreport/pkg/render/report"
	"github.com/matzehuels/kinreport/pkg/render/scene"
	"github.com/matzehuels/kinreport/pkg/render/sink"
	"github.com/matzehuels/kinreport/pkg/render/tree"
	"github.com/matzehuels/kinreport/pkg/stats"
)

// treeImageScale is the raster density of the tree page embedded in
// reports, relative to the PNG artifact at scale 1.
const treeImageScale = 2.0

// =============================================================================
// Layout Generation
// =============================================================================

// Layout is the computed geometry of one run. Exactly one of Document and
// DOT is set; Export accompanies tree documents.
type Layout struct {
	Document scene.Document
	Export   *tree.Export
	DOT      string
}

// GenerateLayout computes the layout for opts.Kind. The lookup must
// already carry IDs (kin.Lookup.EnsureIDs). A nil fonts loads a fresh
// family; families must not be shared between concurrent runs.
func GenerateLayout(l kin.Lookup, opts Options, fonts *sink.Fonts) (Layout, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return Layout{}, err
	}
	if fonts == nil && opts.Kind != KindNodelink {
		f, err := sink.LoadFonts()
		if err != nil {
			return Layout{}, fmt.Errorf("load fonts: %w", err)
		}
		fonts = f
	}
	switch opts.Kind {
	case KindTree:
		res := generateTree(l, opts, fonts)
		e := res.Export(l.Principal.DisplayName(), opts.Now)
		return Layout{Document: res.Document(treeTitle(l)), Export: &e}, nil
	case KindReport:
		return generateReport(l, opts, fonts)
	case KindCertificate:
		doc, err := report.Certificate(reportData(l, opts), reportOptions(opts, fonts))
		return Layout{Document: doc}, err
	case KindNodelink:
		return Layout{DOT: nodelink.ToDOT(l, nodelink.Options{
			Detailed:            opts.Detailed,
			IncludeUnclassified: opts.Unclassified,
			Now:                 opts.Now,
		})}, nil
	}
	return Layout{}, ValidateKind(opts.Kind)
}

func treeTitle(l kin.Lookup) string {
	return "Árbol Genealógico: " + l.Principal.DisplayName()
}

// =============================================================================
// Tree
// =============================================================================

func generateTree(l kin.Lookup, opts Options, fonts *sink.Fonts) tree.Result {
	layers := group.Layers(l.Principal, l.Relatives)
	return tree.Layout(layers, tree.Options{
		Name:      l.Principal.DisplayName(),
		Now:       opts.Now,
		Measurer:  measurer(fonts, scene.UnitPx),
		AutoWidth: opts.AutoWidth,
	})
}

// =============================================================================
// Reports
// =============================================================================

func reportData(l kin.Lookup, opts Options) report.Data {
	so := stats.DefaultOptions()
	so.Now = opts.Now
	return report.NewData(l, so)
}

func reportOptions(opts Options, fonts *sink.Fonts) report.Options {
	return report.Options{
		Now:      opts.Now,
		Source:   opts.Source,
		Measurer: measurer(fonts, scene.UnitMM),
	}
}

func generateReport(l kin.Lookup, opts Options, fonts *sink.Fonts) (Layout, error) {
	ro := reportOptions(opts, fonts)
	if !opts.NoTree {
		res := generateTree(l, opts, fonts)
		img, err := sink.Image(res.Document(treeTitle(l)), fonts, treeImageScale*opts.Scale)
		if err != nil {
			return Layout{}, fmt.Errorf("rasterize tree page: %w", err)
		}
		ro.TreeImage = img
	}
	doc, err := report.Genealogy(reportData(l, opts), ro)
	return Layout{Document: doc}, err
}

func measurer(fonts *sink.Fonts, unit float64) scene.Measurer {
	return sink.FontMeasurer{Fonts: fonts, Unit: unit}
}

// =============================================================================
// Inspection
// =============================================================================

// Inspection is the grouped view of a lookup, without any drawing.
type Inspection struct {
	Lookup   kin.Lookup
	Layers   []group.Layer
	Dropped  []kin.Person
	Branches group.Branches
	Stats    stats.Snapshot
	// Height is the tree canvas height the layers need.
	Height float64
}

// Inspect groups and aggregates l the way the documents do.
func Inspect(l kin.Lookup, opts stats.Options) Inspection {
	l.EnsureIDs()
	d := report.NewData(l, opts)
	layers := group.Layers(l.Principal, l.Relatives)
	return Inspection{
		Lookup:   l,
		Layers:   layers,
		Dropped:  group.Dropped(l.Relatives),
		Branches: d.Branches,
		Stats:    d.Stats,
		Height:   tree.ResolveHeight(layers),
	}
}
