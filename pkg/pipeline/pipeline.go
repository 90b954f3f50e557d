// Package pipeline provides the render pipeline shared by the CLI and the
// HTTP service.
//
// One run is a single sequential pass:
//
//  1. Fetch: look the DNI up in the civil registry (cached)
//  2. Layout: classify and group relatives, aggregate statistics and
//     compute the geometry of the requested document
//  3. Render: draw the geometry and encode the artifact (PNG, PDF, JSON,
//     SVG or DOT)
//
// Nothing is shared between runs except the caches and the history store,
// so one Runner serves concurrent requests.
//
// # Usage
//
//	runner := pipeline.NewRunner(client, c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    DNI:  "12345678",
//	    Kind: pipeline.KindReport,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(result.Filename, result.Artifact, 0o644)
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kinreport/pkg/cache"
	"github.com/matzehuels/kinreport/pkg/errors"
)

// Artifact kinds.
const (
	KindTree        = "tree"
	KindReport      = "report"
	KindCertificate = "certificate"
	KindNodelink    = "nodelink"
)

// Output formats.
const (
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatDOT  = "dot"
)

// DefaultScale is the raster resolution multiplier.
const DefaultScale = 1.0

// MaxScale bounds Scale.
const MaxScale = 8.0

// Kinds lists the kinds in display order.
var Kinds = []string{KindTree, KindReport, KindCertificate, KindNodelink}

// KindFormats maps each kind to its formats; the first is the default.
var KindFormats = map[string][]string{
	KindTree:        {FormatPNG, FormatPDF, FormatJSON},
	KindReport:      {FormatPDF},
	KindCertificate: {FormatPDF},
	KindNodelink:    {FormatSVG, FormatDOT},
}

var contentTypes = map[string]string{
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatJSON: "application/json",
	FormatSVG:  "image/svg+xml",
	FormatDOT:  "text/vnd.graphviz; charset=utf-8",
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	if ct, ok := contentTypes[format]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ValidateKind checks that a kind is supported.
func ValidateKind(kind string) error {
	if _, ok := KindFormats[kind]; !ok {
		return errors.New(errors.ErrCodeInvalidKind, "invalid kind: %q (must be one of: %s)", kind, strings.Join(Kinds, ", "))
	}
	return nil
}

// ValidateFormat checks that format can be produced for kind.
func ValidateFormat(kind, format string) error {
	if err := ValidateKind(kind); err != nil {
		return err
	}
	for _, f := range KindFormats[kind] {
		if f == format {
			return nil
		}
	}
	return errors.New(errors.ErrCodeInvalidFormat, "invalid format %q for %s (must be one of: %s)",
		format, kind, strings.Join(KindFormats[kind], ", "))
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one run. It doubles as the JSON body of
// POST /v1/render.
type Options struct {
	DNI    string `json:"dni"`
	Kind   string `json:"kind"`
	Format string `json:"format,omitempty"`

	// Scale multiplies raster resolution (tree PNG and the tree page
	// embedded in reports).
	Scale float64 `json:"scale,omitempty"`
	// Source is printed in report footers.
	Source string `json:"source,omitempty"`
	// Detailed adds DNI and age to node-link labels.
	Detailed bool `json:"detailed,omitempty"`
	// Unclassified keeps relatives with unknown labels in node-link views.
	Unclassified bool `json:"unclassified,omitempty"`
	// AutoWidth widens the tree canvas when a tier does not fit.
	AutoWidth bool `json:"auto_width,omitempty"`
	// NoTree leaves the tree page out of the genealogy report.
	NoTree  bool `json:"no_tree,omitempty"`
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Now    time.Time   `json:"-"`
	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// Calling it twice has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.DNI = strings.TrimSpace(o.DNI)
	if err := errors.ValidateDNI(o.DNI); err != nil {
		return err
	}
	o.Kind = strings.ToLower(strings.TrimSpace(o.Kind))
	if o.Kind == "" {
		o.Kind = KindTree
	}
	if err := ValidateKind(o.Kind); err != nil {
		return err
	}
	o.Format = strings.ToLower(strings.TrimSpace(o.Format))
	if o.Format == "" {
		o.Format = KindFormats[o.Kind][0]
	}
	if err := ValidateFormat(o.Kind, o.Format); err != nil {
		return err
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Scale < 0 || o.Scale > MaxScale {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be in (0, %g], got %g", MaxScale, o.Scale)
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Filename is the suggested download name, e.g. "report-12345678.pdf".
func (o *Options) Filename() string {
	return o.Kind + "-" + o.DNI + "." + o.Format
}

// ArtifactKeyOpts returns cache key options for the artifact. content is
// the hash of the lookup being drawn.
func (o *Options) ArtifactKeyOpts(content string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Kind:         o.Kind,
		Format:       o.Format,
		Scale:        o.Scale,
		Content:      content,
		Source:       o.Source,
		Detailed:     o.Detailed,
		Unclassified: o.Unclassified,
		AutoWidth:    o.AutoWidth,
		NoTree:       o.NoTree,
		Day:          o.Now.Format("2006-01-02"),
	}
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	Options  Options
	Artifact []byte
	// ContentType is the MIME type of Artifact.
	ContentType string
	Filename    string
	// Pages is the page count of freshly drawn PDF artifacts, zero for
	// other formats and cache hits.
	Pages int

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains run statistics.
type Stats struct {
	Relatives  int
	FetchTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// Total is the wall time of the three stages.
func (s Stats) Total() time.Duration {
	return s.FetchTime + s.LayoutTime + s.RenderTime
}

// CacheInfo tracks which stages hit the cache.
type CacheInfo struct {
	LookupHit   bool
	ArtifactHit bool
}
