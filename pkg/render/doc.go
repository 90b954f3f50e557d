// Package render groups the artifact renderers.
//
// Raster and PDF output is built in two steps. A layout package ([tree],
// [report], [chart], [table]) appends drawing primitives to a
// [scene.Document]; a [sink] then draws the scene with tdewolff/canvas and
// encodes it as PNG or PDF. The [nodelink] package is separate: it emits
// Graphviz DOT and renders SVG through go-graphviz.
//
// [tree]: github.com/matzehuels/kinreport/pkg/render/tree
// [report]: github.com/matzehuels/kinreport/pkg/render/report
// [chart]: github.com/matzehuels/kinreport/pkg/render/chart
// [table]: github.com/matzehuels/kinreport/pkg/render/table
// [scene.Document]: github.com/matzehuels/kinreport/pkg/render/scene
// [sink]: github.com/matzehuels/kinreport/pkg/render/sink
// [nodelink]: github.com/matzehuels/kinreport/pkg/render/nodelink
package render
