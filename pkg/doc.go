// Package pkg holds the kinreport libraries.
//
// The data flow for one render:
//
//	registry (DNI lookup, cached)
//	    ↓
//	relation / group (classify relatives into layers and branches)
//	    ↓
//	stats (sex and age buckets)
//	    ↓
//	render/{tree,report,nodelink} (scene or graph)
//	    ↓
//	render/sink (PNG, PDF) or JSON / DOT / SVG
//
// [pipeline] ties the stages together behind a cached Runner; [cache],
// [history], [config], [errors] and [observability] support it.
//
// [pipeline]: github.com/matzehuels/kinreport/pkg/pipeline
// [cache]: github.com/matzehuels/kinreport/pkg/cache
// [history]: github.com/matzehuels/kinreport/pkg/history
// [config]: github.com/matzehuels/kinreport/pkg/config
// [errors]: github.com/matzehuels/kinreport/pkg/errors
// [observability]: github.com/matzehuels/kinreport/pkg/observability
package pkg
