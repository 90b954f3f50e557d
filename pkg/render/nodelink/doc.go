// Package nodelink renders a family as a node-link diagram.
//
// # Overview
//
// The principal sits in the middle; every classified relative is a box
// colored by its category and joined to the principal by an edge labelled
// with the relationship. Relatives of one category share a rank, and ranks
// follow the same generational order as the tree image, so ancestors are
// drawn above the principal and descendants below.
//
// # Usage
//
//	dot := nodelink.ToDOT(lookup, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: node labels also carry DNI and age.
//   - IncludeUnclassified: relatives whose label matches no category are
//     drawn in a dashed cluster instead of being left out.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
