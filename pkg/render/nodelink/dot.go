package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/kinreport/pkg/fonts"
	"github.com/matzehuels/kinreport/pkg/group"
	"github.com/matzehuels/kinreport/pkg/kin"
	"github.com/matzehuels/kinreport/pkg/relation"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds DNI and age lines to node labels.
	Detailed bool
	// IncludeUnclassified draws relatives with unknown labels in a dashed
	// cluster.
	IncludeUnclassified bool
	// Now is the reference time for ages. Defaults to time.Now.
	Now time.Time
}

// ToDOT converts a lookup to Graphviz DOT source.
func ToDOT(l kin.Lookup, opts Options) string {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	principal := l.Principal
	principalID := nodeID(principal, "principal")

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fillcolor=white, penwidth=2, fontname=%q, fontsize=14, margin=\"0.2,0.1\"];\n", fonts.FallbackFontFamily)
	fmt.Fprintf(&buf, "  edge [fontname=%q, fontsize=10, color=\"#999999\", fontcolor=\"#444444\"];\n", fonts.FallbackFontFamily)
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	// The principal leads its own tier; relatives labelled like the
	// principal ("TITULAR") share the tier but keep their own node.
	principalSeen := false
	for _, layer := range group.Layers(principal, l.Relatives) {
		color := layer.Category.Color()
		ids := make([]string, len(layer.People))
		fmt.Fprintf(&buf, "  subgraph %q {\n    rank=same;\n", "rank_"+layer.Category.String())
		for i, p := range layer.People {
			ids[i] = nodeID(p, fmt.Sprintf("%d_%d", layer.Category, i))
			if layer.Category == relation.Principal && !principalSeen && p.ID == principal.ID {
				ids[i] = principalID
				principalSeen = true
			}
			fmt.Fprintf(&buf, "    %q [label=%q, color=%q];\n", ids[i], fmtLabel(p, opts), color)
		}
		buf.WriteString("  }\n")

		for i, p := range layer.People {
			if ids[i] == principalID {
				continue
			}
			from, to := principalID, ids[i]
			if layer.Category < relation.Principal {
				from, to = ids[i], principalID
			}
			fmt.Fprintf(&buf, "  %q -> %q [label=%q, color=%q];\n", from, to, edgeLabel(p), color)
		}
	}

	if opts.IncludeUnclassified {
		if dropped := group.Dropped(l.Relatives); len(dropped) > 0 {
			buf.WriteString("\n  subgraph cluster_other {\n    label=\"Otros\";\n    style=dashed;\n    color=\"#CCCCCC\";\n")
			for i, p := range dropped {
				id := nodeID(p, fmt.Sprintf("other_%d", i))
				fmt.Fprintf(&buf, "    %q [label=%q, style=\"rounded,filled,dashed\", fillcolor=\"#F4F6F8\"];\n", id, fmtLabel(p, opts))
			}
			buf.WriteString("  }\n")
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(p kin.Person, fallback string) string {
	if p.ID != "" {
		return p.ID
	}
	return "n_" + fallback
}

func edgeLabel(p kin.Person) string {
	if s := strings.TrimSpace(p.Relation); s != "" {
		return s
	}
	return kin.NA
}

func fmtLabel(p kin.Person, opts Options) string {
	name := p.DisplayName()
	if !opts.Detailed {
		return name
	}
	parts := []string{name, "DNI: " + kin.OrNA(p.DNI)}
	if age, ok := p.AgeAt(opts.Now); ok {
		parts = append(parts, fmt.Sprintf("Edad: %d", age))
	}
	return strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales cleanly when
// embedded: origin at zero, width and height equal to the viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
