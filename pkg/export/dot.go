package export

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"
)

// ToDOT converts a payload to Graphviz DOT format at device granularity:
// one node per device, one weighted edge per device pair, plus dashed
// segment nodes for shared media. The resulting DOT string can be rendered
// with [RenderSVG] or [RenderPNG].
func ToDOT(p *Payload) string {
	var buf bytes.Buffer
	buf.WriteString("graph topology {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, n := range p.DeviceNodes {
		fmt.Fprintf(&buf, "  %q [label=%q];\n", n.ID, n.Label)
	}
	for _, n := range p.SegNodes {
		fmt.Fprintf(&buf, "  %q [label=%q, shape=ellipse, style=\"filled,dashed\", fillcolor=lightgrey];\n", n.ID, n.Label)
	}

	buf.WriteString("\n")
	for _, e := range p.DeviceEdges {
		fmt.Fprintf(&buf, "  %q -- %q [label=%q, penwidth=%d];\n", e.From, e.To, e.Label, e.Width)
	}
	for _, e := range p.SegEdges {
		// Segment edges attach at port granularity in the payload; collapse
		// to the owning device node here.
		fmt.Fprintf(&buf, "  %q -- %q [style=dashed];\n", "dev:"+e.Meta.Dev, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	var buf bytes.Buffer
	if err := renderDOT(ctx, dot, graphviz.SVG, &buf); err != nil {
		return nil, err
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	var buf bytes.Buffer
	if err := renderDOT(ctx, dot, graphviz.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format, buf *bytes.Buffer) error {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	if err := gv.Render(ctx, g, format, buf); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites Graphviz's pt-based svg element into a plain
// zero-origin viewBox so the image scales cleanly when embedded.
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
