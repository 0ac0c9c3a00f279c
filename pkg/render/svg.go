package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/flowscope/pkg/errors"
)

// RenderSVG renders a DOT graph to SVG using Graphviz. The returned bytes
// are ready for display or further conversion with [ToPDF] or [ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element to an origin-based viewBox
// with explicit pixel dimensions, so the output scales cleanly when embedded.
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

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return ToPNG(svg, scale)
}
