// Package export renders a settled snapshot to static artifacts: SVG and
// PNG images, or a standalone HTML page with the diagram data embedded.
package export

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/orbweave/pkg/metrics"
	"github.com/vanderheijden86/orbweave/pkg/model"
	"github.com/vanderheijden86/orbweave/pkg/view"
)

// Options controls a single export.
type Options struct {
	Path   string // output path; format inferred from extension when Format empty
	Format string // "svg", "png" or "html" (case-insensitive)
	Title  string // optional title rendered in the header block
	Width  int    // canvas width in pixels; 0 means 1200
	Height int    // canvas height in pixels; 0 means 900

	Snapshot *view.Snapshot // snapshot to render, usually settled
}

// Save renders the snapshot to the requested format.
func Save(opts Options) error {
	defer metrics.Timer(metrics.Export)()

	if opts.Snapshot == nil || len(opts.Snapshot.Nodes) == 0 {
		return fmt.Errorf("no nodes to export")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		case ".html", ".htm":
			format = "html"
		default:
			format = "svg"
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path = opts.Path + ".svg"
			}
		}
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}
	if opts.Width <= 0 {
		opts.Width = 1200
	}
	if opts.Height <= 0 {
		opts.Height = 900
	}

	if dir := filepath.Dir(opts.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create parent dir: %w", err)
		}
	}

	frame := buildFrame(opts)

	switch format {
	case "svg":
		return renderSVG(opts, frame)
	case "png":
		return renderPNG(opts, frame)
	case "html":
		return renderHTML(opts, frame)
	default:
		return fmt.Errorf("unsupported format %q (want svg, png or html)", format)
	}
}

// --- frame computation -----------------------------------------------------

const (
	framePadding = 40.0
	headerHeight = 72.0
)

// frame maps diagram coordinates onto the pixel canvas: uniform scale,
// centered, with room for the header block.
type frame struct {
	Scale        float64
	OffX, OffY   float64
	Width        int
	Height       int
	Title        string
	HiddenCount  int
	VisibleCount int
	LinkCount    int
}

func buildFrame(opts Options) frame {
	snap := opts.Snapshot

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range snap.Nodes {
		minX = math.Min(minX, n.X-n.Radius)
		minY = math.Min(minY, n.Y-n.Radius)
		maxX = math.Max(maxX, n.X+n.Radius)
		maxY = math.Max(maxY, n.Y+n.Radius)
	}

	availW := float64(opts.Width) - 2*framePadding
	availH := float64(opts.Height) - headerHeight - 2*framePadding
	spanX := maxX - minX
	spanY := maxY - minY
	if spanX < 1 {
		spanX = 1
	}
	if spanY < 1 {
		spanY = 1
	}
	scale := math.Min(availW/spanX, availH/spanY)
	if scale > 1.5 {
		scale = 1.5
	}

	title := opts.Title
	if strings.TrimSpace(title) == "" {
		title = "Hierarchy Diagram"
	}

	return frame{
		Scale:        scale,
		OffX:         framePadding + (availW-spanX*scale)/2 - minX*scale,
		OffY:         headerHeight + framePadding + (availH-spanY*scale)/2 - minY*scale,
		Width:        opts.Width,
		Height:       opts.Height,
		Title:        title,
		HiddenCount:  snap.HiddenCount(),
		VisibleCount: len(snap.Nodes),
		LinkCount:    len(snap.Links),
	}
}

// project maps a diagram coordinate to canvas pixels.
func (f frame) project(x, y float64) (float64, float64) {
	return x*f.Scale + f.OffX, y*f.Scale + f.OffY
}

// --- shared palette --------------------------------------------------------

var (
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorStroke   = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorPrimary  = color.RGBA{0x6b, 0x80, 0xbf, 0xff}
	colorSecond   = color.RGBA{0xb0, 0xbe, 0xc5, 0xff}
	colorFold     = color.RGBA{0xff, 0xb3, 0x00, 0xff}

	depthFills = []color.RGBA{
		{0x37, 0x47, 0x4f, 0xff}, // root
		{0x42, 0xa5, 0xf5, 0xff}, // categories
		{0x81, 0xc7, 0x84, 0xff},
		{0xff, 0xcc, 0x80, 0xff},
		{0xce, 0x93, 0xd8, 0xff},
	}
)

func depthFill(depth int) color.RGBA {
	if depth >= len(depthFills) {
		depth = len(depthFills) - 1
	}
	return depthFills[depth]
}

func linkColor(t model.Tier) color.RGBA {
	if t == model.TierPrimary {
		return colorPrimary
	}
	return colorSecond
}

func linkWidth(t model.Tier) float64 {
	if t == model.TierPrimary {
		return 2
	}
	return 1.2
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// formatValue prints a bubble value without trailing decimal noise.
func formatValue(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
