package export

import (
	"fmt"
	"io"
	"os"

	svg "github.com/ajstarks/svgo"
)

func renderSVG(opts Options, f frame) error {
	file, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	return renderSVGToWriter(file, opts, f)
}

func renderSVGToWriter(w io.Writer, opts Options, f frame) error {
	snap := opts.Snapshot

	canvas := svg.New(w)
	canvas.Start(f.Width, f.Height)
	canvas.Rect(0, 0, f.Width, f.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(16, 12, f.Width-32, int(headerHeight)-20, 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))

	canvas.Text(32, 36, f.Title,
		fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(32, 54, fmt.Sprintf("nodes: %d  links: %d  hidden: %d", f.VisibleCount, f.LinkCount, f.HiddenCount),
		fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))

	// Links under nodes.
	for _, l := range snap.Links {
		x1, y1 := f.project(l.Source.X, l.Source.Y)
		x2, y2 := f.project(l.Target.X, l.Target.Y)
		canvas.Line(int(x1), int(y1), int(x2), int(y2),
			fmt.Sprintf("stroke:%s;stroke-width:%.1f", css(linkColor(l.Tier)), linkWidth(l.Tier)))
	}

	for _, n := range snap.Nodes {
		x, y := f.project(n.X, n.Y)
		r := n.Radius * f.Scale

		canvas.Circle(int(x), int(y), int(r),
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1.2", css(depthFill(n.Depth)), css(colorStroke)))

		// Folded hidden values get a highlight ring.
		if n.HasHiddenAggregation {
			canvas.Circle(int(x), int(y), int(r+3),
				fmt.Sprintf("fill:none;stroke:%s;stroke-width:2", css(colorFold)))
		}

		label := truncate(n.Name, 18)
		canvas.Text(int(x), int(y-r-6), label,
			fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace;text-anchor:middle", css(colorText)))
		canvas.Text(int(x), int(y+4), formatValue(snap.DisplayTotal(n.ID)),
			fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace;text-anchor:middle", css(colorText)))
	}

	canvas.End()
	return nil
}
