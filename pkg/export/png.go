package export

import (
	"fmt"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"
)

func renderPNG(opts Options, f frame) error {
	snap := opts.Snapshot

	dc := gg.NewContext(f.Width, f.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 12, float64(f.Width)-32, headerHeight-20, 10)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(colorText)
	dc.DrawStringAnchored(f.Title, 32, 34, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(
		fmt.Sprintf("nodes: %d  links: %d  hidden: %d", f.VisibleCount, f.LinkCount, f.HiddenCount),
		32, 52, 0, 0.5)

	for _, l := range snap.Links {
		x1, y1 := f.project(l.Source.X, l.Source.Y)
		x2, y2 := f.project(l.Target.X, l.Target.Y)
		dc.SetColor(linkColor(l.Tier))
		dc.SetLineWidth(linkWidth(l.Tier))
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
	}

	for _, n := range snap.Nodes {
		x, y := f.project(n.X, n.Y)
		r := n.Radius * f.Scale

		dc.SetColor(depthFill(n.Depth))
		dc.DrawCircle(x, y, r)
		dc.Fill()
		dc.SetColor(colorStroke)
		dc.SetLineWidth(1.2)
		dc.DrawCircle(x, y, r)
		dc.Stroke()

		if n.HasHiddenAggregation {
			dc.SetColor(colorFold)
			dc.SetLineWidth(2)
			dc.DrawCircle(x, y, r+3)
			dc.Stroke()
		}

		dc.SetColor(colorText)
		dc.DrawStringAnchored(truncate(n.Name, 18), x, y-r-8, 0.5, 0.5)
		dc.DrawStringAnchored(formatValue(snap.DisplayTotal(n.ID)), x, y, 0.5, 0.5)
	}

	return dc.SavePNG(opts.Path)
}
