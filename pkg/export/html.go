package export

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
)

// htmlNode is the wire form of one visible node in the embedded payload.
type htmlNode struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Depth    int     `json:"depth"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Radius   float64 `json:"r"`
	Value    float64 `json:"value"`
	Total    float64 `json:"total"`
	Folded   bool    `json:"folded,omitempty"`
	ParentID int     `json:"parent"`
}

type htmlLink struct {
	Source int    `json:"source"`
	Target int    `json:"target"`
	Tier   string `json:"tier"`
}

type htmlPayload struct {
	Title  string     `json:"title"`
	Hidden int        `json:"hidden"`
	Nodes  []htmlNode `json:"nodes"`
	Links  []htmlLink `json:"links"`
}

// renderHTML writes a standalone page: the snapshot embedded as JSON plus a
// small inline renderer, no external assets.
func renderHTML(opts Options, f frame) error {
	snap := opts.Snapshot

	payload := htmlPayload{
		Title:  f.Title,
		Hidden: f.HiddenCount,
	}
	for _, n := range snap.Nodes {
		hn := snap.Hierarchy.Node(n.ID)
		payload.Nodes = append(payload.Nodes, htmlNode{
			ID:       n.ID,
			Name:     n.Name,
			Depth:    n.Depth,
			X:        n.X,
			Y:        n.Y,
			Radius:   n.Radius,
			Value:    n.DisplayValue,
			Total:    snap.DisplayTotal(n.ID),
			Folded:   n.HasHiddenAggregation,
			ParentID: hn.ParentID,
		})
	}
	for _, l := range snap.Links {
		payload.Links = append(payload.Links, htmlLink{
			Source: l.Source.ID,
			Target: l.Target.ID,
			Tier:   string(l.Tier),
		})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal diagram data: %w", err)
	}

	page := fmt.Sprintf(htmlTemplate, f.Title, f.Width, f.Height, data)
	return os.WriteFile(opts.Path, []byte(page), 0o644)
}

// htmlTemplate draws with the same palette and projection rules as the SVG
// renderer, but in the browser so hover shows node details.
const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
  body { margin: 0; background: #f9fafb; font-family: monospace; }
  #header { padding: 12px 24px; background: #f3f4f6; }
  #header h1 { font-size: 16px; margin: 0 0 4px 0; }
  #header p { font-size: 12px; color: #666; margin: 0; }
  circle.bubble { stroke: #222; stroke-width: 1.2; }
  circle.fold { fill: none; stroke: #ffb300; stroke-width: 2; }
  line.primary { stroke: #6b80bf; stroke-width: 2; }
  line.secondary { stroke: #b0bec5; stroke-width: 1.2; }
  text { font-family: monospace; text-anchor: middle; }
  text.name { font-size: 12px; fill: #111; }
  text.total { font-size: 11px; fill: #111; }
</style>
</head>
<body>
<div id="header"></div>
<svg id="diagram" width="%d" height="%d"></svg>
<script>
const DATA = %s;
const FILLS = ["#37474f", "#42a5f5", "#81c784", "#ffcc80", "#ce93d8"];
const svg = document.getElementById("diagram");
const W = svg.width.baseVal.value, H = svg.height.baseVal.value;

document.getElementById("header").innerHTML =
  "<h1>" + DATA.title + "</h1><p>nodes: " + DATA.nodes.length +
  "  links: " + DATA.links.length + "  hidden: " + DATA.hidden + "</p>";

let minX = Infinity, minY = Infinity, maxX = -Infinity, maxY = -Infinity;
for (const n of DATA.nodes) {
  minX = Math.min(minX, n.x - n.r); maxX = Math.max(maxX, n.x + n.r);
  minY = Math.min(minY, n.y - n.r); maxY = Math.max(maxY, n.y + n.r);
}
const pad = 40;
const scale = Math.min(1.5,
  (W - 2 * pad) / Math.max(1, maxX - minX),
  (H - 2 * pad) / Math.max(1, maxY - minY));
const offX = pad + (W - 2 * pad - (maxX - minX) * scale) / 2 - minX * scale;
const offY = pad + (H - 2 * pad - (maxY - minY) * scale) / 2 - minY * scale;
const px = x => x * scale + offX, py = y => y * scale + offY;

const el = (tag, attrs) => {
  const e = document.createElementNS("http://www.w3.org/2000/svg", tag);
  for (const k in attrs) e.setAttribute(k, attrs[k]);
  svg.appendChild(e);
  return e;
};

const byId = {};
for (const n of DATA.nodes) byId[n.id] = n;
for (const l of DATA.links) {
  const s = byId[l.source], t = byId[l.target];
  el("line", { x1: px(s.x), y1: py(s.y), x2: px(t.x), y2: py(t.y), class: l.tier });
}
for (const n of DATA.nodes) {
  const c = el("circle", {
    cx: px(n.x), cy: py(n.y), r: n.r * scale,
    fill: FILLS[Math.min(n.depth, FILLS.length - 1)],
    class: "bubble",
  });
  const tip = document.createElementNS("http://www.w3.org/2000/svg", "title");
  tip.textContent = n.name + "\ndisplay: " + n.value + "\nsubtree: " + n.total;
  c.appendChild(tip);
  if (n.folded) {
    el("circle", { cx: px(n.x), cy: py(n.y), r: n.r * scale + 3, class: "fold" });
  }
  const name = el("text", { x: px(n.x), y: py(n.y) - n.r * scale - 6, class: "name" });
  name.textContent = n.name;
  const total = el("text", { x: px(n.x), y: py(n.y) + 4, class: "total" });
  total.textContent = n.total;
}
</script>
</body>
</html>
`
