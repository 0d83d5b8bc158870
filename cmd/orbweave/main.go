// Command orbweave loads a hierarchy document and either renders it in the
// terminal or exports static artifacts (SVG, PNG, HTML).
//
// Usage:
//
//	orbweave [options] <document.json>
//	orbweave --export svg,png --out ./dist budget.json
//	orbweave --watch --export svg budget.json
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/orbweave/internal/layoutcache"
	"github.com/vanderheijden86/orbweave/pkg/config"
	"github.com/vanderheijden86/orbweave/pkg/debug"
	"github.com/vanderheijden86/orbweave/pkg/diagram"
	"github.com/vanderheijden86/orbweave/pkg/export"
	"github.com/vanderheijden86/orbweave/pkg/forces"
	"github.com/vanderheijden86/orbweave/pkg/loader"
	"github.com/vanderheijden86/orbweave/pkg/model"
	"github.com/vanderheijden86/orbweave/pkg/ui"
	"github.com/vanderheijden86/orbweave/pkg/version"
	"github.com/vanderheijden86/orbweave/pkg/view"
	"github.com/vanderheijden86/orbweave/pkg/watcher"
)

func main() {
	configPath := flag.String("config", "", "Config file path (default: XDG config dir)")
	exportFlag := flag.String("export", "", "Export formats, comma separated (svg,png,html); skips the TUI")
	outDir := flag.String("out", "", "Output directory for exports (default: current directory)")
	title := flag.String("title", "", "Diagram title (default: document file name)")
	width := flag.Int("width", 0, "Export canvas width in pixels")
	height := flag.Int("height", 0, "Export canvas height in pixels")
	watchFlag := flag.Bool("watch", false, "Re-export when the document changes (export mode only)")
	noCache := flag.Bool("no-cache", false, "Skip the settled-layout cache")
	versionFlag := flag.Bool("version", false, "Show version")
	help := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *help {
		fmt.Println("Usage: orbweave [options] <document.json>")
		fmt.Println("\nA radial hierarchy visualizer with force-directed relaxation.")
		flag.PrintDefaults()
		os.Exit(0)
	}
	if *versionFlag {
		fmt.Printf("orbweave %s\n", version.Version)
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one document path is required")
		fmt.Fprintln(os.Stderr, "Usage: orbweave [options] <document.json>")
		os.Exit(2)
	}
	docPath := flag.Arg(0)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *outDir != "" {
		cfg.Export.OutDir = *outDir
	}
	if *width > 0 {
		cfg.Export.Width = *width
	}
	if *height > 0 {
		cfg.Export.Height = *height
	}
	if *exportFlag != "" {
		cfg.Export.Formats = splitFormats(*exportFlag)
	}

	if *title == "" {
		base := filepath.Base(docPath)
		*title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	var cache *layoutcache.Cache
	if cfg.CacheEnabled() && !*noCache {
		cachePath := filepath.Join(config.StateDir(), "layouts.db")
		cache, err = layoutcache.Open(cachePath)
		if err != nil {
			// The cache is an optimization; run without it.
			debug.Log("layout cache unavailable: %v", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	if *exportFlag != "" {
		if err := runExport(docPath, *title, cfg, cache, *watchFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *watchFlag {
		fmt.Fprintln(os.Stderr, "Error: --watch requires --export")
		os.Exit(2)
	}

	if err := runTUI(docPath, *title, cfg, cache); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func splitFormats(s string) []string {
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(strings.ToLower(f)); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}

// buildDiagram loads the document and assembles a diagram, seeded from the
// layout cache when a settled layout for this exact document exists.
func buildDiagram(docPath string, cfg config.Config, cache *layoutcache.Cache, run forces.RunConfig) (*diagram.Diagram, string, error) {
	data, err := os.ReadFile(docPath)
	if err != nil {
		return nil, "", fmt.Errorf("reading document: %w", err)
	}
	h, err := loader.Parse(data)
	if err != nil {
		if model.IsMalformed(err) {
			return nil, "", fmt.Errorf("malformed document: %w", err)
		}
		return nil, "", err
	}

	digest := layoutcache.Digest(data)
	var seed map[int]view.Point
	if cache != nil {
		// A diagram always opens with everything visible, so seed from the
		// all-visible entry for this document.
		key := layoutcache.StateKey(model.NewVisibilityState(h.Categories(), h.Depths()))
		if positions, ok, err := cache.Get(digest, key); err == nil && ok {
			seed = positions
			debug.Log("seeded %d positions from layout cache", len(positions))
		}
	}

	d := diagram.New(h, diagram.Options{
		Layout: cfg.Layout,
		Spring: cfg.Spring,
		Run:    run,
		Seed:   seed,
	})
	return d, digest, nil
}

// settleAdapter waits for one settled layout.
type settleAdapter struct {
	done chan forces.StopReason
}

func (a *settleAdapter) OnLayoutTick(nodes []*model.LayoutNode, links []model.Link) {}
func (a *settleAdapter) OnFilterApplied(snap *view.Snapshot)                        {}
func (a *settleAdapter) OnLayoutSettled(nodes []*model.LayoutNode, reason forces.StopReason) {
	select {
	case a.done <- reason:
	default:
	}
}

// runExport settles the layout headless and writes every requested format.
func runExport(docPath, title string, cfg config.Config, cache *layoutcache.Cache, watch bool) error {
	if len(cfg.Export.Formats) == 0 {
		return fmt.Errorf("no export formats requested")
	}

	exportOnce := func() error {
		// Headless: no tick pacing, settle as fast as the solver allows.
		run := cfg.Run
		run.TickInterval = 0

		d, digest, err := buildDiagram(docPath, cfg, cache, run)
		if err != nil {
			return err
		}
		defer d.Stop()

		adapter := &settleAdapter{done: make(chan forces.StopReason, 1)}
		d.SetAdapter(adapter)
		d.Start()

		select {
		case reason := <-adapter.done:
			debug.Log("layout settled: %s", reason)
		case <-time.After(run.Deadline + time.Second):
			return fmt.Errorf("layout never settled within deadline")
		}

		snap := d.Snapshot()
		if cache != nil {
			if err := cache.Put(digest, layoutcache.FilterKey(snap), layoutcache.SnapshotPositions(snap)); err != nil {
				debug.Log("layout cache write failed: %v", err)
			}
		}

		base := strings.TrimSuffix(filepath.Base(docPath), filepath.Ext(docPath))
		outDir := cfg.Export.OutDir
		if outDir == "" {
			outDir = "."
		}

		var g errgroup.Group
		for _, format := range cfg.Export.Formats {
			format := format
			g.Go(func() error {
				path := filepath.Join(outDir, base+"."+format)
				if err := export.Save(export.Options{
					Path:     path,
					Format:   format,
					Title:    title,
					Width:    cfg.Export.Width,
					Height:   cfg.Export.Height,
					Snapshot: snap,
				}); err != nil {
					return fmt.Errorf("export %s: %w", format, err)
				}
				fmt.Printf("wrote %s\n", path)
				return nil
			})
		}
		return g.Wait()
	}

	if err := exportOnce(); err != nil {
		return err
	}
	if !watch {
		return nil
	}

	w, err := watcher.New(docPath,
		watcher.WithDebounce(cfg.Watch.Debounce),
		watcher.WithPollInterval(cfg.Watch.PollInterval),
		watcher.WithOnError(func(err error) {
			fmt.Fprintf(os.Stderr, "watch: %v\n", err)
		}),
	)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Stop()

	fmt.Printf("watching %s (ctrl+c to stop)\n", docPath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-sigCh:
			return nil
		case <-w.Changed():
			if err := exportOnce(); err != nil {
				// Mid-edit documents are often invalid; keep watching.
				fmt.Fprintf(os.Stderr, "reload: %v\n", err)
			}
		}
	}
}

// runTUI renders the diagram interactively and persists the settled layout
// on exit.
func runTUI(docPath, title string, cfg config.Config, cache *layoutcache.Cache) error {
	d, digest, err := buildDiagram(docPath, cfg, cache, cfg.Run)
	if err != nil {
		return err
	}

	if err := ui.Run(d, title, cfg.UI.ShowValues); err != nil {
		return fmt.Errorf("running diagram view: %w", err)
	}

	if cache != nil {
		if snap := d.Snapshot(); snap != nil {
			if err := cache.Put(digest, layoutcache.FilterKey(snap), layoutcache.SnapshotPositions(snap)); err != nil {
				debug.Log("layout cache write failed: %v", err)
			}
		}
	}
	return nil
}
