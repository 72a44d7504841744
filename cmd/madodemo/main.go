// Command madodemo runs the UI core headless: it mounts a widget tree from a
// YAML document, ticks it for a few frames with a resize in between and
// writes the last frame to a PNG.
package main

import (
	_ "embed"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/edwinsyarief/mado"
	"github.com/edwinsyarief/mado/config"
	"github.com/edwinsyarief/mado/internal/logging"
	"github.com/edwinsyarief/mado/render"
	"github.com/edwinsyarief/mado/ui"
)

//go:embed tree.yaml
var defaultTree string

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	treePath := flag.String("tree", "", "path to a YAML widget tree (defaults to the built-in demo)")
	flag.Parse()

	if err := run(*configPath, *treePath); err != nil {
		fmt.Fprintln(os.Stderr, "madodemo:", err)
		os.Exit(1)
	}
}

func run(configPath, treePath string) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	doc := defaultTree
	if treePath != "" {
		data, err := os.ReadFile(treePath)
		if err != nil {
			return fmt.Errorf("read tree: %w", err)
		}
		doc = string(data)
	}
	content, err := ui.LoadTree(strings.NewReader(doc))
	if err != nil {
		return err
	}

	app, err := ui.NewApp(content,
		ui.WithLogger(log),
		ui.WithSize(cfg.Window.Width, cfg.Window.Height),
		ui.WithCapacity(cfg.World.InitialCapacity),
		ui.WithEffectLimit(cfg.Effects.MaxConcurrent),
	)
	if err != nil {
		return err
	}
	defer app.Close()

	renderer := render.NewRectRenderer(app.Frame(), int(cfg.Window.Width), int(cfg.Window.Height), log.Named("render"))
	defer renderer.Close()
	app.SetRenderer(renderer)

	if err := startClock(app, cfg.Render.Frames); err != nil {
		return err
	}

	ticker := time.NewTicker(cfg.Window.TickRate)
	defer ticker.Stop()
	last := time.Now()
	for i := range cfg.Render.Frames {
		if i == cfg.Render.Frames/2 {
			app.Resize(cfg.Window.Width/2, cfg.Window.Height/2)
		}
		now := <-ticker.C
		if err := app.Tick(now.Sub(last)); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		last = now
	}
	log.Info("done",
		zap.Int("frames", cfg.Render.Frames),
		zap.Int("entities", app.World().Len()),
		zap.Int("draw_commands", renderer.Builds()),
	)

	if cfg.Render.Output != "" {
		if err := renderer.SavePNG(cfg.Render.Output); err != nil {
			return fmt.Errorf("save %s: %w", cfg.Render.Output, err)
		}
	}
	return nil
}

// startClock streams a frame counter into the first label of the tree.
func startClock(app *ui.App, frames int) error {
	labels := mado.NewQuery(app.World(), mado.With[ui.Text]())
	found, err := labels.Entities()
	if err != nil || len(found) == 0 {
		return err
	}
	label := found[0]

	ch := make(chan string)
	go func() {
		defer close(ch)
		for i := range frames {
			ch <- fmt.Sprintf("frame %d", i)
		}
	}()
	ui.SpawnStream(app.Frame().Effects, label, ch, func(cmd *mado.CommandBuffer, s string) {
		cmd.Set(label, mado.Value(ui.Text{Content: s}))
	})
	return nil
}
