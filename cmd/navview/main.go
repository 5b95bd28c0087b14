// Command navview opens an interactive window onto a running level.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/floorwalk/internal/level"
	"github.com/Garsondee/floorwalk/internal/sim"
	"github.com/Garsondee/floorwalk/internal/viewer"
)

func main() {
	levelPath := flag.String("level", "", "level file (.yaml/.json); the built-in tower when empty")
	seed := flag.Int64("seed", 1, "simulation seed")
	verbose := flag.Bool("verbose", false, "record per-tick positions in the sim log")
	logLevel := flag.String("log-level", "warn", "log level: debug, info, warn, error")
	width := flag.Int("width", 1280, "window width")
	height := flag.Int("height", 800, "window height")
	flag.Parse()

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(*logLevel)); err != nil {
		log.Fatalf("bad -log-level %q: %v", *logLevel, err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))

	f := level.Demo()
	if *levelPath != "" {
		var err error
		if f, err = level.Load(*levelPath); err != nil {
			log.Fatal(err)
		}
	}
	w, err := sim.New(
		sim.WithLevel(f),
		sim.WithSeed(*seed),
		sim.WithVerbose(*verbose),
		sim.WithLogger(logger),
	)
	if err != nil {
		log.Fatal(err)
	}
	for _, d := range w.Diags {
		logger.Warn("navview: build diagnostic", "diag", d.Error())
	}

	ebiten.SetWindowTitle(fmt.Sprintf("Floorwalk - %s", w.Name))
	ebiten.SetWindowSize(*width, *height)
	g := viewer.New(w, viewer.WithSize(*width, *height), viewer.WithLogger(logger))
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
