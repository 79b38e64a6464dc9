package main

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/gogpu/gg"

	"github.com/gogpu/slark/config"
)

func runRender(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	out := fs.String("o", "slark.png", "output PNG file")
	at := fs.Duration("at", 0, "playback time to capture")
	save := fs.String("save", "", "also write the arrangement to this project file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("render: no files")
	}

	c, images, err := openCanvas(cfg, fs.Args())
	if err != nil {
		return err
	}
	defer c.Close()
	for _, path := range images {
		if l := c.Add(path); l.Err != nil {
			warn(path, l.Err)
		}
	}
	if !restored(c) {
		c.Tileize()
	}

	step := cfg.Playback.TickInterval
	for t := time.Duration(0); t < *at; t += step {
		c.Tick(min(step, *at-t))
	}

	dc := gg.NewContext(c.Width(), c.Height())
	defer func() { _ = dc.Close() }()
	c.Paint(dc)
	if err := dc.SavePNG(*out); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	field("saved", *out)
	return saveProject(c, *save)
}
