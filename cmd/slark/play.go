package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/gogpu/gg"
	"github.com/mattn/go-sixel"

	"github.com/gogpu/slark"
	"github.com/gogpu/slark/canvas"
	"github.com/gogpu/slark/config"
	"github.com/gogpu/slark/internal/instance"
	"github.com/gogpu/slark/internal/stats"
)

func runPlay(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	duration := fs.Duration("duration", 0, "stop after this long (0 plays until interrupted)")
	dither := fs.Bool("dither", false, "dither sixel output")
	save := fs.String("save", "", "write the arrangement to this project file on exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, images, err := openCanvas(cfg, fs.Args())
	if err != nil {
		return err
	}
	defer c.Close()

	// A running primary takes the files and this process is done. Projects
	// always get their own process.
	if len(images) > 0 && !restored(c) && *save == "" {
		err := instance.Forward(cfg.Instance.Socket, images...)
		if err == nil {
			field("forwarded", fmt.Sprintf("%d file(s)", len(images)))
			return nil
		}
		if !errors.Is(err, instance.ErrNoPrimary) {
			warn(cfg.Instance.Socket, err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if *duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	cmds := canvas.NewCommands(16)
	for _, path := range images {
		cmds.Open(path)
	}
	if ln, err := instance.Listen(cfg.Instance.Socket); err != nil {
		warn(cfg.Instance.Socket, err)
	} else {
		defer func() { _ = ln.Close() }()
		go func() {
			if err := ln.Serve(ctx, func(path string) { cmds.Open(path) }); err != nil {
				slark.Logger().Warn("instance: serve", "error", err)
			}
		}()
	}

	dc := gg.NewContext(c.Width(), c.Height())
	defer func() { _ = dc.Close() }()

	w := bufio.NewWriter(os.Stdout)
	enc := sixel.NewEncoder(w)
	enc.Dither = *dither

	var fps stats.FPS
	ticker := time.NewTicker(cfg.Playback.TickInterval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintf(os.Stderr, "\n%s %d\n", keyColor.Sprint("fps"), fps.Average())
			return saveProject(c, *save)
		case now := <-ticker.C:
			if added := c.Apply(cmds); len(added) > 0 {
				for _, l := range added {
					if l.Err != nil {
						warn(l.Path, l.Err)
					}
				}
				if !restored(c) {
					c.Tileize()
				}
			}
			elapsed := now.Sub(last)
			last = now
			fps.Add(elapsed)

			c.Advance(dc, elapsed)
			// Home the cursor so each frame overwrites the last.
			_, _ = w.WriteString("\x1b[H")
			if err := enc.Encode(dc.Image()); err != nil {
				return fmt.Errorf("play: %w", err)
			}
			if err := w.Flush(); err != nil {
				return fmt.Errorf("play: %w", err)
			}
		}
	}
}
