// Command slark decodes and plays animated images.
//
// Usage:
//
//	slark [-config file] info FILE...
//	slark [-config file] render [-o out.png] [-at 1.5s] [-save p.ark] FILE...
//	slark [-config file] play [-duration 10s] [-save p.ark] FILE...
//
// FILE may be one project (.ark), which restores its images, origins, zoom
// and stacking before any other files are added.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/gogpu/slark"
	"github.com/gogpu/slark/config"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow)
	keyColor  = color.New(color.FgCyan)
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		_, _ = errColor.Fprintf(os.Stderr, "slark: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("slark", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "YAML configuration file")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: slark [-config file] info|render|play [flags] FILE...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			return err
		}
	}
	log, err := cfg.Logging.NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	slark.SetLogger(log)

	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}
	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "info":
		return runInfo(cfg, rest)
	case "render":
		return runRender(cfg, rest)
	case "play":
		return runPlay(cfg, rest)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func openOptions(cfg *config.Config) []slark.Option {
	return []slark.Option{
		slark.WithQueueSize(cfg.Playback.QueueSize),
		slark.WithPremultiplied(cfg.Playback.Premultiply),
	}
}

// warn prints a non-fatal per-file diagnostic.
func warn(path string, err error) {
	_, _ = warnColor.Fprintf(os.Stderr, "%s: %v\n", path, err)
}
