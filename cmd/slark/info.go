package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gogpu/slark"
	"github.com/gogpu/slark/config"
)

func runInfo(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("info: no files")
	}

	for _, path := range fs.Args() {
		anim, err := slark.Open(path, openOptions(cfg)...)
		if err != nil {
			warn(path, err)
		}
		start := time.Now()
		var total time.Duration
		for anim.LoadNext() {
		}
		for i := 0; i < anim.Len(); i++ {
			f, _ := anim.Frame(i)
			total += f.Delay
		}
		w, h := anim.HeaderSize()

		fmt.Fprintf(os.Stdout, "%s\n", path)
		field("format", anim.Format())
		field("size", fmt.Sprintf("%dx%d", w, h))
		field("frames", fmt.Sprint(anim.Len()))
		field("duration", total.String())
		field("decoded in", time.Since(start).Round(time.Millisecond).String())
		if err := anim.Err(); err != nil {
			warn(path, err)
		}
		anim.Close()
	}
	return nil
}

func field(name, value string) {
	fmt.Fprintf(os.Stdout, "  %s %s\n", keyColor.Sprintf("%-10s", name), value)
}
