package main

import (
	"fmt"
	"path/filepath"

	"github.com/gogpu/gg"

	"github.com/gogpu/slark/canvas"
	"github.com/gogpu/slark/config"
	"github.com/gogpu/slark/project"
)

// openCanvas builds the canvas for a command's file arguments. A project
// file restores its images and layout; the remaining arguments are returned
// as images still to be added.
func openCanvas(cfg *config.Config, args []string) (*canvas.Canvas, []string, error) {
	var projectPath string
	var images []string
	for _, arg := range args {
		if filepath.Ext(arg) != project.Ext {
			images = append(images, arg)
			continue
		}
		if projectPath != "" {
			return nil, nil, fmt.Errorf("more than one project: %s, %s", projectPath, arg)
		}
		projectPath = arg
	}

	opts := []canvas.Option{
		canvas.WithBackground(gg.Hex(cfg.Canvas.Background)),
		canvas.WithOpenOptions(openOptions(cfg)...),
	}
	if projectPath == "" {
		c, err := canvas.New(cfg.Canvas.Width, cfg.Canvas.Height, opts...)
		return c, images, err
	}

	p, err := project.Open(projectPath)
	if err != nil {
		return nil, nil, err
	}
	c, err := canvas.FromProject(p, cfg.Canvas.Width, cfg.Canvas.Height, opts...)
	if err != nil {
		return nil, nil, err
	}
	for _, l := range c.Layers() {
		if l.Err != nil {
			warn(l.Path, l.Err)
		}
	}
	return c, images, nil
}

// restored reports whether the canvas layout came from a project file, in
// which case it is not re-tiled.
func restored(c *canvas.Canvas) bool {
	return c.Project().Path() != ""
}

// saveProject writes the canvas arrangement when path is set.
func saveProject(c *canvas.Canvas, path string) error {
	if path == "" {
		return nil
	}
	if filepath.Ext(path) != project.Ext {
		path += project.Ext
	}
	if err := c.Project().Save(path); err != nil {
		return err
	}
	field("project", path)
	return nil
}
