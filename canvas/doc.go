// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package canvas composites animations as stacked layers onto a gg.Context.
//
// Each layer is an open animation with an origin and a zoom. Layers are drawn
// bottom to top every frame; a layer whose file could not be decoded keeps
// its place and is drawn as a placeholder box.
//
// # Usage
//
//	c, err := canvas.New(1280, 720)
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	c.Add("intro.gif")
//	c.Add("logo.png")
//	c.Tileize()
//
//	dc := gg.NewContext(c.Width(), c.Height())
//	for range ticker.C {
//		c.Advance(dc, interval)
//	}
//
// # Projects
//
// The arrangement lives in a project.Project. FromProject restores a saved
// one, and Project returns the current arrangement for saving:
//
//	p, err := project.Open("scene.ark")
//	c, err := canvas.FromProject(p, 1280, 720)
//	...
//	err = c.Project().Save("scene.ark")
//
// # Thread Safety
//
// Canvas is NOT safe for concurrent use. It belongs to the render loop; other
// goroutines hand it work through Commands.
package canvas
