package canvas

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/gogpu/gg"

	"github.com/gogpu/slark"
	"github.com/gogpu/slark/project"
)

func fakeOpener(t *testing.T, opened *[]string) Option {
	return WithOpener(func(path string) (Renderable, error) {
		*opened = append(*opened, path)
		if filepath.Ext(path) == ".txt" {
			return nil, slark.ErrUnsupportedFormat
		}
		return newFakeSource(t, 10, 10, 0, 0, 0), nil
	})
}

func TestCanvasKeepsProjectInStep(t *testing.T) {
	var opened []string
	c := newTestCanvas(t, fakeOpener(t, &opened))
	a := c.Add("a.gif")
	b := c.Add("b.gif")
	d := c.Add("d.gif")

	p := c.Project()
	if got := p.Layers(); !equalInts(got, []int{a.ID, b.ID, d.ID}) {
		t.Fatalf("project layers = %v", got)
	}

	c.ShiftLayer(a.ID, 1)
	c.TurnKnob(b.ID, 2)
	c.Tileize()
	if err := c.Remove(d.ID); err != nil {
		t.Fatal(err)
	}

	if got, want := p.Layers(), ids(c.Layers()); !equalInts(got, want) {
		t.Errorf("project layers = %v, canvas layers = %v", got, want)
	}
	if _, ok := p.Image(d.ID); ok {
		t.Error("removed layer still in the project")
	}
	imgB, _ := p.Image(b.ID)
	if imgB.Zoom != 2 {
		t.Errorf("project zoom of b = %d, want 2", imgB.Zoom)
	}
	for _, l := range c.Layers() {
		img, _ := p.Image(l.ID)
		if img.Origin != (project.Point{X: l.Origin.X, Y: l.Origin.Y}) {
			t.Errorf("layer %d origin %v, project origin %v", l.ID, l.Origin, img.Origin)
		}
	}
	if !p.Dirty() {
		t.Error("arrangement changes did not mark the project dirty")
	}
}

func TestFromProject(t *testing.T) {
	p := project.New()
	a := p.Add("a.gif")
	bad := p.Add("notes.txt")
	b := p.Add("b.gif")
	p.SetOrigin(b, project.Point{X: 40, Y: 5})
	p.SetZoom(a, -3)
	p.ShiftLayer(b, -2)

	path := filepath.Join(t.TempDir(), "scene"+project.Ext)
	if err := p.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := project.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	var opened []string
	c, err := FromProject(loaded, 200, 100, fakeOpener(t, &opened))
	if err != nil {
		t.Fatalf("FromProject: %v", err)
	}
	if c.Project() != loaded {
		t.Error("canvas is not bound to the loaded project")
	}
	if loaded.Dirty() {
		t.Error("FromProject marked the project dirty")
	}
	// ShiftLayer swapped b with the bottom image.
	if got := ids(c.Layers()); !equalInts(got, []int{b, bad, a}) {
		t.Errorf("layers = %v, want [%d %d %d]", got, b, bad, a)
	}
	if len(opened) != 3 || opened[0] != "b.gif" {
		t.Errorf("opened = %v, want bottom layer first", opened)
	}

	lb, _ := c.Layer(b)
	if lb.Origin != gg.Pt(40, 5) {
		t.Errorf("origin of b = %v, want (40, 5)", lb.Origin)
	}
	la, _ := c.Layer(a)
	if la.Zoom.Knob != -3 {
		t.Errorf("zoom of a = %d, want -3", la.Zoom.Knob)
	}
	lbad, _ := c.Layer(bad)
	if !errors.Is(lbad.Err, slark.ErrUnsupportedFormat) {
		t.Errorf("layer error = %v, want ErrUnsupportedFormat", lbad.Err)
	}

	// New layers never reuse a restored id.
	if l := c.Add("c.gif"); l.ID == a || l.ID == b || l.ID == bad {
		t.Errorf("new layer reused id %d", l.ID)
	}
}

func TestFromProjectInvalidDimensions(t *testing.T) {
	if _, err := FromProject(project.New(), 0, 10); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("FromProject error = %v, want ErrInvalidDimensions", err)
	}
}
