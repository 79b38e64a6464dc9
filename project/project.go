// Package project persists a canvas arrangement: which images are open,
// where they sit and how they are stacked.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/text/unicode/norm"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Ext is the project file extension.
const Ext = ".ark"

// Point is an image origin in canvas pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Image is one entry of a project.
type Image struct {
	ID     int    `json:"id"`
	Path   string `json:"path"`
	Origin Point  `json:"origin"`
	Zoom   int    `json:"zoom"`
}

type document struct {
	Images []Image `json:"images"`
	Layers []int   `json:"layers"`
}

// Project is an editable project document. The zero value is not usable;
// call New or Open.
type Project struct {
	doc    document
	nextID int
	path   string
	dirty  bool
}

// New returns an empty, unsaved project.
func New() *Project {
	return &Project{doc: document{Images: []Image{}, Layers: []int{}}}
}

// Open reads a project file.
func Open(path string) (*Project, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("project: read file: %w", err)
	}
	p := New()
	if err := json.Unmarshal(data, &p.doc); err != nil {
		return nil, fmt.Errorf("project: decode %s: %w", filepath.Base(path), err)
	}
	if err := p.check(); err != nil {
		return nil, err
	}
	for _, img := range p.doc.Images {
		p.nextID = max(p.nextID, img.ID+1)
	}
	p.path = path
	return p, nil
}

// check rejects documents whose layers do not name each image exactly once.
func (p *Project) check() error {
	ids := make(map[int]bool, len(p.doc.Images))
	for _, img := range p.doc.Images {
		if ids[img.ID] {
			return fmt.Errorf("project: duplicate image id %d", img.ID)
		}
		ids[img.ID] = true
	}
	if len(p.doc.Layers) != len(ids) {
		return fmt.Errorf("project: %d layers for %d images", len(p.doc.Layers), len(ids))
	}
	for _, id := range p.doc.Layers {
		if !ids[id] {
			return fmt.Errorf("project: layer names unknown or repeated image %d", id)
		}
		delete(ids, id)
	}
	return nil
}

// Images returns the project images in insertion order.
func (p *Project) Images() []Image {
	return p.doc.Images
}

// Layers returns image ids from bottom to top.
func (p *Project) Layers() []int {
	return p.doc.Layers
}

// Image returns the entry with the given id.
func (p *Project) Image(id int) (Image, bool) {
	if i := p.find(id); i >= 0 {
		return p.doc.Images[i], true
	}
	return Image{}, false
}

// Dirty reports unsaved changes.
func (p *Project) Dirty() bool {
	return p.dirty
}

// Path returns where the project was last opened or saved.
func (p *Project) Path() string {
	return p.path
}

// Add appends an image on top of the stack and returns its id.
// The path is stored in Unicode NFC form.
func (p *Project) Add(path string) int {
	id := p.nextID
	p.nextID++
	p.doc.Images = append(p.doc.Images, Image{ID: id, Path: norm.NFC.String(path)})
	p.doc.Layers = append(p.doc.Layers, id)
	p.dirty = true
	return id
}

// Remove deletes an image and its layer.
func (p *Project) Remove(id int) bool {
	i := p.find(id)
	if i < 0 {
		return false
	}
	p.doc.Images = append(p.doc.Images[:i], p.doc.Images[i+1:]...)
	for j, v := range p.doc.Layers {
		if v == id {
			p.doc.Layers = append(p.doc.Layers[:j], p.doc.Layers[j+1:]...)
			break
		}
	}
	p.dirty = true
	return true
}

// SetOrigin moves an image. Setting the current origin is not a change.
func (p *Project) SetOrigin(id int, origin Point) {
	if i := p.find(id); i >= 0 && p.doc.Images[i].Origin != origin {
		p.doc.Images[i].Origin = origin
		p.dirty = true
	}
}

// SetZoom stores the zoom knob of an image.
func (p *Project) SetZoom(id, knob int) {
	if i := p.find(id); i >= 0 && p.doc.Images[i].Zoom != knob {
		p.doc.Images[i].Zoom = knob
		p.dirty = true
	}
}

// ShiftLayer moves an image delta places up or down the stack, clamped to
// the ends, by swapping it with the image at the target place.
func (p *Project) ShiftLayer(id, delta int) {
	cur := -1
	for i, v := range p.doc.Layers {
		if v == id {
			cur = i
			break
		}
	}
	if cur < 0 {
		return
	}
	next := min(max(cur+delta, 0), len(p.doc.Layers)-1)
	if next != cur {
		p.doc.Layers[cur] = p.doc.Layers[next]
		p.doc.Layers[next] = id
		p.dirty = true
	}
}

// Save writes the project to path, syncs it to disk and makes path the
// project location.
func (p *Project) Save(path string) error {
	data, err := json.Marshal(&p.doc)
	if err != nil {
		return fmt.Errorf("project: encode: %w", err)
	}
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("project: create file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("project: write: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("project: sync: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("project: close: %w", err)
	}
	p.dirty = false
	p.path = path
	return nil
}

func (p *Project) find(id int) int {
	for i, img := range p.doc.Images {
		if img.ID == id {
			return i
		}
	}
	return -1
}
