// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package canvas

// Commands carries "open this file" requests from other goroutines, such as
// the single-instance listener, to the render loop that owns the Canvas.
type Commands struct {
	ch chan string
}

// NewCommands creates a queue holding up to size pending requests.
func NewCommands(size int) *Commands {
	return &Commands{ch: make(chan string, max(size, 1))}
}

// Open queues path. It never blocks; false means the queue was full and the
// request was dropped.
func (q *Commands) Open(path string) bool {
	select {
	case q.ch <- path:
		return true
	default:
		return false
	}
}

// Apply adds a layer for every queued request and returns them. It does not
// wait for requests that have not arrived yet.
func (c *Canvas) Apply(q *Commands) []*Layer {
	var added []*Layer
	for {
		select {
		case path := <-q.ch:
			added = append(added, c.Add(path))
		default:
			return added
		}
	}
}
