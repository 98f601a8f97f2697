// Package progress implements the Progress port (§4.6's side-channel) with
// progrock, adapted from the teacher's telemetry/progrock recorder: one
// vertex per BuildTask, keyed by task id rather than by task name.
package progress

import (
	"fmt"
	"sync"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"

	"go.forge.sh/esy/internal/core/domain"
	"go.forge.sh/esy/internal/core/ports"
)

var _ ports.Progress = (*Recorder)(nil)

// Recorder reports BuildTask lifecycle events as progrock vertices.
type Recorder struct {
	w   progrock.Writer
	rec *progrock.Recorder

	mu       sync.Mutex
	vertices map[domain.TaskID]*progrock.VertexRecorder
}

// New creates a Recorder writing to a fresh in-memory tape.
func New() *Recorder {
	return NewWithWriter(progrock.NewTape())
}

// NewWithWriter creates a Recorder writing to w.
func NewWithWriter(w progrock.Writer) *Recorder {
	return &Recorder{
		w:        w,
		rec:      progrock.NewRecorder(w),
		vertices: make(map[domain.TaskID]*progrock.VertexRecorder),
	}
}

// Started implements ports.Progress.
func (r *Recorder) Started(task *domain.BuildTask) {
	name := fmt.Sprintf("%s@%s", task.PackageName, task.PackageVersion)
	d := digest.FromString(string(task.ID))
	v := r.rec.Vertex(d, name)

	r.mu.Lock()
	r.vertices[task.ID] = v
	r.mu.Unlock()
}

// Succeeded implements ports.Progress.
func (r *Recorder) Succeeded(task *domain.BuildTask, fromCache bool) {
	v := r.vertex(task.ID)
	if v == nil {
		return
	}
	if fromCache {
		v.Cached()
	}
	v.Done(nil)
}

// Failed implements ports.Progress.
func (r *Recorder) Failed(task *domain.BuildTask, err error) {
	v := r.vertex(task.ID)
	if v == nil {
		return
	}
	v.Done(err)
}

func (r *Recorder) vertex(id domain.TaskID) *progrock.VertexRecorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.vertices[id]
}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	if c, ok := r.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
