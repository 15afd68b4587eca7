// Package observers provides observers for monitoring intersection runs
package observers

import (
	"fmt"
	"io"
	"sync"

	"github.com/anggasct/junction"
)

// PrintObserver writes one line per crossing
type PrintObserver struct {
	junction.BaseObserver

	mutex    sync.Mutex
	w        io.Writer
	symbolic bool
	err      error
}

// NewPrintObserver writes "<entry> <exit> <id>" lines with numeric
// directions, or direction names when symbolic is set
func NewPrintObserver(w io.Writer, symbolic bool) *PrintObserver {
	return &PrintObserver{w: w, symbolic: symbolic}
}

// OnCrossing writes the crossing line
func (o *PrintObserver) OnCrossing(event junction.CrossingEvent) {
	line := event.String()
	if o.symbolic {
		line = event.Symbolic()
	}

	o.mutex.Lock()
	defer o.mutex.Unlock()
	if o.err != nil {
		return
	}
	if _, err := fmt.Fprintln(o.w, line); err != nil {
		o.err = err
	}
}

// Err returns the first write error, if any
func (o *PrintObserver) Err() error {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return o.err
}
