// Package watch drives delbin's "watch" CLI subcommand: it regenerates
// the binary header every time the schema file changes on disk. It is
// adapted from the teacher repo's fsnotify-backed filesystem watcher,
// narrowed to the single-file case delbin's CLI needs.
package watch

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// Event reports one regeneration attempt.
type Event struct {
	Path string
	Data []byte
	Err  error
}

// Run watches path and invokes generate on startup and after every
// write or create event, sending one Event per attempt. Errors reported
// by the watcher are sent as Events with Err set and do not end the
// loop. It blocks until stop is signalled or the watcher's channels
// close, and returns an error only when the watcher cannot be set up.
func Run(path string, generate func() ([]byte, error), events chan<- Event, stop <-chan struct{}) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	if err := w.Add(path); err != nil {
		return fmt.Errorf("watch: add %s: %w", path, err)
	}

	regen := func() {
		data, err := generate()
		events <- Event{Path: path, Data: data, Err: err}
	}

	regen()

	for {
		select {
		case <-stop:
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				regen()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			events <- Event{Path: path, Err: fmt.Errorf("watch: %w", err)}
		}
	}
}
