// ABOUTME: Result sinks and fan-out for presenting analysis output
// ABOUTME: A failing sink is logged and never stops analysis
package notecast

import (
	"log"

	"github.com/harperreed/notecast/pkg/onset"
)

// Sink consumes pipeline results
type Sink interface {
	Handle(Result) error
}

// SinkFunc adapts a function to a Sink
type SinkFunc func(Result) error

// Handle calls f
func (f SinkFunc) Handle(r Result) error { return f(r) }

// OnsetSink adapts an onset-only consumer to a Sink
func OnsetSink(f func(onset.Event) error) Sink {
	return SinkFunc(func(r Result) error {
		if r.Onset == nil {
			return nil
		}
		return f(*r.Onset)
	})
}

// Fanout returns a handler that delivers each result to every sink in
// order. Sink errors are logged and the remaining sinks still run.
func Fanout(sinks ...Sink) func(Result) error {
	return func(r Result) error {
		for _, s := range sinks {
			if s == nil {
				continue
			}
			if err := s.Handle(r); err != nil {
				log.Printf("Sink error at %v: %v", r.At, err)
			}
		}
		return nil
	}
}
