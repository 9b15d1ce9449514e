package report

import (
	"errors"
	"fmt"

	"github.com/lamim/launch-dash/internal/dataset"
)

// Dashboard outputs a callback can be registered against.
const (
	OutputPie     = "success-pie-chart"
	OutputScatter = "success-payload-scatter-chart"
)

// ErrUnknownOutput is returned when no callback is registered for an output name.
var ErrUnknownOutput = errors.New("unknown output")

// Callback recomputes one output from the current control values. Callbacks are
// pure: the same filters always yield the same figure.
type Callback func(Filters) (Figure, error)

// Callbacks maps output names to the callbacks that produce them
type Callbacks struct {
	entries map[string]Callback
	names   []string // registration order
}

// Options configures the built-in callbacks
type Options struct {
	ColorBy string
}

// NewCallbacks registers the pie and scatter callbacks over ds.
func NewCallbacks(ds *dataset.Dataset, opts Options) *Callbacks {
	c := &Callbacks{entries: make(map[string]Callback)}

	c.Register(OutputPie, func(f Filters) (Figure, error) {
		return BuildPie(ds, f.Site)
	})
	c.Register(OutputScatter, func(f Filters) (Figure, error) {
		return BuildScatter(ds, f, opts.ColorBy)
	})

	return c
}

// Register binds fn to output, replacing any earlier registration. A replaced
// output keeps its original position.
func (c *Callbacks) Register(output string, fn Callback) {
	if _, ok := c.entries[output]; !ok {
		c.names = append(c.names, output)
	}
	c.entries[output] = fn
}

// Has reports whether a callback is registered for output.
func (c *Callbacks) Has(output string) bool {
	_, ok := c.entries[output]
	return ok
}

// Invoke runs the callback registered for output.
func (c *Callbacks) Invoke(output string, f Filters) (Figure, error) {
	fn, ok := c.entries[output]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOutput, output)
	}
	return fn(f)
}

// Outputs returns the registered output names in registration order.
func (c *Callbacks) Outputs() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}
