package geoquad

import (
	"github.com/hupe1980/geoquad/quadtree"
)

// Options contains configuration options for the index.
type Options struct {
	// Capacity is the maximum number of records a leaf holds before it
	// subdivides. Must be >= 1.
	Capacity int

	// MaxDepth is the subdivision ceiling (root depth is 0). Must be >= 0.
	MaxDepth int

	// CircleSamples is the number of boundary samples used to
	// approximate the search circle in point-radius queries.
	CircleSamples int

	// Logger receives structured logs. Defaults to a no-op logger.
	Logger *Logger

	// Metrics receives operational metrics. Defaults to a no-op collector.
	Metrics MetricsCollector
}

// DefaultOptions contains the default configuration options for the index.
var DefaultOptions = Options{
	Capacity:      quadtree.DefaultOptions.Capacity,
	MaxDepth:      quadtree.DefaultOptions.MaxDepth,
	CircleSamples: quadtree.DefaultOptions.CircleSamples,
}

func applyOptions(optFns []func(o *Options)) Options {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = NoopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = NoopMetricsCollector{}
	}

	return opts
}
