package coroutine

import "github.com/loongs-zhang/open-coroutine-go/internal/memstack"

// options holds configuration resolved from Option values at New time.
type options struct {
	stackSize uintptr
}

// Option configures a Coroutine at construction.
type Option interface {
	applyCoroutine(*options)
}

type optionFunc func(*options)

func (f optionFunc) applyCoroutine(o *options) { f(o) }

// WithStackSize overrides the default stack size (the default is
// min_size()*8, bounded by max_size(protected=true)).
func WithStackSize(size uintptr) Option {
	return optionFunc(func(o *options) { o.stackSize = size })
}

func resolveOptions(opts []Option) *options {
	cfg := &options{stackSize: memstack.DefaultStackSize()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyCoroutine(cfg)
	}
	return cfg
}
