package scheduler

// options holds configuration resolved from Option values at New time.
type options struct {
	shrinkKeepPerSize int
}

// Option configures a Scheduler at construction.
type Option interface {
	applyScheduler(*options)
}

type optionFunc func(*options)

func (f optionFunc) applyScheduler(o *options) { f(o) }

// WithShrinkKeepPerSize sets how many idle stacks per size a scheduler
// leaves behind when it shrinks the stack registry after a pass with a
// large finished batch. 0 disables automatic shrinking (the default).
func WithShrinkKeepPerSize(n int) Option {
	return optionFunc(func(o *options) { o.shrinkKeepPerSize = n })
}

func resolveOptions(opts []Option) *options {
	cfg := &options{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyScheduler(cfg)
	}
	return cfg
}
