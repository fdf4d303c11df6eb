package login

import "github.com/hashicorp/go-hclog"

// Option defines a common functional options type which can be used in a
// variadic parameter pattern.
type Option func(interface{})

// ApplyOpts takes a pointer to the options struct as a set of default options
// and applies the slice of opts as overrides.
func ApplyOpts(opts interface{}, opt ...Option) {
	for _, o := range opt {
		if o == nil { // ignore any nil Options
			continue
		}
		o(opts)
	}
}

type establisherOptions struct {
	withLandingURL string
	withLogger     hclog.Logger
}

func establisherDefaults() establisherOptions {
	return establisherOptions{
		withLandingURL: DefaultLandingURL,
		withLogger:     hclog.NewNullLogger(),
	}
}

func getEstablisherOpts(opt ...Option) establisherOptions {
	opts := establisherDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithLandingURL sets where a signed in user is redirected.
func WithLandingURL(u string) Option {
	return func(o interface{}) {
		if o, ok := o.(*establisherOptions); ok && u != "" {
			o.withLandingURL = u
		}
	}
}

// WithLogger provides an optional logger.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*establisherOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}
