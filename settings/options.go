package settings

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

type loaderOptions struct {
	withEnvironment map[string]string
	withProviderCA  string
	withLogger      hclog.Logger
}

func loaderDefaults() loaderOptions {
	return loaderOptions{
		withLogger: hclog.NewNullLogger(),
	}
}

func getLoaderOpts(opt ...Option) loaderOptions {
	opts := loaderDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithEnvironment replaces the process environment as the source of
// LOGINWIAZ_ variables.
func WithEnvironment(environment map[string]string) Option {
	return func(o interface{}) {
		if o, ok := o.(*loaderOptions); ok {
			o.withEnvironment = environment
		}
	}
}

// WithProviderCA is passed through to every entra.Config read.
func WithProviderCA(cert string) Option {
	return func(o interface{}) {
		if o, ok := o.(*loaderOptions); ok {
			o.withProviderCA = cert
		}
	}
}

// WithLogger provides an optional logger.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*loaderOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}
