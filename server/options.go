package server

import (
	"github.com/hashicorp/go-hclog"
	"github.com/sabithahmd/Wordpress-Azure-Login/entra"
	"github.com/sabithahmd/Wordpress-Azure-Login/entra/callback"
)

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

type serverOptions struct {
	withLogger          hclog.Logger
	withProviderOptions []entra.Option
	withErrorResponse   callback.ErrorResponseFunc
}

func serverDefaults() serverOptions {
	return serverOptions{
		withLogger:        hclog.NewNullLogger(),
		withErrorResponse: callback.DefaultErrorResponse,
	}
}

func getServerOpts(opt ...Option) serverOptions {
	opts := serverDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithLogger provides an optional logger.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*serverOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}

// WithProviderOptions are applied after the Server's own provider options
// for every login.
func WithProviderOptions(opt ...entra.Option) Option {
	return func(o interface{}) {
		if o, ok := o.(*serverOptions); ok {
			o.withProviderOptions = append(o.withProviderOptions, opt...)
		}
	}
}

// WithErrorResponse replaces callback.DefaultErrorResponse for failed
// logins.
func WithErrorResponse(fn callback.ErrorResponseFunc) Option {
	return func(o interface{}) {
		if o, ok := o.(*serverOptions); ok && fn != nil {
			o.withErrorResponse = fn
		}
	}
}
