package session

import (
	"time"

	"github.com/hashicorp/go-hclog"
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

type managerOptions struct {
	withTTL          time.Duration
	withSecureCookie bool
	withIDPrefix     string
	withLogger       hclog.Logger
}

func managerDefaults() managerOptions {
	return managerOptions{
		withTTL:          DefaultTTL,
		withSecureCookie: true,
		withLogger:       hclog.NewNullLogger(),
	}
}

func getManagerOpts(opt ...Option) managerOptions {
	opts := managerDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithTTL sets the lifetime of new sessions.
func WithTTL(d time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*managerOptions); ok {
			o.withTTL = d
		}
	}
}

// WithSecureCookie controls the cookie's Secure attribute (default true).
func WithSecureCookie(secure bool) Option {
	return func(o interface{}) {
		if o, ok := o.(*managerOptions); ok {
			o.withSecureCookie = secure
		}
	}
}

// WithIDPrefix prefixes new session ids.
func WithIDPrefix(prefix string) Option {
	return func(o interface{}) {
		if o, ok := o.(*managerOptions); ok {
			o.withIDPrefix = prefix
		}
	}
}

// WithLogger provides an optional logger.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*managerOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}
