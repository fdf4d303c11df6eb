package callback

import (
	"github.com/hashicorp/go-hclog"
	"github.com/sabithahmd/Wordpress-Azure-Login/entra"
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

type authCodeOptions struct {
	withSiteURL         string
	withProviderOptions []entra.Option
	withLogger          hclog.Logger
}

func authCodeDefaults() authCodeOptions {
	return authCodeOptions{
		withLogger: hclog.NewNullLogger(),
	}
}

func getAuthCodeOpts(opt ...Option) authCodeOptions {
	opts := authCodeDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithSiteURL sets the public base URL used to rebuild the request URL for
// the redirect URI check.  Without it the request's scheme and Host are
// used.
func WithSiteURL(u string) Option {
	return func(o interface{}) {
		if o, ok := o.(*authCodeOptions); ok {
			o.withSiteURL = u
		}
	}
}

// WithProviderOptions are passed to entra.NewProvider for every login.
func WithProviderOptions(opt ...entra.Option) Option {
	return func(o interface{}) {
		if o, ok := o.(*authCodeOptions); ok {
			o.withProviderOptions = append(o.withProviderOptions, opt...)
		}
	}
}

// WithLogger provides an optional logger.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*authCodeOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}
