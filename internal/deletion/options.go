package deletion

import (
	"github.com/retiroapp/expctl/internal/dialog"
	"github.com/retiroapp/expctl/internal/page"
)

// DefaultEndpoint is the deletion route used when no endpoint is given.
const DefaultEndpoint = "/gestores/eliminar/"

// Variant selects how much the confirmation dialog shows.
type Variant int

const (
	// Simple asks once and submits immediately.
	Simple Variant = iota
	// Rich explains what the deletion cascades to and shows a loading
	// indicator between confirmation and submission.
	Rich
)

func (v Variant) String() string {
	if v == Rich {
		return "rich"
	}
	return "simple"
}

// Options are the per-call settings of ConfirmDeletion.
type Options struct {
	Endpoint   string
	Variant    Variant
	Kind       *Kind
	TokenField string

	// Dialog, when set, adjusts the confirmation dialog after it is built.
	Dialog func(*dialog.Config)
}

// Option configures a ConfirmDeletion call.
type Option func(*Options)

// WithEndpoint sets the URL prefix the target ID is appended to.
func WithEndpoint(prefix string) Option {
	return func(o *Options) {
		o.Endpoint = prefix
	}
}

// WithVariant selects the dialog variant.
func WithVariant(v Variant) Option {
	return func(o *Options) {
		o.Variant = v
	}
}

// WithKind applies the endpoint, variant and wording of a record kind.
// Options given after it override the preset.
func WithKind(k Kind) Option {
	return func(o *Options) {
		o.Kind = &k
		o.Endpoint = k.Endpoint
		o.Variant = k.Variant
	}
}

// WithTokenField overrides the anti-forgery field name.
func WithTokenField(name string) Option {
	return func(o *Options) {
		o.TokenField = name
	}
}

// WithDialog adjusts the confirmation dialog config.
func WithDialog(fn func(*dialog.Config)) Option {
	return func(o *Options) {
		o.Dialog = fn
	}
}

func buildOptions(opts []Option) Options {
	o := Options{
		Endpoint:   DefaultEndpoint,
		Variant:    Simple,
		TokenField: page.DefaultTokenField,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Endpoint == "" {
		o.Endpoint = DefaultEndpoint
	}
	if o.TokenField == "" {
		o.TokenField = page.DefaultTokenField
	}
	return o
}
