package validation

import (
	"strings"
	"time"

	"github.com/studyhub/collab/ecode"
)

const (
	// DefaultFreshnessWindow bounds how far a client timestamp may drift from validation time.
	DefaultFreshnessWindow = 5 * time.Minute

	// DefaultMediaPrefix is the hosted storage prefix attachments must use.
	DefaultMediaPrefix = "https://firebasestorage.googleapis.com/"
)

// Validator checks entities before they are written to the document store.
// It holds no mutable state and is safe for concurrent use.
type Validator struct {
	now           func() time.Time
	window        time.Duration
	mediaPrefixes []string
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock sets the time source used for freshness checks.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// WithFreshnessWindow sets the allowed distance between a timestamp and now.
func WithFreshnessWindow(d time.Duration) Option {
	return func(v *Validator) {
		if d > 0 {
			v.window = d
		}
	}
}

// WithMediaPrefixes replaces the accepted attachment URL prefixes.
func WithMediaPrefixes(prefixes ...string) Option {
	return func(v *Validator) {
		var kept []string
		for _, p := range prefixes {
			if p = strings.TrimSpace(p); p != "" {
				kept = append(kept, p)
			}
		}
		if len(kept) > 0 {
			v.mediaPrefixes = kept
		}
	}
}

// New creates a validator using the wall clock and default limits.
func New(opts ...Option) *Validator {
	v := &Validator{
		now:           time.Now,
		window:        DefaultFreshnessWindow,
		mediaPrefixes: []string{DefaultMediaPrefix},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// checkFresh reports a timestamp outside the freshness window, in either direction.
func (v *Validator) checkFresh(c *collector, field string, ts time.Time) {
	d := v.now().Sub(ts)
	if d < 0 {
		d = -d
	}
	if ts.IsZero() || d > v.window {
		c.add(ecode.FieldIsStale(field, v.window.String()))
	}
}

func (v *Validator) isHosted(url string) bool {
	for _, p := range v.mediaPrefixes {
		if strings.HasPrefix(url, p) {
			return true
		}
	}
	return false
}
