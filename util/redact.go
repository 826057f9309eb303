package util

import (
	"context"
	"net/url"
	"strings"
)

type contextKey struct{}

// Redactor is the context key used to carry a *redactor through a request chain
var Redactor = contextKey{}

type redactor struct {
	parent     *redactor
	redactions []string
}

func contextRedactor(ctx context.Context) *redactor {
	if ctx != nil {
		if r, ok := ctx.Value(Redactor).(*redactor); ok {
			return r
		}
	}

	return nil
}

// NewRedactor creates a redactor chained to the one carried by ctx, if any
func NewRedactor(ctx context.Context) *redactor {
	return &redactor{parent: contextRedactor(ctx)}
}

// WithRedactor returns a context carrying a redactor for the given secrets
func WithRedactor(ctx context.Context, secrets ...string) context.Context {
	r := NewRedactor(ctx)
	for _, s := range secrets {
		r.Add(s)
	}
	return context.WithValue(ctx, Redactor, r)
}

// RedactString applies the redactor carried by ctx to s
func RedactString(ctx context.Context, s string) string {
	if r := contextRedactor(ctx); r != nil {
		return r.Redact(s)
	}
	return s
}

func (r *redactor) Add(s string) {
	if s != "" {
		r.redactions = append(r.redactions, s, url.QueryEscape(s))
	}
}

func (r *redactor) Redact(s string) string {
	for _, match := range r.redactions {
		s = strings.ReplaceAll(s, match, "***")
	}

	if r.parent != nil {
		s = r.parent.Redact(s)
	}

	return s
}
