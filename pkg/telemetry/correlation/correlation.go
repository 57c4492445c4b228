// Package correlation carries the id that ties one ENS delivery to every log
// line, span and stored event it produces.
package correlation

import (
	"context"
	"strings"

	"github.com/oklog/ulid/v2"
)

// Header lets an upstream proxy pin the correlation id of a delivery.
const Header = "X-Correlation-Id"

type key struct{}

func ExtractCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(key{}).(string)
	return id
}

func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, key{}, id)
}

// FromHeader adopts an inbound id when it is a well formed ULID. Anything
// else is ignored so arbitrary header text never reaches the logs.
func FromHeader(ctx context.Context, value string) context.Context {
	id, err := ulid.ParseStrict(strings.TrimSpace(value))
	if err != nil {
		return ctx
	}
	return ContextWithCorrelationID(ctx, id.String())
}

// EnsureCorrelationID returns ctx carrying a correlation id, minting a ULID
// when none is present.
func EnsureCorrelationID(ctx context.Context) (context.Context, string) {
	if id := ExtractCorrelationID(ctx); id != "" {
		return ctx, id
	}
	id := ulid.Make().String()
	return ContextWithCorrelationID(ctx, id), id
}
