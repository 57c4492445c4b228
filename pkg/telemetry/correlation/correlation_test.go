package correlation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnsureCorrelationIDKeepsExisting(t *testing.T) {
	ctx := ContextWithCorrelationID(context.Background(), "01HZZZZZZZZZZZZZZZZZZZZZZZ")

	ctx, cid := EnsureCorrelationID(ctx)

	assert.Equal(t, "01HZZZZZZZZZZZZZZZZZZZZZZZ", cid)
	assert.Equal(t, cid, ExtractCorrelationID(ctx))
}

func TestEnsureCorrelationIDGenerates(t *testing.T) {
	ctx, cid := EnsureCorrelationID(context.Background())

	assert.Len(t, cid, 26)
	assert.Equal(t, cid, ExtractCorrelationID(ctx))
}

func TestFromHeader(t *testing.T) {
	ctx := FromHeader(context.Background(), " 01arz3ndektsv4rrffq69g5fav ")
	assert.Equal(t, "01ARZ3NDEKTSV4RRFFQ69G5FAV", ExtractCorrelationID(ctx))

	ctx = FromHeader(context.Background(), "<script>")
	assert.Empty(t, ExtractCorrelationID(ctx))
}
