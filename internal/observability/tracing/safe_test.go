package tracing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsPayloads(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/fraud-review/kount/ens"),
		attribute.String("kount.payload", "<events/>"),
	)
	assert.Len(t, attrs, 1)
	assert.Equal(t, attribute.Key("http.route"), attrs[0].Key)
}

func TestSafeErrorKeepsFirstLine(t *testing.T) {
	err := SafeError(errors.New("braintree: unexpected status 500\n<api-error-response/>"))
	assert.EqualError(t, err, "braintree: unexpected status 500")
	assert.Nil(t, SafeError(nil))
}
