package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := map[string]int64{"10": 1000, "10.5": 1050, "0.07": 7, "": 0, "1234.56": 123456}
	for raw, want := range cases {
		got, err := ParseAmount(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"1.234", "abc", "-1.00", "1.x"} {
		_, err := ParseAmount(raw)
		assert.ErrorIs(t, err, ErrInvalidAmount, raw)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "12.05", FormatAmount(1205))
	assert.Equal(t, "0.00", FormatAmount(0))
	assert.Equal(t, "-3.10", FormatAmount(-310))
}

func TestParseTransactionStatus(t *testing.T) {
	assert.Equal(t, StatusSettled, ParseTransactionStatus("settled"))
	assert.Equal(t, StatusAuthorized, ParseTransactionStatus("authorized"))
	assert.Equal(t, StatusUnrecognized, ParseTransactionStatus("something_new"))
}
