package xid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsPrefixedAndOrdered(t *testing.T) {
	first := New("tx")
	second := New("tx")

	require.True(t, strings.HasPrefix(first, "tx_"))
	assert.NotEqual(t, first, second)
	assert.Less(t, first, second)
}

func TestShort(t *testing.T) {
	assert.Equal(t, "ABCDEF", Short("ct_0190a1b2-0000-7000-8000-000000abcdef"))
	assert.Equal(t, "AB", Short("ab"))
}
