package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUUIDWithPrefix(t *testing.T) {
	id := GenerateUUIDWithPrefix(UUIDPrefixDraft)

	assert.True(t, strings.HasPrefix(id, "draft_"))
	assert.Len(t, id, len("draft_")+26) // ulid is 26 chars

	assert.NotEqual(t, id, GenerateUUIDWithPrefix(UUIDPrefixDraft))
}

func TestGenerateShortIDWithPrefix(t *testing.T) {
	id := GenerateShortIDWithPrefix(UUIDPrefixReceipt)

	require.NotEmpty(t, id)
	assert.True(t, strings.HasPrefix(id, "RX"))
	assert.LessOrEqual(t, len(id), 12)
	assert.Equal(t, strings.ToUpper(id), id)
	assert.NotContains(t, id, "-")
}
