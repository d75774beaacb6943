package bgzf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_AbsentSectionIsUndefined(t *testing.T) {
	idx := NewIndex()
	assert.True(t, idx.Begin("positions").IsUndefined())
	assert.True(t, idx.End("genes").IsUndefined())
}

func TestIndex_JSONRoundTrip(t *testing.T) {
	idx := NewIndex()
	idx.Set("positions", PackVirtualOffset(0, 0), PackVirtualOffset(1000, 5))
	idx.Set("genes", PackVirtualOffset(1000, 5), PackVirtualOffset(2000, 0))

	var buf bytes.Buffer
	require.NoError(t, idx.SaveJSON(&buf))

	loaded, err := LoadJSON(&buf)
	require.NoError(t, err)

	assert.Equal(t, idx.Begin("positions"), loaded.Begin("positions"))
	assert.Equal(t, idx.End("positions"), loaded.End("positions"))
	assert.Equal(t, idx.Begin("genes"), loaded.Begin("genes"))
	assert.Equal(t, idx.End("genes"), loaded.End("genes"))
	assert.True(t, loaded.Begin("nonexistent").IsUndefined())
}

func TestIndex_BinaryRoundTrip(t *testing.T) {
	idx := NewIndex()
	idx.Set("positions", PackVirtualOffset(10, 2), PackVirtualOffset(500, 0))

	var buf bytes.Buffer
	require.NoError(t, idx.SaveBinary(&buf))

	loaded, err := LoadBinary(&buf)
	require.NoError(t, err)
	assert.Equal(t, idx.Begin("positions"), loaded.Begin("positions"))
	assert.Equal(t, idx.End("positions"), loaded.End("positions"))
}

func TestIndex_BinaryTruncatedFails(t *testing.T) {
	idx := NewIndex()
	idx.Set("positions", PackVirtualOffset(10, 2), PackVirtualOffset(500, 0))

	var buf bytes.Buffer
	require.NoError(t, idx.SaveBinary(&buf))

	truncated := buf.Bytes()[:len(buf.Bytes())-4]
	_, err := LoadBinary(bytes.NewReader(truncated))
	require.Error(t, err)
}
