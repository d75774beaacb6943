package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-vep/internal/coreerr"
)

func TestParseInfo_Empty(t *testing.T) {
	data, err := ParseInfo(".")
	require.NoError(t, err)
	assert.Equal(t, SVTypeNone, data.SVType)
	assert.False(t, data.HasEnd)
}

func TestParseInfo_DeletionWithEnd(t *testing.T) {
	data, err := ParseInfo("SVTYPE=DEL;END=2000")
	require.NoError(t, err)
	assert.Equal(t, SVTypeDeletion, data.SVType)
	assert.True(t, data.HasEnd)
	assert.Equal(t, 2000, data.End)
	assert.False(t, data.IsInv3)
	assert.False(t, data.IsInv5)
}

func TestParseInfo_InversionFlags(t *testing.T) {
	data, err := ParseInfo("SVTYPE=INV;END=2000;INV3")
	require.NoError(t, err)
	assert.True(t, data.IsInv3)
	assert.False(t, data.IsInv5)

	data, err = ParseInfo("SVTYPE=INV;END=2000;INV5")
	require.NoError(t, err)
	assert.False(t, data.IsInv3)
	assert.True(t, data.IsInv5)
}

func TestParseInfo_UnknownKeysIgnored(t *testing.T) {
	data, err := ParseInfo("FOO=bar;SVTYPE=DUP;BAZ;END=42")
	require.NoError(t, err)
	assert.Equal(t, SVTypeDuplication, data.SVType)
	assert.Equal(t, 42, data.End)
}

func TestParseInfo_MalformedEndFails(t *testing.T) {
	_, err := ParseInfo("SVTYPE=DEL;END=notanumber")
	require.Error(t, err)
	var typed *coreerr.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, coreerr.InfoParse, typed.Kind)
}
