package ws

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_CompressDecompress(t *testing.T) {
	original := []byte(`{"message":"hello hello hello hello"}`)

	compressed, err := Compress(original)
	require.NoError(t, err)
	require.NotEqual(t, original, compressed)

	decompressed, err := Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, original, decompressed)
}

func Test_DecompressGarbage(t *testing.T) {
	_, err := Decompress([]byte("definitely not zlib"))
	require.Error(t, err)
}
