package loader

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReader(t *testing.T) {
	t.Run("Decodes big-endian words", func(t *testing.T) {
		data := []byte{0xD0, 0x00, 0x00, 0x48, 0x70, 0x00, 0x00, 0x00}
		words, err := LoadReader(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, []uint32{0xD0000048, 0x70000000}, words)
	})

	t.Run("Rejects empty input", func(t *testing.T) {
		_, err := LoadReader(bytes.NewReader(nil))
		assert.ErrorIs(t, err, ErrEmptyProgram)
	})

	t.Run("Rejects trailing partial word", func(t *testing.T) {
		_, err := LoadReader(bytes.NewReader([]byte{1, 2, 3, 4, 5}))
		assert.ErrorIs(t, err, ErrTruncatedProgram)
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.um")
	require.NoError(t, os.WriteFile(path, []byte{0x70, 0, 0, 0}, 0o644))

	words, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0x70000000}, words)

	_, err = Load(filepath.Join(t.TempDir(), "missing.um"))
	assert.Error(t, err)
}
