package library

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/d2vault/d2vault/internal/codec"
	"github.com/d2vault/d2vault/internal/d2s"
	"github.com/d2vault/d2vault/internal/d2s/d2stest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func saveBytes(name string, level byte) []byte {
	f := d2stest.NewSave()
	f.Name = name
	f.Level = level
	f.Stats = []d2stest.Stat{{ID: d2s.StatLevel, Value: uint64(level)}}
	return f.Bytes()
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.d2s"), nil)
	writeFile(t, filepath.Join(dir, "A.D2S"), nil)
	writeFile(t, filepath.Join(dir, "sub", "c.d2s"), nil)
	writeFile(t, filepath.Join(dir, "notes.txt"), nil)

	paths, err := Scan(dir, ".d2s")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "A.D2S"),
		filepath.Join(dir, "b.d2s"),
		filepath.Join(dir, "sub", "c.d2s"),
	}, paths)

	_, err = Scan(filepath.Join(dir, "missing"), ".d2s")
	assert.Error(t, err)
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	single := filepath.Join(dir, "single.bin")
	writeFile(t, single, nil)
	writeFile(t, filepath.Join(dir, "saves", "x.d2s"), nil)

	paths, err := Collect([]string{single, filepath.Join(dir, "saves")}, ".d2s")
	require.NoError(t, err)
	assert.Equal(t, []string{single, filepath.Join(dir, "saves", "x.d2s")}, paths)

	_, err = Collect([]string{filepath.Join(dir, "nope")}, ".d2s")
	assert.Error(t, err)
}

func TestDecodeAll(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i, name := range []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo"} {
		p := filepath.Join(dir, name+".d2s")
		writeFile(t, p, saveBytes(name, byte(10+i)))
		paths = append(paths, p)
	}
	broken := filepath.Join(dir, "broken.d2s")
	writeFile(t, broken, []byte{0x55, 0xAA, 0x55, 0xAA, 0x47, 0, 0, 0})
	paths = append(paths, broken, filepath.Join(dir, "missing.d2s"))

	lib := New(d2s.NewDecoder(), 3, zap.NewNop())
	results, err := lib.DecodeAll(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, results, len(paths))

	for i := 0; i < 5; i++ {
		r := results[i]
		require.NoError(t, r.Err, r.Path)
		assert.Equal(t, paths[i], r.Path)
		assert.Equal(t, int8(10+i), r.Save.Level)

		data, err := os.ReadFile(r.Path)
		require.NoError(t, err)
		sum := blake2b.Sum256(data)
		assert.Equal(t, hex.EncodeToString(sum[:]), r.Hash)
		assert.Equal(t, len(data), r.Size)
	}

	assert.ErrorIs(t, results[5].Err, codec.ErrInvalidFormat)
	assert.Nil(t, results[5].Save)
	assert.NotEmpty(t, results[5].Hash)

	assert.ErrorIs(t, results[6].Err, os.ErrNotExist)
	assert.Empty(t, results[6].Hash)
}

func TestDecodeAll_Canceled(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.d2s")
	writeFile(t, p, saveBytes("Alpha", 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := New(d2s.NewDecoder(), 2, nil).DecodeAll(ctx, []string{p, p, p})
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
		assert.Nil(t, r.Save)
	}
}
