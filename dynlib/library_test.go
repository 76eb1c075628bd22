//go:build (darwin || linux) && (amd64 || arm64)

package dynlib_test

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sliverarmory/flacsym"
	"github.com/sliverarmory/flacsym/dynlib"
	"github.com/sliverarmory/flacsym/internal/testlib"
)

func TestOpenMissing(t *testing.T) {
	_, err := dynlib.Open(filepath.Join(t.TempDir(), "libFLAC-missing.so"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dynlib: open")

	_, err = dynlib.Open("")
	require.Error(t, err)
}

func TestOpenFirst(t *testing.T) {
	_, err := dynlib.OpenFirst(nil)
	require.Error(t, err)

	dir := t.TempDir()
	missing := []string{filepath.Join(dir, "a.so"), filepath.Join(dir, "b.so")}
	_, err = dynlib.OpenFirst(missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), missing[0])
	assert.Contains(t, err.Error(), missing[1])

	path := testlib.Build(t, testlib.Codec{})
	lib, err := dynlib.OpenFirst(append(missing, path))
	require.NoError(t, err)
	t.Cleanup(func() { _ = lib.Close() })
	assert.Equal(t, path, lib.Name())
	assert.Equal(t, path, lib.Path())
}

func TestResolveCachesAddresses(t *testing.T) {
	path := testlib.Build(t, testlib.Codec{})
	lib, err := dynlib.Open(path, dynlib.WithName("libFLAC"), dynlib.WithCacheSize(2))
	require.NoError(t, err)
	t.Cleanup(func() { _ = lib.Close() })
	assert.Equal(t, "libFLAC", lib.Name())

	a1, err := lib.Resolve("FLAC__stream_decoder_new")
	require.NoError(t, err)
	assert.NotZero(t, a1)
	assert.Equal(t, 1, lib.Cached())

	a2, err := lib.Resolve("FLAC__stream_decoder_new")
	require.NoError(t, err)
	assert.Equal(t, a1, a2)
	assert.Equal(t, 1, lib.Cached())

	for _, name := range []string{"FLAC__stream_decoder_delete", "FLAC__stream_encoder_new"} {
		_, err := lib.Resolve(name)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, lib.Cached())

	a3, err := lib.Resolve("FLAC__stream_decoder_new")
	require.NoError(t, err)
	assert.Equal(t, a1, a3)
}

func TestResolveFailures(t *testing.T) {
	path := testlib.Build(t, testlib.Codec{})
	lib, err := dynlib.Open(path)
	require.NoError(t, err)

	for _, name := range []string{"", "FLAC__nope", "FLAC__VERSION\x00STRING"} {
		_, err := lib.Resolve(name)
		require.ErrorIs(t, err, flacsym.ErrUnresolvedSymbol, "name %q", name)
	}
	assert.Zero(t, lib.Cached())

	require.NoError(t, lib.Close())
	require.NoError(t, lib.Close())
	_, err = lib.Resolve("FLAC__VERSION_STRING")
	require.ErrorIs(t, err, flacsym.ErrInvalidLibrary)
	_, err = lib.Memo("key", func() (any, error) { return 1, nil })
	require.ErrorIs(t, err, flacsym.ErrInvalidLibrary)
}

func TestMemo(t *testing.T) {
	path := testlib.Build(t, testlib.Codec{})
	lib, err := dynlib.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = lib.Close() })

	builds := 0
	build := func() (any, error) {
		builds++
		return builds, nil
	}
	v1, err := lib.Memo("k", build)
	require.NoError(t, err)
	v2, err := lib.Memo("k", build)
	require.NoError(t, err)
	assert.Equal(t, 1, v1)
	assert.Equal(t, 1, v2)
	assert.Equal(t, 1, builds)

	boom := errors.New("boom")
	_, err = lib.Memo("bad", func() (any, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
	v, err := lib.Memo("bad", build)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestConcurrentResolve(t *testing.T) {
	path := testlib.Build(t, testlib.Codec{})
	lib, err := dynlib.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = lib.Close() })

	want, err := lib.Resolve("FLAC__VERSION_STRING")
	require.NoError(t, err)

	var wg sync.WaitGroup
	addrs := make([]uintptr, 32)
	errs := make([]error, 32)
	for i := range addrs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			addrs[i], errs[i] = lib.Resolve("FLAC__VERSION_STRING")
		}()
	}
	wg.Wait()
	for i := range addrs {
		require.NoError(t, errs[i])
		assert.Equal(t, want, addrs[i])
	}
}
