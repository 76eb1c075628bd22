//go:build (darwin || linux) && (amd64 || arm64)

package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sliverarmory/flacsym"
	"github.com/sliverarmory/flacsym/codec"
	"github.com/sliverarmory/flacsym/dynlib"
	"github.com/sliverarmory/flacsym/internal/testlib"
)

func openCodec(t *testing.T, c testlib.Codec) *dynlib.Library {
	t.Helper()

	path := testlib.Build(t, c)
	lib, err := dynlib.Open(path)
	if err != nil {
		t.Fatalf("Open(%s): %v", path, err)
	}
	t.Cleanup(func() { _ = lib.Close() })
	return lib
}

func TestVersionAndVendor(t *testing.T) {
	lib := openCodec(t, testlib.Codec{Version: "1.4.3", Vendor: "reference libFLAC 1.4.3 20230623"})
	c := codec.New(lib)

	v, err := c.Version()
	require.NoError(t, err)
	assert.Equal(t, "1.4.3", v)

	vendor, err := c.Vendor()
	require.NoError(t, err)
	assert.Equal(t, "reference libFLAC 1.4.3 20230623", vendor)
}

func TestDefaultCodec(t *testing.T) {
	flacsym.ClearDefault()
	c := codec.New(nil)

	_, err := c.Version()
	require.ErrorIs(t, err, flacsym.ErrMissingDefaultLibrary)
	_, err = c.NewDecoder()
	require.ErrorIs(t, err, flacsym.ErrMissingDefaultLibrary)

	lib := openCodec(t, testlib.Codec{Version: "1.3.4"})
	flacsym.SetDefault(lib)
	t.Cleanup(func() { flacsym.ClearDefault() })

	v, err := c.Version()
	require.NoError(t, err)
	assert.Equal(t, "1.3.4", v)
}

func TestDecoderLifecycle(t *testing.T) {
	lib := openCodec(t, testlib.Codec{})
	c := codec.New(lib)

	d, err := c.NewDecoder()
	require.NoError(t, err)
	assert.NotZero(t, d.Handle())

	state, err := d.State()
	require.NoError(t, err)
	assert.Equal(t, codec.DecoderUninitialized, state)

	name, err := c.DecoderStateString(state)
	require.NoError(t, err)
	assert.Equal(t, "FLAC__STREAM_DECODER_UNINITIALIZED", name)

	require.NoError(t, d.Close())
	require.NoError(t, d.Close())
	assert.Zero(t, d.Handle())
	_, err = d.State()
	require.ErrorIs(t, err, codec.ErrClosed)

	_, err = c.DecoderStateString(codec.DecoderState(10))
	require.Error(t, err)
}

func TestEncoderLifecycle(t *testing.T) {
	lib := openCodec(t, testlib.Codec{})
	c := codec.New(lib)

	e, err := c.NewEncoder()
	require.NoError(t, err)

	state, err := e.State()
	require.NoError(t, err)
	assert.Equal(t, codec.EncoderUninitialized, state)

	name, err := c.EncoderStateString(codec.EncoderOK)
	require.NoError(t, err)
	assert.Equal(t, "FLAC__STREAM_ENCODER_OK", name)

	require.NoError(t, e.Close())
	_, err = e.State()
	require.ErrorIs(t, err, codec.ErrClosed)
}

func TestSelfTest(t *testing.T) {
	lib := openCodec(t, testlib.Codec{Version: "1.4.3"})
	c := codec.New(lib)

	require.NoError(t, c.SelfTest(""))
	require.NoError(t, c.SelfTest("1.3.0"))
	require.NoError(t, c.SelfTest("1.4.3"))

	err := c.SelfTest("1.5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "older than 1.5.0")
}

func TestSelfTestReportsBadVersion(t *testing.T) {
	lib := openCodec(t, testlib.Codec{Version: "not-a-version"})

	err := codec.New(lib).SelfTest("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse version")
}
