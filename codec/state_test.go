package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateString(t *testing.T) {
	assert.Equal(t, "FLAC__STREAM_DECODER_UNINITIALIZED", DecoderUninitialized.String())
	assert.Equal(t, "FLAC__STREAM_DECODER_SEARCH_FOR_METADATA", DecoderSearchForMetadata.String())
	assert.Equal(t, "DecoderState(42)", DecoderState(42).String())
	assert.Equal(t, "FLAC__STREAM_ENCODER_UNINITIALIZED", EncoderUninitialized.String())
	assert.Equal(t, "EncoderState(-1)", EncoderState(-1).String())
	assert.Equal(t, 10, decoderStateCount)
	assert.Equal(t, 9, encoderStateCount)
}

func TestParseVersion(t *testing.T) {
	for _, test := range []struct {
		in   string
		want string
	}{
		{in: "1.4.3", want: "1.4.3"},
		{in: "1.3", want: "1.3.0"},
		{in: " 1.5.0\n", want: "1.5.0"},
	} {
		v, err := ParseVersion(test.in)
		require.NoError(t, err, "ParseVersion(%q)", test.in)
		assert.Equal(t, test.want, v.String())
	}

	for _, in := range []string{"", "garbage", "1.x.3"} {
		_, err := ParseVersion(in)
		assert.Error(t, err, "ParseVersion(%q)", in)
	}
}
