package codec

import "strconv"

// DecoderState is FLAC__StreamDecoderState.
type DecoderState int32

const (
	DecoderSearchForMetadata DecoderState = iota
	DecoderReadMetadata
	DecoderSearchForFrameSync
	DecoderReadFrame
	DecoderEndOfStream
	DecoderOggError
	DecoderSeekError
	DecoderAborted
	DecoderMemoryAllocationError
	DecoderUninitialized

	decoderStateCount = iota
)

var decoderStateNames = [decoderStateCount]string{
	"FLAC__STREAM_DECODER_SEARCH_FOR_METADATA",
	"FLAC__STREAM_DECODER_READ_METADATA",
	"FLAC__STREAM_DECODER_SEARCH_FOR_FRAME_SYNC",
	"FLAC__STREAM_DECODER_READ_FRAME",
	"FLAC__STREAM_DECODER_END_OF_STREAM",
	"FLAC__STREAM_DECODER_OGG_ERROR",
	"FLAC__STREAM_DECODER_SEEK_ERROR",
	"FLAC__STREAM_DECODER_ABORTED",
	"FLAC__STREAM_DECODER_MEMORY_ALLOCATION_ERROR",
	"FLAC__STREAM_DECODER_UNINITIALIZED",
}

func (s DecoderState) String() string {
	if s < 0 || int(s) >= len(decoderStateNames) {
		return "DecoderState(" + strconv.Itoa(int(s)) + ")"
	}
	return decoderStateNames[s]
}

// EncoderState is FLAC__StreamEncoderState.
type EncoderState int32

const (
	EncoderOK EncoderState = iota
	EncoderUninitialized
	EncoderOggError
	EncoderVerifyDecoderError
	EncoderVerifyMismatchInAudioData
	EncoderClientError
	EncoderIOError
	EncoderFramingError
	EncoderMemoryAllocationError

	encoderStateCount = iota
)

var encoderStateNames = [encoderStateCount]string{
	"FLAC__STREAM_ENCODER_OK",
	"FLAC__STREAM_ENCODER_UNINITIALIZED",
	"FLAC__STREAM_ENCODER_OGG_ERROR",
	"FLAC__STREAM_ENCODER_VERIFY_DECODER_ERROR",
	"FLAC__STREAM_ENCODER_VERIFY_MISMATCH_IN_AUDIO_DATA",
	"FLAC__STREAM_ENCODER_CLIENT_ERROR",
	"FLAC__STREAM_ENCODER_IO_ERROR",
	"FLAC__STREAM_ENCODER_FRAMING_ERROR",
	"FLAC__STREAM_ENCODER_MEMORY_ALLOCATION_ERROR",
}

func (s EncoderState) String() string {
	if s < 0 || int(s) >= len(encoderStateNames) {
		return "EncoderState(" + strconv.Itoa(int(s)) + ")"
	}
	return encoderStateNames[s]
}
