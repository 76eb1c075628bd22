// Package codec declares the libFLAC exports used by flacsym and wraps them
// in a small Go API.
package codec

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/sliverarmory/flacsym"
)

var (
	versionString = flacsym.NewString("FLAC__VERSION_STRING")
	vendorString  = flacsym.NewString("FLAC__VENDOR_STRING")

	decoderStateStrings = flacsym.NewVar[[decoderStateCount]uintptr]("FLAC__StreamDecoderStateString")
	encoderStateStrings = flacsym.NewVar[[encoderStateCount]uintptr]("FLAC__StreamEncoderStateString")

	decoderNew      = flacsym.NewFunc[func() uintptr]("FLAC__stream_decoder_new")
	decoderDelete   = flacsym.NewFunc[func(uintptr)]("FLAC__stream_decoder_delete")
	decoderGetState = flacsym.NewFunc[func(uintptr) int32]("FLAC__stream_decoder_get_state")

	encoderNew      = flacsym.NewFunc[func() uintptr]("FLAC__stream_encoder_new")
	encoderDelete   = flacsym.NewFunc[func(uintptr)]("FLAC__stream_encoder_delete")
	encoderGetState = flacsym.NewFunc[func(uintptr) int32]("FLAC__stream_encoder_get_state")
)

// ErrClosed is returned when a closed Decoder or Encoder is used.
var ErrClosed = errors.New("codec: object is closed")

// DefaultNames returns the library names tried when no path is configured.
func DefaultNames() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"libFLAC.14.dylib", "libFLAC.12.dylib", "libFLAC.8.dylib", "libFLAC.dylib"}
	case "windows":
		return []string{"libFLAC.dll", "FLAC.dll"}
	default:
		return []string{"libFLAC.so.14", "libFLAC.so.12", "libFLAC.so.8", "libFLAC.so"}
	}
}

// Codec resolves libFLAC exports against a library. A Codec with a nil
// library uses the process default library on every call.
type Codec struct {
	lib flacsym.Library
}

// New returns a Codec bound to lib. A nil lib selects the process default
// library.
func New(lib flacsym.Library) *Codec {
	return &Codec{lib: lib}
}

func getFunc[F any](c *Codec, s flacsym.Func[F]) (F, error) {
	if c.lib == nil {
		return s.Get()
	}
	return s.Bind(c.lib).Get()
}

func loadString(c *Codec, s flacsym.String) (string, error) {
	if c.lib == nil {
		return s.Load()
	}
	return s.Bind(c.lib).Load()
}

func loadVar[T any](c *Codec, s flacsym.Var[T]) (T, error) {
	if c.lib == nil {
		return s.Load()
	}
	return s.Bind(c.lib).Load()
}

// Version returns FLAC__VERSION_STRING.
func (c *Codec) Version() (string, error) {
	return loadString(c, versionString)
}

// Vendor returns FLAC__VENDOR_STRING.
func (c *Codec) Vendor() (string, error) {
	return loadString(c, vendorString)
}

// DecoderStateString returns the library's name for s.
func (c *Codec) DecoderStateString(s DecoderState) (string, error) {
	if s < 0 || int(s) >= decoderStateCount {
		return "", fmt.Errorf("codec: decoder state %d out of range", s)
	}
	table, err := loadVar(c, decoderStateStrings)
	if err != nil {
		return "", err
	}
	return flacsym.GoString(table[s]), nil
}

// EncoderStateString returns the library's name for s.
func (c *Codec) EncoderStateString(s EncoderState) (string, error) {
	if s < 0 || int(s) >= encoderStateCount {
		return "", fmt.Errorf("codec: encoder state %d out of range", s)
	}
	table, err := loadVar(c, encoderStateStrings)
	if err != nil {
		return "", err
	}
	return flacsym.GoString(table[s]), nil
}

// Decoder is a native FLAC__StreamDecoder. It is not safe for concurrent use.
type Decoder struct {
	handle   uintptr
	getState func(uintptr) int32
	delete   func(uintptr)
}

// NewDecoder allocates a stream decoder.
func (c *Codec) NewDecoder() (*Decoder, error) {
	newFn, err := getFunc(c, decoderNew)
	if err != nil {
		return nil, err
	}
	deleteFn, err := getFunc(c, decoderDelete)
	if err != nil {
		return nil, err
	}
	stateFn, err := getFunc(c, decoderGetState)
	if err != nil {
		return nil, err
	}
	h := newFn()
	if h == 0 {
		return nil, errors.New("codec: FLAC__stream_decoder_new returned NULL")
	}
	return &Decoder{handle: h, getState: stateFn, delete: deleteFn}, nil
}

// Handle returns the native decoder pointer, or zero after Close.
func (d *Decoder) Handle() uintptr { return d.handle }

// State returns the decoder state.
func (d *Decoder) State() (DecoderState, error) {
	if d.handle == 0 {
		return 0, ErrClosed
	}
	return DecoderState(d.getState(d.handle)), nil
}

// Close frees the native decoder. Further calls are no-ops.
func (d *Decoder) Close() error {
	if d.handle == 0 {
		return nil
	}
	d.delete(d.handle)
	d.handle = 0
	return nil
}

// Encoder is a native FLAC__StreamEncoder. It is not safe for concurrent use.
type Encoder struct {
	handle   uintptr
	getState func(uintptr) int32
	delete   func(uintptr)
}

// NewEncoder allocates a stream encoder.
func (c *Codec) NewEncoder() (*Encoder, error) {
	newFn, err := getFunc(c, encoderNew)
	if err != nil {
		return nil, err
	}
	deleteFn, err := getFunc(c, encoderDelete)
	if err != nil {
		return nil, err
	}
	stateFn, err := getFunc(c, encoderGetState)
	if err != nil {
		return nil, err
	}
	h := newFn()
	if h == 0 {
		return nil, errors.New("codec: FLAC__stream_encoder_new returned NULL")
	}
	return &Encoder{handle: h, getState: stateFn, delete: deleteFn}, nil
}

// Handle returns the native encoder pointer, or zero after Close.
func (e *Encoder) Handle() uintptr { return e.handle }

// State returns the encoder state.
func (e *Encoder) State() (EncoderState, error) {
	if e.handle == 0 {
		return 0, ErrClosed
	}
	return EncoderState(e.getState(e.handle)), nil
}

// Close frees the native encoder. Further calls are no-ops.
func (e *Encoder) Close() error {
	if e.handle == 0 {
		return nil
	}
	e.delete(e.handle)
	e.handle = 0
	return nil
}
