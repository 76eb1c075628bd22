// Package flacsym binds exports of a native shared library to typed, lazily
// resolved Go values.
//
// A symbol is declared once with its name and Go type:
//
//	var decoderNew = flacsym.NewFunc[func() uintptr]("FLAC__stream_decoder_new")
//	var version = flacsym.NewString("FLAC__VERSION_STRING")
//
// and resolved on use, either against the process default library
//
//	newDecoder, err := decoderNew.Get()
//
// or against an explicit library instance
//
//	v, err := version.Bind(lib).Load()
//
// Declared symbols hold only their name and are safe for concurrent use.
// Resolved addresses are cached by the Library implementation, not by the
// symbols. The declared Go type is trusted: a type that does not match the
// native export's real signature cannot be detected here and results in
// undefined behavior at the native call.
package flacsym

import (
	"sync/atomic"
)

// Library is a loaded shared-library instance. Resolve must be safe for
// concurrent use and must return the same address for the same name for as
// long as the library stays open.
type Library interface {
	Resolve(name string) (uintptr, error)
}

// Memoizer is implemented by libraries that can cache derived per-symbol
// values, such as the typed Go functions built for function exports. Memo
// returns the value stored under key, calling build to create it on first
// use.
type Memoizer interface {
	Memo(key any, build func() (any, error)) (any, error)
}

type namer interface {
	Name() string
}

func libraryName(lib Library) string {
	if n, ok := lib.(namer); ok {
		return n.Name()
	}
	return ""
}

type librarySlot struct {
	lib Library
}

// Context holds the library that unbound symbols resolve against. The zero
// value has no library.
//
// A Context is written during initialization and teardown and read on every
// unbound symbol use. Replacing the library while other goroutines resolve
// through the same Context is not supported.
type Context struct {
	slot atomic.Pointer[librarySlot]
}

// NewContext returns a Context holding lib. A nil lib yields an empty
// Context.
func NewContext(lib Library) *Context {
	ctx := new(Context)
	ctx.Set(lib)
	return ctx
}

// Library returns the library held by ctx or ErrMissingDefaultLibrary.
func (ctx *Context) Library() (Library, error) {
	slot := ctx.slot.Load()
	if slot == nil {
		return nil, ErrMissingDefaultLibrary
	}
	return slot.lib, nil
}

// Set stores lib in ctx and returns the previously held library, if any.
// Setting nil clears ctx.
func (ctx *Context) Set(lib Library) Library {
	var next *librarySlot
	if lib != nil {
		next = &librarySlot{lib: lib}
	}
	prev := ctx.slot.Swap(next)
	if prev == nil {
		return nil
	}
	return prev.lib
}

// Clear removes the library held by ctx and returns it.
func (ctx *Context) Clear() Library {
	return ctx.Set(nil)
}

var processContext Context

// Default returns the process-wide context used by unbound symbols.
func Default() *Context {
	return &processContext
}

// SetDefault sets the process-wide default library and returns the previous
// one. It is intended to be called once during startup.
func SetDefault(lib Library) Library {
	prev := processContext.Set(lib)
	if lib != nil {
		Logger().Info("default library set")
	}
	return prev
}

// ClearDefault removes the process-wide default library and returns it. It
// is intended to be called during teardown, before the library is closed.
func ClearDefault() Library {
	return processContext.Clear()
}

// DefaultLibrary returns the process-wide default library or
// ErrMissingDefaultLibrary.
func DefaultLibrary() (Library, error) {
	return processContext.Library()
}

func contextLibrary(ctx *Context) (Library, error) {
	if ctx == nil {
		ctx = Default()
	}
	return ctx.Library()
}
