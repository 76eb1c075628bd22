package flacsym

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	// ErrMissingDefaultLibrary is returned when an unbound symbol is used
	// while no default library has been set.
	ErrMissingDefaultLibrary = errors.New("no default library set")

	// ErrUnresolvedSymbol is returned when a library does not export the
	// requested name.
	ErrUnresolvedSymbol = errors.New("unresolved symbol")

	// ErrInvalidLibrary is returned when the library a symbol is resolved
	// against has been closed or was never opened.
	ErrInvalidLibrary = errors.New("invalid library")

	// ErrUnsupportedSignature is returned when a declared Go type cannot be
	// marshaled to the native calling convention on this platform.
	ErrUnsupportedSignature = errors.New("unsupported signature")
)

// SymbolError records a failed resolution of a single symbol. The proxy that
// produced it remains usable.
type SymbolError struct {
	Symbol  string
	Library string
	Err     error
}

func (e *SymbolError) Error() string {
	if e.Library == "" {
		return fmt.Sprintf("flacsym: symbol %q: %v", e.Symbol, e.Err)
	}
	return fmt.Sprintf("flacsym: symbol %q in %s: %v", e.Symbol, e.Library, e.Err)
}

func (e *SymbolError) Unwrap() error { return e.Err }

func isKnownFailure(err error) bool {
	return errors.Is(err, ErrMissingDefaultLibrary) ||
		errors.Is(err, ErrUnresolvedSymbol) ||
		errors.Is(err, ErrInvalidLibrary) ||
		errors.Is(err, ErrUnsupportedSignature)
}

// symbolError wraps err for name. Failures from libraries that do not use
// the package sentinels are classified as unresolved symbols.
func symbolError(name string, lib Library, err error) error {
	if !isKnownFailure(err) {
		err = fmt.Errorf("%w: %w", ErrUnresolvedSymbol, err)
	}
	Logger().Debug("symbol resolution failed",
		zap.String("symbol", name),
		zap.String("library", libraryName(lib)),
		zap.Error(err),
	)
	return &SymbolError{Symbol: name, Library: libraryName(lib), Err: err}
}
