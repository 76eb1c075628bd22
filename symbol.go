package flacsym

import (
	"fmt"
	"reflect"
	"unsafe"
)

// resolve looks up name in lib. A zero address is treated as absent.
func resolve(lib Library, name string) (uintptr, error) {
	addr, err := lib.Resolve(name)
	if err != nil {
		return 0, symbolError(name, lib, err)
	}
	if addr == 0 {
		return 0, symbolError(name, lib, ErrUnresolvedSymbol)
	}
	return addr, nil
}

func checkName(name string) {
	if name == "" {
		panic("flacsym: empty symbol name")
	}
}

// Func is a function export with Go signature F. F must be a func type whose
// parameters and result can be passed to native code: integers, floats,
// bool, uintptr, pointers, strings and, where the platform supports it,
// structs. Strings are passed as NUL-terminated copies and returned strings
// are copied from the native char pointer.
type Func[F any] struct {
	name string
}

// NewFunc declares a function export. It panics if name is empty or F is not
// a supported function type.
func NewFunc[F any](name string) Func[F] {
	checkName(name)
	if err := checkFuncType(reflect.TypeFor[F]()); err != nil {
		panic(fmt.Sprintf("flacsym: %s: %v", name, err))
	}
	return Func[F]{name: name}
}

// Name returns the export name.
func (s Func[F]) Name() string { return s.name }

// Get resolves s against the process default library and returns a callable
// F.
func (s Func[F]) Get() (F, error) {
	return s.In(nil)
}

// In resolves s against the library held by ctx. A nil ctx means the process
// default.
func (s Func[F]) In(ctx *Context) (F, error) {
	lib, err := contextLibrary(ctx)
	if err != nil {
		var zero F
		return zero, symbolError(s.name, nil, err)
	}
	return bindFunc[F](lib, s.name)
}

// Bind pairs s with lib without resolving it.
func (s Func[F]) Bind(lib Library) BoundFunc[F] {
	return BoundFunc[F]{lib: lib, name: s.name}
}

// BoundFunc is a function export paired with a specific library.
type BoundFunc[F any] struct {
	lib  Library
	name string
}

// Name returns the export name.
func (s BoundFunc[F]) Name() string { return s.name }

// Library returns the library s is bound to.
func (s BoundFunc[F]) Library() Library { return s.lib }

// Get resolves s against its library and returns a callable F.
func (s BoundFunc[F]) Get() (F, error) {
	if s.lib == nil {
		var zero F
		return zero, symbolError(s.name, nil, ErrInvalidLibrary)
	}
	return bindFunc[F](s.lib, s.name)
}

type funcKey struct {
	name string
	typ  reflect.Type
}

func bindFunc[F any](lib Library, name string) (F, error) {
	var zero F
	addr, err := resolve(lib, name)
	if err != nil {
		return zero, err
	}
	m, ok := lib.(Memoizer)
	if !ok {
		fn, err := makeFunc[F](addr)
		if err != nil {
			return zero, symbolError(name, lib, err)
		}
		return fn, nil
	}
	v, err := m.Memo(funcKey{name: name, typ: reflect.TypeFor[F]()}, func() (any, error) {
		return makeFunc[F](addr)
	})
	if err != nil {
		return zero, symbolError(name, lib, err)
	}
	return v.(F), nil
}

// Var is a data export holding a value of type T. T must have a fixed
// memory layout matching the native declaration.
type Var[T any] struct {
	name string
}

// NewVar declares a data export. It panics if name is empty or T has no
// fixed memory layout.
func NewVar[T any](name string) Var[T] {
	checkName(name)
	if err := checkDataType(reflect.TypeFor[T]()); err != nil {
		panic(fmt.Sprintf("flacsym: %s: %v", name, err))
	}
	return Var[T]{name: name}
}

// Name returns the export name.
func (s Var[T]) Name() string { return s.name }

// Load returns a copy of the current value of s in the process default
// library.
func (s Var[T]) Load() (T, error) {
	return s.LoadIn(nil)
}

// Pointer returns the storage location of s in the process default library.
func (s Var[T]) Pointer() (*T, error) {
	return s.PointerIn(nil)
}

// LoadIn returns a copy of the current value of s in the library held by ctx.
func (s Var[T]) LoadIn(ctx *Context) (T, error) {
	p, err := s.PointerIn(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return *p, nil
}

// PointerIn returns the storage location of s in the library held by ctx.
func (s Var[T]) PointerIn(ctx *Context) (*T, error) {
	lib, err := contextLibrary(ctx)
	if err != nil {
		return nil, symbolError(s.name, nil, err)
	}
	return pointerTo[T](lib, s.name)
}

// Bind pairs s with lib without resolving it.
func (s Var[T]) Bind(lib Library) BoundVar[T] {
	return BoundVar[T]{lib: lib, name: s.name}
}

// BoundVar is a data export paired with a specific library.
type BoundVar[T any] struct {
	lib  Library
	name string
}

// Name returns the export name.
func (s BoundVar[T]) Name() string { return s.name }

// Library returns the library s is bound to.
func (s BoundVar[T]) Library() Library { return s.lib }

// Load returns a copy of the current value of s.
func (s BoundVar[T]) Load() (T, error) {
	p, err := s.Pointer()
	if err != nil {
		var zero T
		return zero, err
	}
	return *p, nil
}

// Pointer returns the storage location of s.
func (s BoundVar[T]) Pointer() (*T, error) {
	if s.lib == nil {
		return nil, symbolError(s.name, nil, ErrInvalidLibrary)
	}
	return pointerTo[T](s.lib, s.name)
}

func pointerTo[T any](lib Library, name string) (*T, error) {
	addr, err := resolve(lib, name)
	if err != nil {
		return nil, err
	}
	return (*T)(unsafe.Pointer(addr)), nil
}

// String is a data export declared in C as a pointer to a NUL-terminated
// string, for example
//
//	extern const char *FLAC__VERSION_STRING;
type String struct {
	ptr Var[uintptr]
}

// NewString declares a C string export. It panics if name is empty.
func NewString(name string) String {
	return String{ptr: NewVar[uintptr](name)}
}

// Name returns the export name.
func (s String) Name() string { return s.ptr.name }

// Load returns a copy of the string s points to in the process default
// library.
func (s String) Load() (string, error) {
	return s.LoadIn(nil)
}

// LoadIn returns a copy of the string s points to in the library held by
// ctx.
func (s String) LoadIn(ctx *Context) (string, error) {
	p, err := s.ptr.LoadIn(ctx)
	if err != nil {
		return "", err
	}
	return GoString(p), nil
}

// Bind pairs s with lib without resolving it.
func (s String) Bind(lib Library) BoundString {
	return BoundString{ptr: s.ptr.Bind(lib)}
}

// BoundString is a C string export paired with a specific library.
type BoundString struct {
	ptr BoundVar[uintptr]
}

// Name returns the export name.
func (s BoundString) Name() string { return s.ptr.name }

// Library returns the library s is bound to.
func (s BoundString) Library() Library { return s.ptr.lib }

// Load returns a copy of the string s points to.
func (s BoundString) Load() (string, error) {
	p, err := s.ptr.Load()
	if err != nil {
		return "", err
	}
	return GoString(p), nil
}
