package flacsym

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/ebitengine/purego"
)

// checkFuncType reports whether t can be bound to a native entry point.
func checkFuncType(t reflect.Type) error {
	if t == nil || t.Kind() != reflect.Func {
		return fmt.Errorf("%w: %v is not a function type", ErrUnsupportedSignature, t)
	}
	if t.IsVariadic() {
		return fmt.Errorf("%w: %v is variadic", ErrUnsupportedSignature, t)
	}
	if t.NumOut() > 1 {
		return fmt.Errorf("%w: %v has more than one result", ErrUnsupportedSignature, t)
	}
	for i := 0; i < t.NumIn(); i++ {
		if err := checkValueKind(t.In(i), true); err != nil {
			return fmt.Errorf("%w: argument %d of %v: %w", ErrUnsupportedSignature, i, t, err)
		}
	}
	if t.NumOut() == 1 {
		if err := checkValueKind(t.Out(0), false); err != nil {
			return fmt.Errorf("%w: result of %v: %w", ErrUnsupportedSignature, t, err)
		}
	}
	return nil
}

func checkValueKind(t reflect.Type, arg bool) error {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Pointer, reflect.UnsafePointer, reflect.String, reflect.Struct:
		return nil
	case reflect.Func:
		if arg {
			return nil
		}
	}
	return fmt.Errorf("kind %s cannot cross the native boundary", t.Kind())
}

// checkDataType reports whether t has a fixed memory layout that can be
// read directly from a data export.
func checkDataType(t reflect.Type) error {
	switch t.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
		return fmt.Errorf("%w: %v has no fixed native layout", ErrUnsupportedSignature, t)
	case reflect.Array:
		return checkDataType(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if err := checkDataType(t.Field(i).Type); err != nil {
				return err
			}
		}
	}
	return nil
}

// makeFunc builds a Go function of type F that calls the native entry point
// at addr.
func makeFunc[F any](addr uintptr) (fn F, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrUnsupportedSignature, r)
		}
	}()
	purego.RegisterFunc(&fn, addr)
	return fn, nil
}

// GoString copies the NUL-terminated C string at ptr. A zero ptr yields
// the empty string.
func GoString(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	const maxLen = 1 << 20
	buf := make([]byte, 0, 64)
	for i := 0; i < maxLen; i++ {
		ch := *(*byte)(unsafe.Pointer(ptr + uintptr(i)))
		if ch == 0 {
			return string(buf)
		}
		buf = append(buf, ch)
	}
	return string(buf)
}
