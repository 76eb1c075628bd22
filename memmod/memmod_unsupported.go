//go:build !linux || !(amd64 || arm64)

package memmod

import "errors"

var errUnsupported = errors.New("memmod is only supported on linux/amd64 and linux/arm64")

type Module struct{}

func LoadLibrary(data []byte) (*Module, error) {
	_ = data
	return nil, errUnsupported
}

func (module *Module) Path() string { return "" }

func (module *Module) Free() error { return nil }

func (module *Module) ProcAddressByName(name string) (uintptr, error) {
	_ = name
	return 0, errUnsupported
}
