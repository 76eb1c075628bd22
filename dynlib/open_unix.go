//go:build darwin || freebsd || linux

package dynlib

import "github.com/ebitengine/purego"

// dlopen modes.
const (
	Lazy   = purego.RTLD_LAZY
	Now    = purego.RTLD_NOW
	Global = purego.RTLD_GLOBAL
	Local  = purego.RTLD_LOCAL
)

type dlHandle uintptr

func openSystem(path string, flags int) (backend, error) {
	h, err := purego.Dlopen(path, flags)
	if err != nil {
		return nil, err
	}
	return dlHandle(h), nil
}

func (h dlHandle) symbol(name string) (uintptr, error) {
	return purego.Dlsym(uintptr(h), name)
}

func (h dlHandle) close() error {
	return purego.Dlclose(uintptr(h))
}
