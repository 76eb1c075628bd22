package dynlib

import (
	"errors"
	"fmt"
	"os"

	"github.com/sliverarmory/flacsym/memmod"
)

type moduleBackend struct {
	module *memmod.Module
}

func (b moduleBackend) symbol(name string) (uintptr, error) {
	return b.module.ProcAddressByName(name)
}

func (b moduleBackend) close() error {
	return b.module.Free()
}

// OpenImage loads a shared library image from memory without leaving a file
// on disk. Every call yields a distinct library instance, even for identical
// images.
func OpenImage(data []byte, opts ...Option) (*Library, error) {
	if len(data) == 0 {
		return nil, errors.New("dynlib: empty library image")
	}
	module, err := memmod.LoadLibrary(data)
	if err != nil {
		return nil, fmt.Errorf("dynlib: load library image: %w", err)
	}
	o := buildOptions(opts)
	lib, err := newLibrary(module.Path(), moduleBackend{module: module}, o)
	if err != nil {
		_ = module.Free()
		return nil, err
	}
	return lib, nil
}

// OpenImageFile reads the shared library at path and loads it from memory.
// The library is named after path unless WithName is given.
func OpenImageFile(path string, opts ...Option) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dynlib: read library file: %w", err)
	}
	return OpenImage(data, append([]Option{WithName(path)}, opts...)...)
}
