//go:build linux && (amd64 || arm64)

// Package memmod loads shared library images held in memory.
//
// On linux the image is written to an anonymous file that never has a
// directory entry and is then opened by the dynamic loader through
// /proc/self/fd. Each load produces an independent library instance.
package memmod

import (
	"bytes"
	"debug/elf"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/ebitengine/purego"
	"golang.org/x/sys/unix"
)

var errClosed = errors.New("library is closed")

type Module struct {
	mu     sync.RWMutex
	fd     int
	handle uintptr
	path   string
	closed bool
}

// LoadLibrary loads an ELF shared object image for the current architecture.
func LoadLibrary(data []byte) (*Module, error) {
	if len(data) == 0 {
		return nil, errors.New("empty ELF image")
	}
	if err := validateELFForCurrentArch(data); err != nil {
		return nil, err
	}

	fd, err := createAnonymousLibraryFD()
	if err != nil {
		return nil, fmt.Errorf("create anonymous shared object fd: %w", err)
	}
	if err := writeAll(fd, data); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}

	module := &Module{
		fd:   fd,
		path: fmt.Sprintf("/proc/self/fd/%d", fd),
	}
	handle, err := purego.Dlopen(module.path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("dlopen(%s): %w", module.path, err)
	}
	module.handle = handle
	return module, nil
}

// Path returns the loader path of the image.
func (module *Module) Path() string { return module.path }

// Free unloads the image and releases its file descriptor. It is safe to
// call more than once.
func (module *Module) Free() error {
	module.mu.Lock()
	defer module.mu.Unlock()

	if module.closed {
		return nil
	}
	module.closed = true

	var err error
	if module.handle != 0 {
		err = purego.Dlclose(module.handle)
		module.handle = 0
	}
	if module.fd >= 0 {
		_ = unix.Close(module.fd)
		module.fd = -1
	}
	return err
}

// ProcAddressByName returns the address of the export name.
func (module *Module) ProcAddressByName(name string) (uintptr, error) {
	if name == "" {
		return 0, errors.New("export name cannot be empty")
	}
	if strings.ContainsRune(name, '\x00') {
		return 0, errors.New("export name contains NUL")
	}

	module.mu.RLock()
	defer module.mu.RUnlock()
	if module.closed {
		return 0, errClosed
	}
	if module.handle == 0 {
		return 0, errors.New("library handle is nil")
	}

	sym, err := purego.Dlsym(module.handle, name)
	if err != nil {
		return 0, fmt.Errorf("dlsym(%s): %w", name, err)
	}
	if sym == 0 {
		return 0, errors.New("symbol address is nil")
	}
	return sym, nil
}

func writeAll(fd int, data []byte) error {
	written := 0
	for written < len(data) {
		n, err := unix.Write(fd, data[written:])
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("write anonymous shared object: %w", err)
		}
		if n <= 0 {
			return fmt.Errorf("write anonymous shared object: short write (%d/%d)", written, len(data))
		}
		written += n
	}
	return nil
}

func createAnonymousLibraryFD() (int, error) {
	fd, memErr := unix.MemfdCreate("flacsym-image", unix.MFD_CLOEXEC)
	if memErr == nil {
		return fd, nil
	}

	// Kernels without memfd: O_TMPFILE on tmpfs has no directory entry either.
	fd, err := unix.Open("/dev/shm", unix.O_RDWR|unix.O_CLOEXEC|unix.O_TMPFILE, 0o600)
	if err == nil {
		return fd, nil
	}

	// Last resort: create under /dev/shm then unlink immediately. The open fd
	// remains usable via /proc/self/fd/<n>.
	f, tmpErr := os.CreateTemp("/dev/shm", "flacsym-memmod-*")
	if tmpErr != nil {
		return -1, errors.Join(memErr, err, tmpErr)
	}
	name := f.Name()
	if rmErr := os.Remove(name); rmErr != nil {
		_ = f.Close()
		return -1, fmt.Errorf("unlink temp shared object %s: %w", name, rmErr)
	}
	dupFD, dupErr := unix.Dup(int(f.Fd()))
	if closeErr := f.Close(); closeErr != nil && dupErr == nil {
		_ = unix.Close(dupFD)
		return -1, fmt.Errorf("close temp shared object file %s: %w", name, closeErr)
	}
	if dupErr != nil {
		return -1, fmt.Errorf("dup temp shared object fd: %w", dupErr)
	}
	return dupFD, nil
}

func validateELFForCurrentArch(data []byte) error {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid ELF image: %w", err)
	}
	defer f.Close()

	machine, err := currentELFMachine()
	if err != nil {
		return err
	}
	if f.Machine != machine {
		return fmt.Errorf("foreign platform (provided: %s, expected: %s)", f.Machine, machine)
	}
	if f.Type != elf.ET_DYN {
		return fmt.Errorf("unsupported ELF file type: %s", f.Type)
	}
	return nil
}

func currentELFMachine() (elf.Machine, error) {
	switch runtime.GOARCH {
	case "amd64":
		return elf.EM_X86_64, nil
	case "arm64":
		return elf.EM_AARCH64, nil
	default:
		return 0, fmt.Errorf("unsupported linux architecture: %s", runtime.GOARCH)
	}
}
