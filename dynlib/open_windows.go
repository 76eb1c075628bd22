//go:build windows

package dynlib

import "golang.org/x/sys/windows"

// dlopen modes are not used on windows.
const (
	Lazy   = 0
	Now    = 0
	Global = 0
	Local  = 0
)

type dllHandle windows.Handle

func openSystem(path string, _ int) (backend, error) {
	h, err := windows.LoadLibrary(path)
	if err != nil {
		return nil, err
	}
	return dllHandle(h), nil
}

func (h dllHandle) symbol(name string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(h), name)
}

func (h dllHandle) close() error {
	return windows.FreeLibrary(windows.Handle(h))
}
