//go:build !darwin && !freebsd && !linux && !windows

package dynlib

import "errors"

const (
	Lazy   = 0
	Now    = 0
	Global = 0
	Local  = 0
)

var errNotImplemented = errors.New("shared libraries are not supported on this platform")

func openSystem(string, int) (backend, error) {
	return nil, errNotImplemented
}
