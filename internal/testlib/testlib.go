// Package testlib builds a small native library that exports the libFLAC
// symbols used in tests.
package testlib

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

//go:embed testdata/codec.c
var codecSource []byte

// DefaultVersion is the version string built into a library when Codec.Version
// is empty.
const DefaultVersion = "1.4.3"

// Codec describes a library variant.
type Codec struct {
	Version string
	Vendor  string
}

// ErrNoCompiler is returned by Compile when neither zig nor cc is available.
var ErrNoCompiler = errors.New("testlib: no C compiler found (want zig or cc)")

// Ext returns the shared library file extension for the running platform.
func Ext() string {
	switch runtime.GOOS {
	case "darwin":
		return "dylib"
	case "windows":
		return "dll"
	default:
		return "so"
	}
}

// Compile builds c into a shared library at output.
func Compile(output string, c Codec) error {
	compiler, err := compilerCommand()
	if err != nil {
		return err
	}

	src := filepath.Join(filepath.Dir(output), strings.TrimSuffix(filepath.Base(output), "."+Ext())+".c")
	if err := os.WriteFile(src, codecSource, 0o600); err != nil {
		return fmt.Errorf("testlib: write source: %w", err)
	}
	defer os.Remove(src)

	version := c.Version
	if version == "" {
		version = DefaultVersion
	}
	args := append(compiler[1:], "-O2", "-g0")
	switch runtime.GOOS {
	case "darwin":
		args = append(args, "-dynamiclib", "-fPIC")
	case "windows":
		args = append(args, "-shared")
	default:
		args = append(args, "-shared", "-fPIC")
	}
	args = append(args, fmt.Sprintf("-DCODEC_VERSION=%q", version))
	if c.Vendor != "" {
		args = append(args, fmt.Sprintf("-DCODEC_VENDOR=%q", c.Vendor))
	}
	args = append(args, "-o", output, src)

	cmd := exec.Command(compiler[0], args...)
	cmd.Env = append(
		os.Environ(),
		"ZIG_GLOBAL_CACHE_DIR="+filepath.Join(os.TempDir(), "flacsym-zig-global-cache"),
		"ZIG_LOCAL_CACHE_DIR="+filepath.Join(os.TempDir(), "flacsym-zig-local-cache"),
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("testlib: build %s: %w\n%s", output, err, out)
	}
	return nil
}

func compilerCommand() ([]string, error) {
	if _, err := exec.LookPath("zig"); err == nil {
		return []string{"zig", "cc"}, nil
	}
	if _, err := exec.LookPath("cc"); err == nil {
		return []string{"cc"}, nil
	}
	return nil, ErrNoCompiler
}

// Build compiles c into the test's temporary directory and returns the
// library path. The test is skipped when no compiler is available.
func Build(t testing.TB, c Codec) string {
	t.Helper()

	version := c.Version
	if version == "" {
		version = DefaultVersion
	}
	output := filepath.Join(t.TempDir(), fmt.Sprintf("libFLAC-%s.%s", version, Ext()))
	err := Compile(output, c)
	if errors.Is(err, ErrNoCompiler) {
		t.Skip(err)
	}
	if err != nil {
		t.Fatal(err)
	}
	return output
}
