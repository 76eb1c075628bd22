package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zapcore"
)

const manifest = `
log_level = "debug"
cache_size = 64

[selftest]
min_version = "1.3.0"

[[library]]
name = "system"
paths = ["libFLAC.so.12", "libFLAC.so.8"]

[[library]]
name = "vendored"
paths = ["/opt/flac/lib/libFLAC.so"]
default = true
in_memory = true
`

func TestParse(t *testing.T) {
	got, err := Parse([]byte(manifest))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &Config{
		LogLevel:  "debug",
		CacheSize: 64,
		SelfTest:  SelfTest{MinVersion: "1.3.0"},
		Libraries: []Library{
			{Name: "system", Paths: []string{"libFLAC.so.12", "libFLAC.so.8"}},
			{Name: "vendored", Paths: []string{"/opt/flac/lib/libFLAC.so"}, Default: true, InMemory: true},
		},
	}
	if !cmp.Equal(want, got) {
		t.Errorf("unexpected result:\n--- want:\n+++ got:\n%s", cmp.Diff(want, got))
	}
	if got.Level() != zapcore.DebugLevel {
		t.Errorf("unexpected level: got:%v want:%v", got.Level(), zapcore.DebugLevel)
	}

	def, err := got.DefaultLibrary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def.Name != "vendored" {
		t.Errorf("unexpected default library: got:%q want:%q", def.Name, "vendored")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flacsym.toml")
	if err := os.WriteFile(path, []byte(manifest), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Libraries) != 2 {
		t.Errorf("unexpected number of libraries: got:%d want:2", len(got.Libraries))
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaultLibraryFallback(t *testing.T) {
	var cfg Config
	if _, err := cfg.DefaultLibrary(); err != ErrNoLibraries {
		t.Errorf("unexpected error: got:%v want:%v", err, ErrNoLibraries)
	}
	if cfg.Level() != zapcore.InfoLevel {
		t.Errorf("unexpected default level: %v", cfg.Level())
	}

	cfg.Libraries = []Library{{Name: "first", Paths: []string{"a"}}, {Name: "second", Paths: []string{"b"}}}
	def, err := cfg.DefaultLibrary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def.Name != "first" {
		t.Errorf("unexpected default library: got:%q want:%q", def.Name, "first")
	}
}

var parseErrorTests = []struct {
	name  string
	input string
	want  []string
}{
	{
		name:  "unknown_key",
		input: "log_lvl = \"info\"\n",
		want:  []string{"unknown keys: log_lvl"},
	},
	{
		name:  "syntax",
		input: "[[library]\n",
		want:  []string{"toml"},
	},
	{
		name: "invalid_libraries",
		input: `
log_level = "loud"
cache_size = -1

[[library]]
name = "a"
paths = ["x"]
default = true

[[library]]
name = "a"
paths = []
default = true

[[library]]
paths = [""]
`,
		want: []string{
			`unrecognized level: "loud"`,
			"negative cache_size -1",
			`duplicate library name "a"`,
			`library "a" has no paths`,
			"library 2 has no name",
			`library "" has an empty path`,
			"more than one default library: a, a",
		},
	},
}

func TestParseErrors(t *testing.T) {
	for _, test := range parseErrorTests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse([]byte(test.input))
			if err == nil {
				t.Fatal("expected error")
			}
			for _, w := range test.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("error %q does not contain %q", err, w)
				}
			}
		})
	}
}
