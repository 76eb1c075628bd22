// Package dynlib opens native shared libraries and resolves their exports.
//
// A Library implements flacsym.Library and flacsym.Memoizer: it caches
// resolved addresses and the typed functions built for them until it is
// closed.
package dynlib

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/sliverarmory/flacsym"
)

// DefaultCacheSize is the number of resolved addresses a Library keeps.
const DefaultCacheSize = 512

// backend is a platform loader for one open library.
type backend interface {
	symbol(name string) (uintptr, error)
	close() error
}

// Library is an open shared library.
type Library struct {
	mu      sync.RWMutex
	name    string
	path    string
	backend backend
	closed  bool

	cache *lru.Cache[string, uintptr]
	memo  sync.Map
	log   *zap.Logger
}

type options struct {
	name      string
	flags     int
	cacheSize int
	logger    *zap.Logger
}

// Option configures how a library is opened.
type Option func(*options)

// WithName sets the name reported by Library.Name. The default is the path
// the library was opened from.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithFlags sets the dlopen mode. It is ignored where the platform loader
// has no mode.
func WithFlags(flags int) Option {
	return func(o *options) { o.flags = flags }
}

// WithCacheSize sets the number of resolved addresses kept by the library.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// WithLogger sets the logger used for this library.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{
		flags:     Now | Local,
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cacheSize <= 0 {
		o.cacheSize = DefaultCacheSize
	}
	if o.logger == nil {
		o.logger = Logger()
	}
	return o
}

func newLibrary(path string, b backend, o options) (*Library, error) {
	cache, err := lru.New[string, uintptr](o.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("dynlib: create symbol cache: %w", err)
	}
	name := o.name
	if name == "" {
		name = path
	}
	lib := &Library{
		name:    name,
		path:    path,
		backend: b,
		cache:   cache,
		log:     o.logger.With(zap.String("library", name)),
	}
	lib.log.Info("library opened", zap.String("path", path))
	return lib, nil
}

// Open loads the shared library at path using the platform loader. Bare
// file names are searched for the way the platform loader does.
func Open(path string, opts ...Option) (*Library, error) {
	if path == "" {
		return nil, errors.New("dynlib: empty library path")
	}
	o := buildOptions(opts)
	b, err := openSystem(path, o.flags)
	if err != nil {
		return nil, fmt.Errorf("dynlib: open %s: %w", path, err)
	}
	lib, err := newLibrary(path, b, o)
	if err != nil {
		_ = b.close()
		return nil, err
	}
	return lib, nil
}

// OpenFirst opens the first library in names that loads successfully.
func OpenFirst(names []string, opts ...Option) (*Library, error) {
	if len(names) == 0 {
		return nil, errors.New("dynlib: no library names given")
	}
	var errs error
	for _, name := range names {
		lib, err := Open(name, opts...)
		if err == nil {
			return lib, nil
		}
		errs = multierror.Append(errs, err)
	}
	return nil, fmt.Errorf("dynlib: none of %s could be opened: %w", strings.Join(names, ", "), errs)
}

// Name returns the name of the library.
func (l *Library) Name() string { return l.name }

// Path returns the path the library was opened from.
func (l *Library) Path() string { return l.path }

// Resolve returns the address of the export name. Addresses are cached until
// the library is closed. Resolve is safe for concurrent use.
func (l *Library) Resolve(name string) (uintptr, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed || l.backend == nil {
		return 0, fmt.Errorf("%w: %s is closed", flacsym.ErrInvalidLibrary, l.name)
	}
	if name == "" || strings.ContainsRune(name, '\x00') {
		return 0, fmt.Errorf("%w: invalid export name %q", flacsym.ErrUnresolvedSymbol, name)
	}
	if addr, ok := l.cache.Get(name); ok {
		return addr, nil
	}

	addr, err := l.backend.symbol(name)
	if err != nil {
		l.log.Debug("symbol lookup failed", zap.String("symbol", name), zap.Error(err))
		return 0, fmt.Errorf("%w: %w", flacsym.ErrUnresolvedSymbol, err)
	}
	if addr == 0 {
		return 0, fmt.Errorf("%w: %s has a nil address", flacsym.ErrUnresolvedSymbol, name)
	}
	l.cache.Add(name, addr)
	l.log.Debug("symbol resolved", zap.String("symbol", name), zap.Uintptr("addr", addr))
	return addr, nil
}

// Memo returns the value cached under key, building it on first use. Values
// are dropped when the library is closed and none are stored afterwards.
// Concurrent first uses of a key may call build more than once; only one
// result is kept. build must not call back into l.
func (l *Library) Memo(key any, build func() (any, error)) (any, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, fmt.Errorf("%w: %s is closed", flacsym.ErrInvalidLibrary, l.name)
	}

	if v, ok := l.memo.Load(key); ok {
		return v, nil
	}
	v, err := build()
	if err != nil {
		return nil, err
	}
	v, _ = l.memo.LoadOrStore(key, v)
	return v, nil
}

// Cached returns the number of cached symbol addresses.
func (l *Library) Cached() int {
	return l.cache.Len()
}

// Close unloads the library. Symbols resolved from it must not be used
// afterwards. Close is idempotent.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	l.cache.Purge()
	l.memo.Clear()

	var err error
	if l.backend != nil {
		err = l.backend.close()
		l.backend = nil
	}
	if err != nil {
		l.log.Warn("library close failed", zap.Error(err))
		return fmt.Errorf("dynlib: close %s: %w", l.name, err)
	}
	l.log.Info("library closed")
	return nil
}
