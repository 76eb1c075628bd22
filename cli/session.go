package main

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sliverarmory/flacsym"
	"github.com/sliverarmory/flacsym/codec"
	"github.com/sliverarmory/flacsym/config"
	"github.com/sliverarmory/flacsym/dynlib"
)

// session holds the libraries opened for one command.
type session struct {
	cfg  *config.Config
	log  *zap.Logger
	libs []*dynlib.Library
}

func newLogger(w io.Writer, level zapcore.Level) *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core)
}

func loadConfig() (*config.Config, error) {
	cfg := &config.Config{}
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return nil, err
		}
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if useSystem {
		cfg.Libraries = append(cfg.Libraries, config.Library{
			Name:  "system",
			Paths: codec.DefaultNames(),
		})
	}
	for _, p := range libPaths {
		cfg.Libraries = append(cfg.Libraries, config.Library{
			Name:     p,
			Paths:    []string{p},
			InMemory: inMemory,
		})
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// openSession opens every configured library and installs the default
// library. The caller must Close the session.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := newLogger(cmd.ErrOrStderr(), cfg.Level())
	flacsym.SetLogger(log)
	dynlib.SetLogger(log)

	s := &session{cfg: cfg, log: log}
	for _, lc := range cfg.Libraries {
		lib, err := openLibrary(lc, cfg.CacheSize, log)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.libs = append(s.libs, lib)
	}

	def, err := cfg.DefaultLibrary()
	if err != nil {
		// No libraries: unbound symbols fail with a missing default.
		return s, nil
	}
	for _, lib := range s.libs {
		if lib.Name() == def.Name {
			flacsym.SetDefault(lib)
			log.Debug("default library", zap.String("library", lib.Name()))
			break
		}
	}
	return s, nil
}

func openLibrary(lc config.Library, cacheSize int, log *zap.Logger) (*dynlib.Library, error) {
	opts := []dynlib.Option{
		dynlib.WithName(lc.Name),
		dynlib.WithCacheSize(cacheSize),
		dynlib.WithLogger(log),
	}
	if lc.InMemory {
		return dynlib.OpenImageFile(lc.Paths[0], opts...)
	}
	return dynlib.OpenFirst(lc.Paths, opts...)
}

// Close clears the default library and closes every library.
func (s *session) Close() error {
	flacsym.ClearDefault()
	var result error
	for _, lib := range s.libs {
		if err := lib.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	_ = s.log.Sync()
	return result
}
