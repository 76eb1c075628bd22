package main

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	libPaths   []string
	useSystem  bool
	inMemory   bool
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:          "flacsym",
	Short:        "Resolve and probe libFLAC exports through lazily bound symbols",
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "TOML library manifest")
	flags.StringArrayVar(&libPaths, "lib", nil, "shared library to load (repeatable; appended after manifest libraries, the first library listed is the default unless the manifest marks one)")
	flags.BoolVar(&useSystem, "system", false, "load the system libFLAC from the usual library names")
	flags.BoolVar(&inMemory, "in-memory", false, "load --lib libraries from memory instead of through the system loader")
	flags.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(resolveCmd, versionCmd, selftestCmd)
}
