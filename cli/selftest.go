package main

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/sliverarmory/flacsym"
	"github.com/sliverarmory/flacsym/codec"
)

var minVersion string

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Probe known exports of every loaded library for signature mismatches",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if len(s.libs) == 0 {
			return fmt.Errorf("selftest: %w", flacsym.ErrMissingDefaultLibrary)
		}
		want := s.cfg.SelfTest.MinVersion
		if minVersion != "" {
			want = minVersion
		}

		var result error
		for _, lib := range s.libs {
			if err := codec.New(lib).SelfTest(want); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: FAIL\n", lib.Name())
				result = multierror.Append(result, fmt.Errorf("%s: %w", lib.Name(), err))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", lib.Name())
		}
		return result
	},
}

func init() {
	selftestCmd.Flags().StringVar(&minVersion, "min-version", "", "oldest accepted FLAC__VERSION_STRING (overrides the manifest)")
}
