package main

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/sliverarmory/flacsym"
)

// nonEmptyArgs rejects empty export names before any symbol is declared.
func nonEmptyArgs(cmd *cobra.Command, args []string) error {
	for i, arg := range args {
		if arg == "" {
			return fmt.Errorf("argument %d: empty symbol name", i+1)
		}
	}
	return nil
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <symbol>...",
	Short: "Resolve exports in every loaded library",
	Args:  cobra.MatchAll(cobra.MinimumNArgs(1), nonEmptyArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if len(s.libs) == 0 {
			return fmt.Errorf("resolve: %w", flacsym.ErrMissingDefaultLibrary)
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetBorder(false)
		table.SetAutoWrapText(false)
		table.SetHeader([]string{"Library", "Symbol", "Address"})

		var result error
		for _, name := range args {
			sym := flacsym.NewVar[byte](name)
			for _, lib := range s.libs {
				p, err := sym.Bind(lib).Pointer()
				if err != nil {
					result = multierror.Append(result, err)
					table.Append([]string{lib.Name(), name, "-"})
					continue
				}
				table.Append([]string{lib.Name(), name, fmt.Sprintf("%p", p)})
			}
		}
		table.Render()
		return result
	},
}
