package main

import (
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/sliverarmory/flacsym/codec"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and vendor strings of the default and every loaded library",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		// The default library is read through unbound symbols.
		def := codec.New(nil)
		version, err := def.Version()
		if err != nil {
			return err
		}
		vendor, err := def.Vendor()
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetBorder(false)
		table.SetAutoWrapText(false)
		table.SetHeader([]string{"Library", "Version", "Vendor"})
		table.Append([]string{"(default)", version, vendor})
		for _, lib := range s.libs {
			c := codec.New(lib)
			version, err := c.Version()
			if err != nil {
				return err
			}
			vendor, err := c.Vendor()
			if err != nil {
				return err
			}
			table.Append([]string{lib.Name(), version, vendor})
		}
		table.Render()
		return nil
	},
}
