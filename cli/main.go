// The flacsym command loads libFLAC instances and resolves, reads and
// probes their exports.
package main

import (
	"os"
)

func main() {
	os.Exit(Main())
}

// Main runs the command and returns its exit status.
func Main() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}
