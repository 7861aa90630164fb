// Command dvrouted runs a simulated distance-vector routing topology on
// loopback UDP, or injects a single test packet into a running topology.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the main command for the dvrouted binary.
var rootCmd = &cobra.Command{
	Use:   "dvrouted",
	Short: "dvrouted runs a simulated distance-vector routing topology",
	Long:  "dvrouted runs a simulated distance-vector routing topology",
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(injectCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
