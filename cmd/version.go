package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version information set via ldflags at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func newVersionCmd() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(out, Version)
				return
			}
			fmt.Fprintf(out, "promenade %s\n", displayVersion())
			fmt.Fprintf(out, "commit: %s\n", GitCommit)
			fmt.Fprintf(out, "built: %s\n", BuildDate)
			fmt.Fprintf(out, "go: %s\n", runtime.Version())
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print only the version number")
	return cmd
}

// displayVersion adds the v prefix to release versions.
func displayVersion() string {
	if Version == "" || Version == "dev" || Version[0] == 'v' {
		return Version
	}
	return "v" + Version
}
