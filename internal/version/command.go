package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AttachCobraVersionCommand adds a `version` subcommand to root. With
// --short it prints the bare version, which suits release scripts that stamp
// installer_version from it.
func AttachCobraVersionCommand(root *cobra.Command) {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the nsis-build version, the commit and build time injected through
ldflags, and the Go toolchain and platform it was built for.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			line := Full()
			if short {
				line = Short()
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), line)

			return err
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "print only the version number")

	root.AddCommand(cmd)
}
