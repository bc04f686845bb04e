package version

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// TestFull includes the version, the commit and the build platform.
func TestFull(t *testing.T) {
	t.Parallel()

	full := Full()
	require.Contains(t, full, "nsis-build "+Short())
	require.Contains(t, full, "commit "+Commit)
	require.Contains(t, full, runtime.GOOS+"/"+runtime.GOARCH)
	require.Contains(t, Platform(), runtime.Version())
}

// TestVersionCommand runs the subcommand with and without --short.
func TestVersionCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "full", args: []string{"version"}, want: Full() + "\n"},
		{name: "short", args: []string{"version", "--short"}, want: Short() + "\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := &cobra.Command{Use: "nsis-build"}
			AttachCobraVersionCommand(root)

			var out bytes.Buffer

			root.SetOut(&out)
			root.SetArgs(tt.args)

			require.NoError(t, root.Execute())
			require.Equal(t, tt.want, out.String())
		})
	}
}
