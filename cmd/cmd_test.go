package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goatx/suitegen/internal/test"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// execute runs the root command with args and returns what it wrote to its
// output and error streams. Flags are reset afterwards since the command tree
// is shared between tests.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	origOut := rootCmd.OutOrStdout()
	origErr := rootCmd.ErrOrStderr()

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(origOut)
		rootCmd.SetErr(origErr)
		resetFlags(rootCmd)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// goldenSuite is the expected output for testdata/test_mod.suite, with the
// header naming source instead.
func goldenSuite(t *testing.T, source string) string {
	t.Helper()
	want := test.Gofmt(t, test.ReadGolden(t, "test_mod_suite_test.go.golden"))
	return strings.Replace(want, "from test_mod.suite.", "from "+source+".", 1)
}
