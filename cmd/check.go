/*
Copyright © 2025 Honoka Toda, Shinya Ishitobi

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check FILE...",
	Short: "Validate suite declaration files without generating code",
	Long: `Parse and validate each suite declaration and report its name and test count.
With --check, setup and teardown are also verified against the package in the
declaration's directory.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEmitter(cmd)
		if err != nil {
			return err
		}

		for _, path := range args {
			s, err := parseFile(path)
			if err != nil {
				return err
			}
			if err := e.verify(job{suite: s, dir: filepath.Dir(path)}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok %s: suite %s (%d tests)\n", path, s.Name, len(s.Tests))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().Bool("check", false, "verify setup and teardown signatures against the target package")
}
