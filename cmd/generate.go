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
	"errors"
	"fmt"
	"path/filepath"

	"github.com/goatx/suitegen/internal/codegen"
	"github.com/spf13/cobra"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate FILE...",
	Short: "Generate Go tests from suite declaration files",
	Long: `Parse each suite declaration (.suite files in the text form, .yaml or .yml files
in the YAML form) and write the generated Go test file next to it, named after
the suite (suite test_mod becomes test_mod_suite_test.go).

Use -o/--output to choose the output file of a single declaration, or "-o -" to
write it to stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outputPath, err := cmd.Flags().GetString("output")
		if err != nil {
			return err
		}
		if outputPath != "" && len(args) > 1 {
			return errors.New("--output requires exactly one declaration file")
		}

		e, err := newEmitter(cmd)
		if err != nil {
			return err
		}

		jobs := make([]job, 0, len(args))
		for _, path := range args {
			s, err := parseFile(path)
			if err != nil {
				return err
			}

			j := job{
				suite:  s,
				source: filepath.Base(path),
				dir:    filepath.Dir(path),
				path:   filepath.Join(filepath.Dir(path), codegen.OutputName(s, cfg.OutputSuffix)),
			}
			switch outputPath {
			case "":
			case stdout:
				j.path = stdout
			default:
				j.dir, j.path = filepath.Dir(outputPath), outputPath
			}
			jobs = append(jobs, j)
		}

		if err := e.run(jobs); err != nil {
			return fmt.Errorf("failed to generate: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("output", "o", "", `write the generated code to a file ("-" for stdout)`)
	addGenerateFlags(generateCmd)
}
