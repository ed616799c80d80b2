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

	"github.com/goatx/suitegen/internal/codegen"
	"github.com/goatx/suitegen/internal/scan"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [DIR]",
	Short: "Generate Go tests from /*suitegen ... */ blocks in Go files",
	Long: `Find every block comment starting with a "suitegen" line in the .go files of
DIR (default ".") and write one generated test file per block into DIR.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		e, err := newEmitter(cmd)
		if err != nil {
			return err
		}

		blocks, err := scan.Blocks(dir)
		if err != nil {
			return err
		}
		if len(blocks) == 0 {
			logger.Info("no suite blocks found", zap.String("dir", dir))
			return nil
		}

		jobs := make([]job, 0, len(blocks))
		for _, b := range blocks {
			path := filepath.Join(dir, codegen.OutputName(b.Suite, cfg.OutputSuffix))
			if filepath.Clean(path) == filepath.Clean(b.File) {
				return fmt.Errorf("suite %s would overwrite the file declaring it, %s", b.Suite.Name, b.File)
			}
			logger.Debug("found suite block",
				zap.String("file", b.File),
				zap.String("suite", b.Suite.Name))
			jobs = append(jobs, job{
				suite:  b.Suite,
				source: filepath.Base(b.File),
				dir:    dir,
				path:   path,
			})
		}

		if err := e.run(jobs); err != nil {
			return fmt.Errorf("failed to generate: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)

	addGenerateFlags(scanCmd)
}
