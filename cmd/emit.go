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
	"os"
	"path/filepath"
	"strings"

	"github.com/goatx/suitegen/internal/check"
	"github.com/goatx/suitegen/internal/codegen"
	"github.com/goatx/suitegen/internal/load"
	"github.com/goatx/suitegen/internal/suite"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// stdout as an output path writes the generated code to the command's output.
const stdout = "-"

// job is one suite to generate.
type job struct {
	suite  *suite.Suite
	source string // declaration file, named in the generated header
	dir    string // package directory the output belongs to
	path   string // output file, or stdout
}

type output struct {
	job
	src []byte
}

// emitter carries the generation settings of one command run after flags
// were merged over the config file.
type emitter struct {
	cmd         *cobra.Command
	packageName string
	parallel    bool
	check       bool

	names    map[string]string
	packages map[string]*load.PackageInfo
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("package", "p", "", "package name of the generated file (default: inferred from the output directory)")
	cmd.Flags().Bool("parallel", false, "mark every generated subtest with t.Parallel()")
	cmd.Flags().Bool("check", false, "verify setup and teardown signatures against the target package")
}

func newEmitter(cmd *cobra.Command) (*emitter, error) {
	e := &emitter{
		cmd:         cmd,
		packageName: cfg.Package,
		parallel:    cfg.Parallel,
		check:       cfg.Check,
		names:       make(map[string]string),
		packages:    make(map[string]*load.PackageInfo),
	}

	flags := cmd.Flags()
	if flags.Changed("package") {
		name, err := flags.GetString("package")
		if err != nil {
			return nil, err
		}
		e.packageName = name
	}
	if flags.Changed("parallel") {
		parallel, err := flags.GetBool("parallel")
		if err != nil {
			return nil, err
		}
		e.parallel = parallel
	}
	if flags.Changed("check") {
		checkSignatures, err := flags.GetBool("check")
		if err != nil {
			return nil, err
		}
		e.check = checkSignatures
	}
	return e, nil
}

// run generates every job before writing anything, so a failing suite leaves
// no partial output behind.
func (e *emitter) run(jobs []job) error {
	if err := collisions(jobs); err != nil {
		return err
	}

	outputs := make([]output, 0, len(jobs))
	for _, j := range jobs {
		src, err := e.generate(j)
		if err != nil {
			return err
		}
		outputs = append(outputs, output{job: j, src: src})
	}

	for _, o := range outputs {
		if o.path == stdout {
			if _, err := e.cmd.OutOrStdout().Write(o.src); err != nil {
				return fmt.Errorf("failed to write generated code: %w", err)
			}
			continue
		}
		path, err := codegen.NewFileWriter(filepath.Dir(o.path)).Write(filepath.Base(o.path), o.src)
		if err != nil {
			return err
		}
		logger.Info("wrote suite",
			zap.String("suite", o.suite.Name),
			zap.String("path", path),
			zap.Int("tests", len(o.suite.Tests)))
	}
	return nil
}

// collisions rejects jobs that would overwrite each other's output file or
// declare the same test function in one package directory.
func collisions(jobs []job) error {
	paths := make(map[string]job)
	namespaces := make(map[string]job)
	for _, j := range jobs {
		if j.path != stdout {
			key := filepath.Clean(j.path)
			if abs, err := filepath.Abs(key); err == nil {
				key = abs
			}
			if prev, ok := paths[key]; ok {
				return fmt.Errorf("%w: suites %s (%s) and %s (%s) both write %s",
					suite.ErrDuplicate, prev.suite.Name, prev.source, j.suite.Name, j.source, j.path)
			}
			paths[key] = j
		}

		dir := filepath.Clean(j.dir)
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		namespace := codegen.Namespace(j.suite)
		key := dir + string(filepath.Separator) + namespace
		if prev, ok := namespaces[key]; ok {
			return fmt.Errorf("%w: suites %s (%s) and %s (%s) both generate %s in %s",
				suite.ErrDuplicate, prev.suite.Name, prev.source, j.suite.Name, j.source, namespace, j.dir)
		}
		namespaces[key] = j
	}
	return nil
}

func (e *emitter) generate(j job) ([]byte, error) {
	if err := e.verify(j); err != nil {
		return nil, err
	}

	packageName, err := e.packageFor(j.dir)
	if err != nil {
		return nil, err
	}

	filename := j.path
	if filename == stdout {
		filename = filepath.Join(j.dir, codegen.OutputName(j.suite, cfg.OutputSuffix))
	}
	if abs, err := filepath.Abs(filename); err == nil {
		filename = abs
	}

	src, err := codegen.Generate(j.suite, codegen.Options{
		PackageName: packageName,
		Parallel:    e.parallel,
		Source:      j.source,
		Filename:    filename,
	})
	if errors.Is(err, codegen.ErrFormat) {
		logger.Warn("writing unformatted code; the Go compiler will report the errors in the test bodies",
			zap.String("suite", j.suite.Name),
			zap.Error(err))
		return src, nil
	}
	return src, err
}

// verify runs the signature check when enabled.
func (e *emitter) verify(j job) error {
	if !e.check {
		return nil
	}
	pkg, err := e.load(j.dir)
	if err != nil {
		return err
	}
	return check.Suite(pkg, j.suite)
}

func (e *emitter) load(dir string) (*load.PackageInfo, error) {
	if pkg, ok := e.packages[dir]; ok {
		return pkg, nil
	}
	pkg, err := load.Load(dir)
	if err != nil {
		return nil, err
	}
	for _, pkgErr := range pkg.Errors {
		logger.Warn("ignoring load error", zap.String("dir", dir), zap.String("error", pkgErr.Error()))
	}
	e.packages[dir] = pkg
	return pkg, nil
}

func (e *emitter) packageFor(dir string) (string, error) {
	if e.packageName != "" {
		return e.packageName, nil
	}
	if name, ok := e.names[dir]; ok {
		return name, nil
	}
	name, err := load.PackageName(dir)
	if err != nil {
		return "", err
	}
	logger.Debug("inferred package name", zap.String("dir", dir), zap.String("package", name))
	e.names[dir] = name
	return name, nil
}

// parseFile reads a declaration in the text DSL, or its YAML form for .yaml
// and .yml files.
func parseFile(path string) (*suite.Suite, error) {
	// #nosec G304 - path is a declaration file named on the command line
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read declaration: %w", err)
	}

	var s *suite.Suite
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		s, err = suite.ParseYAML(path, src)
	default:
		s, err = suite.Parse(path, src)
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("parsed suite",
		zap.String("file", path),
		zap.String("suite", s.Name),
		zap.Int("tests", len(s.Tests)))
	return s, nil
}
