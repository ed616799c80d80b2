package codegen

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileWriter writes generated suites into a directory.
type FileWriter struct {
	outputDir string
}

func NewFileWriter(outputDir string) *FileWriter {
	return &FileWriter{outputDir: outputDir}
}

// Write stores content as filename under the output directory, creating the
// directory when needed, and returns the written path.
func (w *FileWriter) Write(filename string, content []byte) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filePath := filepath.Join(w.outputDir, filename)
	if err := os.WriteFile(filePath, content, 0o600); err != nil {
		return "", fmt.Errorf("failed to write generated file: %w", err)
	}

	return filePath, nil
}
