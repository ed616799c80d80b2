package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    Config
	}{
		{
			name: "all fields",
			content: `package: store
parallel: true
check: true
log_level: debug
output_suffix: _gen_test.go
`,
			want: Config{Package: "store", Parallel: true, Check: true, LogLevel: "debug", OutputSuffix: "_gen_test.go"},
		},
		{
			name:    "missing fields keep defaults",
			content: "parallel: true\n",
			want:    Config{Parallel: true, LogLevel: "info", OutputSuffix: "_suite_test.go"},
		},
		{
			name:    "empty file",
			content: "",
			want:    Default(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Load(writeConfig(t, tt.content))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadWithoutPath(t *testing.T) {
	t.Parallel()

	got, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(Default(), got); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "unknown key", content: "paralel: true\n", wantErr: "field paralel not found"},
		{name: "wrong type", content: "parallel: often\n", wantErr: "cannot unmarshal"},
		{name: "invalid package", content: "package: my-pkg\n", wantErr: `package "my-pkg" is not a valid package name`},
		{name: "suffix without _test.go", content: "output_suffix: _gen.go\n", wantErr: "must end with _test.go"},
		{name: "suffix with directory", content: "output_suffix: gen/_test.go\n", wantErr: "must not contain a path separator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load() returned nil error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Load() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Fatal("Load() returned nil error")
		}
	})
}

func TestResolve(t *testing.T) {
	t.Setenv(EnvFile, "")

	got, err := Resolve("custom.yaml")
	if err != nil || got != "custom.yaml" {
		t.Fatalf("Resolve(flag) = %q, %v; want custom.yaml", got, err)
	}

	t.Setenv(EnvFile, "from-env.yaml")
	got, err = Resolve("")
	if err != nil || got != "from-env.yaml" {
		t.Fatalf("Resolve(env) = %q, %v; want from-env.yaml", got, err)
	}

	t.Setenv(EnvFile, "")
	t.Chdir(t.TempDir())
	got, err = Resolve("")
	if err != nil || got != "" {
		t.Fatalf("Resolve() without file = %q, %v; want empty", got, err)
	}

	if err := os.WriteFile(FileName, []byte("check: true\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err = Resolve("")
	if err != nil || got != FileName {
		t.Fatalf("Resolve() with file = %q, %v; want %s", got, err, FileName)
	}
}
