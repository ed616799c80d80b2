package scan

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goatx/suitegen/internal/suite"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

const dbFile = `package store

import "testing"

/*suitegen
- name: db
- setup: openDB(*DB)
- teardown: closeDB

test inserts(db) {
	db.Insert(t, "a")
}
*/

func openDB() *DB { return &DB{} }

func closeDB() {}
`

func TestBlocks(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"db_test.go": dbFile,
		"cache_test.go": `package store

/* suitegen is mentioned here but this is not a block */

/*suitegen
- name: cache
test hit { t.Log("hit") }
*/
`,
		"plain.go": "package store\n\n// DB is a store.\ntype DB struct{}\n",
	})

	blocks, err := Blocks(dir)
	if err != nil {
		t.Fatalf("Blocks() error = %v", err)
	}

	type summary struct {
		File, Name, Pos string
		Tests           []string
	}
	var got []summary
	for _, b := range blocks {
		var names []string
		for _, test := range b.Suite.Tests {
			names = append(names, test.Name)
		}
		got = append(got, summary{
			File:  filepath.Base(b.File),
			Name:  b.Suite.Name,
			Pos:   filepath.Base(b.Suite.Pos.String()),
			Tests: names,
		})
	}
	want := []summary{
		{File: "cache_test.go", Name: "cache", Pos: "cache_test.go:6:9", Tests: []string{"hit"}},
		{File: "db_test.go", Name: "db", Pos: "db_test.go:6:9", Tests: []string{"inserts"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("blocks mismatch (-want +got):\n%s", diff)
	}

	body := blocks[1].Suite.Tests[0]
	if !strings.Contains(body.Body, `db.Insert(t, "a")`) {
		t.Fatalf("body = %q", body.Body)
	}
	if got := filepath.Base(body.BodyPos.String()); got != "db_test.go:10:19" {
		t.Fatalf("BodyPos = %s, want db_test.go:10:19", got)
	}
}

func TestBlocksErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		files   map[string]string
		kind    error
		wantErr string
	}{
		{
			name: "grammar error reported at the file position",
			files: map[string]string{"a_test.go": `package a

/*suitegen
- name: a
- before: prepare
*/
`},
			kind:    suite.ErrGrammar,
			wantErr: `a_test.go:5:3: grammar error: unknown suite field "before"`,
		},
		{
			name: "duplicate suite across files",
			files: map[string]string{
				"a_test.go": "package a\n\n/*suitegen\n- name: same\n*/\n",
				"b_test.go": "package a\n\n/*suitegen\n- name: same\n*/\n",
			},
			kind:    suite.ErrDuplicate,
			wantErr: "suite same is already declared at",
		},
		{
			name: "suites generating the same test function",
			files: map[string]string{
				"a_test.go": "package a\n\n/*suitegen\n- name: test_mod\ntest first {}\n*/\n",
				"b_test.go": "package a\n\n/*suitegen\n- name: testMod\ntest second {}\n*/\n",
			},
			kind:    suite.ErrDuplicate,
			wantErr: "suite testMod generates TestTestMod, like suite test_mod declared at",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Blocks(writeFiles(t, tt.files))
			if !errors.Is(err, tt.kind) {
				t.Fatalf("Blocks() error = %v, want %v", err, tt.kind)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Blocks() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestBlocksInvalidGoFile(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{"broken.go": "package\n"})
	if _, err := Blocks(dir); err == nil {
		t.Fatal("Blocks() returned nil error for an unparsable Go file")
	}
}

func TestBlocksEmptyDirectory(t *testing.T) {
	t.Parallel()

	blocks, err := Blocks(t.TempDir())
	if err != nil {
		t.Fatalf("Blocks() error = %v", err)
	}
	if len(blocks) != 0 {
		t.Fatalf("Blocks() = %v, want none", blocks)
	}
}
