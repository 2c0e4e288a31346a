package input_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"ciff/internal/input"
)

func TestResolveSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.gr")
	if err := os.WriteFile(path, []byte("0 1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	src, err := input.Resolve(path)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if src.IsDir {
		t.Fatal("expected file mode")
	}
	if !reflect.DeepEqual(src.Files, []string{path}) {
		t.Fatalf("unexpected files: %v", src.Files)
	}
}

func TestResolveDirectorySkipsHiddenAndSubdirs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.gr", "a.gr", ".DS_Store", "_notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("0 1\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	src, err := input.Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !src.IsDir {
		t.Fatal("expected directory mode")
	}
	want := []string{filepath.Join(dir, "a.gr"), filepath.Join(dir, "b.gr")}
	if !reflect.DeepEqual(src.Files, want) {
		t.Fatalf("unexpected files: got %v want %v", src.Files, want)
	}
}

func TestResolveInvalid(t *testing.T) {
	cases := map[string]string{
		"missing": filepath.Join(t.TempDir(), "nope"),
		"empty":   "  ",
	}
	for name, path := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := input.Resolve(path)
			if !errors.Is(err, input.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestStem(t *testing.T) {
	cases := map[string]string{
		"/data/ZnO_300K.gr": "ZnO_300K",
		"sample.tar.gr":     "sample.tar",
		"noext":             "noext",
		"/tmp/.hidden":      ".hidden",
	}
	for in, want := range cases {
		if got := input.Stem(in); got != want {
			t.Fatalf("Stem(%q) = %q, want %q", in, got, want)
		}
	}
}
