package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDigestFiles_SortedAndHashed(t *testing.T) {
	dir := t.TempDir()
	b := filepath.Join(dir, "b.md")
	a := filepath.Join(dir, "a.json")
	if err := os.WriteFile(b, []byte("bee"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(a, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := digestFiles([]string{b, a})
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	if len(got) != 2 || got[0].Path != a || got[1].Path != b {
		t.Fatalf("order: %+v", got)
	}
	const helloSHA = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got[0].SHA256 != helloSHA || got[0].Bytes != 5 {
		t.Fatalf("digest: %+v", got[0])
	}
	if computeSHA256Hex("hello") != helloSHA {
		t.Fatal("text digest mismatch")
	}
	if _, err := digestFiles([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	path, err := writeManifest(dir, Manifest{RunID: "r1", Categories: []string{"overview"}})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if path != filepath.Join(dir, "manifest.json") {
		t.Fatalf("path %s", path)
	}
	m := readManifest(t, path)
	if m.RunID != "r1" || len(m.Categories) != 1 {
		t.Fatalf("manifest: %+v", m)
	}
}
