package merkle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/keepvcs/keep/pkg/object"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for p, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
}

func buildSnapshot(t *testing.T, store *object.Store, files map[string]string) *object.Tree {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, files)
	tree, err := Build(store, dir, DefaultIgnore())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return tree
}

func TestBuildDeterminism(t *testing.T) {
	store := object.NewStore(t.TempDir())
	files := map[string]string{
		"readme.md":       "hello",
		"src/main.go":     "package main",
		"src/util/u.go":   "package util",
		"docs/guide.txt":  "guide",
		"docs/extra/x.md": "x",
	}
	t1 := buildSnapshot(t, store, files)
	t2 := buildSnapshot(t, store, files)
	if t1.Hash() != t2.Hash() {
		t.Errorf("Identical contents produced different root hashes: %q vs %q", t1.Hash(), t2.Hash())
	}
}

func TestBuildStoresChildrenNotRoot(t *testing.T) {
	store := object.NewStore(t.TempDir())
	tree := buildSnapshot(t, store, map[string]string{
		"file.txt":    "content",
		"sub/nested":  "inner",
		"sub/another": "more",
	})

	// Blobs and subtrees were written during the walk
	fileEntry, ok := tree.Entry("file.txt")
	if !ok {
		t.Fatal("file.txt entry missing")
	}
	if !store.Has(fileEntry.Hash) {
		t.Error("file blob not stored during build")
	}
	subEntry, ok := tree.Entry("sub")
	if !ok {
		t.Fatal("sub entry missing")
	}
	if subEntry.Type != object.TypeTree {
		t.Errorf("sub entry type: got %q, want %q", subEntry.Type, object.TypeTree)
	}
	if !store.Has(subEntry.Hash) {
		t.Error("subtree not stored during build")
	}

	// The root itself is left for the caller to store
	if store.Has(tree.Hash()) {
		t.Error("root tree should not be stored by the build walk")
	}
}

func TestBuildSingleByteChangesRoot(t *testing.T) {
	store := object.NewStore(t.TempDir())
	t1 := buildSnapshot(t, store, map[string]string{
		"a/b/c/deep.txt": "version 1",
		"top.txt":        "same",
	})
	t2 := buildSnapshot(t, store, map[string]string{
		"a/b/c/deep.txt": "version 2",
		"top.txt":        "same",
	})
	if t1.Hash() == t2.Hash() {
		t.Error("Deep one-byte change did not propagate to the root hash")
	}
}

func TestBuildIdenticalContentShareBlobs(t *testing.T) {
	store := object.NewStore(t.TempDir())
	tree := buildSnapshot(t, store, map[string]string{
		"copy1.txt": "same bytes",
		"copy2.txt": "same bytes",
	})
	e1, _ := tree.Entry("copy1.txt")
	e2, _ := tree.Entry("copy2.txt")
	if e1.Hash != e2.Hash {
		t.Errorf("Identical content got different blob hashes: %q vs %q", e1.Hash, e2.Hash)
	}

	blobs, err := store.List(object.TypeBlob)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(blobs) != 1 {
		t.Errorf("Blob count: got %d, want 1", len(blobs))
	}
}

func TestBuildSkipsIgnoredNames(t *testing.T) {
	store := object.NewStore(t.TempDir())
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"kept.txt":           "keep",
		".metadata/HEAD":     "ref: refs/heads/main\n",
		".git/config":        "x",
		"cache/data.bin":     "noise",
		"my_cache.tmp":       "noise",
		"note.swp":           "noise",
		".DS_Store":          "junk",
		"deep/.DS_Store":     "junk",
		"deep/real.txt":      "keep",
		"deep/cache/tmp.txt": "noise",
	})
	ign := append(DefaultIgnore(), "cache", ".swp")

	tree, err := Build(store, dir, ign)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// Substring patterns catch both the cache dir and my_cache.tmp
	for _, name := range []string{".metadata", ".git", ".DS_Store", "cache", "my_cache.tmp", "note.swp"} {
		if _, ok := tree.Entry(name); ok {
			t.Errorf("ignored name %q present in tree", name)
		}
	}
	if _, ok := tree.Entry("kept.txt"); !ok {
		t.Error("kept.txt missing from tree")
	}

	deepEntry, ok := tree.Entry("deep")
	if !ok {
		t.Fatal("deep entry missing")
	}
	deep, err := store.ReadTree(deepEntry.Hash)
	if err != nil {
		t.Fatalf("ReadTree: %v", err)
	}
	if _, ok := deep.Entry(".DS_Store"); ok {
		t.Error("ignored name inside subdirectory present in subtree")
	}
	if _, ok := deep.Entry("real.txt"); !ok {
		t.Error("deep/real.txt missing from subtree")
	}
}

func TestBuildExecutableMode(t *testing.T) {
	store := object.NewStore(t.TempDir())
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"plain.txt": "p"})
	script := filepath.Join(dir, "run.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tree, err := Build(store, dir, DefaultIgnore())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	plain, _ := tree.Entry("plain.txt")
	if plain.Mode != object.TreeModeFile {
		t.Errorf("plain.txt mode: got %q, want %q", plain.Mode, object.TreeModeFile)
	}
	run, _ := tree.Entry("run.sh")
	if run.Mode != object.TreeModeExecutable {
		t.Errorf("run.sh mode: got %q, want %q", run.Mode, object.TreeModeExecutable)
	}
}

func TestBuildSkipsNonRegular(t *testing.T) {
	store := object.NewStore(t.TempDir())
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"real.txt": "r"})
	if err := os.Symlink("real.txt", filepath.Join(dir, "link.txt")); err != nil {
		t.Skipf("symlink not supported: %v", err)
	}

	tree, err := Build(store, dir, DefaultIgnore())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := tree.Entry("link.txt"); ok {
		t.Error("symlink should not appear in tree")
	}
	if tree.Len() != 1 {
		t.Errorf("Len: got %d, want 1", tree.Len())
	}
}

func TestBuildIncludesEmptyDir(t *testing.T) {
	store := object.NewStore(t.TempDir())
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "empty"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	tree, err := Build(store, dir, DefaultIgnore())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	e, ok := tree.Entry("empty")
	if !ok {
		t.Fatal("empty directory missing from tree")
	}
	if e.Hash != object.NewTree().Hash() {
		t.Errorf("empty dir hash: got %q, want empty tree hash", e.Hash)
	}
}

func TestFileMode(t *testing.T) {
	dir := t.TempDir()
	exec := filepath.Join(dir, "x")
	if err := os.WriteFile(exec, nil, 0o700); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	plain := filepath.Join(dir, "p")
	if err := os.WriteFile(plain, nil, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	execInfo, err := os.Stat(exec)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	plainInfo, err := os.Stat(plain)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if FileMode(execInfo) != object.TreeModeExecutable {
		t.Errorf("executable: got %q", FileMode(execInfo))
	}
	if FileMode(plainInfo) != object.TreeModeFile {
		t.Errorf("plain: got %q", FileMode(plainInfo))
	}
}
