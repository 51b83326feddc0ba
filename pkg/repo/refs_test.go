package repo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/keepvcs/keep/pkg/object"
)

func TestHeadUnborn(t *testing.T) {
	r := initTestRepo(t)

	branch, hash, err := r.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if branch != "main" {
		t.Errorf("branch: got %q, want %q", branch, "main")
	}
	if hash != "" {
		t.Errorf("hash before first commit: got %q, want empty", hash)
	}
}

func TestHeadDetached(t *testing.T) {
	r := initTestRepo(t)
	h, err := r.Store.Write(object.TypeBlob, []byte("x"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := r.UpdateRef("HEAD", h); err != nil {
		t.Fatalf("UpdateRef: %v", err)
	}

	branch, hash, err := r.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if branch != "" {
		t.Errorf("detached branch: got %q, want empty", branch)
	}
	if hash != h {
		t.Errorf("detached hash: got %q, want %q", hash, h)
	}
}

func TestUpdateAndResolveRef(t *testing.T) {
	r := initTestRepo(t)
	h, err := r.Store.Write(object.TypeBlob, []byte("payload"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := r.UpdateRef("refs/heads/main", h); err != nil {
		t.Fatalf("UpdateRef: %v", err)
	}

	for _, name := range []string{"HEAD", "main", "refs/heads/main"} {
		got, err := r.ResolveRef(name)
		if err != nil {
			t.Fatalf("ResolveRef(%q): %v", name, err)
		}
		if got != h {
			t.Errorf("ResolveRef(%q): got %q, want %q", name, got, h)
		}
	}

	data, err := os.ReadFile(filepath.Join(r.MetaDir, "refs", "heads", "main"))
	if err != nil {
		t.Fatalf("read ref file: %v", err)
	}
	if got, want := string(data), string(h)+"\n"; got != want {
		t.Errorf("ref file content: got %q, want %q", got, want)
	}
}

func TestResolveRefHashLiteral(t *testing.T) {
	r := initTestRepo(t)
	h, err := r.Store.Write(object.TypeBlob, []byte("literal"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := r.ResolveRef(string(h))
	if err != nil {
		t.Fatalf("ResolveRef(hash): %v", err)
	}
	if got != h {
		t.Errorf("ResolveRef(hash): got %q, want %q", got, h)
	}

	// A well-formed hash with no stored object is not resolvable.
	missing := "0123456789abcdef0123456789abcdef01234567"
	if _, err := r.ResolveRef(missing); !errors.Is(err, object.ErrNotFound) {
		t.Errorf("ResolveRef(missing hash): got %v, want ErrNotFound", err)
	}
}

func TestResolveRefMissing(t *testing.T) {
	r := initTestRepo(t)

	_, err := r.ResolveRef("no-such-branch")
	if !errors.Is(err, object.ErrNotFound) {
		t.Errorf("ResolveRef: got %v, want ErrNotFound", err)
	}

	// HEAD on an unborn branch behaves the same.
	if _, err := r.ResolveRef("HEAD"); !errors.Is(err, object.ErrNotFound) {
		t.Errorf("ResolveRef(HEAD): got %v, want ErrNotFound", err)
	}
}

func TestDeleteRef(t *testing.T) {
	r := initTestRepo(t)
	h, err := r.Store.Write(object.TypeBlob, []byte("d"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := r.UpdateRef("refs/tags/gone", h); err != nil {
		t.Fatalf("UpdateRef: %v", err)
	}

	existed, err := r.DeleteRef("refs/tags/gone")
	if err != nil {
		t.Fatalf("DeleteRef: %v", err)
	}
	if !existed {
		t.Error("DeleteRef: reported missing for an existing ref")
	}

	existed, err = r.DeleteRef("refs/tags/gone")
	if err != nil {
		t.Fatalf("DeleteRef second: %v", err)
	}
	if existed {
		t.Error("DeleteRef: reported existing after removal")
	}
}

func TestListRefs(t *testing.T) {
	r := initTestRepo(t)
	h, err := r.Store.Write(object.TypeBlob, []byte("r"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	for _, name := range []string{"refs/heads/main", "refs/tags/v1", "refs/tags/v2"} {
		if err := r.UpdateRef(name, h); err != nil {
			t.Fatalf("UpdateRef(%q): %v", name, err)
		}
	}

	all, err := r.ListRefs("")
	if err != nil {
		t.Fatalf("ListRefs: %v", err)
	}
	for _, want := range []string{"heads/main", "tags/v1", "tags/v2"} {
		if all[want] != h {
			t.Errorf("ListRefs missing %q", want)
		}
	}

	tags, err := r.ListRefs("tags")
	if err != nil {
		t.Fatalf("ListRefs(tags): %v", err)
	}
	if len(tags) != 2 {
		t.Errorf("ListRefs(tags): got %d refs, want 2", len(tags))
	}
}

func TestListRefsEmpty(t *testing.T) {
	r := initTestRepo(t)
	refs, err := r.ListRefs("")
	if err != nil {
		t.Fatalf("ListRefs: %v", err)
	}
	if len(refs) != 0 {
		t.Errorf("ListRefs on fresh repo: got %d refs, want 0", len(refs))
	}
}

func TestResolveCommitPeelsTag(t *testing.T) {
	r := initTestRepo(t)
	setIdentity(t, r)
	writeWorktreeFile(t, r, "a.txt", "alpha\n")
	commitHash, err := r.Commit("initial", CommitOptions{})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	tagHash, err := r.CreateTag("v1", "", "first release", TagOptions{})
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	// The ref stores the tag object; ResolveRef keeps it.
	got, err := r.ResolveRef("v1")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if got != tagHash {
		t.Errorf("ResolveRef(v1): got %q, want tag object %q", got, tagHash)
	}

	// ResolveCommit peels through to the commit.
	peeled, err := r.ResolveCommit("v1")
	if err != nil {
		t.Fatalf("ResolveCommit: %v", err)
	}
	if peeled != commitHash {
		t.Errorf("ResolveCommit(v1): got %q, want commit %q", peeled, commitHash)
	}
}
