package repo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/keepvcs/keep/pkg/merkle"
	"github.com/keepvcs/keep/pkg/object"
)

// CommitOptions adjust commit creation.
type CommitOptions struct {
	// Author overrides the configured identity for both author and
	// committer when non-empty. Expected form: "Name <email>".
	Author string

	// AllowEmpty permits a commit whose tree matches the parent's.
	AllowEmpty bool
}

// Commit snapshots the worktree and records it as a new commit on the
// current branch, returning the commit hash. The branch ref moves only
// after the commit object is durably stored; a failure at any earlier
// step leaves HEAD and the branch untouched.
func (r *Repository) Commit(message string, opts CommitOptions) (object.Hash, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}

	author := opts.Author
	if author == "" {
		cfg, err := r.ReadConfig()
		if err != nil {
			return "", fmt.Errorf("commit: %w", err)
		}
		author, err = cfg.Identity()
		if err != nil {
			return "", err
		}
	}

	root, err := merkle.Build(r.Store, r.Root, merkle.LoadIgnore(r.Root))
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	var parent object.Hash
	if h, err := r.ResolveRef("HEAD"); err == nil {
		parent = h
	} else if !errors.Is(err, object.ErrNotFound) {
		return "", fmt.Errorf("commit: %w", err)
	}
	if parent != "" && !opts.AllowEmpty {
		parentCommit, err := r.Store.ReadCommit(parent)
		if err != nil {
			return "", fmt.Errorf("commit: read parent %s: %w", parent, err)
		}
		if parentCommit.TreeHash == root.Hash() {
			return "", ErrNothingToCommit
		}
	}

	treeHash, err := r.Store.WriteTree(root)
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	commit := &object.Commit{
		TreeHash:   treeHash,
		ParentHash: parent,
		Author:     author,
		Committer:  author,
		Timestamp:  time.Now().Unix(),
		Message:    message,
	}
	commitHash, err := r.Store.WriteCommit(commit)
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	ref, err := r.headRef()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	target := "HEAD" // detached HEAD takes the hash directly
	if strings.HasPrefix(ref, "refs/") {
		target = ref
	}
	if err := r.UpdateRef(target, commitHash); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return commitHash, nil
}
