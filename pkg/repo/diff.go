package repo

import (
	"errors"
	"fmt"

	"github.com/keepvcs/keep/pkg/merkle"
	"github.com/keepvcs/keep/pkg/object"
)

// Diff compares two snapshots. With both refs given it compares commit
// tree against commit tree; with only from, that commit's tree against
// the worktree; with neither, HEAD's tree (empty before the first
// commit) against the worktree. The worktree side is built through the
// store, so its blobs and subtrees are stored as a side effect.
func (r *Repository) Diff(from, to string) ([]merkle.Change, error) {
	if from == "" && to != "" {
		return nil, fmt.Errorf("diff: target %q given without a base", to)
	}

	var oldTree *object.Tree
	if from == "" {
		h, err := r.ResolveCommit("HEAD")
		if err == nil {
			oldTree, err = r.commitTree(h)
			if err != nil {
				return nil, fmt.Errorf("diff: %w", err)
			}
		} else if !errors.Is(err, object.ErrNotFound) {
			return nil, fmt.Errorf("diff: %w", err)
		}
	} else {
		h, err := r.ResolveCommit(from)
		if err != nil {
			return nil, fmt.Errorf("diff %q: %w", from, err)
		}
		oldTree, err = r.commitTree(h)
		if err != nil {
			return nil, fmt.Errorf("diff %q: %w", from, err)
		}
	}

	var newTree *object.Tree
	if to == "" {
		t, err := merkle.Build(r.Store, r.Root, merkle.LoadIgnore(r.Root))
		if err != nil {
			return nil, fmt.Errorf("diff: %w", err)
		}
		newTree = t
	} else {
		h, err := r.ResolveCommit(to)
		if err != nil {
			return nil, fmt.Errorf("diff %q: %w", to, err)
		}
		newTree, err = r.commitTree(h)
		if err != nil {
			return nil, fmt.Errorf("diff %q: %w", to, err)
		}
	}

	return merkle.Diff(r.Store, oldTree, newTree)
}

// commitTree loads the root tree of a commit.
func (r *Repository) commitTree(h object.Hash) (*object.Tree, error) {
	c, err := r.Store.ReadCommit(h)
	if err != nil {
		return nil, err
	}
	return r.Store.ReadTree(c.TreeHash)
}
