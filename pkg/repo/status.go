package repo

import (
	"fmt"

	"github.com/keepvcs/keep/pkg/merkle"
	"github.com/keepvcs/keep/pkg/object"
)

// Status is a summary of the repository state for display.
type Status struct {
	Branch    string      // empty when HEAD is detached
	Head      object.Hash // empty before the first commit
	Staged    []string
	Modified  []string
	Untracked []string

	// Clean is true when nothing is modified and nothing is untracked.
	Clean bool
}

// Status reports the current branch, the HEAD commit, and the index's
// view of the worktree. File checks go by staged metadata only; no
// content is read.
func (r *Repository) Status() (*Status, error) {
	branch, head, err := r.Head()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	idx, err := LoadIndex(r.indexPath())
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	untracked, err := idx.Untracked(r.Root, merkle.LoadIgnore(r.Root))
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	st := &Status{
		Branch:    branch,
		Head:      head,
		Staged:    idx.Staged(),
		Modified:  idx.Modified(r.Root),
		Untracked: untracked,
	}
	st.Clean = len(st.Modified) == 0 && len(st.Untracked) == 0
	return st, nil
}
