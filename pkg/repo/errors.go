package repo

import (
	"errors"
	"fmt"
)

// ErrInvalidState is the umbrella for repository-level precondition
// failures. The specific conditions below wrap it, so errors.Is matches
// both the broad class and the exact cause.
var ErrInvalidState = errors.New("invalid repository state")

var (
	// ErrAlreadyInitialized is returned by Init when a repository already
	// exists at the target path.
	ErrAlreadyInitialized = fmt.Errorf("%w: repository already initialized", ErrInvalidState)

	// ErrNotRepository is returned by Open when no repository is found at
	// the path or any of its parents.
	ErrNotRepository = fmt.Errorf("%w: not a keep repository", ErrInvalidState)

	// ErrEmptyMessage rejects a commit whose message is empty or all
	// whitespace.
	ErrEmptyMessage = fmt.Errorf("%w: empty commit message", ErrInvalidState)

	// ErrNoIdentity is returned when an operation needs user.name and
	// user.email and neither configuration nor an override provides them.
	ErrNoIdentity = fmt.Errorf("%w: user identity not configured", ErrInvalidState)

	// ErrNothingToCommit rejects a commit whose snapshot matches the
	// parent commit's tree.
	ErrNothingToCommit = fmt.Errorf("%w: nothing to commit", ErrInvalidState)

	// ErrNoCommits is returned when an operation needs a commit but the
	// current branch has none yet.
	ErrNoCommits = fmt.Errorf("%w: no commits yet", ErrInvalidState)

	// ErrTagExists is returned when creating a tag whose name is already
	// taken and force was not requested.
	ErrTagExists = fmt.Errorf("%w: tag already exists", ErrInvalidState)
)
