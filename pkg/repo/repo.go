// Package repo implements repository management on top of the object
// store: the on-disk layout under .metadata/, refs, the staging index,
// configuration, and the porcelain operations (add, commit, log, status,
// diff, tag, fsck).
package repo

import (
	"github.com/keepvcs/keep/pkg/object"
)

// MetaDirName is the directory that holds all repository metadata,
// created by Init at the worktree root.
const MetaDirName = ".metadata"

// Repository is an open repository.
type Repository struct {
	// Root is the worktree root, the directory containing MetaDirName.
	Root string

	// MetaDir is the metadata directory itself.
	MetaDir string

	// Store holds the content-addressed objects under MetaDir.
	Store *object.Store

	// Config is the configuration loaded when the repository was opened.
	// WriteConfig refreshes it after mutation.
	Config *Config
}
