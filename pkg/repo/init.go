package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/keepvcs/keep/pkg/object"
)

// DefaultBranch is the initial branch name used when InitOptions does not
// override it.
const DefaultBranch = "main"

// InitOptions adjust repository creation.
type InitOptions struct {
	// Bare is recorded in the config as core.bare. Worktree operations do
	// not change behavior for bare repositories; the flag is carried for
	// tooling that inspects the config.
	Bare bool

	// InitialBranch overrides the branch HEAD starts on.
	InitialBranch string
}

// Init creates a new repository at dir and returns it opened. It lays
// down the metadata directory, the object store and ref directories,
// HEAD pointing at the initial branch, a default config, and an empty
// index. A second Init on the same path fails with ErrAlreadyInitialized.
func Init(dir string, opts InitOptions) (*Repository, error) {
	absRoot, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	metaDir := filepath.Join(absRoot, MetaDirName)
	if _, err := os.Stat(metaDir); err == nil {
		return nil, fmt.Errorf("init %s: %w", absRoot, ErrAlreadyInitialized)
	}

	dirs := []string{
		metaDir,
		filepath.Join(metaDir, "objects"),
		filepath.Join(metaDir, "refs", "heads"),
		filepath.Join(metaDir, "refs", "tags"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: create %s: %w", d, err)
		}
	}

	branch := opts.InitialBranch
	if branch == "" {
		branch = DefaultBranch
	}
	head := "ref: refs/heads/" + branch + "\n"
	if err := os.WriteFile(filepath.Join(metaDir, "HEAD"), []byte(head), 0o644); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}

	r := &Repository{
		Root:    absRoot,
		MetaDir: metaDir,
		Store:   object.NewStore(metaDir),
	}

	cfg := DefaultConfig()
	cfg.Core.Bare = opts.Bare
	if err := r.WriteConfig(cfg); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	if err := NewIndex().Save(r.indexPath()); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	return r, nil
}

// Open finds the repository containing dir by walking upward until a
// metadata directory appears or the filesystem root is reached.
func Open(dir string) (*Repository, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	for cur := absDir; ; {
		metaDir := filepath.Join(cur, MetaDirName)
		if info, err := os.Stat(metaDir); err == nil && info.IsDir() {
			r := &Repository{
				Root:    cur,
				MetaDir: metaDir,
				Store:   object.NewStore(metaDir),
			}
			cfg, err := r.ReadConfig()
			if err != nil {
				return nil, fmt.Errorf("open: %w", err)
			}
			r.Config = cfg
			return r, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open %s: %w (or any parent up to /)", absDir, ErrNotRepository)
		}
		cur = parent
	}
}
