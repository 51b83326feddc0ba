package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/keepvcs/keep/pkg/object"
)

// headRef returns the target of the HEAD file: the full ref path when
// HEAD is symbolic ("refs/heads/<branch>"), or the bare commit hash when
// detached.
func (r *Repository) headRef() (string, error) {
	data, err := os.ReadFile(filepath.Join(r.MetaDir, "HEAD"))
	if err != nil {
		return "", fmt.Errorf("read HEAD: %w", err)
	}
	content := strings.TrimSpace(string(data))
	if strings.HasPrefix(content, "ref: ") {
		return strings.TrimPrefix(content, "ref: "), nil
	}
	return content, nil
}

// Head reports the current branch and its commit. The branch is empty
// when HEAD is detached; the hash is empty while the branch has no
// commits.
func (r *Repository) Head() (string, object.Hash, error) {
	ref, err := r.headRef()
	if err != nil {
		return "", "", err
	}
	if !strings.HasPrefix(ref, "refs/heads/") {
		// Detached: HEAD holds the commit hash directly.
		return "", object.Hash(ref), nil
	}
	branch := strings.TrimPrefix(ref, "refs/heads/")
	h, err := r.readRef(ref)
	if err != nil {
		if os.IsNotExist(err) {
			return branch, "", nil
		}
		return "", "", fmt.Errorf("read ref %q: %w", ref, err)
	}
	return branch, h, nil
}

// refPath maps a slash-separated ref name to its file under MetaDir.
// "HEAD" maps to the HEAD file itself.
func (r *Repository) refPath(name string) string {
	return filepath.Join(r.MetaDir, filepath.FromSlash(name))
}

func (r *Repository) readRef(name string) (object.Hash, error) {
	data, err := os.ReadFile(r.refPath(name))
	if err != nil {
		return "", err
	}
	return object.Hash(strings.TrimSpace(string(data))), nil
}

// ResolveRef resolves a name to the hash it refers to. It accepts "HEAD",
// full hex hashes of stored objects, full ref paths like
// "refs/heads/main", branch names, and tag names, in that order. An
// annotated tag ref resolves to the tag object's hash; ResolveCommit
// peels it.
func (r *Repository) ResolveRef(name string) (object.Hash, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("resolve ref: empty name")
	}

	if name == "HEAD" {
		ref, err := r.headRef()
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(ref, "refs/") {
			return r.ResolveRef(ref)
		}
		if ref == "" {
			return "", fmt.Errorf("resolve HEAD: %w", object.ErrNotFound)
		}
		return object.Hash(ref), nil
	}

	if h := object.Hash(name); h.Valid() && r.Store.Has(h) {
		return h, nil
	}

	candidates := []string{name}
	if !strings.HasPrefix(name, "refs/") {
		candidates = []string{"refs/heads/" + name, "refs/tags/" + name}
	}
	for _, ref := range candidates {
		h, err := r.readRef(ref)
		if err == nil {
			return h, nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("resolve ref %q: %w", name, err)
		}
	}
	return "", fmt.Errorf("resolve ref %q: %w", name, object.ErrNotFound)
}

// ResolveCommit resolves name like ResolveRef and then peels annotated
// tags until a non-tag object is reached.
func (r *Repository) ResolveCommit(name string) (object.Hash, error) {
	h, err := r.ResolveRef(name)
	if err != nil {
		return "", err
	}
	// A tag may point at another tag; bound the peel so a cycle cannot
	// loop forever.
	for i := 0; i < 10; i++ {
		objType, data, err := r.Store.Read(h)
		if err != nil {
			return "", fmt.Errorf("resolve %q: %w", name, err)
		}
		if objType != object.TypeTag {
			return h, nil
		}
		tag, err := object.UnmarshalTag(data)
		if err != nil {
			return "", fmt.Errorf("resolve %q: %w", name, err)
		}
		h = tag.TargetHash
	}
	return "", fmt.Errorf("resolve %q: tag chain too deep", name)
}

// UpdateRef atomically points the named ref at a hash via a temp file
// renamed into place. Updating "HEAD" rewrites the HEAD file itself,
// which only happens detached.
func (r *Repository) UpdateRef(name string, h object.Hash) error {
	p := r.refPath(name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("update ref %q: %w", name, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".ref-tmp-*")
	if err != nil {
		return fmt.Errorf("update ref %q: %w", name, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(string(h) + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("update ref %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("update ref %q: %w", name, err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("update ref %q: %w", name, err)
	}
	return nil
}

// DeleteRef removes the named ref, reporting whether it existed.
func (r *Repository) DeleteRef(name string) (bool, error) {
	err := os.Remove(r.refPath(name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete ref %q: %w", name, err)
	}
	return true, nil
}

// ListRefs lists refs under refs/, keyed relative to the refs root, e.g.
// "heads/main" or "tags/v1". A non-empty prefix narrows the listing to
// that subtree.
func (r *Repository) ListRefs(prefix string) (map[string]object.Hash, error) {
	root := filepath.Join(r.MetaDir, "refs")
	dir := root
	if strings.TrimSpace(prefix) != "" {
		dir = filepath.Join(root, filepath.FromSlash(prefix))
	}

	refs := make(map[string]object.Hash)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		refs[filepath.ToSlash(rel)] = object.Hash(strings.TrimSpace(string(data)))
		return nil
	})
	if os.IsNotExist(err) {
		return refs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	return refs, nil
}
