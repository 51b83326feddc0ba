package repo

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/keepvcs/keep/pkg/object"
)

// TagSigner produces a signature line for the canonical tag payload. The
// line is appended to the tag's message before the object is stored.
type TagSigner func(payload []byte) (string, error)

// TagOptions adjust tag creation.
type TagOptions struct {
	// Tagger overrides the configured identity. When neither is set the
	// tagger line is omitted from the tag payload.
	Tagger string

	// Force replaces an existing tag of the same name.
	Force bool

	// Signer, when set, signs the tag payload.
	Signer TagSigner
}

// CreateTag stores an annotated tag object for target and points
// refs/tags/<name> at it, returning the tag object's hash. An empty
// target tags the current HEAD commit.
func (r *Repository) CreateTag(name, target, message string, opts TagOptions) (object.Hash, error) {
	name = strings.TrimSpace(name)
	if err := validateTagName(name); err != nil {
		return "", fmt.Errorf("create tag: %w", err)
	}

	targetHash, err := r.resolveTagTarget(target)
	if err != nil {
		return "", fmt.Errorf("create tag: %w", err)
	}
	targetType, _, err := r.Store.Read(targetHash)
	if err != nil {
		return "", fmt.Errorf("create tag: read target %s: %w", targetHash, err)
	}

	refName := "refs/tags/" + name
	if !opts.Force {
		if _, err := r.ResolveRef(refName); err == nil {
			return "", fmt.Errorf("create tag %q: %w", name, ErrTagExists)
		}
	}

	tagger := strings.TrimSpace(opts.Tagger)
	if tagger == "" {
		if cfg, err := r.ReadConfig(); err == nil {
			if id, err := cfg.Identity(); err == nil {
				tagger = id
			}
		}
	}

	tag := &object.Tag{
		TargetHash: targetHash,
		TargetType: targetType,
		Name:       name,
		Tagger:     tagger,
		Timestamp:  time.Now().Unix(),
		Message:    message,
	}
	if opts.Signer != nil {
		line, err := opts.Signer(object.TagSigningPayload(tag))
		if err != nil {
			return "", fmt.Errorf("create tag %q: sign: %w", name, err)
		}
		if tag.Message == "" {
			tag.Message = line
		} else {
			tag.Message = strings.TrimSuffix(tag.Message, "\n") + "\n" + line
		}
	}

	tagHash, err := r.Store.WriteTag(tag)
	if err != nil {
		return "", fmt.Errorf("create tag %q: %w", name, err)
	}
	if err := r.UpdateRef(refName, tagHash); err != nil {
		return "", fmt.Errorf("create tag %q: %w", name, err)
	}
	return tagHash, nil
}

// resolveTagTarget resolves the tag target: empty means the current HEAD
// commit, otherwise a ref name or full hash.
func (r *Repository) resolveTagTarget(target string) (object.Hash, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		h, err := r.ResolveRef("HEAD")
		if err != nil {
			if errors.Is(err, object.ErrNotFound) {
				return "", ErrNoCommits
			}
			return "", err
		}
		return h, nil
	}
	return r.ResolveRef(target)
}

// DeleteTag removes refs/tags/<name>, reporting whether it existed. The
// tag object itself stays in the store until pruned.
func (r *Repository) DeleteTag(name string) (bool, error) {
	name = strings.TrimSpace(name)
	if err := validateTagName(name); err != nil {
		return false, fmt.Errorf("delete tag: %w", err)
	}
	return r.DeleteRef("refs/tags/" + name)
}

// ResolveTag resolves a tag name to the hash its ref stores.
func (r *Repository) ResolveTag(name string) (object.Hash, error) {
	name = strings.TrimSpace(name)
	if err := validateTagName(name); err != nil {
		return "", fmt.Errorf("resolve tag: %w", err)
	}
	return r.ResolveRef("refs/tags/" + name)
}

// Tags lists tag names sorted alphabetically.
func (r *Repository) Tags() ([]string, error) {
	refs, err := r.ListRefs("tags")
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	names := make([]string, 0, len(refs))
	for full := range refs {
		names = append(names, strings.TrimPrefix(full, "tags/"))
	}
	sort.Strings(names)
	return names, nil
}

// TagsWithHashes returns tag name -> tag ref hash.
func (r *Repository) TagsWithHashes() (map[string]object.Hash, error) {
	refs, err := r.ListRefs("tags")
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	out := make(map[string]object.Hash, len(refs))
	for full, hash := range refs {
		out[strings.TrimPrefix(full, "tags/")] = hash
	}
	return out, nil
}

func validateTagName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: tag name is required", ErrInvalidState)
	case strings.HasPrefix(name, "-"),
		strings.HasPrefix(name, "/"),
		strings.HasSuffix(name, "/"),
		strings.HasSuffix(name, ".lock"),
		strings.Contains(name, ".."),
		strings.ContainsAny(name, " \t\n\r"):
		return fmt.Errorf("%w: invalid tag name %q", ErrInvalidState, name)
	}
	return nil
}
