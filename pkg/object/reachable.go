package object

import (
	"sort"
	"strings"
)

// ReachableSet returns all object hashes reachable from roots by following
// object references. Missing roots are ignored, and an object that cannot be
// read or parsed ends the walk along that edge without aborting it, so a
// damaged store still yields the best reachability answer available.
func (s *Store) ReachableSet(roots []Hash) map[Hash]struct{} {
	roots = uniqueNormalizedHashes(roots)
	out := make(map[Hash]struct{}, len(roots))
	if len(roots) == 0 {
		return out
	}

	stack := make([]Hash, 0, len(roots))
	stack = append(stack, roots...)
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if h == "" {
			continue
		}
		if _, ok := out[h]; ok {
			continue
		}
		if !s.Has(h) {
			continue
		}
		out[h] = struct{}{}

		objType, data, err := s.Read(h)
		if err != nil {
			continue
		}
		stack = append(stack, referencedHashes(objType, data)...)
	}

	return out
}

// referencedHashes lists the hashes an object points at: entry hashes for a
// tree, tree plus parent for a commit, the target for a tag. Blobs are
// leaves. Unparseable payloads reference nothing.
func referencedHashes(objType ObjectType, data []byte) []Hash {
	switch objType {
	case TypeTag:
		tag, err := UnmarshalTag(data)
		if err != nil {
			return nil
		}
		return []Hash{tag.TargetHash}
	case TypeCommit:
		commit, err := UnmarshalCommit(data)
		if err != nil {
			return nil
		}
		refs := []Hash{commit.TreeHash}
		if commit.ParentHash != "" {
			refs = append(refs, commit.ParentHash)
		}
		return refs
	case TypeTree:
		tree, err := UnmarshalTree(data)
		if err != nil {
			return nil
		}
		refs := make([]Hash, 0, tree.Len())
		for _, e := range tree.Entries() {
			refs = append(refs, e.Hash)
		}
		return refs
	default:
		return nil
	}
}

func uniqueNormalizedHashes(in []Hash) []Hash {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[Hash]struct{}, len(in))
	out := make([]Hash, 0, len(in))
	for _, h := range in {
		h = Hash(strings.TrimSpace(string(h)))
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
