package repo

import (
	"fmt"

	"github.com/keepvcs/keep/pkg/object"
)

// FsckReport is the result of a full repository check.
type FsckReport struct {
	// Integrity covers every stored object.
	Integrity *object.IntegrityReport

	// Dangling lists stored objects not reachable from any ref or HEAD,
	// sorted ascending.
	Dangling []object.Hash

	// Stats summarizes store size.
	Stats *object.StoreStats
}

// Fsck verifies object integrity and reports unreachable objects.
// Corrupt content never fails the call, only IO errors do.
func (r *Repository) Fsck() (*FsckReport, error) {
	integrity, err := r.Store.VerifyIntegrity()
	if err != nil {
		return nil, fmt.Errorf("fsck: %w", err)
	}
	stats, err := r.Store.Stats()
	if err != nil {
		return nil, fmt.Errorf("fsck: %w", err)
	}

	refs, err := r.ListRefs("")
	if err != nil {
		return nil, fmt.Errorf("fsck: %w", err)
	}
	roots := make([]object.Hash, 0, len(refs)+1)
	for _, h := range refs {
		roots = append(roots, h)
	}
	if h, err := r.ResolveRef("HEAD"); err == nil {
		roots = append(roots, h)
	}
	reachable := r.Store.ReachableSet(roots)

	all, err := r.Store.List("")
	if err != nil {
		return nil, fmt.Errorf("fsck: %w", err)
	}
	var dangling []object.Hash
	for _, h := range all {
		if _, ok := reachable[h]; !ok {
			dangling = append(dangling, h)
		}
	}

	return &FsckReport{
		Integrity: integrity,
		Dangling:  dangling,
		Stats:     stats,
	}, nil
}
