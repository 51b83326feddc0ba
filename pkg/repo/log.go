package repo

import (
	"errors"
	"fmt"

	"github.com/keepvcs/keep/pkg/object"
)

// LogEntry is one commit in history, flattened for display.
type LogEntry struct {
	Hash      object.Hash
	Tree      object.Hash
	Parent    object.Hash // empty for the root commit
	Author    string
	Timestamp int64
	Message   string
}

// Log walks the first-parent chain from HEAD, newest first. A repository
// with no commits yields an empty log and no error; limit <= 0 means
// unbounded. A missing or unreadable commit in the chain is an error.
func (r *Repository) Log(limit int) ([]LogEntry, error) {
	head, err := r.ResolveRef("HEAD")
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("log: %w", err)
	}

	var out []LogEntry
	for cur := head; cur != ""; {
		if limit > 0 && len(out) >= limit {
			break
		}
		c, err := r.Store.ReadCommit(cur)
		if err != nil {
			return nil, fmt.Errorf("log: %w", err)
		}
		out = append(out, LogEntry{
			Hash:      cur,
			Tree:      c.TreeHash,
			Parent:    c.ParentHash,
			Author:    c.Author,
			Timestamp: c.Timestamp,
			Message:   c.Message,
		})
		cur = c.ParentHash
	}
	return out, nil
}
