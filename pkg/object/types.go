package object

import (
	"bytes"
	"fmt"
	"sort"
)

// Hash is a 40-character hex-encoded SHA-1 digest.
type Hash string

// Short returns the abbreviated hash form used in command output.
func (h Hash) Short() string {
	if len(h) <= 8 {
		return string(h)
	}
	return string(h[:8])
}

// Valid reports whether h is a well-formed 40-character lowercase hex digest.
func (h Hash) Valid() bool {
	if len(h) != 40 {
		return false
	}
	for i := 0; i < len(h); i++ {
		c := h[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
	TypeTag    ObjectType = "tag"
)

// Valid reports whether t is one of the four storable kinds.
func (t ObjectType) Valid() bool {
	switch t {
	case TypeBlob, TypeTree, TypeCommit, TypeTag:
		return true
	}
	return false
}

const (
	// Tree mode constants, canonical mode strings.
	TreeModeDir        = "040000"
	TreeModeFile       = "100644"
	TreeModeExecutable = "100755"
)

// Blob holds raw file content. Immutable once constructed; the framed hash
// is computed on first use and cached.
type Blob struct {
	Data []byte

	hash Hash
}

// Hash returns the framed content hash of the blob.
func (b *Blob) Hash() Hash {
	if b.hash == "" {
		b.hash = HashObject(TypeBlob, b.Data)
	}
	return b.hash
}

// Size returns the blob's payload length in bytes.
func (b *Blob) Size() int {
	return len(b.Data)
}

// TreeEntry is one entry in a tree object: a named reference to a blob or a
// subtree.
type TreeEntry struct {
	Mode string
	Type ObjectType // TypeBlob or TypeTree
	Hash Hash
	Name string
}

// Tree maps entry names to blob/subtree references. The canonical payload
// and the hash are memoized together and dropped together whenever an entry
// is added or removed, so a stale hash is never observable.
type Tree struct {
	entries map[string]TreeEntry

	content []byte
	hash    Hash
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{entries: make(map[string]TreeEntry)}
}

// AddBlobEntry adds or replaces a file entry. An empty mode defaults to the
// regular-file mode.
func (t *Tree) AddBlobEntry(name string, h Hash, mode string) {
	if mode == "" {
		mode = TreeModeFile
	}
	t.add(TreeEntry{Mode: mode, Type: TypeBlob, Hash: h, Name: name})
}

// AddTreeEntry adds or replaces a subtree entry.
func (t *Tree) AddTreeEntry(name string, h Hash) {
	t.add(TreeEntry{Mode: TreeModeDir, Type: TypeTree, Hash: h, Name: name})
}

func (t *Tree) add(e TreeEntry) {
	t.entries[e.Name] = e
	t.invalidate()
}

// RemoveEntry removes the named entry, reporting whether it was present.
func (t *Tree) RemoveEntry(name string) bool {
	if _, ok := t.entries[name]; !ok {
		return false
	}
	delete(t.entries, name)
	t.invalidate()
	return true
}

// Entry returns the named entry.
func (t *Tree) Entry(name string) (TreeEntry, bool) {
	if t == nil {
		return TreeEntry{}, false
	}
	e, ok := t.entries[name]
	return e, ok
}

// Entries returns all entries sorted by name.
func (t *Tree) Entries() []TreeEntry {
	if t == nil {
		return nil
	}
	out := make([]TreeEntry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of entries.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Hash returns the framed hash of the tree's canonical payload.
func (t *Tree) Hash() Hash {
	t.payload()
	return t.hash
}

func (t *Tree) invalidate() {
	t.content = nil
	t.hash = ""
}

// payload returns the canonical tree payload, computing and memoizing it
// (together with the hash) when the cache is empty.
func (t *Tree) payload() []byte {
	if t.hash != "" {
		return t.content
	}
	var buf bytes.Buffer
	for i, e := range t.Entries() {
		if i > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "%s %s %s\t%s", e.Mode, e.Type, e.Hash, e.Name)
	}
	t.content = buf.Bytes()
	t.hash = HashObject(TypeTree, t.content)
	return t.content
}

// Commit is an immutable record pointing at a tree snapshot. History is
// linear: a commit has at most one parent.
type Commit struct {
	TreeHash   Hash
	ParentHash Hash // empty for the root commit
	Author     string
	Committer  string
	Timestamp  int64 // Unix seconds; serialized at second precision
	Message    string
}

// Hash returns the framed hash of the commit's canonical payload.
func (c *Commit) Hash() Hash {
	return HashObject(TypeCommit, MarshalCommit(c))
}

// Tag is an immutable annotated-tag record pointing at a target object,
// normally a commit.
type Tag struct {
	TargetHash Hash
	TargetType ObjectType
	Name       string
	Tagger     string
	Timestamp  int64
	Message    string
}

// Hash returns the framed hash of the tag's canonical payload.
func (t *Tag) Hash() Hash {
	return HashObject(TypeTag, MarshalTag(t))
}
