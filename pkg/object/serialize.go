package object

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// timestampLayout is the second-precision wall-clock form embedded in commit
// and tag headers.
const timestampLayout = "2006-01-02 15:04:05"

func formatTimestamp(ts int64) string {
	return time.Unix(ts, 0).Format(timestampLayout)
}

func parseTimestamp(s string) (int64, error) {
	t, err := time.ParseInLocation(timestampLayout, s, time.Local)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}

// splitIdentity splits "<name> <timestamp>" where the timestamp is the final
// 19 bytes and the name may itself contain spaces.
func splitIdentity(val string) (string, int64, error) {
	if len(val) < len(timestampLayout)+2 || val[len(val)-len(timestampLayout)-1] != ' ' {
		return "", 0, fmt.Errorf("malformed identity %q", val)
	}
	tsStr := val[len(val)-len(timestampLayout):]
	ts, err := parseTimestamp(tsStr)
	if err != nil {
		return "", 0, fmt.Errorf("bad timestamp %q: %w", tsStr, err)
	}
	return val[:len(val)-len(timestampLayout)-1], ts, nil
}

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// Tree
// ---------------------------------------------------------------------------

// MarshalTree serializes a Tree. Entries are sorted by name so insertion
// order never affects the payload. Each entry is one line:
//
//	<mode> <kind> <hash>\t<name>
//
// joined by newlines with no trailing newline; an empty tree serializes to
// an empty payload.
func MarshalTree(t *Tree) []byte {
	p := t.payload()
	out := make([]byte, len(p))
	copy(out, p)
	return out
}

// UnmarshalTree parses a Tree from its serialized form.
func UnmarshalTree(data []byte) (*Tree, error) {
	t := NewTree()
	if len(data) == 0 {
		return t, nil
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields, name, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("unmarshal tree: malformed entry %q", line)
		}
		parts := strings.SplitN(fields, " ", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("unmarshal tree: malformed entry %q", line)
		}
		mode, kind := parts[0], ObjectType(parts[1])
		switch mode {
		case TreeModeDir, TreeModeFile, TreeModeExecutable:
		default:
			return nil, fmt.Errorf("unmarshal tree: unknown mode %q", mode)
		}
		if kind != TypeBlob && kind != TypeTree {
			return nil, fmt.Errorf("unmarshal tree: unknown entry kind %q", parts[1])
		}
		t.add(TreeEntry{Mode: mode, Type: kind, Hash: Hash(parts[2]), Name: name})
	}
	return t, nil
}

// ---------------------------------------------------------------------------
// Commit
// ---------------------------------------------------------------------------

// MarshalCommit serializes a Commit:
//
//	tree <hash>
//	parent <hash>             (only when a parent exists)
//	author <name> <time>      (only when non-empty)
//	committer <name> <time>   (only when non-empty)
//
//	<message>
//
// The message is preserved byte-exactly with no trailing-newline
// normalization.
func MarshalCommit(c *Commit) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", c.TreeHash)
	if c.ParentHash != "" {
		fmt.Fprintf(&buf, "parent %s\n", c.ParentHash)
	}
	if c.Author != "" {
		fmt.Fprintf(&buf, "author %s %s\n", c.Author, formatTimestamp(c.Timestamp))
	}
	if c.Committer != "" {
		fmt.Fprintf(&buf, "committer %s %s\n", c.Committer, formatTimestamp(c.Timestamp))
	}
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// UnmarshalCommit parses a Commit from its serialized form.
func UnmarshalCommit(data []byte) (*Commit, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal commit: missing header/message separator")
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	c := &Commit{Message: message}
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal commit: malformed header line %q", line)
		}
		switch key {
		case "tree":
			c.TreeHash = Hash(val)
		case "parent":
			c.ParentHash = Hash(val)
		case "author":
			name, ts, err := splitIdentity(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: author: %w", err)
			}
			c.Author = name
			c.Timestamp = ts
		case "committer":
			name, ts, err := splitIdentity(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: committer: %w", err)
			}
			c.Committer = name
			c.Timestamp = ts
		default:
			return nil, fmt.Errorf("unmarshal commit: unknown header key %q", key)
		}
	}
	if c.TreeHash == "" {
		return nil, fmt.Errorf("unmarshal commit: missing tree header")
	}
	return c, nil
}

// ---------------------------------------------------------------------------
// Tag
// ---------------------------------------------------------------------------

// MarshalTag serializes a Tag:
//
//	object <hash>
//	type <kind>
//	tag <name>
//	tagger <name> <time>   (only when non-empty)
//
//	<message>
func MarshalTag(t *Tag) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "object %s\n", t.TargetHash)
	fmt.Fprintf(&buf, "type %s\n", t.TargetType)
	fmt.Fprintf(&buf, "tag %s\n", t.Name)
	if t.Tagger != "" {
		fmt.Fprintf(&buf, "tagger %s %s\n", t.Tagger, formatTimestamp(t.Timestamp))
	}
	buf.WriteByte('\n')
	buf.WriteString(t.Message)
	return buf.Bytes()
}

// UnmarshalTag parses a Tag from its serialized form.
func UnmarshalTag(data []byte) (*Tag, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal tag: missing header/message separator")
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	t := &Tag{Message: message}
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal tag: malformed header line %q", line)
		}
		switch key {
		case "object":
			t.TargetHash = Hash(val)
		case "type":
			objType := ObjectType(val)
			if !objType.Valid() {
				return nil, fmt.Errorf("unmarshal tag: unknown target kind %q", val)
			}
			t.TargetType = objType
		case "tag":
			t.Name = val
		case "tagger":
			name, ts, err := splitIdentity(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal tag: tagger: %w", err)
			}
			t.Tagger = name
			t.Timestamp = ts
		default:
			return nil, fmt.Errorf("unmarshal tag: unknown header key %q", key)
		}
	}
	if t.TargetHash == "" || t.Name == "" {
		return nil, fmt.Errorf("unmarshal tag: missing object or tag header")
	}
	return t, nil
}
