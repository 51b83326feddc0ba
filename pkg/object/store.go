package object

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zlib"
)

// Store is a content-addressed object store with a 2-character fan-out
// directory layout: objects/ab/cdef0123... Every object is stored as the
// zlib-compressed framed form "kind len\0payload".
type Store struct {
	root string
}

// NewStore creates a Store rooted at the given directory. The objects/
// subdirectory is created lazily on first write.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// objectPath returns the filesystem path for a given hash.
func (s *Store) objectPath(h Hash) string {
	return filepath.Join(s.root, "objects", string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	if !h.Valid() {
		return false
	}
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Write stores an object and returns its content hash. Storing content that
// is already present is a no-op: content addressing deduplicates. Writes are
// atomic, via a temp file in the shard directory renamed into place.
func (s *Store) Write(objType ObjectType, payload []byte) (Hash, error) {
	h := HashObject(objType, payload)

	// Fast path: already exists.
	if s.Has(h) {
		return h, nil
	}

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(EncodeObject(objType, payload)); err != nil {
		zw.Close()
		return "", fmt.Errorf("object write %s: deflate: %w", h, err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("object write %s: deflate: %w", h, err)
	}

	dir := filepath.Join(s.root, "objects", string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object write mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write close: %w", err)
	}

	if err := os.Rename(tmpName, s.objectPath(h)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write rename: %w", err)
	}

	return h, nil
}

// Read retrieves an object by hash, returning its kind and payload. A
// missing object yields ErrNotFound; a failed decompression or a malformed
// envelope yields ErrCorrupt.
func (s *Store) Read(h Hash) (ObjectType, []byte, error) {
	if !h.Valid() {
		return "", nil, fmt.Errorf("object %q: %w", h, ErrNotFound)
	}
	raw, err := os.ReadFile(s.objectPath(h))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("object %s: %w", h, ErrNotFound)
		}
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}

	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return "", nil, fmt.Errorf("object %s: %w: inflate: %v", h, ErrCorrupt, err)
	}
	framed, err := io.ReadAll(zr)
	zr.Close()
	if err != nil {
		return "", nil, fmt.Errorf("object %s: %w: inflate: %v", h, ErrCorrupt, err)
	}

	objType, payload, err := DecodeObject(framed)
	if err != nil {
		return "", nil, fmt.Errorf("object %s: %w", h, err)
	}
	return objType, payload, nil
}

// Delete removes an object, reporting whether it existed. The shard
// directory is pruned when the removal empties it (best effort).
func (s *Store) Delete(h Hash) (bool, error) {
	if !h.Valid() {
		return false, nil
	}
	p := s.objectPath(h)
	if err := os.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("object delete %s: %w", h, err)
	}
	// Removing a non-empty directory fails, which is exactly the bound we
	// want on the prune.
	_ = os.Remove(filepath.Dir(p))
	return true, nil
}

// List returns the hashes of all stored objects in ascending order. A
// non-empty objType restricts the listing to that kind; objects that cannot
// be read do not abort the listing.
func (s *Store) List(objType ObjectType) ([]Hash, error) {
	var out []Hash
	err := s.eachObject(func(h Hash, path string) {
		if objType != "" {
			t, _, err := s.Read(h)
			if err != nil || t != objType {
				return
			}
		}
		out = append(out, h)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// IntegrityReport summarizes a verifyIntegrity scan.
type IntegrityReport struct {
	Checked int
	Valid   int
	Corrupt []Hash
}

// VerifyIntegrity recomputes every stored object's hash and compares it to
// the storage key. Objects that fail to decompress, fail envelope parsing,
// or hash differently are collected as corrupt; a bad object never aborts
// the scan.
func (s *Store) VerifyIntegrity() (*IntegrityReport, error) {
	report := &IntegrityReport{}
	err := s.eachObject(func(h Hash, path string) {
		report.Checked++
		objType, payload, err := s.Read(h)
		if err != nil {
			report.Corrupt = append(report.Corrupt, h)
			return
		}
		if HashObject(objType, payload) != h {
			report.Corrupt = append(report.Corrupt, h)
			return
		}
		report.Valid++
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// StoreStats reports object count and on-disk footprint.
type StoreStats struct {
	Objects         int
	CompressedBytes int64
	PayloadBytes    int64
}

// Stats walks the store and totals compressed and uncompressed sizes.
// Unreadable objects contribute only their on-disk size.
func (s *Store) Stats() (*StoreStats, error) {
	stats := &StoreStats{}
	err := s.eachObject(func(h Hash, path string) {
		stats.Objects++
		if info, err := os.Stat(path); err == nil {
			stats.CompressedBytes += info.Size()
		}
		if _, payload, err := s.Read(h); err == nil {
			stats.PayloadBytes += int64(len(payload))
		}
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// eachObject calls fn for every well-named object file, in ascending hash
// order. Stray files (temp files, foreign names) are skipped.
func (s *Store) eachObject(fn func(h Hash, path string)) error {
	objectsDir := filepath.Join(s.root, "objects")
	shards, err := os.ReadDir(objectsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("scan objects: %w", err)
	}
	for _, shard := range shards {
		if !shard.IsDir() || len(shard.Name()) != 2 {
			continue
		}
		files, err := os.ReadDir(filepath.Join(objectsDir, shard.Name()))
		if err != nil {
			return fmt.Errorf("scan objects %s: %w", shard.Name(), err)
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			h := Hash(shard.Name() + f.Name())
			if !h.Valid() {
				continue
			}
			fn(h, filepath.Join(objectsDir, shard.Name(), f.Name()))
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// WriteBlob serializes and stores a Blob.
func (s *Store) WriteBlob(b *Blob) (Hash, error) {
	return s.Write(TypeBlob, MarshalBlob(b))
}

// ReadBlob reads and deserializes a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeBlob {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeBlob)
	}
	return UnmarshalBlob(data)
}

// WriteTree serializes and stores a Tree.
func (s *Store) WriteTree(t *Tree) (Hash, error) {
	return s.Write(TypeTree, MarshalTree(t))
}

// ReadTree reads and deserializes a Tree.
func (s *Store) ReadTree(h Hash) (*Tree, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeTree {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeTree)
	}
	return UnmarshalTree(data)
}

// WriteCommit serializes and stores a Commit.
func (s *Store) WriteCommit(c *Commit) (Hash, error) {
	return s.Write(TypeCommit, MarshalCommit(c))
}

// ReadCommit reads and deserializes a Commit.
func (s *Store) ReadCommit(h Hash) (*Commit, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeCommit {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeCommit)
	}
	return UnmarshalCommit(data)
}

// WriteTag serializes and stores a Tag.
func (s *Store) WriteTag(t *Tag) (Hash, error) {
	return s.Write(TypeTag, MarshalTag(t))
}

// ReadTag reads and deserializes a Tag.
func (s *Store) ReadTag(h Hash) (*Tag, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeTag {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeTag)
	}
	return UnmarshalTag(data)
}
