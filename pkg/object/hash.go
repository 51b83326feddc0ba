package object

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// HashBytes computes the raw SHA-1 hash of data and returns it as a
// lowercase hex-encoded Hash.
func HashBytes(data []byte) Hash {
	sum := sha1.Sum(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashObject computes the SHA-1 of the envelope "kind len\0payload". This is
// the sole identity function for stored objects: identical payload bytes
// under an identical declared kind always hash identically.
func HashObject(objType ObjectType, data []byte) Hash {
	header := fmt.Sprintf("%s %d\x00", objType, len(data))
	h := sha1.New()
	h.Write([]byte(header))
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// EncodeObject produces the framed byte sequence "kind len\0payload" that is
// hashed and (compressed) stored on disk.
func EncodeObject(objType ObjectType, payload []byte) []byte {
	header := fmt.Sprintf("%s %d\x00", objType, len(payload))
	out := make([]byte, 0, len(header)+len(payload))
	out = append(out, header...)
	out = append(out, payload...)
	return out
}

// DecodeObject splits a framed byte sequence into its kind and payload,
// validating the envelope. Malformed framing, an unrecognized kind, or a
// length disagreement yield an ErrCorrupt.
func DecodeObject(framed []byte) (ObjectType, []byte, error) {
	nul := bytes.IndexByte(framed, 0)
	if nul < 0 {
		return "", nil, fmt.Errorf("%w: missing header terminator", ErrCorrupt)
	}
	header := string(framed[:nul])
	payload := framed[nul+1:]

	kind, lenStr, ok := strings.Cut(header, " ")
	if !ok {
		return "", nil, fmt.Errorf("%w: malformed header %q", ErrCorrupt, header)
	}
	objType := ObjectType(kind)
	if !objType.Valid() {
		return "", nil, fmt.Errorf("%w: unknown object kind %q", ErrCorrupt, kind)
	}
	length, err := strconv.Atoi(lenStr)
	if err != nil {
		return "", nil, fmt.Errorf("%w: invalid length %q", ErrCorrupt, lenStr)
	}
	if length != len(payload) {
		return "", nil, fmt.Errorf("%w: length mismatch (header=%d, actual=%d)", ErrCorrupt, length, len(payload))
	}
	return objType, payload, nil
}
