package object

import "strings"

// SignaturePrefix marks a signature line embedded in a tag message. A signed
// tag carries the signature as its final message line, so the wire format of
// the tag payload is unchanged and unsigned readers see one extra line.
const SignaturePrefix = "sshsig-v1"

// TagSigningPayload returns the canonical bytes that are signed for a tag.
// The payload intentionally excludes the signature line itself, so signing
// and verifying agree on the same bytes.
func TagSigningPayload(t *Tag) []byte {
	if t == nil {
		return nil
	}
	copyTag := *t
	if line, ok := TagSignatureLine(t); ok {
		copyTag.Message = strings.TrimSuffix(copyTag.Message, line)
		copyTag.Message = strings.TrimSuffix(copyTag.Message, "\n")
	}
	return MarshalTag(&copyTag)
}

// TagSignatureLine extracts the signature line from a tag message, if any.
func TagSignatureLine(t *Tag) (string, bool) {
	if t == nil || t.Message == "" {
		return "", false
	}
	msg := strings.TrimSuffix(t.Message, "\n")
	idx := strings.LastIndexByte(msg, '\n')
	line := msg[idx+1:]
	if strings.HasPrefix(line, SignaturePrefix+":") {
		return line, true
	}
	return "", false
}
