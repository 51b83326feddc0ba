package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/keepvcs/keep/pkg/object"
	"github.com/keepvcs/keep/pkg/repo"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"
)

// newSSHTagSigner builds a repo.TagSigner from an SSH private key and
// reports which key file it settled on. An empty keyPath falls back to
// the user.signingkey config value, then to the usual ~/.ssh key names.
func newSSHTagSigner(r *repo.Repository, keyPath string) (repo.TagSigner, string, error) {
	resolvedPath, err := resolveSigningKeyPath(r, keyPath)
	if err != nil {
		return nil, "", err
	}

	raw, err := os.ReadFile(resolvedPath)
	if err != nil {
		return nil, "", fmt.Errorf("read signing key %q: %w", resolvedPath, err)
	}
	signer, err := ssh.ParsePrivateKey(raw)
	if err != nil {
		return nil, "", fmt.Errorf("parse signing key %q: %w", resolvedPath, err)
	}

	pub := signer.PublicKey()
	pubB64 := base64.StdEncoding.EncodeToString(pub.Marshal())

	tagSigner := func(payload []byte) (string, error) {
		sig, err := signer.Sign(rand.Reader, payload)
		if err != nil {
			return "", err
		}
		sigB64 := base64.StdEncoding.EncodeToString(sig.Blob)
		return fmt.Sprintf("%s:%s:%s:%s", object.SignaturePrefix, sig.Format, pubB64, sigB64), nil
	}
	return tagSigner, resolvedPath, nil
}

// verifyTagSignature checks the signature line embedded in a tag's message
// against the canonical tag payload and prints the signer's fingerprint.
func verifyTagSignature(cmd *cobra.Command, r *repo.Repository, name string) error {
	tagHash, err := r.ResolveTag(name)
	if err != nil {
		return err
	}
	tag, err := r.Store.ReadTag(tagHash)
	if err != nil {
		return err
	}

	line, ok := object.TagSignatureLine(tag)
	if !ok {
		return fmt.Errorf("tag %q is not signed", name)
	}

	format, pub, sigBlob, err := parseSignatureLine(line)
	if err != nil {
		return fmt.Errorf("tag %q: %w", name, err)
	}

	payload := object.TagSigningPayload(tag)
	if err := pub.Verify(payload, &ssh.Signature{Format: format, Blob: sigBlob}); err != nil {
		return fmt.Errorf("tag %q: signature does not verify: %w", name, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "ok: tag %q signed by %s %s\n", name, pub.Type(), ssh.FingerprintSHA256(pub))
	return nil
}

func parseSignatureLine(line string) (string, ssh.PublicKey, []byte, error) {
	parts := strings.Split(line, ":")
	if len(parts) != 4 || parts[0] != object.SignaturePrefix {
		return "", nil, nil, fmt.Errorf("malformed signature line")
	}
	pubRaw, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return "", nil, nil, fmt.Errorf("decode public key: %w", err)
	}
	pub, err := ssh.ParsePublicKey(pubRaw)
	if err != nil {
		return "", nil, nil, fmt.Errorf("parse public key: %w", err)
	}
	sigBlob, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return "", nil, nil, fmt.Errorf("decode signature: %w", err)
	}
	return parts[1], pub, sigBlob, nil
}

func resolveSigningKeyPath(r *repo.Repository, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" && r != nil && r.Config != nil {
		path = strings.TrimSpace(r.Config.User.SigningKey)
	}
	if path != "" {
		expanded, err := expandUserPath(path)
		if err != nil {
			return "", err
		}
		return expanded, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	candidates := []string{
		filepath.Join(home, ".ssh", "id_ed25519"),
		filepath.Join(home, ".ssh", "id_ecdsa"),
		filepath.Join(home, ".ssh", "id_rsa"),
	}
	for _, candidate := range candidates {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no default SSH private key found in ~/.ssh (id_ed25519, id_ecdsa, id_rsa)")
}

func expandUserPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	return filepath.Abs(path)
}
