package object

import (
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"
)

// SignaturePrefix tags commit signatures produced by SSH signers.
const SignaturePrefix = "sshsig-v1"

// CommitSigningPayload returns the canonical bytes that are signed for a
// commit. The payload intentionally excludes the signature field itself.
func CommitSigningPayload(c *CommitObj) []byte {
	if c == nil {
		return nil
	}
	copyCommit := *c
	copyCommit.Signature = ""
	return MarshalCommit(&copyCommit)
}

// EncodeSSHSignature renders an SSH signature and its public key in the
// stored "sshsig-v1:format:pubkey:sig" form.
func EncodeSSHSignature(pub ssh.PublicKey, sig *ssh.Signature) string {
	pubB64 := base64.StdEncoding.EncodeToString(pub.Marshal())
	sigB64 := base64.StdEncoding.EncodeToString(sig.Blob)
	return fmt.Sprintf("%s:%s:%s:%s", SignaturePrefix, sig.Format, pubB64, sigB64)
}

// VerifyCommitSignature checks the commit's embedded SSH signature against
// its signing payload and returns the signer's public key on success.
func VerifyCommitSignature(c *CommitObj) (ssh.PublicKey, error) {
	if c == nil || strings.TrimSpace(c.Signature) == "" {
		return nil, fmt.Errorf("verify commit: no signature")
	}
	parts := strings.SplitN(c.Signature, ":", 4)
	if len(parts) != 4 || parts[0] != SignaturePrefix {
		return nil, fmt.Errorf("verify commit: unrecognized signature encoding")
	}
	pubRaw, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("verify commit: decode public key: %w", err)
	}
	sigRaw, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return nil, fmt.Errorf("verify commit: decode signature: %w", err)
	}
	pub, err := ssh.ParsePublicKey(pubRaw)
	if err != nil {
		return nil, fmt.Errorf("verify commit: parse public key: %w", err)
	}
	sig := &ssh.Signature{Format: parts[1], Blob: sigRaw}
	if err := pub.Verify(CommitSigningPayload(c), sig); err != nil {
		return nil, fmt.Errorf("verify commit: %w", err)
	}
	return pub, nil
}
