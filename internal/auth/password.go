// Package auth implements the authentication core: argon2id password
// hashing with a composable password policy, JWT issuance and validation,
// and the authorization middleware that gates protected routes.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrEmptyPassword is returned by Hash when the plaintext is empty.
// An empty secret is an input error, never silently hashed.
var ErrEmptyPassword = errors.New("auth: password must not be empty")

// HashParams are the argon2id cost parameters. They are deployment
// configuration: the values used at hash time are encoded into the artifact,
// so changing defaults between deployments never breaks verification of
// existing hashes.
type HashParams struct {
	SaltLength uint32 // bytes of random salt per hash
	Time       uint32 // passes over memory
	Memory     uint32 // KiB
	Threads    uint8  // lanes
	KeyLength  uint32 // bytes of derived output
}

// DefaultHashParams returns the production parameters: 16 MiB of memory,
// 16 passes, a single lane, 32-byte salt, 64-byte key.
func DefaultHashParams() HashParams {
	return HashParams{
		SaltLength: 32,
		Time:       16,
		Memory:     16 * 1024,
		Threads:    1,
		KeyLength:  64,
	}
}

// Hasher derives and verifies argon2id password hashes. The plaintext never
// leaves this type: callers get back an opaque, self-describing artifact of
// the form
//
//	$argon2id$v=19$m=16384,t=16,p=1$<base64 salt>$<base64 key>
//
// which carries the algorithm, its cost parameters, and the salt alongside
// the derived key.
type Hasher struct {
	params HashParams
	policy Policy
}

// NewHasher creates a Hasher with the given cost parameters and password
// policy. Pass a nil policy to disable policy enforcement (verification-only
// use); Hash still rejects empty plaintexts.
func NewHasher(params HashParams, policy Policy) *Hasher {
	return &Hasher{params: params, policy: policy}
}

// Hash checks the plaintext against the policy and derives an argon2id
// artifact with a fresh random salt. Two calls on the same input produce
// different artifacts.
//
// Returns ErrEmptyPassword for an empty plaintext and a *PolicyError when a
// policy rule fails.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	if err := h.policy.Validate(plaintext); err != nil {
		return "", err
	}

	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("auth: generating salt: %w", err)
	}

	key := argon2.IDKey(
		[]byte(plaintext),
		salt,
		h.params.Time,
		h.params.Memory,
		h.params.Threads,
		h.params.KeyLength,
	)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether the plaintext matches the stored artifact.
//
// The cost parameters are read from the artifact itself, not from the
// Hasher, so hashes produced under older parameters keep verifying. A
// mismatch returns (false, nil); a corrupt or unparseable artifact returns
// (false, err) — that is a server-error class, not a credentials error.
//
// The comparison is constant-time over the full derived key; there is no
// early exit on the first differing byte.
func (h *Hasher) Verify(plaintext, artifact string) (bool, error) {
	salt, key, params, err := decodeArtifact(artifact)
	if err != nil {
		return false, err
	}

	derived := argon2.IDKey(
		[]byte(plaintext),
		salt,
		params.Time,
		params.Memory,
		params.Threads,
		uint32(len(key)),
	)

	return subtle.ConstantTimeCompare(key, derived) == 1, nil
}

// decodeArtifact splits a $argon2id$... artifact into its salt, derived key,
// and cost parameters.
func decodeArtifact(artifact string) (salt, key []byte, params HashParams, err error) {
	parts := strings.Split(artifact, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, nil, params, errors.New("auth: malformed password hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, params, fmt.Errorf("auth: parsing hash version: %w", err)
	}
	if version != argon2.Version {
		return nil, nil, params, fmt.Errorf("auth: unsupported argon2 version %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d",
		&params.Memory, &params.Time, &params.Threads); err != nil {
		return nil, nil, params, fmt.Errorf("auth: parsing hash parameters: %w", err)
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, params, fmt.Errorf("auth: decoding salt: %w", err)
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, params, fmt.Errorf("auth: decoding key: %w", err)
	}

	return salt, key, params, nil
}
