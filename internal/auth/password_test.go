package auth

import (
	"errors"
	"strings"
	"testing"
)

// newTestHasher uses minimal argon2 cost so each hash takes microseconds
// instead of the production ~100ms.
func newTestHasher() *Hasher {
	return NewHasher(HashParams{
		SaltLength: 16,
		Time:       1,
		Memory:     8 * 1024,
		Threads:    1,
		KeyLength:  32,
	}, DefaultPolicy())
}

func TestHash_RoundTrip(t *testing.T) {
	h := newTestHasher()

	artifact, err := h.Hash("Valid123!")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	ok, err := h.Verify("Valid123!", artifact)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !ok {
		t.Error("Verify() = false for the correct password")
	}
}

func TestHash_OutputIsSelfDescribing(t *testing.T) {
	h := newTestHasher()

	artifact, err := h.Hash("Valid123!")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !strings.HasPrefix(artifact, "$argon2id$v=") {
		t.Errorf("Hash() artifact does not carry the algorithm tag: %q", artifact)
	}
	if !strings.Contains(artifact, "m=8192,t=1,p=1") {
		t.Errorf("Hash() artifact does not carry the cost parameters: %q", artifact)
	}
}

func TestHash_SamePasswordProducesDifferentArtifacts(t *testing.T) {
	h := newTestHasher()

	a1, err := h.Hash("Valid123!")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	a2, err := h.Hash("Valid123!")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	// Distinct random salts mean distinct artifacts.
	if a1 == a2 {
		t.Fatal("Hash() produced identical artifacts for the same password")
	}
	for _, a := range []string{a1, a2} {
		if ok, err := h.Verify("Valid123!", a); err != nil || !ok {
			t.Errorf("Verify() = (%v, %v), want (true, nil)", ok, err)
		}
	}
}

func TestHash_EmptyPassword(t *testing.T) {
	h := newTestHasher()

	_, err := h.Hash("")
	if !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("Hash(\"\") error = %v, want ErrEmptyPassword", err)
	}
}

func TestHash_PolicyRejection(t *testing.T) {
	h := newTestHasher()

	tests := []struct {
		name     string
		password string
		wantRule string
	}{
		{"too short", "short", "min_length"},
		{"too long", strings.Repeat("Aa1!", 40), "max_length"},
		{"missing uppercase", "alllowercase1!", "uppercase"},
		{"missing lowercase", "ALLUPPER1!", "lowercase"},
		{"missing digit", "NoDigits!", "digit"},
		{"missing punctuation", "NoSymbols123", "punctuation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Hash(tt.password)
			var policyErr *PolicyError
			if !errors.As(err, &policyErr) {
				t.Fatalf("Hash(%q) error = %v, want *PolicyError", tt.password, err)
			}
			if policyErr.Rule != tt.wantRule {
				t.Errorf("failed rule = %q, want %q", policyErr.Rule, tt.wantRule)
			}
		})
	}
}

func TestHash_AcceptsPolicyValidPassword(t *testing.T) {
	h := newTestHasher()

	if _, err := h.Hash("Valid123!"); err != nil {
		t.Fatalf("Hash(%q) error = %v, want nil", "Valid123!", err)
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	h := newTestHasher()

	artifact, err := h.Hash("Correct1!")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	ok, err := h.Verify("Wrong456?", artifact)
	if err != nil {
		t.Fatalf("Verify() error = %v, mismatch must not be an error", err)
	}
	if ok {
		t.Error("Verify() = true for the wrong password")
	}
}

func TestVerify_CorruptArtifact(t *testing.T) {
	h := newTestHasher()

	tests := []struct {
		name     string
		artifact string
	}{
		{"garbage", "not-a-hash"},
		{"wrong algorithm", "$bcrypt$v=19$m=8192,t=1,p=1$c2FsdA$a2V5"},
		{"missing segments", "$argon2id$v=19$m=8192,t=1,p=1"},
		{"bad base64 salt", "$argon2id$v=19$m=8192,t=1,p=1$!!!$a2V5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Verify("Valid123!", tt.artifact)
			if err == nil {
				t.Fatal("Verify() should report corrupt artifacts as errors")
			}
		})
	}
}

func TestVerify_ParametersTravelWithTheArtifact(t *testing.T) {
	// Hash under one parameter set, verify through a hasher configured with
	// a different one. The artifact's own parameters must win.
	old := NewHasher(HashParams{SaltLength: 16, Time: 1, Memory: 8 * 1024, Threads: 1, KeyLength: 32}, DefaultPolicy())
	current := NewHasher(HashParams{SaltLength: 32, Time: 2, Memory: 16 * 1024, Threads: 2, KeyLength: 64}, DefaultPolicy())

	artifact, err := old.Hash("Valid123!")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	ok, err := current.Verify("Valid123!", artifact)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !ok {
		t.Error("Verify() = false for a hash produced under older parameters")
	}
}

func TestPolicy_FirstFailureWins(t *testing.T) {
	p := Policy{MinLength(8), RequireDigit()}

	err := p.Validate("abc")
	var policyErr *PolicyError
	if !errors.As(err, &policyErr) {
		t.Fatalf("Validate() error = %v, want *PolicyError", err)
	}
	if policyErr.Rule != "min_length" {
		t.Errorf("failed rule = %q, want %q", policyErr.Rule, "min_length")
	}
}

func TestPolicy_NilPolicyAcceptsAnything(t *testing.T) {
	var p Policy
	if err := p.Validate("x"); err != nil {
		t.Fatalf("Validate() error = %v, want nil for an empty policy", err)
	}
}
