package auth

import (
	"fmt"
	"strings"
	"unicode"
)

// punctuation is the ASCII punctuation/symbol set accepted as the "symbol"
// character class.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// PolicyError reports which password rule a plaintext failed. The message is
// safe to show to the client; it never references a stored account.
type PolicyError struct {
	Rule    string
	Message string
}

func (e *PolicyError) Error() string {
	return e.Message
}

// Rule is a single composable password requirement.
type Rule struct {
	Name  string
	Check func(password string) bool
	// Message is returned to the client when Check fails.
	Message string
}

// Policy is an ordered set of rules a plaintext password must satisfy
// before hashing is permitted. Rules run in order; the first failure wins.
type Policy []Rule

// Validate returns a *PolicyError for the first rule the password fails,
// or nil if all rules pass.
func (p Policy) Validate(password string) error {
	for _, r := range p {
		if !r.Check(password) {
			return &PolicyError{Rule: r.Name, Message: r.Message}
		}
	}
	return nil
}

// MinLength requires at least n characters.
func MinLength(n int) Rule {
	return Rule{
		Name:    "min_length",
		Check:   func(pw string) bool { return len(pw) >= n },
		Message: fmt.Sprintf("password must be at least %d characters long", n),
	}
}

// MaxLength requires at most n characters.
func MaxLength(n int) Rule {
	return Rule{
		Name:    "max_length",
		Check:   func(pw string) bool { return len(pw) <= n },
		Message: fmt.Sprintf("password must be at most %d characters long", n),
	}
}

// RequireUppercase requires at least one uppercase letter.
func RequireUppercase() Rule {
	return Rule{
		Name:    "uppercase",
		Check:   func(pw string) bool { return strings.ContainsFunc(pw, unicode.IsUpper) },
		Message: "password must contain at least one uppercase letter",
	}
}

// RequireLowercase requires at least one lowercase letter.
func RequireLowercase() Rule {
	return Rule{
		Name:    "lowercase",
		Check:   func(pw string) bool { return strings.ContainsFunc(pw, unicode.IsLower) },
		Message: "password must contain at least one lowercase letter",
	}
}

// RequireDigit requires at least one decimal digit.
func RequireDigit() Rule {
	return Rule{
		Name:    "digit",
		Check:   func(pw string) bool { return strings.ContainsFunc(pw, unicode.IsDigit) },
		Message: "password must contain at least one digit",
	}
}

// RequirePunctuation requires at least one ASCII punctuation character.
func RequirePunctuation() Rule {
	return Rule{
		Name: "punctuation",
		Check: func(pw string) bool {
			return strings.ContainsAny(pw, punctuation)
		},
		Message: "password must contain at least one punctuation character",
	}
}

// DefaultPolicy returns the stock policy: length 8..128 with at least one
// uppercase letter, one lowercase letter, one digit, and one punctuation
// character.
func DefaultPolicy() Policy {
	return Policy{
		MinLength(8),
		MaxLength(128),
		RequireUppercase(),
		RequireLowercase(),
		RequireDigit(),
		RequirePunctuation(),
	}
}
