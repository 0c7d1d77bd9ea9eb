package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// issuer is pinned into every token and required at validation, so tokens
// minted by other applications sharing a secret are rejected.
const issuer = "portfolio-backend"

// signingAlgorithm is a compile-time constant. Validation accepts this
// algorithm and nothing else, regardless of what the token header claims —
// algorithm confusion is structurally impossible.
const signingAlgorithm = "HS256"

// Token validation failures. Expiry is distinct from tampering, which is
// distinct from a token that cannot be parsed at all.
var (
	ErrTokenExpired          = errors.New("auth: token expired")
	ErrTokenSignatureInvalid = errors.New("auth: invalid token signature")
	ErrTokenMalformed        = errors.New("auth: malformed token")
)

// Claims is the payload of an issued token: the account's stable identifier
// in the standard Subject claim, the username for diagnostics, and an
// absolute expiry.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService mints and validates signed bearer tokens. It holds the
// process-wide HMAC secret and the configured TTL; both are fixed at
// construction and safe for concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService. The secret must be at least 16
// bytes; generate one with `openssl rand -hex 32`. The TTL applies to every
// token issued through Issue.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token TTL must be positive")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// Issue signs a new bearer token for the given account, valid for the
// configured TTL.
func (s *TokenService) Issue(userID, username string) (string, error) {
	return s.IssueWithTTL(userID, username, s.ttl)
}

// IssueWithTTL signs a token with an explicit lifetime. Used by tests and
// for non-standard lifetimes; production callers use Issue.
func (s *TokenService) IssueWithTTL(userID, username string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()

	c := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token string and returns its claims.
//
// Fails with ErrTokenExpired, ErrTokenSignatureInvalid, or ErrTokenMalformed.
// Validate does not resolve the account; the subject may belong to an
// account deleted after issuance, which is the authorization gate's problem.
func (s *TokenService) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{signingAlgorithm}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignatureInvalid
		default:
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		}
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("%w: no subject", ErrTokenMalformed)
	}

	return c, nil
}
