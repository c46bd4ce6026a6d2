// Package auth decides whether a caller-supplied credential grants access.
package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/okian/skinsight/internal/domain/model"
)

// Verifier checks a single credential. Implementations must be stateless
// and safe for concurrent use.
type Verifier interface {
	Verify(ctx context.Context, credential string) bool
}

// Gate rejects requests whose credential is missing or not accepted by its verifier.
type Gate struct {
	verifier Verifier
}

// NewGate creates a Gate backed by v.
func NewGate(v Verifier) (*Gate, error) {
	if v == nil {
		return nil, ErrNoVerifier
	}
	return &Gate{verifier: v}, nil
}

// Authorize returns model.ErrUnauthorized unless credential is accepted.
func (g *Gate) Authorize(ctx context.Context, credential string) error {
	if credential == "" || !g.verifier.Verify(ctx, credential) {
		return model.ErrUnauthorized
	}
	return nil
}

// StaticKey accepts exactly one shared secret.
type StaticKey struct {
	key []byte
}

// NewStaticKey creates a StaticKey verifier. An empty key is rejected.
func NewStaticKey(key string) (*StaticKey, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	return &StaticKey{key: []byte(key)}, nil
}

// Verify compares in constant time.
func (s *StaticKey) Verify(_ context.Context, credential string) bool {
	return subtle.ConstantTimeCompare([]byte(credential), s.key) == 1
}

// KeySet accepts any one of several shared secrets.
type KeySet struct {
	keys [][]byte
}

// NewKeySet creates a KeySet from keys, ignoring blanks.
func NewKeySet(keys ...string) (*KeySet, error) {
	ks := &KeySet{}
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k != "" {
			ks.keys = append(ks.keys, []byte(k))
		}
	}
	if len(ks.keys) == 0 {
		return nil, ErrEmptyKey
	}
	return ks, nil
}

// Verify checks every key so timing does not reveal which one matched.
func (ks *KeySet) Verify(_ context.Context, credential string) bool {
	c := []byte(credential)
	match := 0
	for _, k := range ks.keys {
		match |= subtle.ConstantTimeCompare(c, k)
	}
	return match == 1
}

// JWT accepts HMAC-signed bearer tokens.
type JWT struct {
	secret []byte
	issuer string
}

// NewJWT creates a JWT verifier. When issuer is non-empty the iss claim must match it.
func NewJWT(secret, issuer string) (*JWT, error) {
	if secret == "" {
		return nil, ErrEmptyKey
	}
	return &JWT{secret: []byte(secret), issuer: issuer}, nil
}

// Verify parses credential, with or without a "Bearer " prefix, and checks
// its signature and registered claims.
func (j *JWT) Verify(_ context.Context, credential string) bool {
	raw := strings.TrimSpace(strings.TrimPrefix(credential, "Bearer "))
	if raw == "" {
		return false
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}

	token, err := jwt.Parse(raw, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	}, opts...)
	if err != nil {
		return false
	}
	return token.Valid
}

// Issue signs claims with the verifier secret, defaulting the issuer.
// The smoke runner uses it to authenticate against jwt-mode servers.
func (j *JWT) Issue(claims jwt.RegisteredClaims) (string, error) {
	const op = "auth.JWT.Issue"
	if claims.Issuer == "" {
		claims.Issuer = j.issuer
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}
