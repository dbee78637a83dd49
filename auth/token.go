package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Token returns a signed EdDSA JWT whose subject and key id are the key's DID.
// A non-positive ttl yields a token without expiry.
func (k *Key) Token(ttl time.Duration) (string, error) {
	now := time.Now()
	did := k.DID()
	claims := jwt.RegisteredClaims{
		Subject:  did,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	token.Header["kid"] = did
	signed, err := token.SignedString(k.private)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Authenticate verifies a token made by [Key.Token] and returns the identity
// it proves. The token is self-certifying: the verification key is taken from
// the kid header and must match the subject.
func Authenticate(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		return PublicKeyFromDID(kid)
	}, jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	kid, _ := token.Header["kid"].(string)
	if claims.Subject == "" || claims.Subject != kid {
		return "", fmt.Errorf("%w: subject %q does not match key %q", ErrInvalidToken, claims.Subject, kid)
	}
	return claims.Subject, nil
}
