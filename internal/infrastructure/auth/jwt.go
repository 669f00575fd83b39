package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/julien-rg/wheelbase-server/internal/domain"
	domerrors "github.com/julien-rg/wheelbase-server/internal/domain/errors"
)

// DefaultTokenTTL is the token lifetime when none is configured.
const DefaultTokenTTL = 60 * time.Minute

// TokenIssuer implements ports.TokenIssuer with HS256 over a
// process-wide secret. The secret is immutable after construction.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates an issuer. The secret must be at least 32 bytes
// so the HMAC key is not trivially brute-forceable. A zero ttl selects
// DefaultTokenTTL.
func NewTokenIssuer(secret []byte, ttl time.Duration) (*TokenIssuer, error) {
	if len(secret) < 32 {
		return nil, errors.New("jwt secret must be at least 32 bytes")
	}
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: secret, ttl: ttl}, nil
}

// Issue signs a token with subject = userID, issued now, expiring after
// the configured TTL.
func (t *TokenIssuer) Issue(userID domain.UserID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify reports whether the token parses, carries a valid signature and
// has not expired. Any failure yields false; the authentication path
// treats an invalid token exactly like a missing one.
func (t *TokenIssuer) Verify(token string) bool {
	_, err := t.parse(token)
	return err == nil
}

// Subject returns the user id embedded in the token. A token that fails
// to parse or verify yields ErrMalformedToken.
func (t *TokenIssuer) Subject(token string) (domain.UserID, error) {
	parsed, err := t.parse(token)
	if err != nil {
		return domain.UserID{}, domerrors.ErrMalformedToken
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil {
		return domain.UserID{}, domerrors.ErrMalformedToken
	}
	id, err := domain.ParseUserID(sub)
	if err != nil {
		return domain.UserID{}, domerrors.ErrMalformedToken
	}
	return id, nil
}

func (t *TokenIssuer) parse(token string) (*jwt.Token, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return parsed, nil
}
