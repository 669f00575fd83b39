package ports

import "github.com/julien-rg/wheelbase-server/internal/domain"

// PasswordHasher hashes and verifies passwords (Argon2id).
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenIssuer signs and validates bearer tokens (HS256).
type TokenIssuer interface {
	Issue(userID domain.UserID) (string, error)
	// Verify reports whether the token is well-formed, correctly signed
	// and not expired. It never returns an error; any failure is false.
	Verify(token string) bool
	// Subject extracts the user id. Returns errors.ErrMalformedToken on
	// any parse or signature failure; call only after Verify succeeds.
	Subject(token string) (domain.UserID, error)
}
