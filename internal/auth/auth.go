// Package auth handles password hashing and login against the master store's
// user table. Authentication is deliberately local: the master store is the
// only credential source, so a user can log in wherever the shared directory
// is reachable.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/fieldscope/vztrack/internal/paths"
	"github.com/fieldscope/vztrack/internal/store"
	"github.com/fieldscope/vztrack/pkg/types"
)

// HashPassword returns the bcrypt hash of a plaintext password at the
// default cost.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: empty password", types.ErrInvalidCredentials)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plaintext password matches the stored
// bcrypt hash.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Session is an authenticated user plus the path of their personal local
// store, resolved once at login.
type Session struct {
	User      *types.User
	LocalPath string
}

// Authenticate checks the credentials against the master store's active
// users. Unknown usernames and wrong passwords both come back as
// ErrInvalidCredentials; callers must not distinguish them.
func Authenticate(master *store.MasterStore, localRoot, username, password string) (*Session, error) {
	user, err := master.GetUserByUsername(username)
	if errors.Is(err, types.ErrNotFound) {
		return nil, types.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if !VerifyPassword(user.PasswordHash, password) {
		return nil, types.ErrInvalidCredentials
	}
	return &Session{
		User:      user,
		LocalPath: paths.LocalDBPath(localRoot, username),
	}, nil
}

// RequireRole returns ErrForbidden unless the session's user holds one of
// the given roles.
func RequireRole(s *Session, roles ...string) error {
	for _, r := range roles {
		if s.User.Role == r {
			return nil
		}
	}
	return fmt.Errorf("%w: role %q", types.ErrForbidden, s.User.Role)
}
