package utils

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"projectboard/models"
)

func GenerateToken(length int) string {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}
	return base64.URLEncoding.EncodeToString(bytes)
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	return string(bytes), err
}

// AuthenticateUser runs the credential half of the login flow: lockout
// check, user lookup, hash verification, attempt accounting. The caller has
// already rejected non-POST requests and validated the CSRF token, so
// everything that reaches this point counts against the client key.
//
// Unknown user, wrong password and a non-admitted account all come back as
// the one ErrInvalidCredentials; nothing tells the client which it was. Any
// store failure rejects the login rather than letting it through.
func AuthenticateUser(ctx context.Context, users CredentialStore, attempts *LoginAttempts, clientKey, identifier, password string) (*models.User, error) {
	status, err := attempts.Check(ctx, clientKey)
	if err != nil {
		log.Printf("attempt check failed for key %s: %v", clientKey, err)
		return nil, err
	}
	if status.Blocked {
		// no credential work while locked, so the hash comparison cannot
		// be used as an oracle during the window
		return nil, fmt.Errorf("%w: try again in %d seconds", ErrRateLimited, status.RemainingLockSeconds)
	}

	// The identifier is sanitized; the password never is, stripping
	// characters from it could change its value.
	user, err := users.FindByIdentifier(ctx, SanitizeInput(identifier))
	if err != nil {
		log.Printf("user lookup failed: %v", err)
		return nil, err
	}

	if user == nil || !CheckPasswordHash(password, user.PasswordHash) || !user.Admitted {
		if err := attempts.Increment(ctx, clientKey); err != nil {
			log.Printf("failed to record login attempt for key %s: %v", clientKey, err)
		}
		return nil, ErrInvalidCredentials
	}

	if err := attempts.Reset(ctx, clientKey); err != nil {
		log.Printf("failed to reset login attempts for key %s: %v", clientKey, err)
	}
	return user, nil
}

// RequireAuthenticated is the gate in front of every project view.
func RequireAuthenticated(session *models.Session) error {
	if session == nil || !session.Authenticated {
		return ErrUnauthenticated
	}
	return nil
}

// RequireRole gates the mutating project operations to a single role. The
// session role already went through models.ParseRole, so the comparison is
// over the closed enumeration.
func RequireRole(session *models.Session, role models.Role) error {
	if err := RequireAuthenticated(session); err != nil {
		return err
	}
	if session.Role != role {
		return ErrForbidden
	}
	return nil
}
