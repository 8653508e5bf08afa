package utils

import (
	"context"
	"crypto/subtle"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"projectboard/models"
)

// OpenRedisPool initializes a Redis connection pool
func OpenRedisPool(dsn string) *redis.Client {
	opt, err := redis.ParseURL(dsn)
	if err != nil {
		log.Fatalf("Failed to parse Redis DSN: %v", err)
	}

	opt.PoolSize = 100
	opt.MinIdleConns = 2
	opt.DialTimeout = 5 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)
	if err = client.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to ping redis db 0: %v", err)
	}

	return client
}

// SessionManager owns the session lifecycle: anonymous sessions for the
// login form, identifier rotation at login, destruction at logout, and the
// per-session CSRF token. Sessions live in Redis as a hash per token with a
// TTL, so expiry needs no sweeper.
type SessionManager struct {
	Client         *redis.Client
	Cookie         CookieConfig
	TTL            time.Duration
	CSRFTokenBytes int
}

func sessionKey(token string) string { return "session:" + token }

func (m *SessionManager) store(ctx context.Context, s *models.Session) error {
	fields := map[string]any{
		"user_id":       s.UserID,
		"identifier":    s.Identifier,
		"name":          s.Name,
		"surname":       s.Surname,
		"role":          string(s.Role),
		"authenticated": strconv.FormatBool(s.Authenticated),
		"csrf_token":    s.CSRFToken,
		"created_at":    s.CreatedAt,
		"expires_at":    s.ExpiresAt,
	}

	key := sessionKey(s.SessionToken)
	if err := m.Client.HSet(ctx, key, fields).Err(); err != nil {
		return err
	}
	return m.Client.Expire(ctx, key, m.TTL).Err()
}

func (m *SessionManager) setCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.Cookie.Name,
		Value:    token,
		Path:     m.Cookie.Path,
		Domain:   m.Cookie.Domain,
		Secure:   m.Cookie.Secure,
		HttpOnly: m.Cookie.HttpOnly,
		SameSite: m.Cookie.SameSite,
		MaxAge:   maxAge,
	})
}

// Anonymous creates an unauthenticated session so the login form has
// somewhere to keep its CSRF token before any credentials are seen.
func (m *SessionManager) Anonymous(w http.ResponseWriter, r *http.Request) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	now := time.Now()
	session := &models.Session{
		SessionToken:  GenerateToken(32),
		Role:          models.RoleUser,
		Authenticated: false,
		CreatedAt:     now.Format(time.RFC3339),
		ExpiresAt:     now.Add(m.TTL).Format(time.RFC3339),
	}
	if err := m.store(ctx, session); err != nil {
		return nil, err
	}
	m.setCookie(w, session.SessionToken, int(m.TTL/time.Second))
	return session, nil
}

// Start opens the authenticated session for a user who just logged in. The
// previous session identifier is invalidated and a fresh one issued before
// the response is written, so a fixated pre-login token never survives the
// privilege elevation.
func (m *SessionManager) Start(w http.ResponseWriter, r *http.Request, user *models.User) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if st, err := r.Cookie(m.Cookie.Name); err == nil && st.Value != "" {
		if err := m.Client.Del(ctx, sessionKey(st.Value)).Err(); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	session := &models.Session{
		SessionToken:  GenerateToken(32),
		UserID:        user.ID.String(),
		Identifier:    user.Identifier,
		Name:          user.Name,
		Surname:       user.Surname,
		Role:          models.ParseRole(string(user.Role)),
		Authenticated: true,
		CreatedAt:     now.Format(time.RFC3339),
		ExpiresAt:     now.Add(m.TTL).Format(time.RFC3339),
	}
	if err := m.store(ctx, session); err != nil {
		return nil, err
	}
	m.setCookie(w, session.SessionToken, int(m.TTL/time.Second))
	return session, nil
}

// Current returns the session for the request cookie, or nil when there is
// no cookie or no stored session behind it.
func (m *SessionManager) Current(r *http.Request) (*models.Session, error) {
	st, err := r.Cookie(m.Cookie.Name)
	if err != nil || st.Value == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	data, err := m.Client.HGetAll(ctx, sessionKey(st.Value)).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	authenticated, _ := strconv.ParseBool(data["authenticated"])
	session := &models.Session{
		SessionToken:  st.Value,
		UserID:        data["user_id"],
		Identifier:    data["identifier"],
		Name:          data["name"],
		Surname:       data["surname"],
		Role:          models.ParseRole(data["role"]),
		Authenticated: authenticated,
		CSRFToken:     data["csrf_token"],
		CreatedAt:     data["created_at"],
		ExpiresAt:     data["expires_at"],
	}
	return session, nil
}

// Destroy deletes the stored session first and only then expires the
// client cookie, using the same attributes the cookie was created with.
// Calling it without a session is a no-op.
func (m *SessionManager) Destroy(w http.ResponseWriter, r *http.Request) error {
	st, err := r.Cookie(m.Cookie.Name)
	if err != nil || st.Value == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := m.Client.Del(ctx, sessionKey(st.Value)).Err(); err != nil {
		return err
	}
	m.setCookie(w, "", -1)
	return nil
}

// IssueCSRF returns the session's CSRF token, generating and storing one if
// the session has none yet. The token stays valid until the session goes
// away, so repeated submissions against one rendered page all pass.
func (m *SessionManager) IssueCSRF(ctx context.Context, session *models.Session) (string, error) {
	if session.CSRFToken != "" {
		return session.CSRFToken, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	token := GenerateToken(m.csrfBytes())
	if err := m.Client.HSet(ctx, sessionKey(session.SessionToken), "csrf_token", token).Err(); err != nil {
		return "", err
	}
	session.CSRFToken = token
	return token, nil
}

// ValidateCSRF reports whether the submitted token matches the session's.
// The comparison is constant time and a missing token is indistinguishable
// from a wrong one.
func (m *SessionManager) ValidateCSRF(session *models.Session, submitted string) bool {
	if session == nil || session.CSRFToken == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(session.CSRFToken), []byte(submitted)) == 1
}

func (m *SessionManager) csrfBytes() int {
	if m.CSRFTokenBytes < 16 {
		return 32
	}
	return m.CSRFTokenBytes
}

// SetFlash stores a one-shot message against the session.
func (m *SessionManager) SetFlash(ctx context.Context, session *models.Session, msg string) error {
	if session == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return m.Client.HSet(ctx, sessionKey(session.SessionToken), "flash", msg).Err()
}

// PopFlash returns and clears the session's flash message.
func (m *SessionManager) PopFlash(ctx context.Context, session *models.Session) (string, error) {
	if session == nil {
		return "", nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	key := sessionKey(session.SessionToken)
	msg, err := m.Client.HGet(ctx, key, "flash").Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if msg != "" {
		if err := m.Client.HDel(ctx, key, "flash").Err(); err != nil {
			return "", err
		}
	}
	return msg, nil
}
