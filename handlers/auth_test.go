package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"projectboard/handlers"
	"projectboard/models"
	"projectboard/utils"
)

type fakeUsers struct {
	users map[string]*models.User
}

func (f *fakeUsers) FindByIdentifier(_ context.Context, identifier string) (*models.User, error) {
	return f.users[identifier], nil
}

func newSessionManager(t *testing.T) *utils.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return &utils.SessionManager{
		Client: client,
		Cookie: utils.CookieConfig{
			Name:     "session_token",
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		},
		TTL:            time.Hour,
		CSRFTokenBytes: 32,
	}
}

func newAttempts(store utils.AttemptStore) *utils.LoginAttempts {
	return &utils.LoginAttempts{Store: store, Threshold: 5, Lockout: 15 * time.Minute}
}

func aliceStore(t *testing.T) *fakeUsers {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("SecurePass123!"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to generate password hash: %v", err)
	}
	return &fakeUsers{users: map[string]*models.User{
		"alice": {
			ID:           uuid.New(),
			Identifier:   "alice",
			PasswordHash: string(hash),
			Name:         "Alice",
			Surname:      "Moreno",
			Role:         models.RoleAdmin,
			Admitted:     true,
		},
	}}
}

// anonymousSession creates the pre-login session a browser would have after
// loading the login form, returning its cookies and CSRF token.
func anonymousSession(t *testing.T, m *utils.SessionManager) ([]*http.Cookie, string) {
	t.Helper()
	rr := httptest.NewRecorder()
	session, err := m.Anonymous(rr, httptest.NewRequest(http.MethodGet, "/?action=login", nil))
	if err != nil {
		t.Fatalf("Anonymous() error = %v", err)
	}
	token, err := m.IssueCSRF(context.Background(), session)
	if err != nil {
		t.Fatalf("IssueCSRF() error = %v", err)
	}
	return rr.Result().Cookies(), token
}

func postForm(target string, form url.Values, cookies []*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func sessionFor(t *testing.T, m *utils.SessionManager, cookies []*http.Cookie) *models.Session {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	session, err := m.Current(req)
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	return session
}

func redirectTarget(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusSeeOther)
	}
	return rr.Header().Get("Location")
}

func TestAuthenticateRejectsNonPost(t *testing.T) {
	m := newSessionManager(t)
	store := utils.NewMemoryAttemptStore()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?action=authenticate&idUser=alice&password=x", nil)
	handlers.AuthenticateHandler(rr, req, aliceStore(t), m, newAttempts(store))

	if loc := redirectTarget(t, rr); loc != "/?action=login" {
		t.Errorf("redirect = %q, want login", loc)
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Error("non-POST request set a cookie")
	}
}

func TestAuthenticateRejectsBadCSRF(t *testing.T) {
	m := newSessionManager(t)
	store := utils.NewMemoryAttemptStore()
	cookies, _ := anonymousSession(t, m)

	rr := httptest.NewRecorder()
	req := postForm("/?action=authenticate", url.Values{
		"csrf_token": {"forged"},
		"idUser":     {"alice"},
		"password":   {"SecurePass123!"},
	}, cookies)
	handlers.AuthenticateHandler(rr, req, aliceStore(t), m, newAttempts(store))

	if loc := redirectTarget(t, rr); loc != "/?action=login" {
		t.Errorf("redirect = %q, want login", loc)
	}

	// no session elevation, no attempt accounting
	if session := sessionFor(t, m, cookies); session == nil || session.Authenticated {
		t.Error("csrf failure changed the session's authentication state")
	}
	session := sessionFor(t, m, cookies)
	state, _ := store.State(context.Background(), session.SessionToken)
	if state.Count != 0 {
		t.Errorf("csrf failure touched the attempt counter: %d", state.Count)
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	m := newSessionManager(t)
	store := utils.NewMemoryAttemptStore()
	attempts := newAttempts(store)
	cookies, csrf := anonymousSession(t, m)
	anon := sessionFor(t, m, cookies)

	// two stale failures that the successful login must clear
	attempts.Increment(context.Background(), anon.SessionToken)
	attempts.Increment(context.Background(), anon.SessionToken)

	rr := httptest.NewRecorder()
	req := postForm("/?action=authenticate", url.Values{
		"csrf_token": {csrf},
		"idUser":     {"alice"},
		"password":   {"SecurePass123!"},
	}, cookies)
	handlers.AuthenticateHandler(rr, req, aliceStore(t), m, attempts)

	if loc := redirectTarget(t, rr); loc != "/?action=index&message=welcome" {
		t.Errorf("redirect = %q, want dashboard", loc)
	}

	session := sessionFor(t, m, rr.Result().Cookies())
	if session == nil || !session.Authenticated {
		t.Fatal("no authenticated session after login")
	}
	if session.Role != models.RoleAdmin {
		t.Errorf("role = %q, want admin", session.Role)
	}
	if session.SessionToken == anon.SessionToken {
		t.Error("session identifier not rotated at login")
	}
	state, _ := store.State(context.Background(), anon.SessionToken)
	if state.Count != 0 {
		t.Errorf("attempt counter = %d after success, want 0", state.Count)
	}
}

func TestAuthenticateWrongPasswordFlashesGenericMessage(t *testing.T) {
	m := newSessionManager(t)
	cookies, csrf := anonymousSession(t, m)

	rr := httptest.NewRecorder()
	req := postForm("/?action=authenticate", url.Values{
		"csrf_token": {csrf},
		"idUser":     {"alice"},
		"password":   {"WrongPass123!"},
	}, cookies)
	handlers.AuthenticateHandler(rr, req, aliceStore(t), m, newAttempts(utils.NewMemoryAttemptStore()))

	if loc := redirectTarget(t, rr); loc != "/?action=login" {
		t.Errorf("redirect = %q, want login", loc)
	}
	session := sessionFor(t, m, cookies)
	if session.Authenticated {
		t.Error("failed login produced an authenticated session")
	}
	flash, err := m.PopFlash(context.Background(), session)
	if err != nil {
		t.Fatalf("PopFlash() error = %v", err)
	}
	if flash != "Invalid username or password." {
		t.Errorf("flash = %q, want the generic credentials message", flash)
	}
}

func TestAuthenticateLockedOutEvenWithCorrectPassword(t *testing.T) {
	m := newSessionManager(t)
	store := utils.NewMemoryAttemptStore()
	attempts := newAttempts(store)
	users := aliceStore(t)
	cookies, csrf := anonymousSession(t, m)

	for i := 0; i < 5; i++ {
		rr := httptest.NewRecorder()
		req := postForm("/?action=authenticate", url.Values{
			"csrf_token": {csrf},
			"idUser":     {"alice"},
			"password":   {"WrongPass123!"},
		}, cookies)
		handlers.AuthenticateHandler(rr, req, users, m, attempts)
	}

	// 6th attempt during the lock window with the CORRECT password
	rr := httptest.NewRecorder()
	req := postForm("/?action=authenticate", url.Values{
		"csrf_token": {csrf},
		"idUser":     {"alice"},
		"password":   {"SecurePass123!"},
	}, cookies)
	handlers.AuthenticateHandler(rr, req, users, m, attempts)

	if loc := redirectTarget(t, rr); loc != "/?action=login" {
		t.Errorf("redirect = %q, want login", loc)
	}
	session := sessionFor(t, m, cookies)
	if session.Authenticated {
		t.Error("locked-out client logged in with the correct password")
	}
	flash, _ := m.PopFlash(context.Background(), session)
	if !strings.Contains(flash, "try again in") {
		t.Errorf("flash = %q, want the lockout message", flash)
	}
}

func TestLogOutDestroysSession(t *testing.T) {
	m := newSessionManager(t)

	startRR := httptest.NewRecorder()
	user := aliceStore(t).users["alice"]
	if _, err := m.Start(startRR, httptest.NewRequest(http.MethodPost, "/", nil), user); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	cookies := startRR.Result().Cookies()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?action=logout", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	handlers.LogOutHandler(rr, req, m)

	if loc := redirectTarget(t, rr); loc != "/?action=login" {
		t.Errorf("redirect = %q, want login", loc)
	}
	if session := sessionFor(t, m, cookies); session != nil {
		t.Error("session survived logout")
	}

	// logging out twice is harmless
	rr2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/?action=logout", nil)
	for _, c := range cookies {
		req2.AddCookie(c)
	}
	handlers.LogOutHandler(rr2, req2, m)
	if loc := redirectTarget(t, rr2); loc != "/?action=login" {
		t.Errorf("second logout redirect = %q, want login", loc)
	}
}
