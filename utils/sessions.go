package utils

import (
	"net/http"

	"projectboard/models"
)

func CookieExists(r *http.Request, name string) bool {
	st, err := r.Cookie(name)
	return err == nil && st.Value != ""
}

// GetIP returns the IP address of the client from the request
func GetIP(r *http.Request) string {
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = r.RemoteAddr
	}
	return ip
}

// ClientKey identifies the client for attempt throttling: the session token
// when one exists, the connection address otherwise. Per-key throttling
// keeps one attacker from locking out everybody else.
func ClientKey(r *http.Request, session *models.Session) string {
	if session != nil && session.SessionToken != "" {
		return session.SessionToken
	}
	return GetIP(r)
}
