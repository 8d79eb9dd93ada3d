// Package auth gates the app behind a single configured password and the
// session cookie issued after a successful login.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"time"
)

const SessionCookie = "timely_session"

// Hash digests the configured password. Both the login form and the API
// password query parameter are checked against this.
func Hash(password string) [sha256.Size]byte {
	return sha256.Sum256([]byte(password))
}

// Verify compares a submitted password against the configured hash in
// constant time.
func Verify(hash [sha256.Size]byte, candidate string) bool {
	h := sha256.Sum256([]byte(candidate))
	return subtle.ConstantTimeCompare(hash[:], h[:]) == 1
}

func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   SessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

// SessionToken returns the session cookie value, or "" when absent.
func SessionToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}
