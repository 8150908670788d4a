package auth

import (
	"net/http"
	"time"
)

// DevUser is the identity the mock provider logs everyone in as
var DevUser = User{
	ID:       "dev-user-123",
	Email:    "dev@draft-assistant.local",
	Name:     "Dev User",
	Username: "devuser",
	Groups:   []string{"users", adminGroup},
}

// MockAuth logs every visitor in as DevUser for local development
type MockAuth struct {
	sessions *sessionStore
}

// NewMockAuth creates a mock provider
func NewMockAuth() *MockAuth {
	return &MockAuth{sessions: newSessionStore()}
}

// LoginHandler opens a session for DevUser. The session id is also returned
// in the body so API clients can send it as a bearer token.
func (m *MockAuth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	user := DevUser
	session := m.sessions.create(&user, nil, time.Now().Add(24*time.Hour))
	setSessionCookie(w, session, false)

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"token":"` + session.ID + `"}`))
}

// CallbackHandler has nothing to exchange
func (m *MockAuth) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// LogoutHandler ends the session
func (m *MockAuth) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	m.sessions.logout(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// Middleware rejects requests without a live session
func (m *MockAuth) Middleware(next http.Handler) http.Handler {
	return m.sessions.middleware(next)
}
