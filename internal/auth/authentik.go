package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/Billy-Davies-2/draft-assistant/internal/logger"
)

// AuthentikConfig holds the configuration for Authentik OAuth2/OIDC
type AuthentikConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	// Application is the Authentik application slug used for end-session
	Application string
}

// AuthentikAuth logs users in through Authentik and keeps their sessions
type AuthentikAuth struct {
	config       AuthentikConfig
	oauth2Config *oauth2.Config
	sessions     *sessionStore
}

// NewAuthentikAuth creates an Authentik provider
func NewAuthentikAuth(config AuthentikConfig) *AuthentikAuth {
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if len(config.Scopes) == 0 {
		config.Scopes = []string{"openid", "profile", "email"}
	}
	if config.Application == "" {
		config.Application = "draft-assistant"
	}

	return &AuthentikAuth{
		config: config,
		oauth2Config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       config.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  config.BaseURL + "/application/o/authorize/",
				TokenURL: config.BaseURL + "/application/o/token/",
			},
		},
		sessions: newSessionStore(),
	}
}

// LoginHandler starts the authorization code flow
func (a *AuthentikAuth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	state := randomToken()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300,
	})
	http.Redirect(w, r, a.oauth2Config.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// CallbackHandler exchanges the code, loads the user profile and opens a session
func (a *AuthentikAuth) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookie)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing state cookie")
		return
	}
	if r.URL.Query().Get("state") != cookie.Value {
		writeError(w, http.StatusBadRequest, "invalid state parameter")
		return
	}

	token, err := a.oauth2Config.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		logger.Warn("Authentik token exchange failed", "error", err)
		writeError(w, http.StatusBadGateway, "failed to exchange token")
		return
	}

	user, err := a.userInfo(r.Context(), token)
	if err != nil {
		logger.Warn("Authentik userinfo failed", "error", err)
		writeError(w, http.StatusBadGateway, "failed to get user info")
		return
	}

	expires := token.Expiry
	if expires.IsZero() {
		expires = time.Now().Add(8 * time.Hour)
	}
	session := a.sessions.create(user, token, expires)
	setSessionCookie(w, session, true)
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})

	logger.Info("User logged in", "user", user.Username, "admin", IsAdmin(user))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// LogoutHandler ends the local session and the Authentik one
func (a *AuthentikAuth) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	a.sessions.logout(w, r)
	logoutURL := fmt.Sprintf("%s/application/o/%s/end-session/", a.config.BaseURL, a.config.Application)
	http.Redirect(w, r, logoutURL, http.StatusSeeOther)
}

// Middleware rejects requests without a live session
func (a *AuthentikAuth) Middleware(next http.Handler) http.Handler {
	return a.sessions.middleware(next)
}

func (a *AuthentikAuth) userInfo(ctx context.Context, token *oauth2.Token) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.config.BaseURL+"/application/o/userinfo/", nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.oauth2Config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("userinfo: %s - %s", resp.Status, string(body))
	}

	var info struct {
		Sub               string   `json:"sub"`
		Email             string   `json:"email"`
		Name              string   `json:"name"`
		PreferredUsername string   `json:"preferred_username"`
		Groups            []string `json:"groups"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}

	return &User{
		ID:       info.Sub,
		Email:    info.Email,
		Name:     info.Name,
		Username: info.PreferredUsername,
		Groups:   info.Groups,
	}, nil
}
