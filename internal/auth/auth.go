package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc"
	"golang.org/x/oauth2"

	"serverless-workflow/backend/internal/config"
)

// Logger defines the logging interface compatible with the application logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// GuestUser is the identity attached to requests when auth is disabled
const GuestUser = "guest@localhost"

var ErrIncompleteAuth = errors.New("auth configuration is incomplete")

type ctxKey struct{}

// UserFromContext returns the email of the authenticated caller
func UserFromContext(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(ctxKey{}).(string)
	return user, ok && user != ""
}

// WithUser returns a context carrying the caller's email
func WithUser(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, ctxKey{}, email)
}

// Auth performs OpenID Connect authentication against the configured issuer.
// With auth disabled every request runs as GuestUser.
type Auth struct {
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
	apiVerifier  *oidc.IDTokenVerifier
	logger       Logger
	authBypass   bool
}

// New creates a new Auth object using values from the application
// configuration. When auth is enabled it contacts the issuer for discovery.
func New(ctx context.Context, cfg *config.Config, logger Logger) (*Auth, error) {
	if !cfg.Auth.Enable {
		return &Auth{logger: logger, authBypass: true}, nil
	}

	if cfg.Auth.Issuer == "" || cfg.Auth.ClientID == "" ||
		cfg.Auth.ClientSecret == "" || cfg.Auth.RedirectURL == "" {
		return nil, ErrIncompleteAuth
	}

	provider, err := oidc.NewProvider(ctx, cfg.Auth.Issuer)
	if err != nil {
		return nil, err
	}

	return &Auth{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.Auth.ClientID,
			ClientSecret: cfg.Auth.ClientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  cfg.Auth.RedirectURL,
			Scopes:       []string{ScopeOpenID, ScopeEmail},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.Auth.ClientID}),
		// access tokens carry the API audience, not the client id
		apiVerifier: provider.Verifier(&oidc.Config{SkipClientIDCheck: true}),
		logger:      logger,
	}, nil
}

// Enabled reports whether requests are authenticated
func (a *Auth) Enabled() bool {
	return !a.authBypass
}

// LoginHandler redirects the user to the issuer. A random state value is
// stored in a cookie to mitigate CSRF.
func (a *Auth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if a.authBypass {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	state, err := generateState()
	if err != nil {
		http.Error(w, "failed to generate state", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "oauthstate",
		Value:    state,
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, a.oauth2Config.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// CallbackHandler verifies the state, exchanges the code and stores the raw
// ID token in a session cookie.
func (a *Auth) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	if a.authBypass {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	cookie, err := r.Cookie("oauthstate")
	if err != nil || r.URL.Query().Get("state") != cookie.Value {
		http.Error(w, "invalid state", http.StatusBadRequest)
		return
	}

	token, err := a.oauth2Config.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		a.logger.Error("token exchange failed", "error", err)
		http.Error(w, "token exchange failed", http.StatusInternalServerError)
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		http.Error(w, "no id_token in token response", http.StatusInternalServerError)
		return
	}

	if _, err := a.verifier.Verify(r.Context(), rawIDToken); err != nil {
		http.Error(w, "failed to verify id token", http.StatusUnauthorized)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "id_token",
		Value:    rawIDToken,
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RequireAuth is middleware that accepts a bearer access token or the session
// cookie and puts the caller's email in the request context. Browsers without
// a session are sent to the login page.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.authBypass {
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), GuestUser)))
			return
		}

		var token *oidc.IDToken
		var err error

		if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			token, err = a.apiVerifier.Verify(r.Context(), strings.TrimPrefix(authHeader, "Bearer "))
		} else {
			cookie, cookieErr := r.Cookie("id_token")
			if cookieErr != nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			token, err = a.verifier.Verify(r.Context(), cookie.Value)
		}
		if err != nil {
			http.Error(w, "invalid token: "+err.Error(), http.StatusUnauthorized)
			return
		}

		var claims struct {
			Email   string `json:"email"`
			Subject string `json:"sub"`
		}
		if err := token.Claims(&claims); err != nil {
			http.Error(w, "failed to parse token claims", http.StatusUnauthorized)
			return
		}

		user := claims.Email
		if user == "" {
			user = claims.Subject
		}
		if user == "" {
			http.Error(w, "token has no subject", http.StatusUnauthorized)
			return
		}

		a.logger.Debug("request authenticated", "user", user)
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// LogoutHandler clears the session cookie and redirects to the home page.
func (a *Auth) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:   "id_token",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
