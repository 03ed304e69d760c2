package web

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/reload/internal/identity"
	"github.com/desertthunder/reload/internal/models"
	"github.com/desertthunder/reload/internal/server"
	"github.com/desertthunder/reload/internal/shared"
)

const (
	flashCookie = "reload_flash"
	stateCookie = "reload_oauth_state"
)

type principalKey struct{}

// PrincipalFrom returns the signed-in principal stored by [App.authenticate].
func PrincipalFrom(ctx context.Context) (*identity.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*identity.Principal)
	return p, ok && p != nil
}

// UserFrom returns the normalized user for the request, if signed in.
func UserFrom(ctx context.Context) (*models.User, bool) {
	p, ok := PrincipalFrom(ctx)
	if !ok {
		return nil, false
	}
	u := identity.NormalizeUser(*p)
	return &u, true
}

func (a *App) cookieName() string {
	if a.cfg.Auth.CookieName == "" {
		return "reload_session"
	}
	return a.cfg.Auth.CookieName
}

// authenticate resolves the session cookie. Invalid or revoked tokens are cleared.
func (a *App) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(a.cookieName())
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		p, err := a.dir.Verify(r.Context(), c.Value)
		if err != nil {
			a.logger.Debug("discarding session cookie", "error", err)
			a.clearCookie(w, a.cookieName())
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, p)))
	})
}

// requireAuth redirects anonymous visitors to the login page, remembering where they were going.
func (a *App) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFrom(r.Context()); !ok {
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/servers"
	}
	return next
}

func (a *App) setSessionCookie(w http.ResponseWriter, r *http.Request, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName(),
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *App) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
}

// setFlash stores notices for the next rendered page.
func (a *App) setFlash(w http.ResponseWriter, notices []shared.Notice) {
	if len(notices) == 0 {
		return
	}
	data, err := json.Marshal(notices)
	if err != nil {
		a.logger.Error("failed to encode flash", "error", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and clears the flash cookie.
func (a *App) popFlash(w http.ResponseWriter, r *http.Request) []shared.Notice {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	a.clearCookie(w, flashCookie)

	data, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var notices []shared.Notice
	if err := json.Unmarshal(data, &notices); err != nil {
		return nil
	}
	return notices
}

// newSession returns a per-request identity session over a fresh directory client.
func (a *App) newSession() (*identity.Session, *identity.Client, *shared.NoticeLog) {
	client := identity.NewClient(a.dir)
	notices := &shared.NoticeLog{}
	return identity.NewSession(client, notices, a.logger), client, notices
}

func (a *App) finishSignIn(w http.ResponseWriter, r *http.Request, client *identity.Client, notices *shared.NoticeLog, next string) {
	token, expires := client.Token()
	a.setSessionCookie(w, r, token, expires)
	a.setFlash(w, notices.Drain())
	http.Redirect(w, r, safeNext(next), http.StatusSeeOther)
}

func (a *App) failSignIn(w http.ResponseWriter, r *http.Request, notices *shared.NoticeLog, next string) {
	a.setFlash(w, notices.Drain())
	target := "/login"
	if next != "" {
		target += "?next=" + url.QueryEscape(next)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (a *App) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	session, client, notices := a.newSession()
	defer session.Close()

	next := r.PostForm.Get("next")
	if err := session.Login(r.Context(), r.PostForm.Get("email"), r.PostForm.Get("password")); err != nil {
		a.logger.Info("sign-in failed", "client", server.ClientIP(r), "error", err)
		a.failSignIn(w, r, notices, next)
		return
	}
	a.finishSignIn(w, r, client, notices, next)
}

func (a *App) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	session, client, notices := a.newSession()
	defer session.Close()

	f := r.PostForm
	if err := session.Register(r.Context(), f.Get("email"), f.Get("password"), f.Get("name")); err != nil {
		a.logger.Info("registration failed", "error", err)
		a.failSignIn(w, r, notices, f.Get("next"))
		return
	}
	a.finishSignIn(w, r, client, notices, f.Get("next"))
}

func (a *App) logout(w http.ResponseWriter, r *http.Request) {
	session, client, notices := a.newSession()
	defer session.Close()

	if c, err := r.Cookie(a.cookieName()); err == nil && c.Value != "" {
		if _, err := client.Resume(r.Context(), c.Value); err == nil {
			if err := session.Logout(r.Context()); err != nil {
				a.logger.Warn("sign-out failed", "error", err)
			}
		}
	}

	a.clearCookie(w, a.cookieName())
	a.setFlash(w, notices.Drain())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) federated(w http.ResponseWriter, r *http.Request) {
	if !a.dir.FederatedEnabled() {
		a.setFlash(w, []shared.Notice{{Kind: shared.NoticeError, Message: "Google sign-in is not configured."}})
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	state, err := shared.GenerateState()
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	authURL, err := a.dir.AuthCodeURL(state)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, authURL, http.StatusFound)
}

func (a *App) federatedCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c, err := r.Cookie(stateCookie)
	if err != nil || c.Value == "" || q.Get("state") != c.Value {
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/auth", MaxAge: -1, HttpOnly: true})

	session, client, notices := a.newSession()
	defer session.Close()

	code := q.Get("code")
	if code == "" {
		notices.Notify(shared.Notice{Kind: shared.NoticeError, Message: "Google sign-in failed."})
		a.logger.Info("federated sign-in refused", "error", q.Get("error"))
		a.failSignIn(w, r, notices, "")
		return
	}

	token, err := a.dir.Exchange(r.Context(), code)
	if err == nil {
		err = session.LoginWithFederated(r.Context(), token)
	} else {
		notices.Notify(shared.Notice{Kind: shared.NoticeError, Message: "Google sign-in failed."})
	}
	if err != nil {
		a.logger.Warn("federated sign-in failed", "error", err)
		a.failSignIn(w, r, notices, "")
		return
	}
	a.finishSignIn(w, r, client, notices, "")
}

// statusFor maps sentinel errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrInvalidTrackURL),
		errors.Is(err, shared.ErrMissingArgument):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrTrackNotFound), errors.Is(err, shared.ErrServerNotFound), errors.Is(err, shared.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
