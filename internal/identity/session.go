package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/reload/internal/models"
	"github.com/desertthunder/reload/internal/shared"
)

// Session is the authentication context of one client: who is signed in, whether that is
// known yet, and the sign-in actions. Every action reports its outcome as a [shared.Notice];
// a failed action leaves the signed-in user unchanged and returns the error.
type Session struct {
	provider    Provider
	notifier    shared.Notifier
	logger      *log.Logger
	unsubscribe func()

	mu      sync.RWMutex
	user    *models.User
	loading bool
}

// NewSession subscribes to provider state. The session is loading until the provider reports.
func NewSession(provider Provider, notifier shared.Notifier, logger *log.Logger) *Session {
	if notifier == nil {
		notifier = shared.DiscardNotifier
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	s := &Session{
		provider: provider,
		notifier: notifier,
		logger:   shared.WithLogger(logger, "component", "session"),
		loading:  true,
	}
	s.unsubscribe = provider.OnAuthStateChanged(s.onAuthStateChanged)
	return s
}

func (s *Session) onAuthStateChanged(p *Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p == nil {
		s.user = nil
	} else {
		u := NormalizeUser(*p)
		s.user = &u
	}
	s.loading = false
}

// User returns the signed-in user.
func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

func (s *Session) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Login signs in with an email and password.
func (s *Session) Login(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		s.notify(shared.NoticeError, "Email and password are required.")
		return shared.ErrMissingArgument
	}

	p, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		s.logger.Warn("sign in failed", "error", err)
		s.notify(shared.NoticeError, "Sign-in failed. Check your credentials.")
		return err
	}

	s.setUser(p)
	s.notify(shared.NoticeSuccess, "Signed in successfully!")
	return nil
}

// LoginWithFederated signs in with a token from the federated provider.
func (s *Session) LoginWithFederated(ctx context.Context, token *oauth2.Token) error {
	p, err := s.provider.SignInWithFederatedProvider(ctx, token)
	if err != nil {
		s.logger.Warn("federated sign in failed", "error", err)
		s.notify(shared.NoticeError, "Google sign-in failed.")
		return err
	}

	s.setUser(p)
	s.notify(shared.NoticeSuccess, "Signed in with Google!")
	return nil
}

// Register creates an account and signs it in.
func (s *Session) Register(ctx context.Context, email, password, name string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		s.notify(shared.NoticeError, "Email and password are required.")
		return shared.ErrMissingArgument
	}

	p, err := s.provider.SignUp(ctx, email, password, name)
	if err != nil {
		s.logger.Warn("registration failed", "error", err)
		msg := "Could not create the account."
		switch {
		case errors.Is(err, shared.ErrEmailTaken):
			msg = "An account already exists for this email."
		case errors.Is(err, shared.ErrInvalidInput):
			msg = fmt.Sprintf("Enter a valid email and a password of at least %d characters.", MinPasswordLength)
		}
		s.notify(shared.NoticeError, msg)
		return err
	}

	s.setUser(p)
	s.notify(shared.NoticeSuccess, "Account created!")
	return nil
}

// Logout signs out.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.provider.SignOut(ctx); err != nil {
		s.logger.Warn("sign out failed", "error", err)
		s.notify(shared.NoticeError, "Sign-out failed.")
		return err
	}

	s.setUser(nil)
	s.notify(shared.NoticeSuccess, "Signed out.")
	return nil
}

// Close stops following provider state.
func (s *Session) Close() {
	s.unsubscribe()
}

func (s *Session) setUser(p *Principal) {
	s.onAuthStateChanged(p)
}

func (s *Session) notify(kind shared.NoticeKind, msg string) {
	s.notifier.Notify(shared.Notice{Kind: kind, Message: msg})
}
