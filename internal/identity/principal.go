package identity

import (
	"context"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/desertthunder/reload/internal/models"
)

const (
	// FallbackName is shown for principals without a display name.
	FallbackName = "Member"

	avatarBaseURL = "https://api.dicebear.com/7.x/initials/svg?seed="
)

// Principal is an authenticated identity as reported by a [Provider].
type Principal struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
	Provider    string
}

// Provider is the identity boundary consumed by [Session].
//
// Listeners registered with OnAuthStateChanged receive the current principal immediately and then
// every change, in order; nil means signed out. They must not call back into the provider.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Principal, error)
	SignUp(ctx context.Context, email, password, displayName string) (*Principal, error)
	SignOut(ctx context.Context) error
	SignInWithFederatedProvider(ctx context.Context, token *oauth2.Token) (*Principal, error)
	OnAuthStateChanged(cb func(*Principal)) (unsubscribe func())
}

// NormalizeUser maps a principal to the user shown by pages.
func NormalizeUser(p Principal) models.User {
	name := strings.TrimSpace(p.DisplayName)
	if name == "" {
		name = FallbackName
	}

	avatar := p.PhotoURL
	if avatar == "" {
		avatar = AvatarURL(name)
	}

	return models.User{ID: p.UID, Name: name, Email: p.Email, AvatarURL: avatar}
}

// AvatarURL returns the generated initials avatar for a name.
func AvatarURL(name string) string {
	return avatarBaseURL + url.QueryEscape(name)
}

func principalOf(a *models.Account) *Principal {
	return &Principal{
		UID:         a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		PhotoURL:    a.PhotoURL,
		Provider:    a.Provider,
	}
}
