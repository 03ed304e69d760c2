package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/desertthunder/reload/internal/models"
	"github.com/desertthunder/reload/internal/shared"
)

const GoogleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// GoogleOAuthConfig returns the authorization code flow configuration for Google sign-in.
func GoogleOAuthConfig(g shared.GoogleConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     g.ClientID,
		ClientSecret: g.ClientSecret,
		RedirectURL:  g.RedirectURI,
		Endpoint:     endpoints.Google,
		Scopes:       []string{"openid", "email", "profile"},
	}
}

// userInfo is the OpenID Connect userinfo response.
type userInfo struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// FederatedEnabled reports whether federated sign-in is configured.
func (d *Directory) FederatedEnabled() bool {
	return d.oauth != nil
}

// AuthCodeURL returns the consent page URL for a state token.
func (d *Directory) AuthCodeURL(state string) (string, error) {
	if d.oauth == nil {
		return "", fmt.Errorf("%w: google client is not configured", shared.ErrMissingCredentials)
	}
	return d.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// Exchange trades an authorization code for a token.
func (d *Directory) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if d.oauth == nil {
		return nil, fmt.Errorf("%w: google client is not configured", shared.ErrMissingCredentials)
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, d.httpClient)
	token, err := d.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange failed: %w", shared.ErrAuthFailed, err)
	}
	return token, nil
}

// Federate resolves a provider token to a directory account, creating it on first sign-in.
//
// Only verified provider emails are accepted. Existing accounts with the same email are linked;
// their empty profile fields are filled in.
func (d *Directory) Federate(ctx context.Context, token *oauth2.Token) (*Principal, error) {
	if d.oauth == nil {
		return nil, fmt.Errorf("%w: google client is not configured", shared.ErrMissingCredentials)
	}
	if token == nil || !token.Valid() {
		return nil, fmt.Errorf("%w: missing or expired provider token", shared.ErrAuthFailed)
	}

	info, err := d.fetchUserInfo(ctx, token)
	if err != nil {
		return nil, err
	}
	if info.Email == "" {
		return nil, fmt.Errorf("%w: provider returned no email", shared.ErrAuthFailed)
	}
	if !info.EmailVerified {
		return nil, fmt.Errorf("%w: provider email %s is not verified", shared.ErrAuthFailed, info.Email)
	}

	account, err := d.users.GetByEmail(ctx, info.Email)
	switch {
	case errors.Is(err, shared.ErrUserNotFound):
		account = &models.Account{
			Email:       info.Email,
			DisplayName: info.Name,
			PhotoURL:    info.Picture,
			Provider:    models.ProviderGoogle,
		}
		if err := d.users.Create(ctx, account); err != nil {
			return nil, err
		}
		d.logger.Info("federated account created", "user", account.ID)
		d.welcome(ctx, account)
	case err != nil:
		return nil, fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	default:
		changed := false
		if account.DisplayName == "" && info.Name != "" {
			account.DisplayName = info.Name
			changed = true
		}
		if account.PhotoURL == "" && info.Picture != "" {
			account.PhotoURL = info.Picture
			changed = true
		}
		if changed {
			if err := d.users.Update(ctx, account); err != nil {
				return nil, err
			}
		}
	}

	return principalOf(account), nil
}

func (d *Directory) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*userInfo, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, d.httpClient)
	client := d.oauth.Client(ctx, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: userinfo request failed: %w", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo returned status %d", shared.ErrAuthFailed, resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	info.Email = strings.TrimSpace(info.Email)

	return &info, nil
}
