package main

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/desertthunder/reload/internal/identity"
	"github.com/desertthunder/reload/internal/server"
	"github.com/desertthunder/reload/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const authTimeout = 2 * time.Minute

// AuthRegister creates a password account in the local directory.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	dir, closeDB, err := r.openDirectory()
	if err != nil {
		return err
	}
	defer closeDB()

	p, err := dir.Register(ctx, cmd.String("email"), cmd.String("password"), cmd.String("name"))
	if err != nil {
		return err
	}

	user := identity.NormalizeUser(*p)
	r.logger.Info("account registered", "id", user.ID)
	return r.writePlain("✓ Registered %s <%s>\n", user.Name, user.Email)
}

// AuthLogin signs in with email and password and prints the issued session token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	dir, closeDB, err := r.openDirectory()
	if err != nil {
		return err
	}
	defer closeDB()

	client := identity.NewClient(dir)
	p, err := client.SignIn(ctx, cmd.String("email"), cmd.String("password"))
	if err != nil {
		return err
	}

	return r.printSession(client, p)
}

// AuthGoogle performs the federated sign-in flow.
//
// Starts a local HTTP server on the redirect URI, opens the browser for consent, and exchanges the code for a session.
func (r *Runner) AuthGoogle(ctx context.Context, cmd *cli.Command) error {
	dir, closeDB, err := r.openDirectory()
	if err != nil {
		return err
	}
	defer closeDB()

	if !dir.FederatedEnabled() {
		return fmt.Errorf("%w: Google client_id and client_secret must be set in %s", shared.ErrMissingCredentials, r.configPath)
	}

	token, err := r.doOAuth(ctx, dir)
	if err != nil {
		return err
	}

	client := identity.NewClient(dir)
	p, err := client.SignInWithFederatedProvider(ctx, token)
	if err != nil {
		return err
	}

	return r.printSession(client, p)
}

// doOAuth serves the callback route until the browser returns with a code or the flow times out.
func (r *Runner) doOAuth(ctx context.Context, dir *identity.Directory) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL, err := dir.AuthCodeURL(state)
	if err != nil {
		return nil, err
	}

	oauthHandler := server.NewOAuthHandler(dir, state)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	addr := callbackAddr(r.config)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	srv := server.New(addr, router, shared.WithLogger(r.logger, "component", "oauth"))
	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth server at %v", addr)
		serverErrors <- srv.Serve(ctx, ln)
	}()

	r.writePlain("→ Opening browser for Google sign-in...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	var result server.OAuthResult
	select {
	case result = <-oauthHandler.Result():
	case err := <-serverErrors:
		if err == nil {
			err = ctx.Err()
		}
		return nil, fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	cancel()
	<-serverErrors

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}
	return result.Token, nil
}

// callbackAddr returns the host:port of the configured redirect URI, else the web server address.
func callbackAddr(cfg *shared.Config) string {
	u, err := url.Parse(cfg.Credentials.Google.RedirectURI)
	if err != nil || u.Host == "" {
		return cfg.Server.Addr()
	}
	if u.Port() == "" {
		return net.JoinHostPort(u.Hostname(), "80")
	}
	return u.Host
}

func (r *Runner) printSession(client *identity.Client, p *identity.Principal) error {
	user := identity.NormalizeUser(*p)
	token, expires := client.Token()

	r.writePlain("✓ Signed in as %s <%s>\n", user.Name, user.Email)
	r.writePlain("Expires: %s\n", expires.Format(time.RFC1123))
	return r.writePlain("Token: %s\n", token)
}

// AuthUsers lists accounts in the directory.
func (r *Runner) AuthUsers(ctx context.Context, cmd *cli.Command) error {
	dir, closeDB, err := r.openDirectory()
	if err != nil {
		return err
	}
	defer closeDB()

	accounts, err := dir.Users(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		type account struct {
			ID          string    `json:"id"`
			Email       string    `json:"email"`
			DisplayName string    `json:"display_name"`
			Provider    string    `json:"provider"`
			CreatedAt   time.Time `json:"created_at"`
		}
		out := make([]account, 0, len(accounts))
		for _, a := range accounts {
			out = append(out, account{ID: a.ID, Email: a.Email, DisplayName: a.DisplayName, Provider: a.Provider, CreatedAt: a.CreatedAt})
		}
		return r.writeJSON(out, true)
	}

	if len(accounts) == 0 {
		return r.writePlain("No accounts\n")
	}

	r.writePlainHeader(fmt.Sprintf("Accounts (%d)", len(accounts)))
	for _, a := range accounts {
		r.writePlain("%-36s %-32s %-10s %s\n", a.ID, a.Email, a.Provider, a.CreatedAt.Format(time.DateOnly))
	}
	return nil
}

// AuthPrune deletes ended sessions.
func (r *Runner) AuthPrune(ctx context.Context, cmd *cli.Command) error {
	dir, closeDB, err := r.openDirectory()
	if err != nil {
		return err
	}
	defer closeDB()

	n, err := dir.Prune(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("pruned sessions", "count", n)
	return r.writePlain("✓ Removed %d sessions\n", n)
}
