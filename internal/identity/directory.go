package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"github.com/desertthunder/reload/internal/models"
	"github.com/desertthunder/reload/internal/repositories"
	"github.com/desertthunder/reload/internal/shared"
)

const (
	MinPasswordLength = 6
	tokenIssuer       = "reload"
)

// DirectoryOptions configures a [Directory].
type DirectoryOptions struct {
	Secret      []byte
	TTL         time.Duration
	HashCost    int            // bcrypt cost; zero means [bcrypt.DefaultCost]
	OAuth       *oauth2.Config // nil disables federated sign-in
	UserInfoURL string         // defaults to [GoogleUserInfoURL]
	HTTPClient  *http.Client   // base client for userinfo requests
	Logger      *log.Logger
}

// OptionsFromConfig builds [DirectoryOptions] from the application config.
func OptionsFromConfig(cfg *shared.Config, logger *log.Logger) DirectoryOptions {
	opts := DirectoryOptions{
		Secret: []byte(cfg.Auth.JWTSecret),
		TTL:    cfg.Auth.TokenTTL(),
		Logger: logger,
	}
	if cfg.Credentials.Google.Configured() {
		opts.OAuth = GoogleOAuthConfig(cfg.Credentials.Google)
	}
	return opts
}

// Directory is the local identity store: password accounts, federated accounts, session tokens
// and each account's notification inbox.
type Directory struct {
	users       *repositories.UserRepository
	sessions    *repositories.SessionRepository
	inbox       *repositories.NotificationRepository
	secret      []byte
	ttl         time.Duration
	hashCost    int
	oauth       *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
	logger      *log.Logger
}

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// NewDirectory creates a directory over a migrated database.
func NewDirectory(db *sql.DB, opts DirectoryOptions) (*Directory, error) {
	if len(opts.Secret) == 0 {
		return nil, fmt.Errorf("%w: auth.jwt_secret is empty", shared.ErrMissingCredentials)
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	if opts.UserInfoURL == "" {
		opts.UserInfoURL = GoogleUserInfoURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Directory{
		users:       repositories.NewUserRepository(db),
		sessions:    repositories.NewSessionRepository(db),
		inbox:       repositories.NewNotificationRepository(db),
		secret:      opts.Secret,
		ttl:         opts.TTL,
		hashCost:    opts.HashCost,
		oauth:       opts.OAuth,
		userInfoURL: opts.UserInfoURL,
		httpClient:  opts.HTTPClient,
		logger:      shared.WithLogger(opts.Logger, "component", "identity"),
	}, nil
}

// Register creates a password account.
func (d *Directory) Register(ctx context.Context, email, password, displayName string) (*Principal, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", shared.ErrMissingArgument)
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", shared.ErrInvalidInput, MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.hashCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	account := &models.Account{
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: string(hash),
		Provider:     models.ProviderPassword,
	}
	if err := d.users.Create(ctx, account); err != nil {
		return nil, err
	}

	d.logger.Info("account registered", "user", account.ID)
	d.welcome(ctx, account)
	return principalOf(account), nil
}

// Authenticate checks an email and password pair.
//
// Unknown emails, federated-only accounts and wrong passwords all return [shared.ErrInvalidCredentials].
func (d *Directory) Authenticate(ctx context.Context, email, password string) (*Principal, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", shared.ErrMissingArgument)
	}

	account, err := d.users.GetByEmail(ctx, email)
	if errors.Is(err, shared.ErrUserNotFound) {
		return nil, shared.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	}
	if account.PasswordHash == "" {
		return nil, shared.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		d.logger.Debug("password mismatch", "user", account.ID)
		return nil, shared.ErrInvalidCredentials
	}

	return principalOf(account), nil
}

// Issue records a session for p and returns its signed token and expiry.
func (d *Directory) Issue(ctx context.Context, p *Principal) (string, time.Time, error) {
	session, err := d.sessions.Create(ctx, p.UID, d.ttl)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	}

	claims := tokenClaims{
		Email: p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   p.UID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(d.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, session.ExpiresAt, nil
}

// Verify resolves a session token to its principal.
//
// Expired tokens return [shared.ErrTokenExpired]; malformed, revoked or orphaned tokens return [shared.ErrNotAuthenticated].
func (d *Directory) Verify(ctx context.Context, token string) (*Principal, error) {
	claims, err := d.parse(token)
	if err != nil {
		return nil, err
	}

	session, err := d.sessions.Get(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if session.RevokedAt != nil || session.UserID != claims.Subject {
		return nil, fmt.Errorf("%w: session revoked", shared.ErrNotAuthenticated)
	}
	if !session.Active(time.Now()) {
		return nil, shared.ErrTokenExpired
	}

	account, err := d.users.Get(ctx, claims.Subject)
	if errors.Is(err, shared.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: %w", shared.ErrNotAuthenticated, err)
	}
	if err != nil {
		return nil, err
	}

	return principalOf(account), nil
}

// Revoke invalidates a session token. Tokens that do not parse are ignored.
func (d *Directory) Revoke(ctx context.Context, token string) error {
	claims, err := d.parse(token)
	if errors.Is(err, shared.ErrTokenExpired) || errors.Is(err, shared.ErrNotAuthenticated) {
		return nil
	}
	if err != nil {
		return err
	}
	return d.sessions.Revoke(ctx, claims.ID)
}

// Users lists the directory's accounts.
func (d *Directory) Users(ctx context.Context) ([]*models.Account, error) {
	return d.users.List(ctx)
}

// Prune deletes sessions that ended before now.
func (d *Directory) Prune(ctx context.Context) (int64, error) {
	return d.sessions.DeleteExpired(ctx, time.Now())
}

func (d *Directory) parse(token string) (*tokenClaims, error) {
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}

	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return d.secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, shared.ErrTokenExpired
	case err != nil:
		return nil, fmt.Errorf("%w: %w", shared.ErrNotAuthenticated, err)
	case claims.ID == "" || claims.Subject == "":
		return nil, fmt.Errorf("%w: token without session", shared.ErrNotAuthenticated)
	}

	return &claims, nil
}
