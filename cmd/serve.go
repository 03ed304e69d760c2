package main

import (
	"context"
	"fmt"
	"net"

	"github.com/desertthunder/reload/internal/identity"
	"github.com/desertthunder/reload/internal/server"
	"github.com/desertthunder/reload/internal/shared"
	"github.com/desertthunder/reload/internal/web"
	"github.com/urfave/cli/v3"
)

const defaultSecret = "change-me"

// Serve runs the web application until ctx is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if host := cmd.String("host"); host != "" {
		r.config.Server.Host = host
	}
	if port := cmd.Int("port"); port != 0 {
		r.config.Server.Port = port
	}

	if r.config.Auth.JWTSecret == defaultSecret {
		r.logger.Warnf("auth.jwt_secret is the template value; set %s before deploying", shared.EnvJWTSecret)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	dir, err := identity.NewDirectory(db, identity.OptionsFromConfig(r.config, shared.WithLogger(r.logger, "component", "identity")))
	if err != nil {
		return fmt.Errorf("failed to create identity directory: %w", err)
	}
	if !dir.FederatedEnabled() {
		r.logger.Info("google sign-in disabled: credentials.google is not configured")
	}

	cat, err := r.loadCatalog()
	if err != nil {
		return err
	}

	app, err := web.New(web.Options{
		Config:    r.config,
		Directory: dir,
		Catalog:   cat,
		Logger:    r.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create web app: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go app.Run(ctx)

	srv := server.New(r.config.Server.Addr(), app.Handler(), shared.WithLogger(r.logger, "component", "http"))
	srv.RegisterOnShutdown(cancel)

	ln, err := net.Listen("tcp", r.config.Server.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", r.config.Server.Addr(), err)
	}

	url := "http://" + ln.Addr().String()
	r.writePlain("→ Reload is running at %s\n", url)

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warnf("failed to open browser automatically %v", err)
		}
	}

	return srv.Serve(ctx, ln)
}
