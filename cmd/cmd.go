// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// serveCommand runs the web application.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to listen on (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides server.port)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the site in a browser once listening",
			},
		},
		Action: r.Serve,
	}
}

// radioCommand launches the terminal radio.
func radioCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "radio",
		Aliases: []string{"tui", "ui"},
		Usage:   "Launch the interactive terminal radio",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log",
				Usage: "Log file (the terminal is used for rendering)",
				Value: "./tmp/reload-radio.log",
			},
		},
		Action: r.Radio,
	}
}

// rankCommand prints or exports the leaderboard.
func rankCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "rank",
		Aliases: []string{"ranked", "leaderboard"},
		Usage:   "Show the community leaderboard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, markdown, csv or json",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to a file instead of stdout",
			},
			&cli.IntFlag{
				Name:  "page",
				Usage: "Page to show (0 shows every entry)",
			},
		},
		Action: r.Rank,
	}
}

// catalogCommand searches the downloadable content catalog and the server directory.
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Browse the content catalog",
		Commands: []*cli.Command{
			{
				Name:  "search",
				Usage: "Search catalog items by name, description or tag",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "category",
						Usage: "Item category (all, game, discord, gameserver)",
					},
					&cli.StringFlag{
						Name:  "subcategory",
						Usage: "Item subcategory",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CatalogSearch,
			},
			{
				Name:  "servers",
				Usage: "Search the community server directory",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "category",
						Usage: "Server category (all, gaming, community, advertising, other)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CatalogServers,
			},
		},
	}
}

// shopCommand lists promotion products.
func shopCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "shop",
		Usage: "List server promotion products",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "tier",
				Usage: "Show one product (basic, premium or ultimate)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Shop,
	}
}

// authCommand handles account operations against the local identity directory.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage accounts and sessions",
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Create an email and password account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "Account email", Required: true},
					&cli.StringFlag{Name: "password", Usage: "Account password", Required: true},
					&cli.StringFlag{Name: "name", Usage: "Display name"},
				},
				Action: r.AuthRegister,
			},
			{
				Name:  "login",
				Usage: "Sign in and print a session token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "Account email", Required: true},
					&cli.StringFlag{Name: "password", Usage: "Account password", Required: true},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "google",
				Usage:  "Sign in with Google through the browser",
				Action: r.AuthGoogle,
			},
			{
				Name:  "users",
				Usage: "List registered accounts",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.AuthUsers,
			},
			{
				Name:   "prune",
				Usage:  "Delete expired and revoked sessions",
				Action: r.AuthPrune,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config file from the bundled template",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Revert the most recent database migration",
				Action: r.SetupRollback,
			},
		},
	}
}
