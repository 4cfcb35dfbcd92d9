// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for the database and config file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize the session database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "status",
						Usage: "Only report how many migrations are applied",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write a config.toml from the built-in template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// authCommand handles Google sign-in and the stored session
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with Google",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "button",
						Usage: "Skip the saved-account prompt and sign in through the browser",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and forget the saved Google account",
				Action: r.AuthLogout,
			},
			{
				Name:  "status",
				Usage: "Check the backend and the stored session",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
			{
				Name:  "import",
				Usage: "Store a session token copied from the browser as a cURL command",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
				},
				Action: r.AuthImport,
			},
		},
	}
}

// recommendCommand runs the wizard without the terminal UI
func recommendCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "recommend",
		Aliases: []string{"rec"},
		Usage:   "Get one movie recommendation",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "genre",
				Aliases: []string{"g"},
				Usage:   "Genre id (repeatable), e.g. action, scifi",
			},
			&cli.StringSliceFlag{
				Name:    "mood",
				Aliases: []string{"m"},
				Usage:   "Mood id (repeatable), e.g. feel-good",
			},
			&cli.StringFlag{
				Name:     "context",
				Usage:    "Who is watching: alone, date, family, friends, ...",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:  "no",
				Usage: "Deal-breaker (repeatable), e.g. \"No Horror\" or \"Horror Movies\"",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Recommend,
	}
}

// moviesCommand handles catalog lookups
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "movies",
		Usage: "Browse the movie catalog",
		Commands: []*cli.Command{
			{
				Name:  "popular",
				Usage: "List popular movies for the given genres",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "genre",
						Aliases: []string{"g"},
						Usage:   "Genre id (repeatable); all genres when omitted",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.MoviesPopular,
			},
			{
				Name:  "gallery",
				Usage: "List a page of the movie gallery",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "page",
						Usage: "Page number",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Movies per page",
						Value: 50,
					},
					&cli.StringFlag{
						Name:    "filter",
						Aliases: []string{"f"},
						Usage:   "Only show movies whose title or genre matches",
					},
					&cli.BoolFlag{
						Name:  "saved",
						Usage: "Mark movies on your watchlist",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.MoviesGallery,
			},
			{
				Name:  "show",
				Usage: "Show one movie by TMDB id",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.MoviesShow,
			},
			{
				Name:  "search",
				Usage: "Search the catalog by title",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.MoviesSearch,
			},
		},
	}
}

// watchlistCommand manages saved movies
func watchlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "watchlist",
		Aliases: []string{"wl"},
		Usage:   "Manage your watchlist",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved movies",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.WatchlistList,
			},
			{
				Name:  "add",
				Usage: "Save a movie by TMDB id",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.WatchlistAdd,
			},
			{
				Name:  "remove",
				Usage: "Remove a saved movie by TMDB id",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.WatchlistRemove,
			},
			{
				Name:      "check",
				Usage:     "Report whether each TMDB id is saved",
				ArgsUsage: "<id>...",
				Action:    r.WatchlistCheck,
			},
			{
				Name:  "export",
				Usage: "Export the watchlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "json, csv, markdown or txt",
						Value:   "markdown",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file, or directory for markdown with posters",
					},
					&cli.BoolFlag{
						Name:  "posters",
						Usage: "Download posters next to a markdown export",
					},
				},
				Action: r.WatchlistExport,
			},
		},
	}
}

// profileCommand summarizes the signed-in user's collections
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Show your profile",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show collection counts and stored preferences",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ProfileShow,
			},
			{
				Name:  "history",
				Usage: "Show recommendation history, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "json, csv, markdown or txt",
						Value:   "txt",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
				},
				Action: r.ProfileHistory,
			},
		},
	}
}

// ratedCommand manages the liked list when liked is set and the disliked list otherwise
func ratedCommand(r *Runner, name, usage string, liked bool) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Commands: []*cli.Command{
			{
				Name:  "remove",
				Usage: "Remove a rated movie by TMDB id",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.ratedRemove(liked),
			},
			{
				Name:  "move",
				Usage: "Move a rated movie to the opposite list",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.ratedMove(liked),
			},
		},
	}
}

func likedCommand(r *Runner) *cli.Command {
	return ratedCommand(r, "liked", "Manage liked movies", true)
}

func dislikedCommand(r *Runner) *cli.Command {
	return ratedCommand(r, "disliked", "Manage disliked movies", false)
}

// preferencesCommand handles the server copy of the wizard answers
func preferencesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "preferences",
		Aliases: []string{"prefs"},
		Usage:   "Show or clear stored preferences",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show stored preferences",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.PreferencesShow,
			},
			{
				Name:  "clear",
				Usage: "Clear one stored preference field",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "field"},
				},
				Action: r.PreferencesClear,
			},
		},
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the recommendation API",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for the interactive wizard.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive recommendation wizard",
		Action:  r.TUI,
	}
}
