// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// lookupCommand resolves free-text queries to Spotify previews
func lookupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "lookup",
		Aliases:   []string{"preview"},
		Usage:     "Resolve a song query to its Spotify preview URLs (prints one JSON line)",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "cache",
				Usage: "Read and fill the local lookup cache",
			},
		},
		Action: r.Lookup,
		Commands: []*cli.Command{
			{
				Name:  "batch",
				Usage: "Resolve one query per line of a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "File with one query per line",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: jsonl or csv",
						Value: "jsonl",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write results to a file instead of stdout",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent lookups (max 10)",
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Lookups per second",
					},
					&cli.BoolFlag{
						Name:  "cache",
						Usage: "Read and fill the local lookup cache",
					},
				},
				Action: r.LookupBatch,
			},
		},
	}
}

// songsCommand prints a post's songs without the interactive view
func songsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "songs",
		Usage:     "Print the songs of a post",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "post-id",
			},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "offset",
				Usage: "Number of songs to skip",
			},
			&cli.BoolFlag{
				Name:    "all",
				Aliases: []string{"a"},
				Usage:   "Keep loading pages until the list ends",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: json, csv, markdown or txt",
				Value: "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output path (a directory for markdown)",
			},
			&cli.BoolFlag{
				Name:  "fill-previews",
				Usage: "Look up previews for songs that have none",
			},
			&cli.BoolFlag{
				Name:  "cache",
				Usage: "Use the local lookup cache with --fill-previews",
			},
		},
		Action: r.Songs,
	}
}

// browseCommand launches the interactive song list for a post
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "browse",
		Aliases:   []string{"ui"},
		Usage:     "Browse a post's songs interactively with preview playback",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "post-id",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Log file used while the interface owns the terminal",
				Value: "./tmp/songview-tui.log",
			},
		},
		Action: r.Browse,
	}
}

// favoritesCommand shows a user's favorites
func favoritesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "favorites",
		Aliases:   []string{"favs"},
		Usage:     "Browse a user's favorites interactively",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "user-id",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "owner",
				Usage: "Enable removal and the public/private toggle",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Print the list in this format instead of opening the interface",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Log file used while the interface owns the terminal",
				Value: "./tmp/songview-tui.log",
			},
		},
		Action: r.Favorites,
	}
}

// cacheCommand manages the local lookup cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and prune the local lookup cache",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached lookups, most recent first",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "matched",
						Usage: "Only lookups that found a track",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of entries",
						Value: 50,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheList,
			},
			{
				Name:  "purge",
				Usage: "Delete cached lookups older than a duration",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "older-than",
						Usage: "Age cutoff, e.g. 168h; zero deletes everything",
					},
				},
				Action: r.CachePurge,
			},
		},
	}
}

// setupCommand handles setup operations for the database and the site session.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize the lookup cache database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file (default: $SONGVIEW_CONFIG or config.toml)",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "session",
				Usage: "Save site headers and the session cookie from a browser request",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Output path for the headers file (default: ~/.songview/headers.txt)",
					},
				},
				Action: r.SetupSession,
			},
		},
	}
}
