// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// rootFlags are shared by every command.
func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   defaultConfigPath,
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (debug, info, warn, error)",
		},
	}
}

func playlistFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "playlist",
			Aliases: []string{"p"},
			Usage:   "Playlist URL or owner:kind (overrides playlist_url)",
		},
		&cli.StringFlag{
			Name:    "dir",
			Aliases: []string{"d"},
			Usage:   "Target directory (overrides target_dir)",
		},
		&cli.IntFlag{
			Name:    "max",
			Aliases: []string{"n"},
			Usage:   "Maximum number of tracks to download this run (overrides max_downloads)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, json or csv",
			Value:   "text",
		},
	}
}

// syncCommand runs one incremental sync pass.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Download tracks missing from the target directory",
		Flags: append(playlistFlags(),
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Tracks started per second, 0 disables the delay (overrides rate_limit)",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Also write the run summary to this file (format from the .json/.csv extension)",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Show the interactive progress view when stdout is a terminal",
			},
		),
		Action: r.Sync,
	}
}

// planCommand is a dry run of sync.
func planCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "plan",
		Usage:  "Show which tracks the next sync would download, without downloading",
		Flags:  playlistFlags(),
		Action: r.Plan,
	}
}

// catalogCommand lists the local catalog.
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "catalog",
		Aliases: []string{"ls"},
		Usage:   "List the numbered tracks in the target directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Target directory (overrides target_dir)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json or csv",
				Value:   "text",
			},
		},
		Action: r.Catalog,
	}
}

// statusCommand checks the configured token.
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Check the Yandex Music token and show the account it belongs to",
		Action: r.Status,
	}
}

// setupCommand handles setup operations for configuration and authentication.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config.toml from the built-in template",
				Action: r.SetupConfig,
			},
			{
				Name:  "token",
				Usage: "Open the Yandex OAuth page to obtain a music token",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Only print the URL",
					},
				},
				Action: r.SetupToken,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for an interactive sync.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Review the pending tracks and sync interactively",
		Flags:   playlistFlags(),
		Action:  r.TUI,
	}
}
