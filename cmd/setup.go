package main

import (
	"context"

	"github.com/northis/ym-api-organizer/internal/services"
	"github.com/northis/ym-api-organizer/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes config.toml (or the --config path) from the embedded template.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if path == "" {
		path = defaultConfigPath
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)

	r.writePlain("✓ Configuration written to %s\n", path)
	r.writePlain("\nNext steps:\n")
	r.writePlain("1. Run 'ymsync setup token' and put the token in [yandex].token (or %s)\n", shared.EnvToken)
	r.writePlain("2. Set [yandex].playlist_url and [sync].target_dir\n")
	r.writePlain("3. Run 'ymsync plan' to preview the first sync\n")
	return nil
}

// SetupToken opens the OAuth page that issues a Yandex Music token.
//
// The token is returned in the fragment of the redirect URL and must be copied by hand.
func (r *Runner) SetupToken(ctx context.Context, cmd *cli.Command) error {
	r.writePlain("Open the following page and sign in:\n\n  %s\n\n", services.TokenPageURL)

	if !cmd.Bool("no-browser") {
		if err := shared.OpenBrowser(services.TokenPageURL); err != nil {
			r.logger.Warn("could not open browser", "error", err)
		}
	}

	r.writePlain("After signing in you are redirected to a URL containing access_token=<token>.\n")
	r.writePlain("Copy the token into [yandex].token in config.toml, or export %s=<token>.\n", shared.EnvToken)
	r.writePlain("Then run 'ymsync status' to verify it.\n")
	return nil
}
