package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/northis/ym-api-organizer/internal/services"
	"github.com/northis/ym-api-organizer/internal/shared"
	"github.com/northis/ym-api-organizer/internal/tags"
	"github.com/northis/ym-api-organizer/internal/tasks"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config       *shared.Config
	configLoaded bool
	service      services.Service
	tags         tasks.TagWriter
	logger       *log.Logger
	output       io.Writer
	isTerminal   func() bool
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A nil Config is loaded from the --config file on first use; a nil Service is built from that config.
type RunnerOpts struct {
	Config     *shared.Config
	Service    services.Service
	Tags       tasks.TagWriter
	Logger     *log.Logger
	Output     io.Writer
	IsTerminal func() bool
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	loaded := opts.Config != nil
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Tags == nil {
		opts.Tags = tags.NewWriter()
	}
	if opts.IsTerminal == nil {
		opts.IsTerminal = func() bool {
			return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
		}
	}

	return &Runner{
		config:       opts.Config,
		configLoaded: loaded,
		service:      opts.Service,
		tags:         opts.Tags,
		logger:       opts.Logger,
		output:       opts.Output,
		isTerminal:   opts.IsTerminal,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		syncCommand, planCommand, catalogCommand, statusCommand, setupCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig reads the --config file once, then applies environment overrides and the log level.
//
// A missing file is only an error when --config was given explicitly.
func (r *Runner) loadConfig(cmd *cli.Command) error {
	if r.configLoaded {
		return nil
	}

	path := cmd.String("config")
	if path == "" {
		path = defaultConfigPath
	}

	config, err := shared.LoadConfig(path)
	switch {
	case err == nil:
		r.config = config
		r.logger.Debug("loaded config", "path", path)
	case errors.Is(err, fs.ErrNotExist) && !cmd.IsSet("config"):
		r.logger.Debug("config file not found, using defaults", "path", path)
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
	default:
		return fmt.Errorf("%w: %w", shared.ErrInvalidConfig, err)
	}

	if err := r.config.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}
	if cmd.IsSet("log-level") {
		r.config.Log.Level = cmd.String("log-level")
	}

	level, err := shared.ParseLevel(r.config.Log.Level)
	if err != nil {
		return err
	}
	if r.config.Log.File != "" {
		if r.logger, err = shared.NewFileLogger(r.config.Log.File); err != nil {
			return err
		}
	}
	shared.SetLogLevel(r.logger, level)

	r.configLoaded = true
	return nil
}

// applySyncFlags overrides the sync settings with the command's flags.
func (r *Runner) applySyncFlags(cmd *cli.Command) {
	if cmd.IsSet("playlist") {
		r.config.Yandex.PlaylistURL = cmd.String("playlist")
	}
	if cmd.IsSet("dir") {
		r.config.Sync.TargetDir = cmd.String("dir")
	}
	if cmd.IsSet("max") {
		r.config.Sync.MaxDownloads = cmd.Int("max")
	}
	if cmd.IsSet("rate") {
		r.config.Sync.RateLimit = cmd.Float("rate")
	}
}

// targetDir returns the configured target directory with "~" expanded.
func (r *Runner) targetDir() (string, error) {
	return shared.ExpandHome(r.config.Sync.TargetDir)
}

// yandex returns the remote service, building the Yandex client on first use.
func (r *Runner) yandex(ctx context.Context) (services.Service, error) {
	if r.service != nil {
		return r.service, nil
	}

	svc, err := services.NewYandexService(ctx, r.config.Yandex, r.logger)
	if err != nil {
		return nil, err
	}
	r.service = svc
	return svc, nil
}

// engine builds a sync engine from the loaded config and flags.
func (r *Runner) engine(ctx context.Context, cmd *cli.Command) (*tasks.PlaylistEngine, error) {
	if err := r.loadConfig(cmd); err != nil {
		return nil, err
	}
	r.applySyncFlags(cmd)

	if r.service == nil {
		if err := r.config.Validate(); err != nil {
			return nil, err
		}
	}

	dir, err := r.targetDir()
	if err != nil {
		return nil, err
	}
	svc, err := r.yandex(ctx)
	if err != nil {
		return nil, err
	}

	maxDownloads := r.config.Sync.MaxDownloads
	if !cmd.IsSet("max") && maxDownloads == 0 {
		maxDownloads = tasks.DefaultMaxDownloads
	}

	return tasks.NewPlaylistEngine(svc, r.tags, tasks.Options{
		PlaylistRef:  r.config.Yandex.PlaylistURL,
		TargetDir:    dir,
		MaxDownloads: maxDownloads,
		RateLimit:    r.config.Sync.RateLimit,
	}, r.logger), nil
}

func (r *Runner) write(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
