package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songview/internal/audio"
	"github.com/desertthunder/songview/internal/models"
	"github.com/desertthunder/songview/internal/repositories"
	"github.com/desertthunder/songview/internal/services"
	"github.com/desertthunder/songview/internal/shared"
	"github.com/desertthunder/songview/internal/songlist"
	"github.com/desertthunder/songview/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SiteClient is everything the commands need from the song-post site.
type SiteClient interface {
	services.SongSource
	songlist.Site
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The site client, preview lookup and cache are built on first use so commands that
// never touch them do not require their configuration.
type Runner struct {
	config     *shared.Config
	configPath string
	site       SiteClient
	lookup     services.PreviewLookup
	cache      tasks.LookupCacher
	engine     *tasks.LookupEngine
	audio      audio.Factory
	db         *sql.DB
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Site       SiteClient
	Lookup     services.PreviewLookup
	Cache      tasks.LookupCacher
	Audio      audio.Factory
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		site:       opts.Site,
		lookup:     opts.Lookup,
		cache:      opts.Cache,
		audio:      opts.Audio,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		lookupCommand, songsCommand, browseCommand, favoritesCommand, cacheCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger, used when the TUI takes over the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close releases the cache database, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// siteClient returns the configured site client, building it from [site] on first use.
func (r *Runner) siteClient() (SiteClient, error) {
	if r.site != nil {
		return r.site, nil
	}

	client, err := services.NewSiteClientFromConfig(r.config.Site)
	if err != nil {
		return nil, fmt.Errorf("failed to create site client: %w", err)
	}
	r.logger.Debug("site client ready", "base_url", client.BaseURL())
	r.site = client
	return client, nil
}

// lookupRepository opens the sqlite cache database on first use.
func (r *Runner) lookupRepository() (*repositories.LookupRepository, error) {
	if r.db == nil {
		db, err := shared.OpenCache(r.config.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open lookup cache: %w", err)
		}
		r.db = db
	}
	return repositories.NewLookupRepository(r.db), nil
}

// lookupCache returns the lookup cache when enabled by config or flag.
func (r *Runner) lookupCache(enabled bool) (tasks.LookupCacher, error) {
	if r.cache != nil || !enabled {
		return r.cache, nil
	}

	repo, err := r.lookupRepository()
	if err != nil {
		return nil, err
	}
	r.cache = repositories.NewLookupCacheAdapter(repo, r.config.Lookup.CacheTTL())
	return r.cache, nil
}

// lookupEngine returns the preview lookup engine.
//
// Missing credentials or an unusable cache do not fail here: the lookup command must
// still print one JSON line, so the failure is folded into every result instead.
func (r *Runner) lookupEngine(ctx context.Context, useCache bool) *tasks.LookupEngine {
	if r.engine != nil {
		return r.engine
	}

	if r.lookup == nil {
		lookup, err := services.NewSpotifyLookup(
			ctx,
			r.config.Credentials.Spotify,
			r.config.Lookup,
			services.SpotifyOptions{HTTPClient: r.httpClient},
			shared.WithLogger(r.logger, "component", "spotify"),
		)
		if err != nil {
			r.logger.Warn("preview lookup unavailable", "error", err)
			r.lookup = failedLookup{err: err}
		} else {
			r.lookup = lookup
		}
	}

	cache, err := r.lookupCache(useCache || r.config.Lookup.Cache)
	if err != nil {
		r.logger.Warn("continuing without lookup cache", "error", err)
	}

	r.engine = tasks.NewLookupEngine(r.lookup, cache, shared.WithLogger(r.logger, "component", "lookup"))
	return r.engine
}

// audioFactory returns the playback backend, defaulting to the speaker.
func (r *Runner) audioFactory() audio.Factory {
	if r.audio == nil {
		r.audio = audio.NewBeepFactory(r.config.Audio, r.httpClient, shared.WithLogger(r.logger, "component", "audio"))
	}
	return r.audio
}

// failedLookup answers every query with the error that prevented building a real lookup.
type failedLookup struct {
	err error
}

func (f failedLookup) Lookup(context.Context, string) models.PreviewLookupResult {
	return models.LookupError(f.err)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
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

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
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
