package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"mediaminder/internal/backend"
	"mediaminder/internal/cachefile"
	"mediaminder/internal/catalog"
	"mediaminder/internal/catalog/openlibrary"
	"mediaminder/internal/catalog/tmdb"
	"mediaminder/internal/config"
	"mediaminder/internal/detailcache"
	"mediaminder/internal/logging"
	"mediaminder/internal/preference"
	"mediaminder/internal/recommend"
	"mediaminder/internal/tracking"
	"mediaminder/internal/upstream"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	appOnce sync.Once
	app     *app
	appErr  error
}

// app holds the wired services a command needs. It is built on first use so
// commands like `config init` never touch the network or the state dir.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	catalog  *catalog.Service
	details  *detailcache.Store
	tracker  *tracking.Store
	cache    *recommend.Cache
	engine   *recommend.Engine
	analyzer *preference.Analyzer
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) ensureApp() (*app, error) {
	c.appOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.appErr = err
			return
		}
		c.app, c.appErr = buildApp(cfg)
	})
	return c.app, c.appErr
}

// withApp runs fn with the wired services.
func (c *commandContext) withApp(fn func(*app) error) error {
	a, err := c.ensureApp()
	if err != nil {
		return err
	}
	return fn(a)
}

func (c *commandContext) close() error {
	if c.app == nil || c.app.details == nil {
		return nil
	}
	err := c.app.details.Close()
	c.app.details = nil
	return err
}

func buildApp(cfg *config.Config) (*app, error) {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	video, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language,
		tmdb.WithUpstreamOptions(
			upstream.WithRateLimit(cfg.TMDB.RequestsPerSecond),
			upstream.WithLogger(logger),
		))
	if err != nil {
		return nil, err
	}
	books, err := openlibrary.New(cfg.OpenLibrary.BaseURL,
		openlibrary.WithSearchLimit(cfg.OpenLibrary.SearchLimit),
		openlibrary.WithUpstreamOptions(
			upstream.WithRateLimit(cfg.OpenLibrary.RequestsPerSecond),
			upstream.WithLogger(logger),
		))
	if err != nil {
		return nil, err
	}
	images := catalog.NewImages(cfg.TMDB.ImageBaseURL, cfg.OpenLibrary.CoversBaseURL)
	svc := catalog.NewService(books, video, images, logger)

	var details *detailcache.Store
	if cfg.DetailCache.Enabled {
		details, err = detailcache.Open(cfg.DetailCache.Path)
		if err != nil {
			logging.WarnWithContext(logger, "detail cache unavailable", "detail_cache_open_failed",
				logging.Error(err),
				logging.String("path", cfg.DetailCache.Path),
				logging.String(logging.FieldErrorHint, "run `mediaminder cache clear` or delete the file"),
				logging.String(logging.FieldImpact, "genre and subject lookups go to the catalogs every time"),
			)
			details = nil
		}
	}
	source := detailcache.NewSource(details, svc, cfg.DetailCacheTTL(), logger)

	client, err := backend.New(cfg.Backend.BaseURL, cfg.Backend.Token,
		backend.WithUpstreamOptions(upstream.WithHTTPClient(&http.Client{Timeout: cfg.BackendTimeout()})),
		backend.WithLogger(logger),
	)
	if err != nil {
		if details != nil {
			_ = details.Close()
		}
		return nil, err
	}

	analyzer := preference.NewAnalyzer(source, logger, preference.WithConcurrency(cfg.Recommendations.DetailConcurrency))
	cache := recommend.NewCache(cfg.RecommendationTTL(), cachefile.New[recommend.Snapshot](cfg.Recommendations.CachePath, logger), logger)
	engine := recommend.NewEngine(svc, analyzer, images, cache, logger,
		recommend.WithLimits(cfg.Recommendations.PerTypeLimit, cfg.Recommendations.MaxResults))

	return &app{
		cfg:      cfg,
		logger:   logger,
		catalog:  svc,
		details:  details,
		tracker:  tracking.NewStore(client, images, logger),
		cache:    cache,
		engine:   engine,
		analyzer: analyzer,
	}, nil
}

// loadTracked populates the tracker. Failures are reported on stderr and the
// command continues with an empty list.
func (a *app) loadTracked(cmd *cobra.Command) bool {
	if err := a.tracker.Load(cmd.Context()); err != nil {
		printNotice(cmd, noticeWarn, a.tracker.LastError(), err)
		return false
	}
	return true
}

// requireTracked populates the tracker and fails when the backend cannot be
// reached.
func (a *app) requireTracked(cmd *cobra.Command) error {
	if err := a.tracker.Load(cmd.Context()); err != nil {
		return fmt.Errorf("%s: %w", a.tracker.LastError(), err)
	}
	return nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
