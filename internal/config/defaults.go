package config

const (
	defaultConfigPath             = "~/.config/mediaminder/config.toml"
	projectConfigName             = "mediaminder.toml"
	defaultStateDir               = "~/.local/share/mediaminder"
	defaultLogDir                 = "~/.local/share/mediaminder/logs"
	defaultBackendBaseURL         = "http://localhost:5000/api"
	defaultBackendTimeoutSeconds  = 15
	defaultTMDBBaseURL            = "https://api.themoviedb.org/3"
	defaultTMDBImageBaseURL       = "https://image.tmdb.org/t/p"
	defaultTMDBLanguage           = "en-US"
	defaultTMDBRequestsPerSecond  = 20
	defaultOpenLibraryBaseURL     = "https://openlibrary.org"
	defaultOpenLibraryCoversURL   = "https://covers.openlibrary.org"
	defaultOpenLibraryRPS         = 3
	defaultOpenLibrarySearchLimit = 10
	defaultRecommendationTTL      = 60
	defaultRecommendationMax      = 8
	defaultRecommendationPerType  = 4
	defaultDetailConcurrency      = 4
	defaultDetailCacheTTLHours    = 24 * 7
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Backend: Backend{
			BaseURL:        defaultBackendBaseURL,
			TimeoutSeconds: defaultBackendTimeoutSeconds,
		},
		TMDB: TMDB{
			BaseURL:           defaultTMDBBaseURL,
			ImageBaseURL:      defaultTMDBImageBaseURL,
			Language:          defaultTMDBLanguage,
			RequestsPerSecond: defaultTMDBRequestsPerSecond,
		},
		OpenLibrary: OpenLibrary{
			BaseURL:           defaultOpenLibraryBaseURL,
			CoversBaseURL:     defaultOpenLibraryCoversURL,
			RequestsPerSecond: defaultOpenLibraryRPS,
			SearchLimit:       defaultOpenLibrarySearchLimit,
		},
		Recommendations: Recommendations{
			TTLMinutes:        defaultRecommendationTTL,
			MaxResults:        defaultRecommendationMax,
			PerTypeLimit:      defaultRecommendationPerType,
			DetailConcurrency: defaultDetailConcurrency,
		},
		DetailCache: DetailCache{
			Enabled:  true,
			TTLHours: defaultDetailCacheTTLHours,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
