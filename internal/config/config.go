package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Ordered provider trust ranking, most trusted first. Field conflicts
	// between merged records are resolved in this order.
	ProviderPriority string `envconfig:"PROVIDER_PRIORITY" default:"partner,overpass,stagepass"`

	PartnerBaseURL   string `envconfig:"PARTNER_BASE_URL" default:""`
	OverpassBaseURL  string `envconfig:"OVERPASS_BASE_URL" default:"https://overpass-api.de/api/interpreter"`
	StagepassBaseURL string `envconfig:"STAGEPASS_BASE_URL" default:""`
	StagepassAPIKey  string `envconfig:"STAGEPASS_API_KEY" default:""`

	FetchTimeout    time.Duration `envconfig:"FETCH_TIMEOUT" default:"10s"`
	FetchMaxRetries int           `envconfig:"FETCH_MAX_RETRIES" default:"3"`

	VenueMaxDistanceMeters float64       `envconfig:"VENUE_MAX_DISTANCE_METERS" default:"75"`
	VenueNameSimilarity    float64       `envconfig:"VENUE_NAME_SIMILARITY" default:"0.88"`
	EventStartWindow       time.Duration `envconfig:"EVENT_START_WINDOW" default:"10m"`
	EventTitleSimilarity   float64       `envconfig:"EVENT_TITLE_SIMILARITY" default:"0.90"`
	EventArtistSimilarity  float64       `envconfig:"EVENT_ARTIST_SIMILARITY" default:"0.85"`

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if len(c.ProviderPriorityList()) == 0 {
		return fmt.Errorf("PROVIDER_PRIORITY must list at least one source")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be > 0")
	}
	if c.FetchMaxRetries < 0 {
		return fmt.Errorf("FETCH_MAX_RETRIES must be >= 0")
	}
	if c.VenueMaxDistanceMeters <= 0 {
		return fmt.Errorf("VENUE_MAX_DISTANCE_METERS must be > 0")
	}
	for name, v := range map[string]float64{
		"VENUE_NAME_SIMILARITY":   c.VenueNameSimilarity,
		"EVENT_TITLE_SIMILARITY":  c.EventTitleSimilarity,
		"EVENT_ARTIST_SIMILARITY": c.EventArtistSimilarity,
	} {
		if v <= 0 || v > 1 {
			return fmt.Errorf("%s must be in (0,1]", name)
		}
	}
	if c.EventStartWindow <= 0 {
		return fmt.Errorf("EVENT_START_WINDOW must be > 0")
	}
	return nil
}

// ProviderPriorityList splits the configured ranking into an ordered,
// deduplicated source list.
func (c *Config) ProviderPriorityList() []string {
	if c == nil {
		return nil
	}

	parts := strings.Split(c.ProviderPriority, ",")
	sources := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		source := strings.ToLower(strings.TrimSpace(part))
		if source == "" {
			continue
		}
		if _, exists := seen[source]; exists {
			continue
		}
		seen[source] = struct{}{}
		sources = append(sources, source)
	}
	return sources
}

// CORSAllowedOriginsList splits the configured origins into a deduplicated list.
func (c *Config) CORSAllowedOriginsList() []string {
	if c == nil {
		return nil
	}

	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		if _, exists := seen[origin]; exists {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	return origins
}
