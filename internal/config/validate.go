package config

import (
	"fmt"
	"strings"
)

// Validate ensures the configuration contains usable values. Validation
// errors name the offending field so operators can fix the file directly.
func (c *Config) Validate() error {
	var problems []string

	if c.Paths.DatabasePath == "" {
		problems = append(problems, "paths.database_path must be set")
	}
	if c.Paths.OutputDir == "" {
		problems = append(problems, "paths.output_dir must be set")
	}
	if c.Export.Group == "" {
		problems = append(problems, "export.group must be set")
	}
	if c.Export.BatchSize <= 0 {
		problems = append(problems, "export.batch_size must be positive")
	}
	if c.Export.FallbackSegmentBytes <= 0 {
		problems = append(problems, "export.fallback_segment_bytes must be positive")
	}
	if c.Export.MaxSegmentsPerFile < 0 {
		problems = append(problems, "export.max_segments_per_file must not be negative")
	}
	if c.Export.Limit < 0 {
		problems = append(problems, "export.limit must not be negative")
	}

	if c.Radarr.Enabled {
		if c.Radarr.URL == "" {
			problems = append(problems, "radarr.url must be set when radarr is enabled")
		}
		if c.Radarr.APIKey == "" {
			problems = append(problems, "radarr.api_key must be set when radarr is enabled")
		}
		if c.Radarr.TimeoutSeconds <= 0 {
			problems = append(problems, "radarr.timeout_seconds must be positive")
		}
	}
	if c.Sonarr.Enabled {
		if c.Sonarr.URL == "" {
			problems = append(problems, "sonarr.url must be set when sonarr is enabled")
		}
		if c.Sonarr.APIKey == "" {
			problems = append(problems, "sonarr.api_key must be set when sonarr is enabled")
		}
		if c.Sonarr.TimeoutSeconds <= 0 {
			problems = append(problems, "sonarr.timeout_seconds must be positive")
		}
	}
	switch c.Sonarr.DeleteScope {
	case "episode", "season":
	default:
		problems = append(problems, fmt.Sprintf("sonarr.delete_scope must be \"episode\" or \"season\", got %q", c.Sonarr.DeleteScope))
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
