package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"nzbforge/internal/release"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file locations and the web API bind address.
type Paths struct {
	DatabasePath string `toml:"database_path"`
	OutputDir    string `toml:"output_dir"`
	LogDir       string `toml:"log_dir"`
	APIBind      string `toml:"api_bind"`
	APIToken     string `toml:"api_token"`
}

// Export contains NZB export behavior: batching, segment handling, and which
// file kinds are written into descriptors.
type Export struct {
	Group                string `toml:"group"`
	BatchSize            int    `toml:"batch_size"`
	Workers              int    `toml:"workers"`
	FallbackSegmentBytes int64  `toml:"fallback_segment_bytes"`
	MaxSegmentsPerFile   int    `toml:"max_segments_per_file"`
	Limit                int    `toml:"limit"`

	IncludeSamples bool `toml:"include_samples"`
	IncludeNFO     bool `toml:"include_nfo"`
	IncludeSubs    bool `toml:"include_subs"`
	IncludePar2    bool `toml:"include_par2"`
	IncludeSFV     bool `toml:"include_sfv"`
	IncludeRar     bool `toml:"include_rar"`
	IncludeImages  bool `toml:"include_images"`
	IncludeOther   bool `toml:"include_other"`
}

// Radarr contains configuration for the external movie manager.
type Radarr struct {
	Enabled        bool   `toml:"enabled"`
	URL            string `toml:"url"`
	APIKey         string `toml:"api_key"`
	DelaySeconds   int    `toml:"delay_seconds"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Sonarr contains configuration for the external series manager.
type Sonarr struct {
	Enabled        bool   `toml:"enabled"`
	URL            string `toml:"url"`
	APIKey         string `toml:"api_key"`
	DelaySeconds   int    `toml:"delay_seconds"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	// DeleteScope is "episode" to delete only the episodes named by parsed
	// release info, or "season" to coalesce to whole-season deletion.
	DeleteScope string `toml:"delete_scope"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for nzbforge.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Export  Export  `toml:"export"`
	Radarr  Radarr  `toml:"radarr"`
	Sonarr  Sonarr  `toml:"sonarr"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/nzbforge/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("nzbforge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories required for a run.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Includes translates the export toggles into the release package's explicit
// include selection.
func (c *Config) Includes() release.Includes {
	return release.Includes{
		Sample: c.Export.IncludeSamples,
		NFO:    c.Export.IncludeNFO,
		Subs:   c.Export.IncludeSubs,
		Par2:   c.Export.IncludePar2,
		SFV:    c.Export.IncludeSFV,
		Rar:    c.Export.IncludeRar,
		Images: c.Export.IncludeImages,
		Other:  c.Export.IncludeOther,
	}
}

// RadarrDelay returns the configured pause between Radarr search triggers.
func (c *Config) RadarrDelay() time.Duration {
	return time.Duration(c.Radarr.DelaySeconds) * time.Second
}

// SonarrDelay returns the configured pause between Sonarr search triggers.
func (c *Config) SonarrDelay() time.Duration {
	return time.Duration(c.Sonarr.DelaySeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
