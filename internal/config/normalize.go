package config

import "strings"

func (c *Config) normalize() error {
	var err error

	for _, field := range []*string{
		&c.Paths.DatabasePath,
		&c.Paths.OutputDir,
		&c.Paths.LogDir,
	} {
		trimmed := strings.TrimSpace(*field)
		if trimmed == "" {
			*field = trimmed
			continue
		}
		*field, err = expandPath(trimmed)
		if err != nil {
			return err
		}
	}

	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	c.Export.Group = strings.TrimSpace(c.Export.Group)
	c.Radarr.URL = strings.TrimRight(strings.TrimSpace(c.Radarr.URL), "/")
	c.Radarr.APIKey = strings.TrimSpace(c.Radarr.APIKey)
	c.Sonarr.URL = strings.TrimRight(strings.TrimSpace(c.Sonarr.URL), "/")
	c.Sonarr.APIKey = strings.TrimSpace(c.Sonarr.APIKey)
	c.Sonarr.DeleteScope = strings.ToLower(strings.TrimSpace(c.Sonarr.DeleteScope))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	if c.Sonarr.DeleteScope == "" {
		c.Sonarr.DeleteScope = "episode"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Export.Workers <= 0 {
		c.Export.Workers = 1
	}

	return nil
}
