package config

// Default returns a configuration populated with default values. Paths are
// kept relative here; normalize expands them.
func Default() Config {
	return Config{
		Paths: Paths{
			DatabasePath: "~/.local/share/nzbdav/db.sqlite",
			OutputDir:    "~/nzbforge/out",
			LogDir:       "~/nzbforge/logs",
			APIBind:      "127.0.0.1:7879",
		},
		Export: Export{
			Group:                "alt.binaries.misc",
			BatchSize:            500,
			Workers:              4,
			FallbackSegmentBytes: 792782,
			MaxSegmentsPerFile:   0,
			Limit:                0,
			IncludeSamples:       false,
			IncludeNFO:           true,
			IncludeSubs:          true,
			IncludePar2:          false,
			IncludeSFV:           false,
			IncludeRar:           true,
			IncludeImages:        false,
			IncludeOther:         false,
		},
		Radarr: Radarr{
			Enabled:        false,
			URL:            "http://127.0.0.1:7878",
			DelaySeconds:   2,
			TimeoutSeconds: 30,
		},
		Sonarr: Sonarr{
			Enabled:        false,
			URL:            "http://127.0.0.1:8989",
			DelaySeconds:   2,
			TimeoutSeconds: 30,
			DeleteScope:    "episode",
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
