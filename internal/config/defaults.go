package config

const (
	defaultLogDir             = "~/.local/share/scriptkit/logs"
	defaultCacheDir           = "~/.local/share/scriptkit/cache"
	defaultBrewAPIBaseURL     = "https://formulae.brew.sh/api"
	defaultBrewRequestTimeout = 15
	defaultBrewCacheTTLHours  = 12
	defaultAudioJobs          = 2
	defaultMinFreeSpaceMB     = 512
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

func defaultAudioExtensions() []string {
	return []string{"mp3", "m4a", "flac", "ogg", "opus", "wav", "aiff"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			CacheDir: defaultCacheDir,
		},
		Brew: Brew{
			APIBaseURL:     defaultBrewAPIBaseURL,
			RequestTimeout: defaultBrewRequestTimeout,
			CacheTTLHours:  defaultBrewCacheTTLHours,
			CacheEnabled:   true,
		},
		Audio: Audio{
			Jobs:       defaultAudioJobs,
			Extensions: defaultAudioExtensions(),
		},
		MKV: MKV{
			KeepBackups:    false,
			MinFreeSpaceMB: defaultMinFreeSpaceMB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
