package config

const (
	defaultDataDir               = "~/.local/share/eduvid"
	defaultLogDir                = "~/.local/share/eduvid/logs"
	defaultAPIBind               = "127.0.0.1:7590"
	defaultEnvFile               = ".env"
	defaultCameraWidth           = 640
	defaultCameraHeight          = 480
	defaultCameraFramerate       = 15
	defaultFFmpegBinary          = "ffmpeg"
	defaultSampleIntervalMS      = 700
	defaultStabilityFrames       = 3
	defaultFineThreshold         = 0.08
	defaultCoarseThreshold       = 0.5
	defaultDebounceMS            = 1200
	defaultClassifierTimeout     = 10
	defaultContentTimeout        = 15
	defaultLLMBaseURL            = "http://localhost:11434"
	defaultLLMModel              = "mistral"
	defaultLLMTimeoutSeconds     = 120
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultCatalogFile           = "catalog.db"
	minSampleIntervalMS          = 100
	maxSampleIntervalMS          = 5000
	defaultContentBasePathSuffix = "/api/practical"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
			EnvFile: defaultEnvFile,
		},
		Camera: Camera{
			Width:        defaultCameraWidth,
			Height:       defaultCameraHeight,
			Framerate:    defaultCameraFramerate,
			FFmpegBinary: defaultFFmpegBinary,
			WatchHotplug: true,
		},
		Recognition: Recognition{
			SampleIntervalMS: defaultSampleIntervalMS,
			StabilityFrames:  defaultStabilityFrames,
			FineThreshold:    defaultFineThreshold,
			CoarseThreshold:  defaultCoarseThreshold,
			DebounceMS:       defaultDebounceMS,
		},
		Classifier: Classifier{
			TimeoutSeconds: defaultClassifierTimeout,
		},
		Content: Content{
			TimeoutSeconds: defaultContentTimeout,
		},
		LLM: LLM{
			Enabled:        true,
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
