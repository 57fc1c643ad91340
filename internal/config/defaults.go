package config

const (
	defaultLibraryDir = "~/.local/share/minutes/library"
	defaultInboxDir   = "~/.local/share/minutes/inbox"
	defaultLogDir     = "~/.local/share/minutes/logs"

	defaultTranscriberEndpoint = "http://127.0.0.1:9090"
	defaultTranscriberModel    = "large-v3-turbo"
	defaultTranscriberLanguage = "en"
	defaultTranscriberTimeout  = 600
	defaultTranscriberRetries  = 3
	defaultAudioChunkSeconds   = 1800

	defaultLLMEndpoint      = "http://127.0.0.1:11434"
	defaultLLMModel         = "llama3.2"
	defaultLLMChunkSize     = 10000
	defaultLLMContextWindow = 8096
	defaultLLMTimeout       = 120
	defaultLLMRetries       = 3
	defaultLLMBackoffBaseMS = 500

	defaultNotifyRequestTimeout = 10

	defaultLogFormat = "console"
	defaultLogLevel  = "info"

	// Hard ceilings enforced during validation.
	maxLLMChunkSize      = 50000
	maxLLMTimeoutSeconds = 3600
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			InboxDir:   defaultInboxDir,
			LogDir:     defaultLogDir,
		},
		Transcriber: Transcriber{
			Endpoint:       defaultTranscriberEndpoint,
			Model:          defaultTranscriberModel,
			Language:       defaultTranscriberLanguage,
			ChunkSeconds:   defaultAudioChunkSeconds,
			TimeoutSeconds: defaultTranscriberTimeout,
			MaxRetries:     defaultTranscriberRetries,
		},
		LLM: LLM{
			Endpoint:       defaultLLMEndpoint,
			Model:          defaultLLMModel,
			ChunkSize:      defaultLLMChunkSize,
			ContextWindow:  defaultLLMContextWindow,
			TimeoutSeconds: defaultLLMTimeout,
			MaxRetries:     defaultLLMRetries,
			BackoffBaseMS:  defaultLLMBackoffBaseMS,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Transcription:  true,
			Summarization:  true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
