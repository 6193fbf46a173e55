package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultConfigPath        = "~/.config/trimscript/config.toml"
	projectConfigName        = "trimscript.toml"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultWhisperXModel     = "large-v3"
	defaultVADMethod         = "silero"
	defaultLLMBaseURL        = "https://api.openai.com/v1"
	defaultLLMModel          = "gpt-4o-mini"
	defaultLLMReferer        = "https://github.com/trimscript/trimscript"
	defaultLLMTitle          = "trimscript"
	defaultLLMTimeoutSeconds = 60
	defaultChunkWords        = 400
	defaultMaxConcurrent     = 2
	defaultRequestsPerMinute = 30
	defaultFFmpegBinary      = "ffmpeg"
	defaultFFprobeBinary     = "ffprobe"
	defaultVideoCodec        = "libx264"
	defaultAudioCodec        = "aac"
	defaultCRF               = 18
	defaultPreset            = "medium"
	defaultRenderConcurrency = 2
	defaultPreviewHeight     = 360
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir(),
			WorkDir: defaultCacheDir("work"),
			LogDir:  filepath.Join(defaultDataDir(), "logs"),
		},
		WhisperX: WhisperX{
			Model:     defaultWhisperXModel,
			VADMethod: defaultVADMethod,
		},
		LLM: LLM{
			BaseURL:           defaultLLMBaseURL,
			Model:             defaultLLMModel,
			Referer:           defaultLLMReferer,
			Title:             defaultLLMTitle,
			TimeoutSeconds:    defaultLLMTimeoutSeconds,
			ChunkWords:        defaultChunkWords,
			MaxConcurrent:     defaultMaxConcurrent,
			RequestsPerMinute: defaultRequestsPerMinute,
		},
		Render: Render{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			VideoCodec:    defaultVideoCodec,
			AudioCodec:    defaultAudioCodec,
			CRF:           defaultCRF,
			Preset:        defaultPreset,
			Concurrency:   defaultRenderConcurrency,
			PreviewHeight: defaultPreviewHeight,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultDataDir() string {
	if base, ok := os.LookupEnv("XDG_DATA_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "trimscript")
	}
	return "~/.local/share/trimscript"
}

func defaultCacheDir(name string) string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "trimscript", name)
	}
	return "~/.cache/trimscript/" + name
}
