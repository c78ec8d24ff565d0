package config

const (
	defaultDetectorPath     = "build/bpm_detect"
	defaultBuildCommand     = "scripts/build.sh"
	defaultListPath         = "test_samples/yt_testlist.txt"
	defaultLogDir           = "~/.local/share/tempocheck/logs"
	defaultLogRetentionDays = 30
	defaultOfflineSample    = "test_samples/Foals - My Number (Official Audio).mp3"
	defaultOfflineBPM       = 128.0
	defaultOfflineLabel     = "Foals - My Number (local MP3)"
	defaultTolerancePct     = 3.0
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// ToleranceEnvVar overrides validation.tolerance_pct when set in the environment.
const ToleranceEnvVar = "TOLERANCE_PCT"

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Detector:     defaultDetectorPath,
			BuildCommand: defaultBuildCommand,
			List:         defaultListPath,
			LogDir:       defaultLogDir,
		},
		Offline: Offline{
			Sample:      defaultOfflineSample,
			ExpectedBPM: defaultOfflineBPM,
			Label:       defaultOfflineLabel,
		},
		Validation: Validation{
			TolerancePct: defaultTolerancePct,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
