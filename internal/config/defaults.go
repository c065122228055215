package config

const (
	defaultLogDir           = "~/.local/share/physiobids/logs"
	defaultTriggerThreshold = 5.0
	defaultTask             = "rest"
	defaultRunMaxIndex      = 12
	defaultRunMaxMissing    = 1
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Detection: Detection{
			TriggerThreshold: defaultTriggerThreshold,
		},
		Runs: Runs{
			Task:       defaultTask,
			MaxIndex:   defaultRunMaxIndex,
			MaxMissing: defaultRunMaxMissing,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Journal: Journal{
			Enabled: true,
		},
		Plot: Plot{
			Enabled: true,
		},
		Sourcedata: Sourcedata{
			Mirror: true,
		},
	}
}
