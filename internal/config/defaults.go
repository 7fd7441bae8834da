package config

const (
	defaultDataDir            = "~/.local/share/cadence"
	defaultLogDir             = "~/.local/share/cadence/logs"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultNotifyTimeout      = 10
	defaultSyncTimeout        = 15
	defaultSyncPollInterval   = 30
	defaultDayBoundaryHour    = 4
	defaultSettleDelaySeconds = 3
	defaultSetCount           = 1
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Reminders:      true,
			Errors:         true,
		},
		Sync: Sync{
			RequestTimeout: defaultSyncTimeout,
			PollInterval:   defaultSyncPollInterval,
		},
		Execution: Execution{
			DayBoundaryHour:    defaultDayBoundaryHour,
			SettleDelaySeconds: defaultSettleDelaySeconds,
			DefaultSetCount:    defaultSetCount,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
