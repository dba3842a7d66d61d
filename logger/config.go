package logger

// Config logger configuration (per manager, shared by all modules)
type Config struct {
	// Level minimum log level: debug, info, warn, error
	Level string `mapstructure:"level"`

	// Encoding output encoding: json or console
	Encoding string `mapstructure:"encoding"`

	// Dir base directory for log files (one file per module)
	Dir string `mapstructure:"dir"`

	// EnableConsole also write to stderr
	EnableConsole bool `mapstructure:"enable_console"`

	// EnableFile write rotated files under Dir
	EnableFile bool `mapstructure:"enable_file"`

	// Rotation settings (lumberjack)
	MaxSize    int  `mapstructure:"max_size"`    // megabytes per file
	MaxBackups int  `mapstructure:"max_backups"` // rotated files kept
	MaxAge     int  `mapstructure:"max_age"`     // days
	Compress   bool `mapstructure:"compress"`
}

// ApplyDefaults fills zero-value fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Encoding == "" {
		c.Encoding = "json"
	}
	if c.Dir == "" {
		c.Dir = "logs"
	}
	if !c.EnableConsole && !c.EnableFile {
		c.EnableConsole = true
	}
	if c.MaxSize <= 0 {
		c.MaxSize = 100
	}
	if c.MaxBackups <= 0 {
		c.MaxBackups = 10
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 30
	}
}
