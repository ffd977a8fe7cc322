package model

// AppConfig holds application-wide preferences and the machine settings
// applied to every program.
type AppConfig struct {
	DataDir string          `json:"data_dir" mapstructure:"data_dir"` // where the catalog CSV files live
	Log     LogConfig       `json:"log" mapstructure:"log"`
	Machine MachineSettings `json:"machine" mapstructure:"machine"`
	Serial  SerialConfig    `json:"serial" mapstructure:"serial"`
}

// SerialConfig is the controller link used by the send command.
type SerialConfig struct {
	Port string `json:"port" mapstructure:"port"`
	Baud int    `json:"baud" mapstructure:"baud"`
}

// LogConfig selects the logger's level and encoding.
type LogConfig struct {
	Level  string `json:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `json:"format" mapstructure:"format"` // "json" or "console"
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults
// matching the values from DefaultSettings().
func DefaultAppConfig() AppConfig {
	return AppConfig{
		DataDir: ".",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Machine: DefaultSettings(),
		Serial: SerialConfig{
			Port: "/dev/ttyUSB0",
			Baud: 115200,
		},
	}
}

// ApplyOverrides copies non-zero calculator constants from o into c.Machine.
// The CLI uses it for per-run flag overrides.
func (c *AppConfig) ApplyOverrides(o MachineSettings) {
	m := &c.Machine
	if o.SurfaceSpeed > 0 {
		m.SurfaceSpeed = o.SurfaceSpeed
	}
	if o.ChipThickness > 0 {
		m.ChipThickness = o.ChipThickness
	}
	if o.SafeZ > 0 {
		m.SafeZ = o.SafeZ
	}
	if o.GCodeProfile != "" {
		m.GCodeProfile = o.GCodeProfile
	}
}
