package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Pool   PoolConfig   `mapstructure:"pool" validate:"required"`
	Server ServerConfig `mapstructure:"server" validate:"required"`
}

// PoolConfig contains the task pool sizing settings.
type PoolConfig struct {
	// Workers is the number of execution units to spawn. Zero means
	// "derive from the machine" (clamped into [2, 4]).
	Workers int `mapstructure:"workers" validate:"gte=0,lte=64"`

	// QueueSize bounds the wait queue used when every worker is busy.
	QueueSize int `mapstructure:"queue_size" validate:"gt=0,lte=4096"`
}

// ServerConfig contains the local diagnostics server settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}
