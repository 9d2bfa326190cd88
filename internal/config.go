package internal

import "time"

type Config struct {
	Host            string        `env:"HOST,required=true"`
	Port            int           `env:"PORT,required=true"`
	BadgerFilepath  string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel        string        `env:"LOG_LEVEL,required=true"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,required=true"`
	// DebugPort exposes the Badger inspector when log level is DEBUG.
	DebugPort int `env:"DEBUG_PORT"`
}
