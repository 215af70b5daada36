package model

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Settings of the ncconf tool, from .ncconf.yaml, NCCONF_* environment and flags
type Settings struct {
	LogLevel    string        `mapstructure:"loglevel" validate:"oneof=debug info warn error"`
	LogType     string        `mapstructure:"logtype" validate:"oneof=console json"`
	PhpFallback bool          `mapstructure:"php-fallback"`
	Glob        bool          `mapstructure:"glob"`
	Check       CheckSettings `mapstructure:"check"`
}

type CheckSettings struct {
	Timeout    time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Retries    int           `mapstructure:"retries" validate:"gte=1,lte=100"`
	RetrySleep time.Duration `mapstructure:"retry-sleep" validate:"gte=0"`
}

func DefaultSettings() Settings {
	return Settings{
		LogLevel: "info",
		LogType:  "console",
		Check: CheckSettings{
			Timeout:    5 * time.Second,
			Retries:    1,
			RetrySleep: 2 * time.Second,
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (rx Settings) Validate() error {
	return validate.Struct(rx)
}
