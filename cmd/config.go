package main

import (
	"fmt"
	"time"
)

type Config struct {
	TickInterval         time.Duration `env:"TICK_INTERVAL,default=5s"`
	LeftTurn             int           `env:"LEFT_TURN,default=5"`
	LogLevel             string        `env:"LOG_LEVEL,default=info"`
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=3000"`
	DebugPort            int           `env:"DEBUG_PORT,default=8081"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=250ms"`
	WriteTimeout         time.Duration `env:"WRITE_TIMEOUT,default=5s"`
	TelemetryInterval    time.Duration `env:"TELEMETRY_INTERVAL,default=30s"`

	// Comma-separated list of censored chat words. Empty disables moderation.
	ModerationWords           string `env:"MODERATION_WORDS"`
	ModerationCharReplacement string `env:"MODERATION_CHARACTER_REPLACEMENT,default=*"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"MODERATION_CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
