package controller

import (
	"time"

	"github.com/calvinmclean/autolyre"
)

// Config has the per-actuator calibration and the timing of initialization and power saving
type Config struct {
	// RestAngles is the angle of each actuator when its pick rests against the string
	RestAngles []int
	// PluckAngle is the sweep from rest to either side of the string
	PluckAngle int

	OpenDelay   time.Duration
	CloseDelay  time.Duration
	IdleTimeout time.Duration
}

// ConfigFrom extracts the controller settings from the instrument configuration
func ConfigFrom(cfg autolyre.Config) Config {
	rest := make([]int, len(cfg.RestAngles))
	copy(rest, cfg.RestAngles)

	return Config{
		RestAngles:  rest,
		PluckAngle:  cfg.PluckAngle,
		OpenDelay:   cfg.InitOpenDelay(),
		CloseDelay:  cfg.InitCloseDelay(),
		IdleTimeout: cfg.IdleTimeout(),
	}
}
