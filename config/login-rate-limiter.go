package config

import "time"

// Login throttling configuration
type LoginThrottleConfig struct {
	AttemptsThreshold1 int           // Failed attempts before first cooldown
	CooldownDuration1  time.Duration // First cooldown duration
	AttemptsThreshold2 int           // Failed attempts before second cooldown
	CooldownDuration2  time.Duration // Second cooldown duration
	Window             time.Duration // How long failed attempts are remembered
}

var DefaultLoginThrottleConfig = LoginThrottleConfig{
	AttemptsThreshold1: 3,
	CooldownDuration1:  3 * time.Minute,
	AttemptsThreshold2: 5,
	CooldownDuration2:  5 * time.Minute,
	Window:             30 * time.Minute,
}

// Cooldown returns how long an account stays locked after the given number of failed attempts
func (c LoginThrottleConfig) Cooldown(failedAttempts int) time.Duration {
	switch {
	case failedAttempts >= c.AttemptsThreshold2:
		return c.CooldownDuration2
	case failedAttempts >= c.AttemptsThreshold1:
		return c.CooldownDuration1
	}
	return 0
}
