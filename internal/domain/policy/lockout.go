package policy

import "time"

// Default policy windows. Configurable through config.Policy but the
// defaults are the observed product behavior.
const (
	DefaultLockoutThreshold = 5
	DefaultLockoutDuration  = 15 * time.Minute
	DefaultOtpTTL           = 10 * time.Minute
	DefaultResetTokenTTL    = 15 * time.Minute
	DefaultRefreshTokenTTL  = 7 * 24 * time.Hour
)

// LockoutPolicy decides how consecutive failed logins accumulate into a
// temporary lockout. It is pure: the caller owns the clock and the counters.
type LockoutPolicy struct {
	Threshold    int           // Failures that trigger a lock.
	LockDuration time.Duration // How long a triggered lock lasts.
}

// DefaultLockoutPolicy returns the 5-attempts / 15-minute policy.
func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{
		Threshold:    DefaultLockoutThreshold,
		LockDuration: DefaultLockoutDuration,
	}
}

// RecordFailure applies one failed password check to the running counter.
// When the counter reaches the threshold it resets to zero and a lockout
// deadline is returned; otherwise the incremented counter carries forward.
func (p LockoutPolicy) RecordFailure(failedCount int, now time.Time) (newCount int, lockedUntil *time.Time) {
	failedCount++
	if failedCount >= p.Threshold {
		until := now.Add(p.LockDuration)

		return 0, &until
	}

	return failedCount, nil
}

// RemainingMinutes converts a lockout remainder into the whole-minute figure
// reported to the caller, never less than one.
func RemainingMinutes(remaining time.Duration) int {
	minutes := int(remaining.Minutes())
	if minutes < 1 {
		minutes = 1
	}

	return minutes
}
