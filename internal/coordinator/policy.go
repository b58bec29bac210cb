package coordinator

import "time"

// FallbackTimeout is the last-resort deadline applied when neither a per-job
// override nor a configured default is available.
const FallbackTimeout = 30 * time.Second

// ResolveTimeout picks the effective deadline for a job.
//
// Precedence: a positive per-job override wins, then a positive configured
// default, then the fallback. A non-positive value at any tier falls through
// to the next one — a malformed override is a caller mistake, not a reason to
// fail the job.
func ResolveTimeout(override, configured, fallback time.Duration) time.Duration {
	if override > 0 {
		return override
	}
	if configured > 0 {
		return configured
	}
	if fallback > 0 {
		return fallback
	}
	return FallbackTimeout
}
