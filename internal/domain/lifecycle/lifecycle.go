// Package lifecycle holds shared timings for application start and stop hooks.
package lifecycle

import "time"

// DefaultTimeout bounds each lifecycle hook (startup ping, graceful shutdown).
const DefaultTimeout = 10 * time.Second
