package mpinauth

import "log"

// logf records a best-effort failure that must not interrupt the calling
// flow. Hard failures are returned as errors instead.
func logf(format string, args ...any) {
	log.Printf("mpinauth: "+format, args...)
}
