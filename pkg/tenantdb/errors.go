package tenantdb

import "errors"

var (
	// ErrCacheClosed is returned by Get after the cache has been shut down.
	ErrCacheClosed = errors.New("tenantdb: cache is closed")

	// ErrOpenHandle wraps factory failures. These are never cached; the
	// next request for the same key retries construction.
	ErrOpenHandle = errors.New("tenantdb: failed to open scoped handle")
)
