// Package redis wraps go-redis with a retrying Connect and a healthcheck
// probe. The client backs the cross-instance tenant directory cache.
package redis
