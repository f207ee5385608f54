// Package ratelimit provides a token bucket rate limiter with pluggable
// storage backends (in-memory and Redis).
package ratelimit
