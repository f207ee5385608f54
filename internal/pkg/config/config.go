package config

import (
	"io"
	"time"
)

// Config reads typed configuration values by dotted key. Lookups never fail:
// a missing key or an unconvertible value yields the type's zero value, so
// callers validate semantics, not presence.
//
// Duration getters (GetSecond, GetMinute, GetHour, GetDay) interpret the
// stored integer in the named unit. GetBinary expects base64. GetArray splits
// on commas, GetMap on commas and colons (k1:v1,k2:v2).
type Config interface {
	io.Closer

	GetBool(key string) bool
	GetString(key string) string
	GetBinary(key string) []byte
	GetArray(key string) []string
	GetMap(key string) map[string]string

	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint(key string) uint
	GetUint16(key string) uint16
	GetUint32(key string) uint32
	GetUint64(key string) uint64
	GetFloat32(key string) float32
	GetFloat64(key string) float64

	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration
	GetHour(key string) time.Duration
	GetDay(key string) time.Duration
}
