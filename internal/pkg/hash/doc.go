// Package hash hashes short-lived secrets for storage and lookup.
//
// Verification tokens and one-time codes are never persisted raw; they are
// digested through the Hash interface first and compared in constant time.
package hash
