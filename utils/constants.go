// File: utils/constants.go
package utils

// SlotLockPrefix is the prefix used for Redis slot lock keys.
const SlotLockPrefix = "slotlock:"

// RequestIDHeader carries the per-request id back to the caller.
const RequestIDHeader = "X-Request-ID"
