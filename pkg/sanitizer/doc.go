// Package sanitizer normalizes free-text and identifier input before validation
// and storage.
//
// All functions are idempotent: applying them twice gives the same result as
// applying them once.
package sanitizer
