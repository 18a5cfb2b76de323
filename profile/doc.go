// Package profile houses concrete implementations of the core.ProfileStore.
// Profiles hold explicitly remembered user preferences and outlive session
// expiry.
//
// Two backends are provided: an in-memory store for tests and demos, and a
// file store persisting one JSON record per user under a directory. Swap in
// durable backends at wiring time; callers depend only on core.ProfileStore.
package profile
