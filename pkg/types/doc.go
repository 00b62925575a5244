// Package types defines the domain types, sync lifecycle constants, and
// standard errors shared by the vztrack stores, the sync subsystem, and the
// CLI. Stores accept and return these types; the sync bundle format is their
// JSON serialization.
package types
