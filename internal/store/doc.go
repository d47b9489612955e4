// Package store persists template groups and studio mappings.
//
// Two backends implement the same Store interface: a document store that
// keeps one TOML file per group and per studio under the data directory,
// and a SQLite store that keeps every document in a single database file.
// Both serialize through the shared TOML codec, so a group written by one
// backend can be imported by the other.
package store
