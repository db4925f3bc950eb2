// Package model defines the domain types for the unpack CLI.
//
// All entities in this package are pure data: detected content types,
// the error taxonomy shared by every component, and the run limits read
// once at startup. Nothing here touches the filesystem or spawns
// processes — that keeps the package importable from every other
// internal package without dependency cycles.
package model
