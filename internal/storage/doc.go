// Package storage publishes workflow artifacts to a named location.
//
// The workflows treat publishing as an opaque "store these bytes in this
// folder under this name" call. Three backends exist: a local directory,
// a Google Drive folder and a no-op store used when publishing is disabled.
package storage
