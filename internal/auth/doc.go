// Package auth holds the user directory that gates the workflows.
//
// Users live in a JSON file as a list of {"email", "password"} objects.
// A password is either a bcrypt hash or a plain string; plain entries are
// compared in constant time.
package auth
