// Package files handles the file system side of the workflows: finding
// WIP text exports to merge, and reading and writing artifacts below a
// root directory without ever escaping it.
package files
