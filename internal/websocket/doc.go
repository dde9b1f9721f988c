// Package websocket pushes workflow lifecycle events to connected browsers.
//
// A single Hub goroutine owns the client set. Handlers never write to a
// connection directly: they call Hub.Broadcast, and each client's write
// pump drains its own buffered channel.
package websocket
