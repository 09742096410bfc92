// Package websocket implements the live alert feed: a hub actor that tracks
// connected dashboard clients and fans each newly persisted alert out to all
// of them, dropping clients that fail or fall behind.
package websocket
