// Package transport defines the framed message channel abstraction used to
// exchange JSON frames with the extension peer.
//
// The package focuses on:
//
//   - A minimal interface separating framing from message routing
//   - Error contracts that let the router tell stream closure, transient
//     frame problems and fatal transport failures apart
//
// Implementations live in subpackages, see stdio for the native messaging
// channel over standard input and output.
package transport
