// Package host wires the framed channel and the correlation store into the
// bridge's core: a single inbound router loop plus the synchronous dispatch
// API the HTTP layer calls into.
//
// The package focuses on:
//
//   - Routing every inbound frame to the right correlation primitive
//   - Dispatching outbound requests and blocking callers until the matching
//     reply arrives or their timeout expires
//   - Answering liveness probes and acknowledging routed replies
//
// Message Flow:
//
// A dispatch call registers its interest in the correlation store, writes
// its request frame and blocks. The router goroutine reads the extension's
// reply, completes the matching waiter and acknowledges the frame. The
// dispatch call wakes up, consumes the reply and returns it to the caller.
//
// Unread snapshots flow differently: the extension pushes them both on its
// own and in response to a refresh request, so they update a shared
// broadcast snapshot that wakes every waiting refresh at once.
//
// Error Handling:
//
// The router loop survives malformed and unrecognized frames, it only ends
// when the stream closes (cleanly, returning nil) or the transport fails
// (returning the error). Dispatch calls report expired timeouts as
// ErrTimedOut and clean their waiter up on every failure path, so a reply
// arriving past the deadline is dropped instead of leaking to a later
// caller.
package host
