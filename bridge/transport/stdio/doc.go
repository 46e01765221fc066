// Package stdio implements the framed message channel over a pair of byte
// streams, by default the standard input and output the browser launches a
// native messaging host with.
//
// The package focuses on:
//
//   - Deframing inbound messages and framing outbound ones
//   - Keeping the stream aligned when a frame has to be discarded
//   - Serializing concurrent writers so frames never interleave
//
// Wire Format:
//
// Every frame is a 4 byte unsigned length in the platform's native byte
// order followed by exactly that many bytes of UTF-8 encoded JSON. Both
// directions use the same format. The native byte order is a property of
// the protocol, both ends of the pipe always run on the same machine.
//
// Stream Closure:
//
// A stream that ends between frames, or a frame announcing zero length, is
// reported as io.EOF and means the peer has shut down in an orderly way. A
// stream that ends inside a frame reports io.ErrUnexpectedEOF, the caller
// should treat that as a transport failure.
//
// Thread Safety:
//
// WriteFrame may be called from any number of goroutines. ReadFrame must
// stay on a single goroutine, there is no way to recover frame boundaries
// across concurrent readers.
package stdio
