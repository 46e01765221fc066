package transport

import (
	"encoding/json"
	"errors"
)

// ErrFrameTooLarge is returned by ReadFrame for frames whose announced size
// exceeds the transport's limit. The stream stays aligned on the next frame
// boundary, so the caller may keep reading.
var ErrFrameTooLarge = errors.New("transport: inbound frame exceeds size limit")

// --------------------------------------------------------------------------
// Frame Transport Interface
// --------------------------------------------------------------------------

// IFrameTransport is the interface for the framed message channel to the
// extension peer. Implementations own framing and JSON encoding, never any
// routing logic.
type IFrameTransport interface {
	// ReadFrame blocks until one whole frame is available and returns its
	// raw JSON payload. It returns io.EOF once the peer has closed the
	// stream. ReadFrame must only be called from a single goroutine, the
	// byte stream cannot recover framing across concurrent readers.
	ReadFrame() (json.RawMessage, error)

	// WriteFrame encodes v and writes it as a single frame. Safe for
	// concurrent use, frames are never interleaved.
	WriteFrame(v any) error

	// Close closes the underlying streams.
	Close() error
}
