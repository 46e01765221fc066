package stdio

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/feedbridge/feedbridge/bridge/transport"
)

// prefixSize is the width of the frame length header in bytes.
const prefixSize = 4

// Transport implements transport.IFrameTransport over a duplex byte stream
// using native messaging framing: a 4 byte native-endian length prefix
// followed by exactly that many bytes of UTF-8 JSON.
type Transport struct {
	in       io.Reader
	out      io.Writer
	reader   *bufio.Reader
	writer   *bufio.Writer
	writeMu  sync.Mutex // serializes prefix, payload and flush as one unit
	maxFrame uint32
}

// New creates a transport reading frames from r and writing frames to w.
// Frames announcing more than maxFrameBytes are discarded without breaking
// the stream.
func New(r io.Reader, w io.Writer, maxFrameBytes uint32) transport.IFrameTransport {
	return &Transport{
		in:       r,
		out:      w,
		reader:   bufio.NewReader(r),
		writer:   bufio.NewWriter(w),
		maxFrame: maxFrameBytes,
	}
}

// NewStdio creates a transport over the process's standard input and
// output, the channel a native messaging host is launched with.
func NewStdio(maxFrameBytes uint32) transport.IFrameTransport {
	return New(os.Stdin, os.Stdout, maxFrameBytes)
}

// ReadFrame blocks until one whole frame or stream closure is available.
// A cleanly closed stream (no prefix bytes, or a zero length prefix) is
// reported as io.EOF. A stream that ends inside a frame reports
// io.ErrUnexpectedEOF instead.
func (t *Transport) ReadFrame() (json.RawMessage, error) {
	var prefix [prefixSize]byte
	if _, err := io.ReadFull(t.reader, prefix[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read frame prefix: %w", err)
	}

	length := binary.NativeEndian.Uint32(prefix[:])
	if length == 0 {
		return nil, io.EOF
	}

	if length > t.maxFrame {
		// Drain the announced payload so the stream stays frame-aligned.
		if _, err := io.CopyN(io.Discard, t.reader, int64(length)); err != nil {
			return nil, fmt.Errorf("discard oversized frame: %w", err)
		}
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", transport.ErrFrameTooLarge, length, t.maxFrame)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(t.reader, payload); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("read frame payload: %w", err)
	}

	return payload, nil
}

// WriteFrame encodes v as JSON and writes it as one frame. The writer is
// flushed before returning so the peer observes the frame promptly.
func (t *Transport) WriteFrame(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	var prefix [prefixSize]byte
	binary.NativeEndian.PutUint32(prefix[:], uint32(len(payload)))

	if _, err := t.writer.Write(prefix[:]); err != nil {
		return fmt.Errorf("write frame prefix: %w", err)
	}
	if _, err := t.writer.Write(payload); err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}
	if err := t.writer.Flush(); err != nil {
		return fmt.Errorf("flush frame: %w", err)
	}

	return nil
}

// Close closes the underlying streams where they support it.
func (t *Transport) Close() error {
	var firstErr error
	if c, ok := t.in.(io.Closer); ok {
		if err := c.Close(); err != nil {
			firstErr = err
		}
	}
	if c, ok := t.out.(io.Closer); ok {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
