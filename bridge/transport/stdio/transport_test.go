package stdio

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/feedbridge/feedbridge/bridge/transport"
)

func TestFrameRoundTrip(t *testing.T) {
	testCases := []struct {
		name  string
		value any
		want  string
	}{
		{
			name:  "object",
			value: map[string]string{"action": "getUnreadRSS"},
			want:  `{"action":"getUnreadRSS"}`,
		},
		{
			name:  "string literal",
			value: "ping",
			want:  `"ping"`,
		},
		{
			name:  "array",
			value: []int{1, 2, 3},
			want:  `[1,2,3]`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			tr := New(&buf, &buf, 1<<20)

			if err := tr.WriteFrame(tc.value); err != nil {
				t.Fatalf("WriteFrame failed: %v", err)
			}

			raw, err := tr.ReadFrame()
			if err != nil {
				t.Fatalf("ReadFrame failed: %v", err)
			}
			if string(raw) != tc.want {
				t.Errorf("expected payload %s, got %s", tc.want, raw)
			}
		})
	}
}

func TestWireFormat(t *testing.T) {
	var buf bytes.Buffer
	tr := New(bytes.NewReader(nil), &buf, 1<<20)

	if err := tr.WriteFrame("ping"); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}

	payload := []byte(`"ping"`)
	want := make([]byte, prefixSize+len(payload))
	binary.NativeEndian.PutUint32(want[:prefixSize], uint32(len(payload)))
	copy(want[prefixSize:], payload)

	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("frame bytes mismatch:\ngot:  %v\nwant: %v", buf.Bytes(), want)
	}
}

func TestNativeEndianFrameDecodes(t *testing.T) {
	// The extension builds frames with a DataView in platform byte order, so
	// a hand-built native-endian frame must decode as-is.
	payload := []byte(`{"type":"rssData","data":[]}`)
	frame := make([]byte, prefixSize+len(payload))
	binary.NativeEndian.PutUint32(frame[:prefixSize], uint32(len(payload)))
	copy(frame[prefixSize:], payload)

	tr := New(bytes.NewReader(frame), io.Discard, 1<<20)

	raw, err := tr.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	if !bytes.Equal(raw, payload) {
		t.Errorf("expected payload %s, got %s", payload, raw)
	}
}

// truncatedFrame builds a frame announcing the full payload length but
// carrying only the first keep bytes of it.
func truncatedFrame(payload string, keep int) []byte {
	buf := make([]byte, prefixSize+keep)
	binary.NativeEndian.PutUint32(buf[:prefixSize], uint32(len(payload)))
	copy(buf[prefixSize:], payload[:keep])
	return buf
}

func TestReadFrameStreamClosure(t *testing.T) {
	testCases := []struct {
		name  string
		input []byte
		want  error
	}{
		{
			name:  "empty stream",
			input: nil,
			want:  io.EOF,
		},
		{
			name:  "zero length prefix",
			input: make([]byte, prefixSize),
			want:  io.EOF,
		},
		{
			name:  "truncated prefix",
			input: []byte{42, 0},
			want:  io.ErrUnexpectedEOF,
		},
		{
			name:  "truncated payload",
			input: truncatedFrame(`{"type":"rssData"}`, 5),
			want:  io.ErrUnexpectedEOF,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tr := New(bytes.NewReader(tc.input), io.Discard, 1<<20)

			_, err := tr.ReadFrame()
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestOversizedFrameSkipped(t *testing.T) {
	var buf bytes.Buffer
	sender := New(bytes.NewReader(nil), &buf, 1<<20)

	if err := sender.WriteFrame(strings.Repeat("x", 100)); err != nil {
		t.Fatalf("write oversized frame: %v", err)
	}
	if err := sender.WriteFrame("ok"); err != nil {
		t.Fatalf("write follow-up frame: %v", err)
	}

	receiver := New(&buf, io.Discard, 64)

	_, err := receiver.ReadFrame()
	if !errors.Is(err, transport.ErrFrameTooLarge) {
		t.Fatalf("expected ErrFrameTooLarge, got %v", err)
	}

	// The oversized payload must be fully drained so the next frame is
	// still readable.
	raw, err := receiver.ReadFrame()
	if err != nil {
		t.Fatalf("stream broken after oversized frame: %v", err)
	}
	if string(raw) != `"ok"` {
		t.Errorf("expected \"ok\" frame, got %s", raw)
	}
}

func TestConcurrentWritersDoNotInterleave(t *testing.T) {
	const writers = 8
	const framesPerWriter = 25

	var buf bytes.Buffer
	tr := New(&buf, &buf, 1<<20)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < framesPerWriter; j++ {
				if err := tr.WriteFrame(map[string]int{"writer": id, "frame": j}); err != nil {
					t.Errorf("WriteFrame failed: %v", err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	seen := 0
	for {
		raw, err := tr.ReadFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("frame %d is broken: %v", seen, err)
		}

		var decoded map[string]int
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("frame %d is not valid JSON: %v", seen, err)
		}
		seen++
	}

	if seen != writers*framesPerWriter {
		t.Errorf("expected %d frames, got %d", writers*framesPerWriter, seen)
	}
}
