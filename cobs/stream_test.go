package cobs_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dcreager/cobs-go/cobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// streamEncodeToString feeds payload to a streaming encoder in fragments of
// at most fragSize bytes, finalizes the frame, and returns the concatenated
// output.
func streamEncodeToString(payload []byte, fragSize int) string {
	var enc cobs.Encoder
	var buf bytes.Buffer
	w := func(p []byte) {
		buf.Write(p)
	}
	for len(payload) > 0 {
		n := fragSize
		if n > len(payload) {
			n = len(payload)
		}
		enc.Sink(payload[:n], w)
		payload = payload[n:]
	}
	enc.Stop(w)
	return buf.String()
}

// streamDecodeToString feeds encoded to a streaming decoder in fragments of
// at most fragSize bytes and returns the concatenated output along with the
// left value of the last writer invocation.
func streamDecodeToString(dec *cobs.Decoder, encoded []byte, fragSize int) (string, int) {
	var buf bytes.Buffer
	left := 0
	w := func(p []byte, l int) {
		buf.Write(p)
		left = l
	}
	for len(encoded) > 0 {
		n := fragSize
		if n > len(encoded) {
			n = len(encoded)
		}
		dec.Sink(encoded[:n], w)
		encoded = encoded[n:]
	}
	return buf.String(), left
}

func TestStreamingEncoderMatchesBulk(t *testing.T) {
	for _, tc := range shortTestCases {
		for _, fragSize := range []int{1, 3, 254, 255, 1024} {
			encoded := streamEncodeToString([]byte(tc.decoded), fragSize)
			assert.Equal(t, tc.encoded+"\x00", encoded,
				"payload: %q fragSize: %d", tc.decoded, fragSize)
		}
	}
}

func TestStreamingEncoderReuse(t *testing.T) {
	var enc cobs.Encoder
	var buf bytes.Buffer
	w := func(p []byte) {
		buf.Write(p)
	}

	enc.Sink([]byte("abc\x00abc"), w)
	enc.Stop(w)
	enc.Sink([]byte("\x00"), w)
	enc.Stop(w)
	enc.Stop(w)
	assert.Equal(t, "\x04abc\x04abc\x00\x01\x01\x00\x01\x00", buf.String())
}

func TestStreamingEncoderReset(t *testing.T) {
	var enc cobs.Encoder
	var buf bytes.Buffer
	w := func(p []byte) {
		buf.Write(p)
	}

	// Pending bytes that are never flushed disappear on Reset.
	enc.Sink([]byte("discarded"), w)
	enc.Reset()
	enc.Sink([]byte("abc"), w)
	enc.Stop(w)
	assert.Equal(t, "\x04abc\x00", buf.String())
}

func TestStreamingDecoder(t *testing.T) {
	var dec cobs.Decoder
	for _, tc := range shortTestCases {
		for _, fragSize := range []int{1, 3, 254, 255, 1024} {
			decoded, left := streamDecodeToString(&dec, []byte(tc.encoded+"\x00"), fragSize)
			assert.Equal(t, tc.decoded, decoded,
				"encoded: %q fragSize: %d", tc.encoded, fragSize)
			assert.Equal(t, 0, left)
		}
	}
}

func TestStreamingDecoderStop(t *testing.T) {
	// Without a trailing delimiter the frame is finished by Stop, which
	// reports left == 0 for a well-formed frame.
	for _, tc := range shortTestCases {
		var dec cobs.Decoder
		var buf bytes.Buffer
		left := -1
		w := func(p []byte, l int) {
			buf.Write(p)
			left = l
		}
		dec.Sink([]byte(tc.encoded), w)
		dec.Stop(w)
		assert.Equal(t, tc.decoded, buf.String())
		assert.Equal(t, 0, left)
	}
}

type leftoverTestCase struct {
	encoded string
	decoded string
	left    int
}

// Boundary cases for the leftover count reported by Stop: the count is
// code-size-1 when a block is cut off, 0 once the block has completed,
// including a final full 0xff block.
var leftoverTestCases = []leftoverTestCase{
	{"\x03ab", "ab", 0},
	{"\x03a", "a", 1},
	{"\x03", "", 2},
	{"\x02", "", 1},
	{"\x05abc", "abc", 1},
	{"\x02a\x02", "a\x00", 1},
	{"\xff" + string256[:254], string256[:254], 0},
	{"\xff" + string256[:253], string256[:253], 1},
	{"\xff" + string256[:254] + "\x02", string256[:254], 1},
}

func TestStreamingDecoderLeftovers(t *testing.T) {
	for _, tc := range leftoverTestCases {
		var dec cobs.Decoder
		var buf bytes.Buffer
		left := -1
		w := func(p []byte, l int) {
			buf.Write(p)
			left = l
		}
		dec.Sink([]byte(tc.encoded), w)
		dec.Stop(w)
		assert.Equal(t, tc.decoded, buf.String(), "encoded: %q", tc.encoded)
		assert.Equal(t, tc.left, left, "encoded: %q", tc.encoded)
	}
}

func TestStreamingDecoderInlineDelimiterTruncation(t *testing.T) {
	// A delimiter that arrives mid-block reports the missing byte count
	// inline, and the decoder is immediately ready for the next frame.
	var dec cobs.Decoder
	var buf bytes.Buffer
	lefts := []int{}
	w := func(p []byte, l int) {
		buf.Write(p)
		if l > 0 {
			lefts = append(lefts, l)
		}
	}

	dec.Sink([]byte("\x05ab\x00"), w)
	require.Equal(t, []int{2}, lefts)
	buf.Reset()

	dec.Sink([]byte("\x04abc\x00"), w)
	assert.Equal(t, []int{2}, lefts)
	assert.Equal(t, "abc", buf.String())
}

func TestStreamingDecoderReuse(t *testing.T) {
	var dec cobs.Decoder
	stream := "\x04abc\x00" + "\x01\x01\x00" + "\x01\x00"
	expected := []string{"abc", "\x00", ""}

	var buf bytes.Buffer
	var frames []string
	w := func(p []byte, l int) {
		buf.Write(p)
	}
	rest := stream
	for {
		i := strings.IndexByte(rest, 0)
		if i < 0 {
			break
		}
		buf.Reset()
		dec.Sink([]byte(rest[:i+1]), w)
		frames = append(frames, buf.String())
		rest = rest[i+1:]
	}
	assert.Equal(t, expected, frames)
}
