package cobs

import (
	"bytes"
	"errors"
)

// delimiter is the reserved frame separator.  Encoded blocks never contain
// it; it only ever appears on the wire between frames.
const delimiter = 0x00

// maxPending is the largest number of data bytes a single block can carry.
// A block whose code byte is 0xff holds exactly this many data bytes and is
// not followed by an implied zero when decoded.
const maxPending = 0xfe

var (
	// TruncatedFrame is the error that is returned when decoding an
	// encoded record whose last block declares more data bytes than the
	// record contains.
	TruncatedFrame = errors.New("Truncated frame")
)

// EncodeWriter receives encoded output.  It is invoked zero or more times
// per call, synchronously and in wire order.  The byte slice is only valid
// for the duration of the call and must be copied or fully consumed before
// returning.
type EncodeWriter func(p []byte)

// DecodeWriter receives decoded output.  It is invoked zero or more times
// per call, synchronously and in payload order, with the same borrowing
// rules as EncodeWriter.  A nonzero left value reports a truncated frame:
// the final block declared left more data bytes than actually arrived.
type DecodeWriter func(p []byte, left int)

// Encode encodes a payload into COBS blocks, handing each block to w as two
// writes: the one-byte block code, then the block's data bytes (possibly
// none).  It returns the total number of encoded bytes.  The trailing 0x00
// delimiter is _not_ written; use EncodeDelimiter to separate frames in an
// output stream.
func Encode(payload []byte, w EncodeWriter) int {
	var code [1]byte
	code[0] = 1
	chunk := 0
	total := 0

	flush := func(end int) {
		w(code[:])
		w(payload[chunk:end])
		total += 1 + end - chunk
	}
	for i := 0; i < len(payload); i++ {
		if code[0] == 0xff {
			// Flush a full block of 254 data bytes.
			flush(i)
			chunk = i
			code[0] = 1
		}
		if payload[i] == delimiter {
			// Flush the current block, which may be empty.  The
			// zero byte itself is never copied; decoding restores
			// it from the block boundary.
			flush(i)
			chunk = i + 1
			code[0] = 1
		} else {
			code[0]++
		}
	}
	flush(len(payload))
	return total
}

// EncodeInto encodes a payload into dst and returns the number of bytes the
// encoding requires, regardless of the capacity of dst.  If dst is too
// small, EncodeInto writes only the bytes that fit; callers can pass an
// empty dst to measure, then retry with a buffer of the returned size.  The
// trailing 0x00 delimiter is not written.
func EncodeInto(payload, dst []byte) int {
	dstLen := 0 // index of the pending block's code slot
	dstDat := 1 // index of the next data byte
	code := 1
	required := 1

	for i := 0; i < len(payload); i++ {
		b := payload[i]
		if b != delimiter {
			if dstDat < len(dst) {
				dst[dstDat] = b
				dstDat++
			}
			code++
			required++
		}
		if code == 0xff || b == delimiter {
			if dstLen < len(dst) {
				dst[dstLen] = byte(code)
			}
			dstLen = dstDat
			code = 1
			// Reserve a code slot for the next block, unless a
			// full block ended exactly at the end of the payload.
			if b == delimiter || i+1 < len(payload) {
				if dstDat < len(dst) {
					dstDat++
				}
				required++
			}
		}
	}
	if dstLen < len(dst) {
		dst[dstLen] = byte(code)
	}
	return required
}

// Decode decodes a COBS-encoded record, handing each contiguous run of
// decoded bytes to w.  The trailing 0x00 delimiter is optional: decoding
// stops at the delimiter if one is present, and at the end of the input
// otherwise.  It returns the total number of decoded bytes.  If the record
// is truncated (its last block declares more data bytes than remain), w is
// invoked one final time with (nil, 0, missing) and Decode returns 0.
func Decode(encoded []byte, w DecodeWriter) int {
	var zero [1]byte
	prev := byte(0xff)
	total := 0
	i := 0

	for i < len(encoded) {
		code := encoded[i]
		i++
		if code == delimiter {
			return total
		}
		if prev != 0xff {
			// The previous block ended a run that was terminated
			// by a real zero byte in the payload.
			w(zero[:], 0)
			total++
		}
		prev = code
		n := int(code) - 1
		if avail := len(encoded) - i; n > avail {
			if avail > 0 {
				w(encoded[i:], 0)
				total += avail
			}
			w(nil, n-avail)
			return 0
		}
		if n > 0 {
			w(encoded[i:i+n], 0)
			total += n
			i += n
		}
	}
	return total
}

// DecodeInto decodes a COBS-encoded record into dst and returns the number
// of bytes the decoded payload requires, regardless of the capacity of dst.
// The trailing 0x00 delimiter is optional.  If dst is too small, DecodeInto
// writes only the bytes that fit, exactly as EncodeInto does.  If the
// record itself is truncated, DecodeInto returns 0 no matter how many bytes
// were written; a zero return is the only malformed-input signal.
func DecodeInto(encoded, dst []byte) int {
	code := byte(0xff)
	block := 0
	required := 0
	pos := 0
	i := 0

	for i < len(encoded) {
		if block > 0 {
			if pos < len(dst) {
				dst[pos] = encoded[i]
				pos++
			}
			required++
			i++
		} else {
			block = int(encoded[i])
			i++
			if block != 0 && code != 0xff {
				if pos < len(dst) {
					dst[pos] = 0
					pos++
				}
				required++
			}
			code = byte(block)
			if code == delimiter {
				break
			}
		}
		block--
	}
	if block > 0 {
		return 0
	}
	return required
}

// MaxEncodedLen returns the worst-case encoded size of a payload of n
// bytes, excluding the trailing delimiter.  The worst case for a nonempty
// payload is all-nonzero input, which costs one code byte per 254 data
// bytes; an empty payload still encodes to a single code byte.
func MaxEncodedLen(n int) int {
	if n == 0 {
		return 1
	}
	return n + (n+maxPending-1)/maxPending
}

// EncodeDelimiter writes the frame delimiter to an output buffer.  You
// should use this to separate encoded frames in your output stream.
func EncodeDelimiter(buf *bytes.Buffer) {
	buf.WriteByte(delimiter)
}

// FindDelimiter returns the index of the first occurrence of the frame
// delimiter in encoded, or -1 if it doesn't occur.
func FindDelimiter(encoded []byte) int {
	return bytes.IndexByte(encoded, delimiter)
}
