package cobs

import (
	"bytes"
)

// RecordBuilder makes it easier to build up the content of individual
// records, which are then written into a buffer as delimited COBS frames.
// To build up the content of an individual record, just use the
// RecordBuilder as a bytes.Buffer.  Once a record is done, call
// FinishRecord.  Once you are done with all records, call Encode to get the
// encoded representation of everything.
type RecordBuilder struct {
	bytes.Buffer
	start         int
	recordIndices []index
}

type index struct {
	start, end int
}

// FinishRecord indicates that you have finished constructing an individual
// record.  We don't actually encode the record until you call Encode, when
// we encode _all_ of the records that you add to the builder.
func (rb *RecordBuilder) FinishRecord() {
	end := rb.Len()
	rb.recordIndices = append(rb.recordIndices, index{rb.start, end})
	rb.start = end
}

// Encode encodes all of the records in this builder into an output buffer,
// writing each one as a COBS frame followed by the frame delimiter.
func (rb *RecordBuilder) Encode(dest *bytes.Buffer) {
	records := rb.Bytes()
	for _, index := range rb.recordIndices {
		record := records[index.start:index.end]
		Encode(record, func(p []byte) {
			dest.Write(p)
		})
		EncodeDelimiter(dest)
	}
}

// Scanner splits a byte stream containing delimited COBS frames into its
// individual encoded records, without copying them.  Empty segments between
// adjacent delimiters are skipped, so it does not matter whether the stream
// puts its delimiters before, after, or around each frame.
type Scanner struct {
	rest []byte
	cur  []byte
}

// Reset points the scanner at a new encoded stream.
func (s *Scanner) Reset(encoded []byte) {
	s.rest = encoded
	s.cur = nil
}

// Next advances the scanner to the next encoded record, returning false
// when the stream is exhausted.
func (s *Scanner) Next() bool {
	for len(s.rest) > 0 {
		i := FindDelimiter(s.rest)
		if i < 0 {
			s.cur = s.rest
			s.rest = nil
			return true
		}
		cur := s.rest[:i]
		s.rest = s.rest[i+1:]
		if len(cur) > 0 {
			s.cur = cur
			return true
		}
	}
	s.cur = nil
	return false
}

// Encoded returns the current encoded record, without its delimiter.  The
// returned slice aliases the stream that was passed to Reset.
func (s *Scanner) Encoded() []byte {
	return s.cur
}

// Decode decodes the current record into an output buffer.  It returns
// TruncatedFrame if the record's last block declares more data bytes than
// the record contains; the buffer may hold a partial payload in that case.
func (s *Scanner) Decode(payload *bytes.Buffer) error {
	truncated := false
	Decode(s.cur, func(p []byte, left int) {
		if left > 0 {
			truncated = true
			return
		}
		payload.Write(p)
	})
	if truncated {
		return TruncatedFrame
	}
	return nil
}
