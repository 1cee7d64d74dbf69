package cobs

// Encoder is a streaming COBS encoder.  It consumes payload bytes one at a
// time and hands each completed block to an EncodeWriter as it fills, so
// data that arrives in fragments can be encoded on the fly without a
// payload-sized buffer.  The zero value is ready to use, and the encoder
// can be reused for the next frame after Stop.
//
// Encoder is not safe for concurrent use.
type Encoder struct {
	// buf[0] holds the count of pending data bytes, which live at
	// buf[1:1+count].  Incrementing buf[0] on flush turns it into the
	// block's code byte in place.
	buf [256]byte
}

// Reset discards any pending data, returning the encoder to its initial
// state.
func (e *Encoder) Reset() {
	e.buf[0] = 0
}

// Sink encodes the payload bytes in, handing each completed block to w.
// The input may be fragmented arbitrarily across calls: the encoded output
// depends only on the concatenation of all bytes sunk since the last Reset
// or Stop.
func (e *Encoder) Sink(in []byte, w EncodeWriter) {
	for _, b := range in {
		e.step(b, w)
	}
}

// Stop finishes the frame: the final (possibly empty) pending block is
// handed to w with the 0x00 frame delimiter appended to the same chunk.
// The encoder is then ready for the next frame.
func (e *Encoder) Stop(w EncodeWriter) {
	n := e.buf[0]
	e.buf[1+n] = delimiter
	e.buf[0] = n + 1
	w(e.buf[:int(n)+2])
	e.Reset()
}

func (e *Encoder) step(b byte, w EncodeWriter) {
	if e.buf[0] == maxPending {
		e.flush(w)
	}
	if b == delimiter {
		e.flush(w)
	} else {
		e.buf[0]++
		e.buf[e.buf[0]] = b
	}
}

func (e *Encoder) flush(w EncodeWriter) {
	e.buf[0]++
	w(e.buf[:e.buf[0]])
	e.Reset()
}

// Decoder is a streaming COBS decoder.  It consumes encoded bytes one at a
// time and hands each completed run of decoded bytes to a DecodeWriter, so
// frames that arrive in fragments can be decoded on the fly.  A frame ends
// either when a 0x00 delimiter is sunk, or when Stop is called for
// transports that delimit frames externally.  The zero value is ready to
// use.
//
// Decoder is not safe for concurrent use.
type Decoder struct {
	// buf holds the data bytes of the block being received, plus one
	// slot for the implied zero appended when the block completes.
	buf  [255]byte
	size byte // data bytes received so far in the current block
	code byte // the current block's code byte; 0 while awaiting one
}

// Reset discards any buffered data, returning the decoder to its initial
// state.
func (d *Decoder) Reset() {
	d.size = 0
	d.code = 0
}

// Sink decodes the encoded bytes in, handing each completed run of decoded
// bytes to w.  A 0x00 byte terminates the frame exactly as Stop does, after
// which the decoder is immediately ready for the next frame.
func (d *Decoder) Sink(in []byte, w DecodeWriter) {
	for _, b := range in {
		d.step(b, w)
	}
}

// Stop finishes the frame without requiring a delimiter byte, handing any
// buffered bytes to w in a single final call.  The reported left value is 0
// for a well-formed frame and the number of missing data bytes when the
// frame was cut off mid-block.  Either way the decoder is reset and ready
// for the next frame.
func (d *Decoder) Stop(w DecodeWriter) {
	left := 0
	if d.code != 0 {
		left = int(d.code) - int(d.size) - 1
	}
	w(d.buf[:d.size], left)
	d.Reset()
}

func (d *Decoder) step(b byte, w DecodeWriter) {
	if b == delimiter {
		d.Stop(w)
		return
	}
	if d.code == 0 || d.size+1 == d.code {
		// b is the next block's code byte.  A completed block whose
		// code was not 0xff marks a spot where the payload held a
		// real zero, so append one before handing off the run.
		if d.code != 0 && d.code != 0xff {
			d.buf[d.size] = 0
			d.size++
		}
		w(d.buf[:d.size], 0)
		d.size = 0
		d.code = b
	} else {
		d.buf[d.size] = b
		d.size++
	}
}
