// Package cobs provides a Go implementation of Consistent Overhead Byte
// Stuffing (COBS).  COBS removes every zero byte from a payload, so that the
// single byte `0x00` can be used as an unambiguous frame delimiter on a
// byte-oriented transport.  The package provides one-shot encoding and
// decoding of complete in-memory payloads, and streaming encoders and
// decoders that process one byte at a time while holding only a small
// fixed amount of state.
package cobs
