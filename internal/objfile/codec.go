// Copyright (C) 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package objfile implements the object-file / symbol-file binary codec and
// linker of spec.md §4.4/§6: per-module symbol-table serialization, fixup
// lists, cross-references, and the merge pass that resolves modify/replace/
// extern linkage across translation units.
//
// The Writer/Reader split and sticky-error ("once err != nil, every method
// becomes a no-op") discipline is grounded on core/data/binary's Writer/
// Reader interfaces and core/data/endian's concrete little-endian
// implementation. Unlike the teacher's endian.Writer, String here is
// length-prefixed (uint16 byte count, no terminator) rather than
// null-terminated: spec.md §6 fixes the object file as "length-prefixed
// throughout", a wire-format constraint the teacher's null-terminated
// convention doesn't satisfy, so this detail is adapted rather than copied.
package objfile

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Writer encodes the little-endian, length-prefixed primitives the object
// file format is built from.
type Writer struct {
	w   io.Writer
	tmp [4]byte
	err error
}

// NewWriter returns a Writer that emits to w.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

// Error returns the first error encountered, or nil if none has occurred.
// Once set, every Write* method is a no-op.
func (w *Writer) Error() error { return w.err }

// SetError forces the writer into the error state, discarding subsequent
// writes. Used by callers that detect a structural problem (e.g. a fixup
// referring to a symbol that was never emitted) mid-encode.
func (w *Writer) SetError(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *Writer) write(p []byte) {
	if w.err != nil {
		return
	}
	n, err := w.w.Write(p)
	if err != nil {
		w.err = err
	} else if n != len(p) {
		w.err = io.ErrShortWrite
	}
}

// Uint16 writes a little-endian 16 bit unsigned integer.
func (w *Writer) Uint16(v uint16) {
	binary.LittleEndian.PutUint16(w.tmp[:2], v)
	w.write(w.tmp[:2])
}

// Uint32 writes a little-endian 32 bit unsigned integer.
func (w *Writer) Uint32(v uint32) {
	binary.LittleEndian.PutUint32(w.tmp[:4], v)
	w.write(w.tmp[:4])
}

// Int32 writes a little-endian 32 bit signed integer.
func (w *Writer) Int32(v int32) { w.Uint32(uint32(v)) }

// Int64 writes a little-endian 64 bit signed integer, used for code-body
// anchor offsets which may exceed 32 bits in a large linked image.
func (w *Writer) Int64(v int64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	w.write(b[:])
}

// Bool writes one byte, 1 for true and 0 for false.
func (w *Writer) Bool(v bool) {
	if v {
		w.write([]byte{1})
	} else {
		w.write([]byte{0})
	}
}

// Data writes raw bytes verbatim, with no length prefix of its own.
func (w *Writer) Data(p []byte) { w.write(p) }

// Str16 writes a string as uint16 byte-length followed by the raw UTF-8
// bytes (spec.md §6's "name_len(2) name_bytes" shape, reused for every
// other length-prefixed string field in the format).
func (w *Writer) Str16(s string) {
	if len(s) > 0xFFFF {
		w.SetError(fmt.Errorf("string of %d bytes exceeds the 16 bit length prefix", len(s)))
		return
	}
	w.Uint16(uint16(len(s)))
	w.write([]byte(s))
}

// Reader decodes the primitives Writer encodes, sticky-erroring the same way.
type Reader struct {
	r   io.Reader
	tmp [8]byte
	err error
}

// NewReader returns a Reader that decodes from r.
func NewReader(r io.Reader) *Reader { return &Reader{r: r} }

// Error returns the first error encountered, or nil if none has occurred.
func (r *Reader) Error() error { return r.err }

// SetError forces the reader into the error state, matching Writer's
// sticky-error discipline; later reads become no-ops.
func (r *Reader) SetError(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) read(p []byte) {
	if r.err != nil {
		return
	}
	if _, err := io.ReadFull(r.r, p); err != nil {
		r.err = fmt.Errorf("objfile: %w", err)
	}
}

// Uint16 reads a little-endian 16 bit unsigned integer.
func (r *Reader) Uint16() uint16 {
	r.read(r.tmp[:2])
	if r.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint16(r.tmp[:2])
}

// Uint32 reads a little-endian 32 bit unsigned integer.
func (r *Reader) Uint32() uint32 {
	r.read(r.tmp[:4])
	if r.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(r.tmp[:4])
}

// Int32 reads a little-endian 32 bit signed integer.
func (r *Reader) Int32() int32 { return int32(r.Uint32()) }

// Int64 reads a little-endian 64 bit signed integer.
func (r *Reader) Int64() int64 {
	r.read(r.tmp[:8])
	if r.err != nil {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(r.tmp[:8]))
}

// Bool reads one byte, true for any nonzero value.
func (r *Reader) Bool() bool {
	r.read(r.tmp[:1])
	return r.tmp[0] != 0
}

// Data reads exactly len(p) raw bytes into p.
func (r *Reader) Data(p []byte) { r.read(p) }

// Str16 reads a uint16 byte-length followed by that many raw bytes. The
// 16-bit prefix bounds the allocation at 65535 bytes; a short read leaves
// the Reader in its sticky error state.
func (r *Reader) Str16() string {
	n := r.Uint16()
	if r.err != nil {
		return ""
	}
	buf := make([]byte, n)
	r.read(buf)
	if r.err != nil {
		return ""
	}
	return string(buf)
}
