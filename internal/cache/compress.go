package cache

import (
	"bytes"
	"compress/zlib"
	"io"
)

// Framing magic bytes distinguishing compressed from raw payloads on
// read (spec.md §6 persisted state layout: "distinguishable by a fixed
// one-byte magic prefix"). Stdlib compress/zlib is used here because no
// third-party zlib implementation appears anywhere in the retrieval
// pack — see DESIGN.md.
const (
	magicRaw        byte = 0x00
	magicCompressed byte = 0x01
)

// encode compresses data with zlib at level if its length meets
// threshold; otherwise it passes through unchanged. The one-byte magic
// prefix is always prepended so decode can tell which happened.
func encode(data []byte, threshold, level int) ([]byte, error) {
	if len(data) < threshold {
		out := make([]byte, 0, len(data)+1)
		out = append(out, magicRaw)
		out = append(out, data...)
		return out, nil
	}

	var buf bytes.Buffer
	buf.WriteByte(magicCompressed)
	w, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decode reverses encode. A corrupted or truncated entry (bad magic,
// broken zlib stream) returns an error; callers treat that as a miss
// and evict the entry (spec.md §4.3).
func decode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errCorruptEntry
	}
	magic, body := data[0], data[1:]
	switch magic {
	case magicRaw:
		out := make([]byte, len(body))
		copy(out, body)
		return out, nil
	case magicCompressed:
		r, err := zlib.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	default:
		return nil, errCorruptEntry
	}
}
