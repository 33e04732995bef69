// Package wire frames persisted records. The envelope carries the record
// timestamps outside the item payloads so retention math never depends on
// the caller's codec. Framing is strict: bad magic, bad lengths, or
// trailing bytes all yield ErrCorrupt and the caller self-heals by
// dropping the entry.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version    byte = 1
	kindRecord byte = 1
)

var (
	ErrCorrupt = errors.New("relsync: corrupt record")
	magic4     = [...]byte{'R', 'S', 'Y', 'N'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Item is one version entry inside a record frame.
type Item struct {
	Version string
	Payload []byte
}

// Record is the storable form of a cache record. Timestamps are unix
// nanoseconds.
type Record struct {
	CreatedAt int64
	UpdatedAt int64
	Items     []Item
}

// Encode frames a record:
//
//	magic(4) | ver(1) | kind(1) | createdAt(i64 be) | updatedAt(i64 be) | n(u32 be)
//	vlen(u16 be) | version(vlen) | plen(u32 be) | payload(plen)   * n
func Encode(r Record) ([]byte, error) {
	total := 4 + 1 + 1 + 8 + 8 + 4
	for _, it := range r.Items {
		if l := len(it.Version); l == 0 || l > 0xFFFF {
			return nil, errors.New("relsync: invalid version length in record")
		}
		total += 2 + len(it.Version) + 4 + len(it.Payload)
	}

	var buf bytes.Buffer
	buf.Grow(total)

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindRecord)

	var u8 [8]byte
	var u4 [4]byte
	var u2 [2]byte

	binary.BigEndian.PutUint64(u8[:], uint64(r.CreatedAt))
	buf.Write(u8[:])
	binary.BigEndian.PutUint64(u8[:], uint64(r.UpdatedAt))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(r.Items)))
	buf.Write(u4[:])

	for _, it := range r.Items {
		binary.BigEndian.PutUint16(u2[:], uint16(len(it.Version)))
		buf.Write(u2[:])
		buf.WriteString(it.Version)

		binary.BigEndian.PutUint32(u4[:], uint32(len(it.Payload)))
		buf.Write(u4[:])
		buf.Write(it.Payload)
	}

	return buf.Bytes(), nil
}

// Decode parses a record frame, rejecting trailing bytes.
func Decode(b []byte) (Record, error) {
	const hdr = 4 + 1 + 1 + 8 + 8 + 4
	if len(b) < hdr || !hasMagic(b) || b[4] != version || b[5] != kindRecord {
		return Record{}, ErrCorrupt
	}

	off := 6

	createdAt := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8
	updatedAt := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8

	n := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if n < 0 {
		return Record{}, ErrCorrupt
	}

	items := make([]Item, 0, min(n, 1024)) // don't trust n for preallocation
	for i := 0; i < n; i++ {
		if off+2 > len(b) {
			return Record{}, ErrCorrupt
		}
		vlen := int(binary.BigEndian.Uint16(b[off : off+2]))
		off += 2
		if vlen <= 0 || vlen > len(b)-off {
			return Record{}, ErrCorrupt
		}
		verBytes := b[off : off+vlen]
		off += vlen

		if off+4 > len(b) {
			return Record{}, ErrCorrupt
		}
		plen := int(binary.BigEndian.Uint32(b[off : off+4]))
		off += 4
		if plen < 0 || plen > len(b)-off {
			return Record{}, ErrCorrupt
		}
		payload := b[off : off+plen]
		off += plen

		items = append(items, Item{
			Version: string(verBytes), // one expected alloc per item
			Payload: payload,
		})
	}

	if off != len(b) {
		return Record{}, ErrCorrupt
	}

	return Record{CreatedAt: createdAt, UpdatedAt: updatedAt, Items: items}, nil
}
