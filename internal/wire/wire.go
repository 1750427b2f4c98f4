// Package wire frames cached query snapshots for storage in a byte store.
//
// The envelope carries the cache epoch observed when the snapshot was taken
// and the full normalized query text the entry belongs to. Epoch lets the
// cache reject entries written before an InvalidateAll; the embedded text
// guards against hash collisions and foreign writes when the byte store is
// shared (e.g. Redis).
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const version byte = 1

var (
	ErrCorrupt = errors.New("wire: corrupt entry")
	magic4     = [...]byte{'R', 'S', 'L', 'Q'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Entry: magic(4) | ver(1) | epoch(u64 be) | klen(u16 be) | key(klen) | vlen(u32 be) | payload(vlen)
func Encode(epoch uint64, key string, payload []byte) []byte {
	if l := len(key); l == 0 || l > 0xFFFF {
		panic("wire: invalid key length")
	}

	var buf bytes.Buffer
	buf.Grow(4 + 1 + 8 + 2 + len(key) + 4 + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)

	var u8 [8]byte
	var u4 [4]byte
	var u2 [2]byte

	binary.BigEndian.PutUint64(u8[:], epoch)
	buf.Write(u8[:])

	binary.BigEndian.PutUint16(u2[:], uint16(len(key)))
	buf.Write(u2[:])
	buf.WriteString(key)

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])
	buf.Write(payload)

	return buf.Bytes()
}

func Decode(b []byte) (epoch uint64, key string, payload []byte, err error) {
	const hdr = 4 + 1 + 8 + 2
	if len(b) < hdr || !hasMagic(b) || b[4] != version {
		return 0, "", nil, ErrCorrupt
	}

	off := 5

	epoch = binary.BigEndian.Uint64(b[off : off+8])
	off += 8

	klen := int(binary.BigEndian.Uint16(b[off : off+2]))
	off += 2
	if klen <= 0 || klen > len(b)-off {
		return 0, "", nil, ErrCorrupt
	}
	key = string(b[off : off+klen])
	off += klen

	if off+4 > len(b) {
		return 0, "", nil, ErrCorrupt
	}
	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen > len(b)-off { // overflow-safe bound check
		return 0, "", nil, ErrCorrupt
	}

	return epoch, key, b[off : off+vlen], nil
}
