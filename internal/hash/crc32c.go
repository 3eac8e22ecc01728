package hash

import (
	"encoding/binary"
	"hash"
	"hash/crc32"
	"math"
)

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// NewCRC32C returns a new CRC32-Castagnoli hash.Hash32.
func NewCRC32C() hash.Hash32 {
	return crc32.New(crc32cTable)
}

// Fingerprint accumulates a CRC32C over typed fields.
// Each field is written in a fixed-width or length-prefixed form, so
// ("ab","c") and ("a","bc") hash differently.
type Fingerprint struct {
	h   hash.Hash32
	buf [8]byte
}

// NewFingerprint returns an empty Fingerprint.
func NewFingerprint() *Fingerprint {
	return &Fingerprint{h: NewCRC32C()}
}

// Uint64 adds v.
func (f *Fingerprint) Uint64(v uint64) {
	binary.LittleEndian.PutUint64(f.buf[:], v)
	_, _ = f.h.Write(f.buf[:])
}

// Float64 adds the IEEE-754 bits of v.
func (f *Fingerprint) Float64(v float64) {
	f.Uint64(math.Float64bits(v))
}

// Text adds a length-prefixed string.
func (f *Fingerprint) Text(s string) {
	f.Uint64(uint64(len(s)))
	_, _ = f.h.Write([]byte(s))
}

// Sum32 returns the checksum of everything added so far.
func (f *Fingerprint) Sum32() uint32 {
	return f.h.Sum32()
}
