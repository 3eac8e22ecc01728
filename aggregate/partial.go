package aggregate

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hupe1980/termcluster/internal/hash"
)

const (
	partialMagic   = "TCPS"
	partialVersion = 1

	// magic(4) version(1) reserved(3) k(4) fingerprint(4)
	partialHeaderSize = 16
	partialTrailer    = 4
)

// Partial is the transferable state of an accumulator: K totals in cluster
// order and the fingerprint of the centroid table they were computed against.
type Partial struct {
	K           int       `json:"k"`
	Fingerprint uint32    `json:"fingerprint"`
	Similarity  []float64 `json:"similarity"`
}

// MarshalBinary encodes p as a checksummed little-endian frame.
func (p *Partial) MarshalBinary() ([]byte, error) {
	if len(p.Similarity) != p.K {
		return nil, fmt.Errorf("partial: k=%d but %d totals", p.K, len(p.Similarity))
	}
	if uint64(p.K) > math.MaxUint32 {
		return nil, fmt.Errorf("partial: k=%d too large", p.K)
	}
	return p.AppendBinary(make([]byte, 0, partialHeaderSize+8*p.K+partialTrailer))
}

// AppendBinary appends the binary frame of p to dst.
func (p *Partial) AppendBinary(dst []byte) ([]byte, error) {
	start := len(dst)
	dst = append(dst, partialMagic...)
	dst = append(dst, partialVersion, 0, 0, 0)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(p.K))
	dst = binary.LittleEndian.AppendUint32(dst, p.Fingerprint)
	for _, s := range p.Similarity {
		dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(s))
	}
	dst = binary.LittleEndian.AppendUint32(dst, hash.CRC32C(dst[start:]))
	return dst, nil
}

// UnmarshalBinary decodes a frame produced by MarshalBinary.
func (p *Partial) UnmarshalBinary(data []byte) error {
	if len(data) < partialHeaderSize+partialTrailer {
		return fmt.Errorf("%w: short frame (%d bytes)", ErrCorruptPartial, len(data))
	}
	if string(data[:4]) != partialMagic {
		return fmt.Errorf("%w: bad magic", ErrCorruptPartial)
	}
	if data[4] != partialVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrCorruptPartial, data[4])
	}

	body := data[:len(data)-partialTrailer]
	want := binary.LittleEndian.Uint32(data[len(data)-partialTrailer:])
	if got := hash.CRC32C(body); got != want {
		return fmt.Errorf("%w: checksum mismatch", ErrCorruptPartial)
	}

	k := binary.LittleEndian.Uint32(data[8:12])
	if uint64(len(body)-partialHeaderSize) != 8*uint64(k) {
		return fmt.Errorf("%w: k=%d does not match frame size", ErrCorruptPartial, k)
	}

	p.K = int(k)
	p.Fingerprint = binary.LittleEndian.Uint32(data[12:16])
	p.Similarity = make([]float64, k)
	off := partialHeaderSize
	for i := range p.Similarity {
		p.Similarity[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[off:]))
		off += 8
	}
	return nil
}
