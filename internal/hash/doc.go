// Package hash provides the checksums used for centroid fingerprints and
// partial-state frames.
//
// All checksums use CRC32-Castagnoli (CRC32C), which Go's hash/crc32 computes
// with hardware instructions on x86 (SSE4.2) and ARM64 (CRC extension).
//
// For one-shot checksums:
//
//	checksum := hash.CRC32C(data)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	checksum := h.Sum32()
package hash
