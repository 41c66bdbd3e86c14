package utils

import "encoding/binary"

// CopyBytes returns an exact copy of the provided bytes.
func CopyBytes(b []byte) (copiedBytes []byte) {
	if b == nil {
		return nil
	}
	copiedBytes = make([]byte, len(b))
	copy(copiedBytes, b)

	return
}

// CopyBytesSlice deep-copies a slice of byte slices.
func CopyBytesSlice(values [][]byte) [][]byte {
	if values == nil {
		return nil
	}
	copied := make([][]byte, len(values))
	for i := range values {
		copied[i] = CopyBytes(values[i])
	}
	return copied
}

// Uint64ToBytes encodes v as 8 big-endian bytes.
func Uint64ToBytes(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

// BytesToUint64 decodes 8 big-endian bytes. Shorter input decodes to zero.
func BytesToUint64(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}
