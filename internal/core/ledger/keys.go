package ledger

import "encoding/binary"

// key prefixes, one byte per table
const (
	prefixCounter        = 'C'
	prefixItem           = 'I'
	prefixProceeds       = 'P'
	prefixSellerProceeds = 'S'
	prefixCopyItem       = 'M'
	prefixUserToken      = 'U'
	prefixUserTokenCount = 'u'
	prefixOutbox         = 'O'
	prefixOutboxCursor   = 'o'
)

// Key joins a table prefix and key parts.
func Key(prefix byte, parts ...[]byte) []byte {
	n := 1
	for _, p := range parts {
		n += len(p)
	}
	key := make([]byte, 1, n)
	key[0] = prefix
	for _, p := range parts {
		key = append(key, p...)
	}
	return key
}

func Uint64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// BytesUint64 decodes a value written by Uint64Bytes; absent values read as 0.
func BytesUint64(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}
