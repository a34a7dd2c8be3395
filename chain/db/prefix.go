package db

import (
	"encoding/binary"
)

type DataEntryPrefix byte

const (
	// DATA
	DATA_Block DataEntryPrefix = 0x00

	//SYSTEM
	SYS_CurrentHeight DataEntryPrefix = 0x40
)

func paddingKey(prefix DataEntryPrefix, key []byte) []byte {
	return append([]byte{byte(prefix)}, key...)
}

// BlockKey is keyed by chain position. Big endian keeps iteration order equal
// to chain order.
func BlockKey(height uint64) []byte {
	heightBuffer := make([]byte, 8)
	binary.BigEndian.PutUint64(heightBuffer, height)
	return paddingKey(DATA_Block, heightBuffer)
}

func CurrentHeightKey() []byte {
	return paddingKey(SYS_CurrentHeight, nil)
}

func encodeHeight(height uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, height)
	return buf
}

func decodeHeight(buf []byte) uint64 {
	if len(buf) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(buf)
}
